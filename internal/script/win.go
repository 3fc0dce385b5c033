package script

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/layout"
	"github.com/dshills/winctl/internal/nav"
	"github.com/dshills/winctl/internal/symbols"
	"github.com/dshills/winctl/internal/window"
)

// winModule implements the global win table. Lines, columns and tab numbers
// are one-based on the Lua side.
type winModule struct {
	reg *window.Registry
	ctx context.Context
}

func (m *winModule) register(L *lua.LState) {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"open":        m.open,
		"split":       m.split,
		"close":       m.close,
		"tab":         m.tab,
		"next_tab":    m.nextTab,
		"prev_tab":    m.prevTab,
		"goto":        m.gotoLocation,
		"back":        m.back,
		"forward":     m.forward,
		"tag_push":    m.tagPush,
		"tag_pop":     m.tagPop,
		"symbols":     m.symbols,
		"layout":      m.layout,
		"normalize":   m.normalize,
		"move_to_tab": m.moveToTab,
		"current":     m.current,
		"documents":   m.documents,
	})
	L.SetGlobal("win", mod)
}

func (m *winModule) context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// fail pushes the Lua error convention: nil, message.
func fail(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

func pushSlot(L *lua.LState, slot *layout.ViewSlot, err error) int {
	if err != nil {
		return fail(L, err)
	}
	L.Push(lua.LString(slot.Document().ID()))
	return 1
}

func pushOK(L *lua.LState, err error) int {
	if err != nil {
		return fail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

// pushHistory pushes the document shown, or false when history is exhausted.
func pushHistory(L *lua.LState, slot *layout.ViewSlot, ok bool, err error) int {
	if err != nil {
		return fail(L, err)
	}
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	return pushSlot(L, slot, nil)
}

// locationArg reads (path, line, col) starting at stack index n.
func locationArg(L *lua.LState, n int) nav.Location {
	path := L.CheckString(n)
	line := L.OptInt(n+1, 1)
	col := L.OptInt(n+2, 1)
	return nav.NewLocation(document.ID(path), line-1, col-1)
}

// win.open(path) -> id
func (m *winModule) open(L *lua.LState) int {
	path := L.CheckString(1)
	slot, err := m.reg.Open(m.context(), document.ID(path))
	return pushSlot(L, slot, err)
}

// win.split("h"|"v") -> id
func (m *winModule) split(L *lua.LState) int {
	arg := L.OptString(1, "h")
	o, ok := layout.ParseOrientation(arg)
	if !ok {
		return fail(L, fmt.Errorf("invalid orientation %q", arg))
	}
	slot, err := m.reg.SplitCurrent(o)
	return pushSlot(L, slot, err)
}

// win.close() -> true
func (m *winModule) close(L *lua.LState) int {
	return pushOK(L, m.reg.CloseCurrentView())
}

// win.tab(n) -> true
func (m *winModule) tab(L *lua.LState) int {
	return pushOK(L, m.reg.SelectTab(L.CheckInt(1)-1))
}

// win.next_tab() -> true
func (m *winModule) nextTab(L *lua.LState) int {
	return pushOK(L, m.reg.SelectNextTab())
}

// win.prev_tab() -> true
func (m *winModule) prevTab(L *lua.LState) int {
	return pushOK(L, m.reg.SelectPreviousTab())
}

// win.goto(path, line, col) -> id
func (m *winModule) gotoLocation(L *lua.LState) int {
	slot, err := m.reg.GotoLocation(m.context(), locationArg(L, 1))
	return pushSlot(L, slot, err)
}

// win.back() -> id | false
func (m *winModule) back(L *lua.LState) int {
	slot, ok, err := m.reg.JumpBack(m.context())
	return pushHistory(L, slot, ok, err)
}

// win.forward() -> id | false
func (m *winModule) forward(L *lua.LState) int {
	slot, ok, err := m.reg.JumpForward(m.context())
	return pushHistory(L, slot, ok, err)
}

// win.tag_push(path, line, col) -> id
func (m *winModule) tagPush(L *lua.LState) int {
	slot, err := m.reg.PushTag(m.context(), locationArg(L, 1))
	return pushSlot(L, slot, err)
}

// win.tag_pop() -> id | false
func (m *winModule) tagPop(L *lua.LState) int {
	slot, ok, err := m.reg.PopTag(m.context())
	return pushHistory(L, slot, ok, err)
}

// win.symbols(filter) -> {{name=, kind=, line=, column=, container=}, ...}
func (m *winModule) symbols(L *lua.LState) int {
	entries, err := m.reg.Symbols(m.context(), L.OptString(1, ""))
	if err != nil {
		return fail(L, err)
	}
	list := L.CreateTable(len(entries), 0)
	for _, e := range entries {
		list.Append(entryTable(L, e))
	}
	L.Push(list)
	return 1
}

func entryTable(L *lua.LState, e symbols.Entry) *lua.LTable {
	t := L.CreateTable(0, 5)
	t.RawSetString("name", lua.LString(e.Name))
	t.RawSetString("kind", lua.LString(e.Kind.String()))
	t.RawSetString("line", lua.LNumber(e.Line+1))
	t.RawSetString("column", lua.LNumber(e.Column+1))
	if e.Container != "" {
		t.RawSetString("container", lua.LString(e.Container))
	}
	return t
}

// win.layout() -> {tabs=, tab=, views=, tree=}
func (m *winModule) layout(L *lua.LState) int {
	snap := m.reg.Snapshot()
	t := L.CreateTable(0, 4)
	t.RawSetString("tabs", lua.LNumber(len(snap.Tabs)))
	t.RawSetString("tab", lua.LNumber(snap.CurrentTab+1))
	if snap.CurrentTab >= 0 {
		cur := snap.Tabs[snap.CurrentTab]
		t.RawSetString("views", lua.LNumber(cur.Views))
		t.RawSetString("tree", lua.LString(cur.Layout.String()))
	} else {
		t.RawSetString("views", lua.LNumber(0))
	}
	L.Push(t)
	return 1
}

// win.normalize() -> true
func (m *winModule) normalize(L *lua.LState) int {
	m.reg.NormalizeSplitSizes()
	L.Push(lua.LTrue)
	return 1
}

// win.move_to_tab() -> id
func (m *winModule) moveToTab(L *lua.LState) int {
	slot, err := m.reg.MoveCurrentViewToNewTab()
	return pushSlot(L, slot, err)
}

// win.current() -> {document=, line=, column=} | nil
func (m *winModule) current(L *lua.LState) int {
	slot := m.reg.CurrentView()
	if slot == nil {
		L.Push(lua.LNil)
		return 1
	}
	loc := slot.Location()
	t := L.CreateTable(0, 3)
	t.RawSetString("document", lua.LString(loc.Resource))
	t.RawSetString("line", lua.LNumber(loc.Line+1))
	t.RawSetString("column", lua.LNumber(loc.Column+1))
	L.Push(t)
	return 1
}

// win.documents() -> {id, ...}
func (m *winModule) documents(L *lua.LState) int {
	docs := m.reg.Documents()
	list := L.CreateTable(len(docs), 0)
	for _, d := range docs {
		list.Append(lua.LString(d.ID()))
	}
	L.Push(list)
	return 1
}
