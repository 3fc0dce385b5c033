package command

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/layout"
	"github.com/dshills/winctl/internal/logging"
	"github.com/dshills/winctl/internal/nav"
	"github.com/dshills/winctl/internal/window"
)

// Action names.
const (
	// Splits
	ActionSplit           = "window.split"           // uses the default orientation
	ActionSplitHorizontal = "window.splitHorizontal" // Ctrl+W s, :sp
	ActionSplitVertical   = "window.splitVertical"   // Ctrl+W v, :vsp

	// View management
	ActionClose      = "window.close"      // Ctrl+W c, :close
	ActionCloseOther = "window.closeOther" // Ctrl+W o, :only
	ActionMoveToTab  = "window.moveToTab"  // Ctrl+W T
	ActionEqualize   = "window.equalize"   // Ctrl+W =
	ActionGrow       = "window.grow"       // Ctrl+W +
	ActionShrink     = "window.shrink"     // Ctrl+W -

	// Tabs
	ActionTabNext     = "tab.next"     // gt
	ActionTabPrevious = "tab.previous" // gT
	ActionTabSelect   = "tab.select"   // {count}gt
	ActionTabNew      = "tab.new"      // :tabedit

	// History
	ActionJumpBack     = "jump.back"    // Ctrl+O
	ActionJumpForward  = "jump.forward" // Ctrl+I
	ActionJumpGoto     = "jump.goto"
	ActionTagPush      = "tag.push" // Ctrl+]
	ActionTagPop       = "tag.pop"  // Ctrl+T
	ActionClearHistory = "history.clear"

	// Documents and symbols
	ActionDocumentOpen      = "document.open"      // :edit
	ActionDocumentClose     = "document.close"     // :bdelete
	ActionDocumentAlternate = "document.alternate" // Ctrl+^
	ActionSymbolsFilter     = "symbols.filter"
	ActionSymbolsGoto       = "symbols.goto"
)

// Result data keys.
const (
	DataSlot    = "slot"
	DataSymbols = "symbols"
	DataSymbol  = "symbol"
)

// ResizeStep is the proportion change of one grow or shrink step.
const ResizeStep = 0.05

// Args contains action-specific arguments.
type Args struct {
	Path   string
	Line   int
	Column int
	Index  int
	Filter string
}

// Action is a named window action with its arguments.
type Action struct {
	Name string
	Args Args

	// Count is the repeat count. Zero means one.
	Count int
}

// Handler executes window actions against a registry.
type Handler struct {
	reg          *window.Registry
	log          pslog.Logger
	defaultSplit layout.Orientation
}

// NewHandler creates a handler for reg.
func NewHandler(reg *window.Registry, log pslog.Logger) *Handler {
	return &Handler{reg: reg, log: logging.WithComponent(log, "command")}
}

// SetDefaultSplit sets the orientation used by ActionSplit.
func (h *Handler) SetDefaultSplit(o layout.Orientation) {
	h.defaultSplit = o
}

// DefaultSplit returns the orientation used by ActionSplit.
func (h *Handler) DefaultSplit() layout.Orientation {
	return h.defaultSplit
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionSplit, ActionSplitHorizontal, ActionSplitVertical,
		ActionClose, ActionCloseOther, ActionMoveToTab, ActionEqualize, ActionGrow, ActionShrink,
		ActionTabNext, ActionTabPrevious, ActionTabSelect, ActionTabNew,
		ActionJumpBack, ActionJumpForward, ActionJumpGoto, ActionTagPush, ActionTagPop, ActionClearHistory,
		ActionDocumentOpen, ActionDocumentClose, ActionDocumentAlternate,
		ActionSymbolsFilter, ActionSymbolsGoto:
		return true
	}
	return false
}

// HandleAction processes an action.
func (h *Handler) HandleAction(ctx context.Context, action Action) Result {
	count := action.Count
	if count < 1 {
		count = 1
	}

	res := h.dispatch(ctx, action, count)
	if res.IsError() {
		h.log.Warn("action failed", "action", action.Name, "err", res.Error)
	} else {
		h.log.Debug("action handled", "action", action.Name, "status", res.Status.String())
	}
	return res
}

func (h *Handler) dispatch(ctx context.Context, action Action, count int) Result {
	args := action.Args
	switch action.Name {
	case ActionSplit:
		return h.split(h.defaultSplit)
	case ActionSplitHorizontal:
		return h.split(layout.Horizontal)
	case ActionSplitVertical:
		return h.split(layout.Vertical)
	case ActionClose:
		return h.close()
	case ActionCloseOther:
		return fromErr(h.reg.CloseOtherViews())
	case ActionMoveToTab:
		return slotResult(h.reg.MoveCurrentViewToNewTab())
	case ActionEqualize:
		h.reg.NormalizeSplitSizes()
		return Success().WithRedraw()
	case ActionGrow:
		return h.resize(float64(count) * ResizeStep)
	case ActionShrink:
		return h.resize(-float64(count) * ResizeStep)
	case ActionTabNext:
		return h.repeat(count, h.reg.SelectNextTab)
	case ActionTabPrevious:
		return h.repeat(count, h.reg.SelectPreviousTab)
	case ActionTabSelect:
		return fromErr(h.reg.SelectTab(args.Index))
	case ActionTabNew:
		return h.openInNewTab(ctx, args.Path)
	case ActionJumpBack:
		return h.history(ctx, count, h.reg.JumpBack, "at start of jump list")
	case ActionJumpForward:
		return h.history(ctx, count, h.reg.JumpForward, "at end of jump list")
	case ActionJumpGoto:
		return slotResult(h.reg.GotoLocation(ctx, location(args)))
	case ActionTagPush:
		return slotResult(h.reg.PushTag(ctx, location(args)))
	case ActionTagPop:
		return h.history(ctx, count, h.reg.PopTag, "tag stack empty")
	case ActionClearHistory:
		h.reg.ClearHistory()
		return Success()
	case ActionDocumentOpen:
		if args.Path == "" {
			return Errorf("%s: missing path", action.Name)
		}
		return slotResult(h.reg.Open(ctx, document.ID(args.Path)))
	case ActionDocumentClose:
		return h.closeDocument(args.Path)
	case ActionDocumentAlternate:
		slot, err := h.reg.SwitchToLastDocument()
		if errors.Is(err, window.ErrNoDocument) {
			return NoOpWithMessage("no alternate document")
		}
		return slotResult(slot, err)
	case ActionSymbolsFilter:
		return h.symbols(ctx, args.Filter)
	case ActionSymbolsGoto:
		return h.gotoSymbol(ctx, args.Line)
	default:
		return Errorf("unknown action: %s", action.Name)
	}
}

func (h *Handler) split(o layout.Orientation) Result {
	return slotResult(h.reg.SplitCurrent(o))
}

func (h *Handler) close() Result {
	err := h.reg.CloseCurrentView()
	if errors.Is(err, window.ErrNoCurrentView) {
		return NoOp()
	}
	return fromErr(err)
}

func (h *Handler) resize(delta float64) Result {
	err := h.reg.ResizeCurrent(delta)
	if errors.Is(err, layout.ErrNotResizable) {
		return NoOpWithMessage("view is not split")
	}
	return fromErr(err)
}

func (h *Handler) repeat(count int, fn func() error) Result {
	for i := 0; i < count; i++ {
		if err := fn(); err != nil {
			return Error(err)
		}
	}
	return Success().WithRedraw()
}

// history applies a history step count times. Running out of history after
// at least one step still succeeds.
func (h *Handler) history(ctx context.Context, count int, step func(context.Context) (*layout.ViewSlot, bool, error), empty string) Result {
	var last *layout.ViewSlot
	for i := 0; i < count; i++ {
		slot, ok, err := step(ctx)
		if err != nil {
			return Error(err)
		}
		if !ok {
			break
		}
		last = slot
	}
	if last == nil {
		return NoOpWithMessage(empty)
	}
	return Success().WithRedraw().WithData(DataSlot, last)
}

func (h *Handler) openInNewTab(ctx context.Context, path string) Result {
	if path == "" {
		doc, ok := h.reg.CurrentDocument()
		if !ok {
			return NoOp()
		}
		return slotResult(h.reg.OpenInNewTab(doc))
	}
	doc, err := h.reg.Resolve(ctx, document.ID(path))
	if err != nil {
		return Error(err)
	}
	return slotResult(h.reg.OpenInNewTab(doc))
}

func (h *Handler) closeDocument(path string) Result {
	var doc document.Document
	if path == "" {
		d, ok := h.reg.CurrentDocument()
		if !ok {
			return NoOp()
		}
		doc = d
	} else {
		d, ok := h.reg.DocumentForID(document.ID(path))
		if !ok {
			return NoOpWithMessage(fmt.Sprintf("%s is not open", path))
		}
		doc = d
	}
	return fromErr(h.reg.CloseDocument(doc))
}

func (h *Handler) symbols(ctx context.Context, filter string) Result {
	entries, err := h.reg.Symbols(ctx, filter)
	if errors.Is(err, window.ErrNoCurrentView) {
		return NoOp()
	}
	if err != nil {
		return Error(err)
	}
	return SuccessWithMessage(fmt.Sprintf("%d symbols", len(entries))).
		WithData(DataSymbols, entries)
}

func (h *Handler) gotoSymbol(ctx context.Context, line int) Result {
	entry, ok, err := h.reg.SymbolAt(ctx, line)
	if err != nil {
		return Error(err)
	}
	if !ok {
		return NoOpWithMessage("no symbol")
	}
	return slotResult(h.reg.GotoSymbol(ctx, entry)).WithData(DataSymbol, entry)
}

func location(args Args) nav.Location {
	return nav.NewLocation(document.ID(args.Path), args.Line, args.Column)
}

func fromErr(err error) Result {
	if err != nil {
		return Error(err)
	}
	return Success().WithRedraw()
}

func slotResult(slot *layout.ViewSlot, err error) Result {
	if err != nil {
		return Error(err)
	}
	return Success().WithRedraw().WithData(DataSlot, slot)
}
