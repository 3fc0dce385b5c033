package window

import (
	"errors"
	"strconv"

	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/layout"
	"github.com/dshills/winctl/internal/logging"
	"github.com/dshills/winctl/internal/nav"
)

// Registry owns the open-document list, the tab set, the current view and the
// navigation history of one window.
//
// A Registry is not safe for concurrent use. All calls must come from the
// goroutine that owns the window (see package uiloop).
type Registry struct {
	policy      Policy
	opener      Opener
	placeholder PlaceholderFactory
	index       SymbolIndex
	log         pslog.Logger

	docs    *document.List
	tabs    *layout.TabSet
	current *layout.ViewSlot

	// Current and previously current document, for alternate-file switching.
	currentDoc document.ID
	lastDoc    document.ID

	jumps *nav.JumpList
	tags  *nav.TagStack

	// Placeholder documents are unregistered once their last view is gone.
	scratch map[document.ID]struct{}

	listeners []Listener
}

// New creates an empty registry.
func New(opts Options) *Registry {
	r := &Registry{
		policy:      opts.Policy,
		opener:      opts.Opener,
		placeholder: opts.Placeholder,
		index:       opts.Symbols,
		log:         logging.WithComponent(opts.Logger, "window"),
		docs:        document.NewList(),
		tabs:        layout.NewTabSet(),
		jumps:       nav.NewJumpList(opts.JumpListCapacity),
		tags:        nav.NewTagStack(),
		scratch:     make(map[document.ID]struct{}),
	}
	r.jumps.OnChange = func(canBack, canForward bool) {
		for _, l := range r.listeners {
			l.JumpListChanged(canBack, canForward)
		}
	}
	return r
}

// AddListener registers a chrome listener.
func (r *Registry) AddListener(l Listener) {
	if l != nil {
		r.listeners = append(r.listeners, l)
	}
}

// Policy returns the active policy.
func (r *Registry) Policy() Policy {
	return r.policy
}

// SetPolicy replaces the active policy.
func (r *Registry) SetPolicy(p Policy) {
	r.policy = p
}

// JumpList returns the window's jump list.
func (r *Registry) JumpList() *nav.JumpList {
	return r.jumps
}

// TagStack returns the window's tag stack.
func (r *Registry) TagStack() *nav.TagStack {
	return r.tags
}

// Tabs returns the tab layouts in order.
func (r *Registry) Tabs() []*layout.SplitLayout {
	return r.tabs.Tabs()
}

// TabCount returns the number of tabs.
func (r *Registry) TabCount() int {
	return r.tabs.Len()
}

// CurrentTabIndex returns the current tab index, or -1 for an empty window.
func (r *Registry) CurrentTabIndex() int {
	return r.tabs.CurrentIndex()
}

// CurrentView returns the active view, or nil for an empty window.
func (r *Registry) CurrentView() *layout.ViewSlot {
	return r.current
}

// CurrentDocument returns the document of the active view.
func (r *Registry) CurrentDocument() (document.Document, bool) {
	if r.current == nil || r.current.Document() == nil {
		return nil, false
	}
	return r.current.Document(), true
}

// SetCurrentView makes slot the active view, switching tabs if needed.
func (r *Registry) SetCurrentView(slot *layout.ViewSlot) error {
	if _, idx := r.tabs.Find(slot); idx < 0 {
		return NewOperationError("set current view", slotTarget(slot), ErrViewNotFound)
	}
	r.setCurrent(slot)
	return nil
}

// setCurrent makes an attached slot current and records it as the most
// recently active leaf of its tab.
func (r *Registry) setCurrent(slot *layout.ViewSlot) {
	tab, idx := r.tabs.Find(slot)
	if tab == nil {
		return
	}
	_ = r.tabs.Select(idx)
	_ = tab.SetLastActive(slot)

	changed := r.current != slot
	r.current = slot

	if doc := slot.Document(); doc != nil && doc.ID() != r.currentDoc {
		if r.currentDoc != "" {
			r.lastDoc = r.currentDoc
		}
		r.currentDoc = doc.ID()
	}
	if changed {
		for _, l := range r.listeners {
			l.CurrentViewChanged(slot)
		}
	}
}

func (r *Registry) tabsChanged() {
	for _, l := range r.listeners {
		l.TabsChanged()
	}
}

// register adds doc to the open-document list and returns the registered
// handle, which is the earlier one when the ID is already open.
func (r *Registry) register(doc document.Document) document.Document {
	if r.docs.Add(doc) {
		return doc
	}
	if existing, ok := r.docs.Get(doc.ID()); ok {
		return existing
	}
	return doc
}

// pruneScratch unregisters placeholder documents that no view shows.
func (r *Registry) pruneScratch() {
	for id := range r.scratch {
		if len(r.ViewsFor(id)) > 0 {
			continue
		}
		delete(r.scratch, id)
		r.docs.Remove(id)
		if r.lastDoc == id {
			r.lastDoc = ""
		}
		r.log.Debug("placeholder released", "document", id)
	}
}

// OpenDocument shows doc in the current tab.
//
// If a view of doc is already visible in the current tab it becomes current
// and is returned. Otherwise a new view of doc takes the place of the current
// leaf. The first document opened in an empty window creates the first tab.
// History is not recorded.
func (r *Registry) OpenDocument(doc document.Document) (*layout.ViewSlot, error) {
	if doc == nil {
		return nil, NewOperationError("open document", "", ErrNoDocument)
	}
	doc = r.register(doc)

	tab := r.tabs.Current()
	if tab == nil {
		return r.OpenInNewTab(doc)
	}
	if slot := tab.FindDocument(doc.ID()); slot != nil {
		r.setCurrent(slot)
		return slot, nil
	}

	target := r.current
	if target == nil || !tab.Contains(target) {
		target = tab.LastActive()
	}
	slot := layout.NewViewSlot(doc)
	if err := tab.Replace(target, slot); err != nil {
		return nil, NewOperationError("open document", doc.ID().String(), err)
	}
	if r.current == target {
		r.current = nil
	}
	r.setCurrent(slot)
	r.pruneScratch()
	r.log.Debug("document shown", "document", doc.ID(), "tab", r.tabs.CurrentIndex())
	return slot, nil
}

// OpenInNewTab shows doc in a new single-leaf tab and makes it current.
func (r *Registry) OpenInNewTab(doc document.Document) (*layout.ViewSlot, error) {
	if doc == nil {
		return nil, NewOperationError("open in new tab", "", ErrNoDocument)
	}
	doc = r.register(doc)

	slot := layout.NewViewSlot(doc)
	r.tabs.Append(layout.NewSplitLayout(slot))
	r.setCurrent(slot)
	r.tabsChanged()
	r.log.Info("tab opened", "document", doc.ID(), "tabs", r.tabs.Len())
	return slot, nil
}

// CloseView removes a view.
//
// A split left with one child collapses into that child and the remaining
// siblings are rescaled to fill the space. Closing the only view of a tab
// removes the tab. The only view of the last tab is handled by the
// LastView policy.
func (r *Registry) CloseView(slot *layout.ViewSlot) error {
	tab, _ := r.tabs.Find(slot)
	if tab == nil {
		return NewOperationError("close view", slotTarget(slot), ErrViewNotFound)
	}
	wasCurrent := r.current == slot

	if tab.LeafCount() > 1 {
		if err := tab.Remove(slot); err != nil {
			return NewOperationError("close view", slotTarget(slot), err)
		}
		if wasCurrent {
			r.current = nil
			r.setCurrent(tab.LastActive())
		}
		r.pruneScratch()
		r.tabsChanged()
		r.log.Debug("view closed", "slot", slot.ID(), "leaves", tab.LeafCount())
		return nil
	}

	if r.tabs.Len() > 1 {
		r.tabs.Remove(tab)
		if wasCurrent {
			r.current = nil
			r.setCurrent(r.tabs.Current().LastActive())
		}
		r.pruneScratch()
		r.tabsChanged()
		r.log.Info("tab closed", "tabs", r.tabs.Len())
		return nil
	}

	if r.policy.LastView == LastViewPlaceholder && r.placeholder != nil {
		r.replaceWithPlaceholder(tab, slot)
		return nil
	}
	return NewOperationError("close view", slotTarget(slot), ErrIllegalClose)
}

func (r *Registry) replaceWithPlaceholder(tab *layout.SplitLayout, slot *layout.ViewSlot) *layout.ViewSlot {
	doc := r.register(r.placeholder.NewScratch())
	r.scratch[doc.ID()] = struct{}{}
	replacement := layout.NewViewSlot(doc)
	_ = tab.Replace(slot, replacement)
	if r.current == slot {
		r.current = nil
	}
	r.setCurrent(replacement)
	r.pruneScratch()
	r.tabsChanged()
	r.log.Debug("last view replaced by placeholder", "document", doc.ID())
	return replacement
}

// CloseCurrentView closes the active view.
func (r *Registry) CloseCurrentView() error {
	if r.current == nil {
		return NewOperationError("close current view", "", ErrNoCurrentView)
	}
	return r.CloseView(r.current)
}

// CloseCurrentViewUnlessLast closes the active view unless it is the only
// view of the window, and reports whether it closed.
func (r *Registry) CloseCurrentViewUnlessLast() bool {
	if r.current == nil || r.ViewCount() <= 1 {
		return false
	}
	return r.CloseView(r.current) == nil
}

// CloseOtherViews closes every view of the current tab except the active one.
func (r *Registry) CloseOtherViews() error {
	if r.current == nil {
		return NewOperationError("close other views", "", ErrNoCurrentView)
	}
	tab := r.tabs.Current()
	removed := 0
	for _, s := range tab.Leaves() {
		if s == r.current {
			continue
		}
		if err := tab.Remove(s); err != nil {
			return NewOperationError("close other views", slotTarget(s), err)
		}
		removed++
	}
	if removed > 0 {
		r.pruneScratch()
		r.tabsChanged()
	}
	return nil
}

// CloseDocument closes every view of doc in every tab, then unregisters doc
// and drops its cached symbols. Unregistered documents are ignored.
//
// When the document occupies the last remaining view, that view is handled
// by the LastView policy as in CloseView. If the policy refuses, every other
// view of doc is still closed, doc stays registered and the returned error
// wraps ErrIllegalClose.
func (r *Registry) CloseDocument(doc document.Document) error {
	if doc == nil || !r.docs.Contains(doc.ID()) {
		return nil
	}
	id := doc.ID()

	closed := 0
	refused := false
	for _, tab := range r.tabs.Tabs() {
		for _, s := range tab.SlotsFor(id) {
			err := r.CloseView(s)
			switch {
			case err == nil:
				closed++
			case errors.Is(err, ErrIllegalClose):
				refused = true
			default:
				return NewOperationError("close document", id.String(), err)
			}
		}
	}

	if refused {
		r.log.Debug("document kept in last view", "document", id, "views", closed)
		return NewOperationError("close document", id.String(), ErrIllegalClose)
	}

	r.docs.Remove(id)
	delete(r.scratch, id)
	if r.lastDoc == id {
		r.lastDoc = ""
	}
	if r.index != nil {
		r.index.Invalidate(id)
	}
	r.log.Info("document closed", "document", id, "views", closed)
	return nil
}

// SelectTab switches to the tab at index and restores its most recently
// active view.
func (r *Registry) SelectTab(index int) error {
	tab, err := r.tabs.At(index)
	if err != nil {
		return NewOperationError("select tab", strconv.Itoa(index), ErrIndexOutOfRange)
	}
	r.setCurrent(tab.LastActive())
	return nil
}

// SelectNextTab selects the tab after the current one, wrapping around.
func (r *Registry) SelectNextTab() error {
	return r.selectRelative(1)
}

// SelectPreviousTab selects the tab before the current one, wrapping around.
func (r *Registry) SelectPreviousTab() error {
	return r.selectRelative(-1)
}

func (r *Registry) selectRelative(step int) error {
	n := r.tabs.Len()
	if n == 0 {
		return NewOperationError("select tab", strconv.Itoa(step), ErrIndexOutOfRange)
	}
	return r.SelectTab(((r.tabs.CurrentIndex()+step)%n + n) % n)
}

// SplitCurrent splits the active view. Both halves show the same document
// with independent view state; the new half becomes current.
func (r *Registry) SplitCurrent(orientation layout.Orientation) (*layout.ViewSlot, error) {
	if r.current == nil {
		return nil, NewOperationError("split", orientation.String(), ErrNoCurrentView)
	}
	tab, _ := r.tabs.Find(r.current)
	added := r.current.Clone()
	if err := tab.Split(r.current, orientation, added); err != nil {
		return nil, NewOperationError("split", orientation.String(), err)
	}
	r.setCurrent(added)
	r.tabsChanged()
	return added, nil
}

// MoveCurrentViewToNewTab moves the active view into a new tab. The origin
// tab collapses as for CloseView. A tab's only view cannot be moved.
func (r *Registry) MoveCurrentViewToNewTab() (*layout.ViewSlot, error) {
	slot := r.current
	if slot == nil {
		return nil, NewOperationError("move view to new tab", "", ErrNoCurrentView)
	}
	origin, _ := r.tabs.Find(slot)
	if origin.LeafCount() == 1 {
		return nil, NewOperationError("move view to new tab", slotTarget(slot), ErrCannotMoveLastView)
	}
	if err := origin.Remove(slot); err != nil {
		return nil, NewOperationError("move view to new tab", slotTarget(slot), err)
	}
	r.tabs.Append(layout.NewSplitLayout(slot))
	r.current = nil
	r.setCurrent(slot)
	r.tabsChanged()
	r.log.Info("view moved to new tab", "slot", slot.ID(), "tabs", r.tabs.Len())
	return slot, nil
}

// NormalizeSplitSizes gives every view of the current tab an equal share at
// every split level.
func (r *Registry) NormalizeSplitSizes() {
	if tab := r.tabs.Current(); tab != nil {
		tab.Normalize()
		r.tabsChanged()
	}
}

// ResizeCurrent grows or shrinks the active view within its split.
func (r *Registry) ResizeCurrent(delta float64) error {
	if r.current == nil {
		return NewOperationError("resize", "", ErrNoCurrentView)
	}
	tab, _ := r.tabs.Find(r.current)
	if err := tab.Resize(r.current, delta); err != nil {
		return NewOperationError("resize", slotTarget(r.current), err)
	}
	r.tabsChanged()
	return nil
}

// ViewCount returns the number of views across all tabs.
func (r *Registry) ViewCount() int {
	n := 0
	for _, tab := range r.tabs.Tabs() {
		n += tab.LeafCount()
	}
	return n
}

// ViewsFor returns every view of the document across all tabs.
func (r *Registry) ViewsFor(id document.ID) []*layout.ViewSlot {
	var out []*layout.ViewSlot
	for _, tab := range r.tabs.Tabs() {
		out = append(out, tab.SlotsFor(id)...)
	}
	return out
}

func slotTarget(slot *layout.ViewSlot) string {
	if slot == nil {
		return ""
	}
	return string(slot.ID())
}
