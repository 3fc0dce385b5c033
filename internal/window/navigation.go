package window

import (
	"context"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/layout"
	"github.com/dshills/winctl/internal/nav"
	"github.com/dshills/winctl/internal/symbols"
)

// GotoLocation navigates to loc and records the move in the jump list: the
// location being left first, then the target. Documents that are not open
// are resolved through the Opener.
func (r *Registry) GotoLocation(ctx context.Context, loc nav.Location) (*layout.ViewSlot, error) {
	if loc.Resource == "" {
		return nil, NewOperationError("goto", loc.String(), ErrNoDocument)
	}
	doc, err := r.resolve(ctx, loc.Resource)
	if err != nil {
		return nil, err
	}
	if r.current != nil {
		r.jumps.Push(r.current.Location())
	}
	slot, err := r.show(doc, loc.Position())
	if err != nil {
		return nil, err
	}
	r.jumps.Push(slot.Location())
	return slot, nil
}

// JumpBack moves one entry back in the jump list and shows it. At the head of
// the list it returns false.
func (r *Registry) JumpBack(ctx context.Context) (*layout.ViewSlot, bool, error) {
	loc, ok := r.jumps.Back()
	if !ok {
		return nil, false, nil
	}
	slot, err := r.showLocation(ctx, loc)
	if err != nil {
		return nil, true, err
	}
	return slot, true, nil
}

// JumpForward moves one entry forward in the jump list and shows it. At the
// tail it returns false.
func (r *Registry) JumpForward(ctx context.Context) (*layout.ViewSlot, bool, error) {
	loc, ok := r.jumps.Forward()
	if !ok {
		return nil, false, nil
	}
	slot, err := r.showLocation(ctx, loc)
	if err != nil {
		return nil, true, err
	}
	return slot, true, nil
}

// PushTag remembers the current location on the tag stack and navigates to
// target.
func (r *Registry) PushTag(ctx context.Context, target nav.Location) (*layout.ViewSlot, error) {
	if r.current != nil {
		r.tags.Push(r.current.Location())
	}
	slot, err := r.GotoLocation(ctx, target)
	if err != nil && r.current != nil {
		r.tags.Pop()
	}
	return slot, err
}

// PopTag returns to the location saved by the matching PushTag. An empty
// stack returns false.
func (r *Registry) PopTag(ctx context.Context) (*layout.ViewSlot, bool, error) {
	loc, ok := r.tags.Pop()
	if !ok {
		return nil, false, nil
	}
	slot, err := r.GotoLocation(ctx, loc)
	if err != nil {
		return nil, true, err
	}
	return slot, true, nil
}

// ClearHistory empties the jump list and the tag stack.
func (r *Registry) ClearHistory() {
	r.jumps.Clear()
	r.tags.Clear()
}

// SetJumpListCapacity changes the jump list bound.
func (r *Registry) SetJumpListCapacity(n int) {
	r.jumps.SetCapacity(n)
}

func (r *Registry) showLocation(ctx context.Context, loc nav.Location) (*layout.ViewSlot, error) {
	doc, err := r.resolve(ctx, loc.Resource)
	if err != nil {
		return nil, err
	}
	return r.show(doc, loc.Position())
}

func (r *Registry) resolve(ctx context.Context, id document.ID) (document.Document, error) {
	if doc, ok := r.docs.Get(id); ok {
		return doc, nil
	}
	if r.opener == nil {
		return nil, NewOperationError("open", id.String(), ErrNoDocument)
	}
	doc, err := r.opener.Open(ctx, id)
	if err != nil {
		return nil, NewOperationError("open", id.String(), err)
	}
	if doc == nil {
		return nil, NewOperationError("open", id.String(), ErrNoDocument)
	}
	return doc, nil
}

func (r *Registry) show(doc document.Document, pos nav.Position) (*layout.ViewSlot, error) {
	slot, err := r.OpenDocument(doc)
	if err != nil {
		return nil, err
	}
	slot.SetCaret(pos)
	return slot, nil
}

// Resolve returns the registered document with the identifier or loads it
// through the Opener without showing it.
func (r *Registry) Resolve(ctx context.Context, id document.ID) (document.Document, error) {
	return r.resolve(ctx, id)
}

// Open resolves id through the Opener and shows it like OpenDocument.
func (r *Registry) Open(ctx context.Context, id document.ID) (*layout.ViewSlot, error) {
	doc, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.OpenDocument(doc)
}

// Documents returns the open documents in registration order.
func (r *Registry) Documents() []document.Document {
	return r.docs.All()
}

// FilteredDocuments returns the open documents whose name or identifier
// contains filter, case-insensitively.
func (r *Registry) FilteredDocuments(filter string) []document.Document {
	return r.docs.Filter(filter)
}

// DocumentForID returns the registered document with the identifier.
func (r *Registry) DocumentForID(id document.ID) (document.Document, bool) {
	return r.docs.Get(id)
}

// LastDocument returns the previously current document, if still open.
func (r *Registry) LastDocument() (document.Document, bool) {
	if r.lastDoc == "" {
		return nil, false
	}
	return r.docs.Get(r.lastDoc)
}

// SwitchToDocument activates a visible view of doc, preferring the current
// tab, or opens it in the current tab when no view exists.
func (r *Registry) SwitchToDocument(doc document.Document) (*layout.ViewSlot, error) {
	if doc == nil {
		return nil, NewOperationError("switch document", "", ErrNoDocument)
	}
	if tab := r.tabs.Current(); tab != nil {
		if s := tab.FindDocument(doc.ID()); s != nil {
			r.setCurrent(s)
			return s, nil
		}
	}
	if views := r.ViewsFor(doc.ID()); len(views) > 0 {
		r.setCurrent(views[0])
		return views[0], nil
	}
	return r.OpenDocument(doc)
}

// SwitchToLastDocument switches to the previously current document.
func (r *Registry) SwitchToLastDocument() (*layout.ViewSlot, error) {
	doc, ok := r.LastDocument()
	if !ok {
		return nil, NewOperationError("switch to last document", "", ErrNoDocument)
	}
	return r.SwitchToDocument(doc)
}

// Symbols returns the symbols of the current document matching filter.
func (r *Registry) Symbols(ctx context.Context, filter string) ([]symbols.Entry, error) {
	doc, ok := r.CurrentDocument()
	if !ok {
		return nil, NewOperationError("symbols", filter, ErrNoCurrentView)
	}
	if r.index == nil {
		return nil, nil
	}
	return r.index.Symbols(ctx, doc.ID(), filter)
}

// SymbolAt returns the symbol of the current document an outline should
// select for a caret on line.
func (r *Registry) SymbolAt(ctx context.Context, line int) (symbols.Entry, bool, error) {
	doc, ok := r.CurrentDocument()
	if !ok {
		return symbols.Entry{}, false, NewOperationError("symbol at", "", ErrNoCurrentView)
	}
	if r.index == nil {
		return symbols.Entry{}, false, nil
	}
	return r.index.SymbolAt(ctx, doc.ID(), line)
}

// GotoSymbol jumps to a symbol of the current document.
func (r *Registry) GotoSymbol(ctx context.Context, e symbols.Entry) (*layout.ViewSlot, error) {
	doc, ok := r.CurrentDocument()
	if !ok {
		return nil, NewOperationError("goto symbol", e.Name, ErrNoCurrentView)
	}
	return r.GotoLocation(ctx, nav.NewLocation(doc.ID(), e.Line, e.Column))
}
