package layout

import (
	"github.com/google/uuid"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/nav"
)

// SlotID uniquely identifies a view slot for the lifetime of the process.
type SlotID string

// Selection is a caret range inside a view. Anchor equals Head when empty.
type Selection struct {
	Anchor nav.Position
	Head   nav.Position
}

// IsEmpty reports whether the selection covers no text.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// ViewState is the per-view UI state needed to restore a pane.
type ViewState struct {
	// ScrollLine is the first visible line.
	ScrollLine int

	// Caret is the insertion point.
	Caret nav.Position

	// Selection is the active selection, if any.
	Selection Selection
}

// ViewSlot binds one document to one on-screen pane.
//
// A slot belongs to exactly one split layout leaf at a time. Two slots showing
// the same document keep independent view state.
type ViewSlot struct {
	id    SlotID
	doc   document.Document
	state ViewState
	node  *Node
}

// NewViewSlot creates an unattached slot bound to doc.
func NewViewSlot(doc document.Document) *ViewSlot {
	return &ViewSlot{
		id:  SlotID(uuid.New().String()),
		doc: doc,
	}
}

// ID returns the slot identifier.
func (s *ViewSlot) ID() SlotID {
	return s.id
}

// Document returns the bound document.
func (s *ViewSlot) Document() document.Document {
	return s.doc
}

// Bind replaces the displayed document and resets the view state.
func (s *ViewSlot) Bind(doc document.Document) {
	s.doc = doc
	s.state = ViewState{}
}

// State returns the view state.
func (s *ViewSlot) State() ViewState {
	return s.state
}

// SetState replaces the view state.
func (s *ViewSlot) SetState(state ViewState) {
	s.state = state
}

// SetCaret moves the caret and collapses the selection onto it.
func (s *ViewSlot) SetCaret(pos nav.Position) {
	s.state.Caret = pos
	s.state.Selection = Selection{Anchor: pos, Head: pos}
}

// Location returns the caret location of this slot.
func (s *ViewSlot) Location() nav.Location {
	if s.doc == nil {
		return nav.Location{}
	}
	return nav.At(s.doc.ID(), s.state.Caret)
}

// Clone creates a new slot showing the same document with a copy of the view
// state. The clone is not attached to any layout.
func (s *ViewSlot) Clone() *ViewSlot {
	c := NewViewSlot(s.doc)
	c.state = s.state
	return c
}

// attached reports whether the slot is a leaf of some layout.
func (s *ViewSlot) attached() bool {
	return s.node != nil
}
