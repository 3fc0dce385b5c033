package layout

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dshills/winctl/internal/document"
)

// Layout errors.
var (
	// ErrSlotNotFound indicates the slot is not a leaf of the layout.
	ErrSlotNotFound = errors.New("slot not found in layout")

	// ErrLastLeaf indicates an attempt to remove the only leaf of a layout.
	ErrLastLeaf = errors.New("cannot remove the last leaf of a layout")

	// ErrSlotAttached indicates a slot that already belongs to a layout.
	ErrSlotAttached = errors.New("slot already attached to a layout")

	// ErrNotResizable indicates a slot whose layout has no split to resize.
	ErrNotResizable = errors.New("slot has no sibling to resize against")
)

// TabID identifies a tab.
type TabID string

// SplitLayout is the split tree of one tab. It always has at least one leaf.
type SplitLayout struct {
	id         TabID
	root       *Node
	lastActive *ViewSlot
}

// NewSplitLayout creates a single-leaf layout holding slot.
// It panics if slot is nil or already attached, which is a programming error.
func NewSplitLayout(slot *ViewSlot) *SplitLayout {
	if slot == nil {
		panic("layout: NewSplitLayout called with nil slot")
	}
	if slot.attached() {
		panic("layout: NewSplitLayout called with attached slot")
	}
	return &SplitLayout{
		id:         TabID(uuid.New().String()),
		root:       newLeaf(slot),
		lastActive: slot,
	}
}

// ID returns the tab identifier.
func (l *SplitLayout) ID() TabID {
	return l.id
}

// Root returns the root node.
func (l *SplitLayout) Root() *Node {
	return l.root
}

// Leaves returns the slots in reading order.
func (l *SplitLayout) Leaves() []*ViewSlot {
	return l.root.leaves(nil)
}

// LeafCount returns the number of slots.
func (l *SplitLayout) LeafCount() int {
	return len(l.Leaves())
}

// Contains reports whether slot is a leaf of this layout.
func (l *SplitLayout) Contains(slot *ViewSlot) bool {
	if slot == nil || slot.node == nil {
		return false
	}
	n := slot.node
	for n.parent != nil {
		n = n.parent
	}
	return n == l.root
}

// SlotsFor returns every slot showing the document, in reading order.
func (l *SplitLayout) SlotsFor(id document.ID) []*ViewSlot {
	var out []*ViewSlot
	for _, s := range l.Leaves() {
		if s.doc != nil && s.doc.ID() == id {
			out = append(out, s)
		}
	}
	return out
}

// FindDocument returns the first slot showing the document.
func (l *SplitLayout) FindDocument(id document.ID) *ViewSlot {
	if slots := l.SlotsFor(id); len(slots) > 0 {
		return slots[0]
	}
	return nil
}

// LastActive returns the most recently active slot of this tab.
func (l *SplitLayout) LastActive() *ViewSlot {
	if l.lastActive != nil && l.Contains(l.lastActive) {
		return l.lastActive
	}
	return l.Leaves()[0]
}

// SetLastActive records slot as the most recently active leaf.
func (l *SplitLayout) SetLastActive(slot *ViewSlot) error {
	if !l.Contains(slot) {
		return ErrSlotNotFound
	}
	l.lastActive = slot
	return nil
}

// Split replaces the leaf holding target with an internal node of two leaves:
// target first, then added. Both get half of the space.
func (l *SplitLayout) Split(target *ViewSlot, orientation Orientation, added *ViewSlot) error {
	if !l.Contains(target) {
		return ErrSlotNotFound
	}
	if added == nil || added.attached() {
		return ErrSlotAttached
	}

	leaf := target.node
	internal := &Node{
		parent:      leaf.parent,
		orientation: orientation,
		sizes:       []float64{0.5, 0.5},
	}

	if leaf.parent == nil {
		l.root = internal
	} else {
		leaf.parent.children[leaf.parent.indexOf(leaf)] = internal
	}

	second := newLeaf(added)
	leaf.parent = internal
	second.parent = internal
	internal.children = []*Node{leaf, second}
	return nil
}

// Remove detaches slot from the layout.
//
// A parent left with a single child collapses: the remaining child takes the
// parent's place and share. Groups that keep two or more children are
// rescaled to sum to one.
func (l *SplitLayout) Remove(slot *ViewSlot) error {
	if !l.Contains(slot) {
		return ErrSlotNotFound
	}
	leaf := slot.node
	parent := leaf.parent
	if parent == nil {
		return ErrLastLeaf
	}

	idx := parent.indexOf(leaf)
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)
	parent.sizes = append(parent.sizes[:idx], parent.sizes[idx+1:]...)
	slot.node = nil
	leaf.parent = nil

	if len(parent.children) > 1 {
		parent.rescale()
	} else {
		survivor := parent.children[0]
		grand := parent.parent
		survivor.parent = grand
		if grand == nil {
			l.root = survivor
		} else {
			grand.children[grand.indexOf(parent)] = survivor
		}
		parent.children = nil
		parent.sizes = nil
	}

	if l.lastActive == slot {
		l.lastActive = nil
	}
	return nil
}

// Replace puts added in the leaf currently holding target. target becomes
// unattached.
func (l *SplitLayout) Replace(target, added *ViewSlot) error {
	if !l.Contains(target) {
		return ErrSlotNotFound
	}
	if added == nil || added.attached() {
		return ErrSlotAttached
	}
	leaf := target.node
	leaf.slot = added
	added.node = leaf
	target.node = nil
	if l.lastActive == target {
		l.lastActive = added
	}
	return nil
}

// Normalize gives every sibling at every level an equal share. Idempotent.
func (l *SplitLayout) Normalize() {
	l.root.equalize()
}

// ProportionsValid reports whether every sibling group sums to one.
func (l *SplitLayout) ProportionsValid() bool {
	return l.root.proportionsValid()
}

// Resize grows (delta > 0) or shrinks the share of the slot's branch within
// its parent split. The neighbouring sibling absorbs the difference. The
// resulting share is clamped to [MinProportion, MaxProportion].
func (l *SplitLayout) Resize(slot *ViewSlot, delta float64) error {
	if !l.Contains(slot) {
		return ErrSlotNotFound
	}
	leaf := slot.node
	parent := leaf.parent
	if parent == nil {
		return ErrNotResizable
	}
	idx := parent.indexOf(leaf)
	neighbour := idx + 1
	if neighbour >= len(parent.children) {
		neighbour = idx - 1
	}

	pair := parent.sizes[idx] + parent.sizes[neighbour]
	next := parent.sizes[idx] + delta
	lo, hi := MinProportion*pair, MaxProportion*pair
	if next < lo {
		next = lo
	}
	if next > hi {
		next = hi
	}
	parent.sizes[idx] = next
	parent.sizes[neighbour] = pair - next
	return nil
}

// Title returns the display name of the tab: the name of the document in the
// most recently active slot.
func (l *SplitLayout) Title() string {
	s := l.LastActive()
	if s == nil || s.doc == nil {
		return ""
	}
	return s.doc.Name()
}
