package layout

import (
	"math"
)

// Orientation describes how a split arranges its children.
type Orientation int

const (
	// Horizontal stacks children top to bottom (the divider is horizontal).
	Horizontal Orientation = iota
	// Vertical arranges children left to right (the divider is vertical).
	Vertical
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// ParseOrientation parses "horizontal"/"h" or "vertical"/"v".
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "horizontal", "h", "hsplit", "split":
		return Horizontal, true
	case "vertical", "v", "vsplit":
		return Vertical, true
	default:
		return Horizontal, false
	}
}

// Proportion bounds used when resizing.
const (
	MinProportion = 0.05
	MaxProportion = 0.95
)

// sumTolerance is the accepted drift of sibling proportions from 1.0.
const sumTolerance = 1e-9

// Node is a node of a split tree. A leaf holds a view slot; an internal node
// holds two or more children and one proportion per child.
type Node struct {
	parent *Node

	// Leaf
	slot *ViewSlot

	// Internal
	orientation Orientation
	children    []*Node
	sizes       []float64
}

func newLeaf(slot *ViewSlot) *Node {
	n := &Node{slot: slot}
	slot.node = n
	return n
}

// IsLeaf reports whether the node holds a view slot.
func (n *Node) IsLeaf() bool {
	return n.slot != nil
}

// Slot returns the leaf's slot, or nil for internal nodes.
func (n *Node) Slot() *ViewSlot {
	return n.slot
}

// Orientation returns the split orientation of an internal node.
func (n *Node) Orientation() Orientation {
	return n.orientation
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Sizes returns a copy of the child proportions.
func (n *Node) Sizes() []float64 {
	out := make([]float64, len(n.sizes))
	copy(out, n.sizes)
	return out
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// leaves appends the slots of the subtree in reading order.
func (n *Node) leaves(out []*ViewSlot) []*ViewSlot {
	if n.IsLeaf() {
		return append(out, n.slot)
	}
	for _, c := range n.children {
		out = c.leaves(out)
	}
	return out
}

// equalize sets every sibling group in the subtree to equal shares.
func (n *Node) equalize() {
	if n.IsLeaf() {
		return
	}
	share := 1.0 / float64(len(n.children))
	for i := range n.sizes {
		n.sizes[i] = share
	}
	for _, c := range n.children {
		c.equalize()
	}
}

// rescale scales the proportions so they sum to exactly one. Used after a
// child is removed from a group that still has siblings.
func (n *Node) rescale() {
	total := 0.0
	for _, s := range n.sizes {
		total += s
	}
	if total <= 0 || math.IsNaN(total) {
		n.equalize()
		return
	}
	for i := range n.sizes {
		n.sizes[i] /= total
	}
}

// proportionsValid reports whether every group in the subtree sums to one.
func (n *Node) proportionsValid() bool {
	if n.IsLeaf() {
		return true
	}
	if len(n.children) < 2 || len(n.sizes) != len(n.children) {
		return false
	}
	total := 0.0
	for _, s := range n.sizes {
		if s <= 0 || s >= 1 {
			return false
		}
		total += s
	}
	if math.Abs(total-1.0) > sumTolerance {
		return false
	}
	for _, c := range n.children {
		if !c.proportionsValid() {
			return false
		}
	}
	return true
}
