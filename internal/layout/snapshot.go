package layout

import (
	"fmt"
	"strings"

	"github.com/dshills/winctl/internal/document"
)

// NodeSnapshot is a read-only copy of a split tree for presentation.
type NodeSnapshot struct {
	Slot        SlotID         `yaml:"slot,omitempty" json:"slot,omitempty"`
	Document    document.ID    `yaml:"document,omitempty" json:"document,omitempty"`
	Active      bool           `yaml:"active,omitempty" json:"active,omitempty"`
	Orientation string         `yaml:"orientation,omitempty" json:"orientation,omitempty"`
	Sizes       []float64      `yaml:"sizes,omitempty" json:"sizes,omitempty"`
	Children    []NodeSnapshot `yaml:"children,omitempty" json:"children,omitempty"`
}

// Snapshot copies the tree. active marks the slot to flag as current; it may
// be nil.
func (l *SplitLayout) Snapshot(active *ViewSlot) NodeSnapshot {
	return snapshotNode(l.root, active)
}

func snapshotNode(n *Node, active *ViewSlot) NodeSnapshot {
	if n.IsLeaf() {
		snap := NodeSnapshot{Slot: n.slot.id, Active: n.slot == active}
		if n.slot.doc != nil {
			snap.Document = n.slot.doc.ID()
		}
		return snap
	}
	snap := NodeSnapshot{
		Orientation: n.orientation.String(),
		Sizes:       n.Sizes(),
		Children:    make([]NodeSnapshot, 0, len(n.children)),
	}
	for _, c := range n.children {
		snap.Children = append(snap.Children, snapshotNode(c, active))
	}
	return snap
}

// String renders the snapshot as an indented tree.
func (s NodeSnapshot) String() string {
	var b strings.Builder
	s.write(&b, 0, 1.0)
	return b.String()
}

func (s NodeSnapshot) write(b *strings.Builder, depth int, share float64) {
	indent := strings.Repeat("  ", depth)
	if len(s.Children) == 0 {
		marker := " "
		if s.Active {
			marker = "*"
		}
		fmt.Fprintf(b, "%s%s %s (%.2f)\n", indent, marker, document.DisplayName(s.Document), share)
		return
	}
	fmt.Fprintf(b, "%s%s (%.2f)\n", indent, s.Orientation, share)
	for i, c := range s.Children {
		c.write(b, depth+1, s.Sizes[i])
	}
}
