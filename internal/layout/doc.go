// Package layout provides view slots, split trees and tab sets.
//
// Each tab is a SplitLayout: a tree whose leaves are ViewSlots and whose
// internal nodes carry an Orientation and one proportion per child. Sibling
// proportions always sum to one. A layout never has zero leaves; removing the
// only leaf fails with ErrLastLeaf and the caller decides what to do.
//
// The types here are plain data structures with no knowledge of documents
// beyond their identity. Ownership rules (no duplicate panes per tab, last
// view policy, history recording) live in the window package.
package layout
