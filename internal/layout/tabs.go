package layout

import "errors"

// ErrTabIndex indicates a tab index outside the current bounds.
var ErrTabIndex = errors.New("tab index out of range")

// TabSet is the ordered collection of tabs of a window.
//
// Whenever the set is non-empty the current index is valid. An empty set has
// current index -1.
type TabSet struct {
	tabs    []*SplitLayout
	current int
}

// NewTabSet creates an empty tab set.
func NewTabSet() *TabSet {
	return &TabSet{current: -1}
}

// Len returns the number of tabs.
func (t *TabSet) Len() int {
	return len(t.tabs)
}

// Tabs returns a copy of the tab list.
func (t *TabSet) Tabs() []*SplitLayout {
	out := make([]*SplitLayout, len(t.tabs))
	copy(out, t.tabs)
	return out
}

// At returns the tab at index.
func (t *TabSet) At(index int) (*SplitLayout, error) {
	if index < 0 || index >= len(t.tabs) {
		return nil, ErrTabIndex
	}
	return t.tabs[index], nil
}

// CurrentIndex returns the current tab index, or -1 when empty.
func (t *TabSet) CurrentIndex() int {
	return t.current
}

// Current returns the current tab, or nil when empty.
func (t *TabSet) Current() *SplitLayout {
	if t.current < 0 {
		return nil
	}
	return t.tabs[t.current]
}

// Append adds a tab after the last one and returns its index. The current
// tab does not change unless the set was empty.
func (t *TabSet) Append(tab *SplitLayout) int {
	t.tabs = append(t.tabs, tab)
	if t.current < 0 {
		t.current = 0
	}
	return len(t.tabs) - 1
}

// Select makes the tab at index current.
func (t *TabSet) Select(index int) error {
	if index < 0 || index >= len(t.tabs) {
		return ErrTabIndex
	}
	t.current = index
	return nil
}

// Index returns the position of tab, or -1.
func (t *TabSet) Index(tab *SplitLayout) int {
	for i, cur := range t.tabs {
		if cur == tab {
			return i
		}
	}
	return -1
}

// Remove deletes a tab. If it was current, the tab that slides into its
// position (or the new last tab) becomes current.
func (t *TabSet) Remove(tab *SplitLayout) bool {
	idx := t.Index(tab)
	if idx < 0 {
		return false
	}
	t.tabs = append(t.tabs[:idx], t.tabs[idx+1:]...)

	switch {
	case len(t.tabs) == 0:
		t.current = -1
	case idx < t.current:
		t.current--
	case t.current >= len(t.tabs):
		t.current = len(t.tabs) - 1
	}
	return true
}

// Find returns the tab containing slot and its index.
func (t *TabSet) Find(slot *ViewSlot) (*SplitLayout, int) {
	for i, tab := range t.tabs {
		if tab.Contains(slot) {
			return tab, i
		}
	}
	return nil, -1
}
