package window

import (
	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/layout"
)

// TabSnapshot describes one tab for the chrome.
type TabSnapshot struct {
	ID     layout.TabID        `yaml:"id" json:"id"`
	Title  string              `yaml:"title" json:"title"`
	Views  int                 `yaml:"views" json:"views"`
	Layout layout.NodeSnapshot `yaml:"layout" json:"layout"`
}

// Snapshot is the read model the chrome renders.
type Snapshot struct {
	Tabs            []TabSnapshot `yaml:"tabs" json:"tabs"`
	CurrentTab      int           `yaml:"current_tab" json:"current_tab"`
	CurrentView     layout.SlotID `yaml:"current_view,omitempty" json:"current_view,omitempty"`
	CurrentDocument document.ID   `yaml:"current_document,omitempty" json:"current_document,omitempty"`
	Documents       []document.ID `yaml:"documents" json:"documents"`
	CanGoBack       bool          `yaml:"can_go_back" json:"can_go_back"`
	CanGoForward    bool          `yaml:"can_go_forward" json:"can_go_forward"`
	TagDepth        int           `yaml:"tag_depth" json:"tag_depth"`
}

// Snapshot copies the current state of the window.
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		CurrentTab:   r.tabs.CurrentIndex(),
		CanGoBack:    r.jumps.CanGoBack(),
		CanGoForward: r.jumps.CanGoForward(),
		TagDepth:     r.tags.Len(),
	}
	if r.current != nil {
		s.CurrentView = r.current.ID()
		if doc := r.current.Document(); doc != nil {
			s.CurrentDocument = doc.ID()
		}
	}
	for _, tab := range r.tabs.Tabs() {
		s.Tabs = append(s.Tabs, TabSnapshot{
			ID:     tab.ID(),
			Title:  tab.Title(),
			Views:  tab.LeafCount(),
			Layout: tab.Snapshot(r.current),
		})
	}
	for _, doc := range r.docs.All() {
		s.Documents = append(s.Documents, doc.ID())
	}
	return s
}
