package window

import (
	"context"
	"strings"

	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/layout"
	"github.com/dshills/winctl/internal/symbols"
)

// LastViewPolicy decides what closing the last view of the last tab does.
type LastViewPolicy int

const (
	// LastViewRefuse fails the close with ErrIllegalClose.
	LastViewRefuse LastViewPolicy = iota

	// LastViewPlaceholder rebinds the view to a fresh placeholder document.
	LastViewPlaceholder
)

// String returns the policy name.
func (p LastViewPolicy) String() string {
	switch p {
	case LastViewRefuse:
		return "refuse"
	case LastViewPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// ParseLastViewPolicy parses "refuse" or "placeholder".
func ParseLastViewPolicy(s string) (LastViewPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "refuse", "":
		return LastViewRefuse, true
	case "placeholder", "empty":
		return LastViewPlaceholder, true
	default:
		return LastViewRefuse, false
	}
}

// Policy groups the behavior switches of a registry.
type Policy struct {
	LastView LastViewPolicy
}

// Opener resolves a resource identifier to a document handle.
type Opener interface {
	Open(ctx context.Context, id document.ID) (document.Document, error)
}

// PlaceholderFactory creates empty documents used when the last view must not
// disappear.
type PlaceholderFactory interface {
	NewScratch() document.Document
}

// SymbolIndex is the symbol cache as used by the registry.
type SymbolIndex interface {
	Symbols(ctx context.Context, id document.ID, filter string) ([]symbols.Entry, error)
	SymbolAt(ctx context.Context, id document.ID, line int) (symbols.Entry, bool, error)
	Invalidate(id document.ID)
}

// Listener receives read-model change notifications for the window chrome.
// Methods are called on the goroutine that mutated the registry.
type Listener interface {
	JumpListChanged(canBack, canForward bool)
	CurrentViewChanged(slot *layout.ViewSlot)
	// TabsChanged reports a change of the tab list or of a tab's split tree.
	TabsChanged()
}

// ListenerFuncs adapts optional functions to Listener.
type ListenerFuncs struct {
	OnJumpList    func(canBack, canForward bool)
	OnCurrentView func(slot *layout.ViewSlot)
	OnTabs        func()
}

// JumpListChanged implements Listener.
func (f ListenerFuncs) JumpListChanged(canBack, canForward bool) {
	if f.OnJumpList != nil {
		f.OnJumpList(canBack, canForward)
	}
}

// CurrentViewChanged implements Listener.
func (f ListenerFuncs) CurrentViewChanged(slot *layout.ViewSlot) {
	if f.OnCurrentView != nil {
		f.OnCurrentView(slot)
	}
}

// TabsChanged implements Listener.
func (f ListenerFuncs) TabsChanged() {
	if f.OnTabs != nil {
		f.OnTabs()
	}
}

// Options configures a Registry.
type Options struct {
	Policy Policy

	// JumpListCapacity bounds the jump list. Defaults to
	// nav.DefaultJumpListCapacity.
	JumpListCapacity int

	Opener      Opener
	Placeholder PlaceholderFactory
	Symbols     SymbolIndex
	Logger      pslog.Logger
}
