package symbols

import (
	"context"

	"github.com/dshills/winctl/internal/document"
)

// Source is the editing subsystem as seen by the cache.
type Source interface {
	// ContentVersion returns a number that changes whenever the document's
	// content changes.
	ContentVersion(id document.ID) int64

	// ParseSymbols returns the document's symbols. It may be called from a
	// worker goroutine.
	ParseSymbols(ctx context.Context, id document.ID) ([]Entry, error)
}

// Change describes a content change reported by the editing subsystem.
type Change struct {
	Document document.ID
	Version  int64

	// Closed is set when the document was discarded.
	Closed bool
}

// Subscription is an active change subscription.
type Subscription interface {
	Unsubscribe()
}

// Notifier delivers content change notifications.
type Notifier interface {
	Subscribe(fn func(Change)) Subscription
}

// Poster hands a function to the goroutine that owns window state.
type Poster interface {
	Post(fn func()) error
}
