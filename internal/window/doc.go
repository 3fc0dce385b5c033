// Package window implements the view registry of an editor window.
//
// The Registry owns the ordered list of open documents, the tab set and the
// active view, and the window's navigation history (a jump list and a tag
// stack). Every navigation action enters through it:
//
//	reg := window.New(window.Options{
//	    Policy:      window.Policy{LastView: window.LastViewPlaceholder},
//	    Opener:      store,
//	    Placeholder: store,
//	    Symbols:     cache,
//	})
//	slot, _ := reg.OpenDocument(doc)
//	_, _ = reg.SplitCurrent(layout.Vertical)
//	_, _ = reg.GotoLocation(ctx, nav.NewLocation(id, 42, 0))
//	_, _, _ = reg.JumpBack(ctx)
//
// Structural failures are returned as *OperationError wrapping one of the
// sentinel errors. Empty history is not an error: JumpBack, JumpForward and
// PopTag report it with a false result.
//
// The Registry is not goroutine-safe and is meant to be driven from a single
// UI goroutine.
package window
