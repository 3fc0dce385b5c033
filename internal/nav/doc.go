// Package nav provides the navigation history structures of an editor window.
//
// # Locations
//
// A Location is an immutable (resource, line, column) tuple. Lines and columns
// are zero-based, matching the renderer and the editing subsystem.
//
// # Jump List
//
// JumpList is a bounded back/forward history, analogous to browser history:
//
//	jl := nav.NewJumpList(100)
//	jl.Push(a)
//	jl.Push(b)
//	loc, ok := jl.Back() // a, true
//	loc, ok = jl.Forward() // b, true
//
// Pushing while the cursor is not at the tail discards the abandoned forward
// entries before appending.
//
// # Tag Stack
//
// TagStack is an unbounded LIFO of locations used for "go to definition, then
// return". It spans documents and is never cleared implicitly.
//
// Neither structure is safe for concurrent use. Both are owned by the window
// registry and mutated on the UI goroutine only.
package nav
