// Package symbols caches filtered symbol lists per document.
//
// A Cache holds, for each document, the last full parse together with the
// content version it was taken at, and any number of filtered views of that
// parse keyed by filter string. Every lookup compares the stored version with
// the Source's current version; a mismatch is a miss. Invalidate drops every
// entry for a document at once.
//
// Parsing can be pushed to a worker with Refresh. Its result is committed on
// the owner goroutine through a Poster, and only if the document has not
// changed since the parse started:
//
//	cache := symbols.NewCache(store, symbols.Options{Poster: loop})
//	sub := cache.Watch(store)
//	defer sub.Unsubscribe()
//
//	cache.Refresh(ctx, id, "", func(entries []symbols.Entry) {
//	    outline.Show(entries)
//	})
package symbols
