package symbols

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/logging"
)

// DefaultMaxFiltered is the default number of filtered views kept across all
// documents.
const DefaultMaxFiltered = 256

// Options configures a Cache.
type Options struct {
	// Match is the filter policy. Defaults to MatchSubstring.
	Match MatchPolicy

	// MaxFiltered bounds the number of cached filtered views. The least
	// recently used view is evicted first.
	MaxFiltered int

	// Poster receives Refresh commits. When nil, commits run on the worker
	// goroutine.
	Poster Poster

	// Logger receives stale-result and parse-failure messages.
	Logger pslog.Logger
}

// Stats reports cache activity.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Parses        uint64
	Stale         uint64
	Invalidations uint64

	// Views and Documents are the current number of cached filtered views and
	// base parses.
	Views     int
	Documents int
}

type viewKey struct {
	doc    document.ID
	filter string
}

type view struct {
	version int64
	entries []Entry
}

type baseParse struct {
	version int64
	entries []Entry
}

// fence identifies the cache state a parse started from. A parse commits only
// if neither the document generation nor the cache epoch moved since.
type fence struct {
	gen   uint64
	epoch uint64
}

// Cache maps (document, filter) to filtered symbol lists. It is safe for
// concurrent use; Source methods are never called with the cache lock held.
type Cache struct {
	src   Source
	log   pslog.Logger
	post  Poster
	max   int
	group singleflight.Group

	mu     sync.Mutex
	policy MatchPolicy
	base   map[document.ID]baseParse
	gen    map[document.ID]uint64
	epoch  uint64
	views  *lru.Cache[viewKey, *view]
	stats  Stats
}

// NewCache creates a cache over src.
func NewCache(src Source, opts Options) *Cache {
	if opts.MaxFiltered <= 0 {
		opts.MaxFiltered = DefaultMaxFiltered
	}
	if opts.Match == "" {
		opts.Match = MatchSubstring
	}
	views, _ := lru.New[viewKey, *view](opts.MaxFiltered) // only fails for a non-positive size
	return &Cache{
		src:    src,
		log:    logging.WithComponent(opts.Logger, "symbols"),
		post:   opts.Poster,
		max:    opts.MaxFiltered,
		policy: opts.Match,
		base:   make(map[document.ID]baseParse),
		gen:    make(map[document.ID]uint64),
		views:  views,
	}
}

// MatchPolicy returns the active filter policy.
func (c *Cache) MatchPolicy() MatchPolicy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// SetMatchPolicy changes the filter policy. Cached filtered views are dropped;
// base parses are kept.
func (c *Cache) SetMatchPolicy(p MatchPolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == c.policy {
		return
	}
	c.policy = p
	c.views.Purge()
}

// MaxFiltered returns the bound on cached filtered views.
func (c *Cache) MaxFiltered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.max
}

// SetMaxFiltered changes the bound on cached filtered views, evicting the
// least recently used views that no longer fit. Non-positive values select
// DefaultMaxFiltered.
func (c *Cache) SetMaxFiltered(n int) {
	if n <= 0 {
		n = DefaultMaxFiltered
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.max = n
	c.views.Resize(n)
}

func normalizeFilter(filter string) string {
	return strings.ToLower(strings.TrimSpace(filter))
}

// Symbols returns the entries of doc matching filter. A cached result is
// returned only when it was computed at the document's current version.
func (c *Cache) Symbols(ctx context.Context, id document.ID, filter string) ([]Entry, error) {
	version := c.src.ContentVersion(id)
	key := viewKey{doc: id, filter: normalizeFilter(filter)}

	c.mu.Lock()
	if v, ok := c.views.Get(key); ok && v.version == version {
		c.stats.Hits++
		out := cloneEntries(v.entries)
		c.mu.Unlock()
		return out, nil
	}
	c.stats.Misses++
	f := c.fenceLocked(id)
	policy := c.policy
	base, ok := c.base[id]
	c.mu.Unlock()

	if !ok || base.version != version {
		entries, err := c.parse(ctx, id, version)
		if err != nil {
			return nil, err
		}
		base = baseParse{version: version, entries: entries}
	}

	result := Filter(base.entries, key.filter, policy)
	c.commit(key, f, base, result)
	return cloneEntries(result), nil
}

// SymbolAt returns the symbol an outline should select for a caret on line.
func (c *Cache) SymbolAt(ctx context.Context, id document.ID, line int) (Entry, bool, error) {
	entries, err := c.Symbols(ctx, id, "")
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := Enclosing(entries, line)
	return e, ok, nil
}

// Refresh re-parses doc on a worker goroutine and delivers the filtered
// result through the Poster. A result whose document changed while parsing
// is discarded and deliver is not called.
func (c *Cache) Refresh(ctx context.Context, id document.ID, filter string, deliver func([]Entry)) {
	version := c.src.ContentVersion(id)
	key := viewKey{doc: id, filter: normalizeFilter(filter)}

	c.mu.Lock()
	f := c.fenceLocked(id)
	policy := c.policy
	c.mu.Unlock()

	go func() {
		entries, err := c.parse(ctx, id, version)
		if err != nil {
			c.log.Warn("symbol parse failed", "document", id, "err", err)
			return
		}
		base := baseParse{version: version, entries: entries}
		result := Filter(entries, key.filter, policy)

		apply := func() {
			if !c.commit(key, f, base, result) {
				return
			}
			if deliver != nil {
				deliver(cloneEntries(result))
			}
		}
		if c.post == nil {
			apply()
			return
		}
		if err := c.post.Post(apply); err != nil {
			c.log.Warn("cannot post symbol result", "document", id, "err", err)
		}
	}()
}

// parse runs one parse per (document, version) no matter how many callers
// ask concurrently. The returned slice is shared and must not be modified.
func (c *Cache) parse(ctx context.Context, id document.ID, version int64) ([]Entry, error) {
	sfKey := string(id) + "@" + strconv.FormatInt(version, 10)
	v, err, _ := c.group.Do(sfKey, func() (any, error) {
		c.mu.Lock()
		c.stats.Parses++
		c.mu.Unlock()

		entries, err := c.src.ParseSymbols(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = cloneEntries(entries)
		SortBySource(entries)
		return entries, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse symbols for %s: %w", id, err)
	}
	return v.([]Entry), nil //nolint:errcheck // group only returns []Entry
}

func (c *Cache) fenceLocked(id document.ID) fence {
	return fence{gen: c.gen[id], epoch: c.epoch}
}

// commit stores a parse and its filtered view if neither the content version
// nor the fence moved since the parse started.
func (c *Cache) commit(key viewKey, f fence, base baseParse, result []Entry) bool {
	current := c.src.ContentVersion(key.doc)

	c.mu.Lock()
	defer c.mu.Unlock()

	if current != base.version || c.fenceLocked(key.doc) != f {
		c.stats.Stale++
		c.log.Debug("discarding stale symbol result",
			"document", key.doc,
			"version", base.version,
			"current", current,
		)
		return false
	}

	c.base[key.doc] = base
	c.views.Add(key, &view{version: base.version, entries: result})
	return true
}

// Invalidate removes every cached entry for doc. In-flight parses started
// before the call will not be committed.
func (c *Cache) Invalidate(id document.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen[id]++
	c.stats.Invalidations++
	delete(c.base, id)
	for _, key := range c.views.Keys() {
		if key.doc == id {
			c.views.Remove(key)
		}
	}
}

// Clear removes every cached entry. In-flight parses for any document started
// before the call will not be committed.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.stats.Invalidations++
	c.base = make(map[document.ID]baseParse)
	c.views.Purge()
}

// Watch invalidates a document every time the notifier reports a change.
// The then functions run after the invalidation, in order.
func (c *Cache) Watch(n Notifier, then ...func(Change)) Subscription {
	return n.Subscribe(func(ch Change) {
		c.Invalidate(ch.Document)
		for _, fn := range then {
			fn(ch)
		}
	})
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Views = c.views.Len()
	s.Documents = len(c.base)
	return s
}
