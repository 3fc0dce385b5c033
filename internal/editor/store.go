// Package editor is a minimal in-memory editing subsystem: it owns document
// content, tracks content versions, reports changes and parses symbols.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/logging"
	"github.com/dshills/winctl/internal/symbols"
)

// ScratchScheme prefixes identifiers of buffers that have no file.
const ScratchScheme = "untitled://"

// ErrUnknownDocument is returned for identifiers the store does not hold.
var ErrUnknownDocument = errors.New("unknown document")

// Buffer is an open document.
type Buffer struct {
	id       document.ID
	name     string
	language string
	scratch  bool
}

// ID implements document.Document.
func (b *Buffer) ID() document.ID { return b.id }

// Name implements document.Document.
func (b *Buffer) Name() string { return b.name }

// Language returns the detected language identifier.
func (b *Buffer) Language() string { return b.language }

// IsScratch reports whether the buffer has no backing file.
func (b *Buffer) IsScratch() bool { return b.scratch }

type bufferState struct {
	buf     *Buffer
	content []byte
	version int64
}

// Store holds buffers keyed by document identifier. It is safe for concurrent
// use; subscribers are called without the store lock held.
type Store struct {
	mu      sync.RWMutex
	buffers map[document.ID]*bufferState
	subs    map[uint64]func(symbols.Change)
	nextSub uint64
	scratch int
	log     pslog.Logger
}

// NewStore creates an empty store.
func NewStore(log pslog.Logger) *Store {
	return &Store{
		buffers: make(map[document.ID]*bufferState),
		subs:    make(map[uint64]func(symbols.Change)),
		log:     logging.WithComponent(log, "editor"),
	}
}

// NormalizeID converts a path or file:// URL into the absolute path used as
// document identifier. Other schemes are returned unchanged.
func NormalizeID(raw string) (document.ID, error) {
	if raw == "" {
		return "", errors.New("empty document identifier")
	}
	if strings.HasPrefix(raw, "file://") {
		raw = strings.TrimPrefix(raw, "file://")
	} else if strings.Contains(raw, "://") {
		return document.ID(raw), nil
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", err
	}
	return document.ID(abs), nil
}

// Open returns the buffer for id, reading it from disk the first time.
func (s *Store) Open(ctx context.Context, id document.ID) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	norm, err := NormalizeID(string(id))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	st, ok := s.buffers[norm]
	s.mu.RUnlock()
	if ok {
		return st.buf, nil
	}
	if strings.HasPrefix(string(norm), ScratchScheme) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, norm)
	}

	content, err := os.ReadFile(string(norm))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", norm, err)
	}
	buf := s.Put(norm, content)
	s.log.Debug("document opened", "document", norm, "bytes", len(content))
	return buf, nil
}

// Put creates or replaces a buffer with the given content.
func (s *Store) Put(id document.ID, content []byte) *Buffer {
	s.mu.Lock()
	st, ok := s.buffers[id]
	if !ok {
		st = &bufferState{buf: &Buffer{
			id:       id,
			name:     document.DisplayName(id),
			language: DetectLanguage(string(id)),
			scratch:  strings.HasPrefix(string(id), ScratchScheme),
		}}
		s.buffers[id] = st
	}
	st.content = append([]byte(nil), content...)
	st.version++
	version := st.version
	buf := st.buf
	s.mu.Unlock()

	s.notify(symbols.Change{Document: id, Version: version})
	return buf
}

// NewScratch creates an empty buffer with no backing file.
func (s *Store) NewScratch() document.Document {
	s.mu.Lock()
	s.scratch++
	id := document.ID(fmt.Sprintf("%s%d", ScratchScheme, s.scratch))
	name := "Untitled"
	if s.scratch > 1 {
		name = fmt.Sprintf("Untitled %d", s.scratch)
	}
	buf := &Buffer{id: id, name: name, language: LangPlainText, scratch: true}
	s.buffers[id] = &bufferState{buf: buf, version: 1}
	s.mu.Unlock()

	s.notify(symbols.Change{Document: id, Version: 1})
	return buf
}

// Edit replaces the content of an open buffer and bumps its version.
func (s *Store) Edit(id document.ID, content []byte) error {
	s.mu.Lock()
	st, ok := s.buffers[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownDocument, id)
	}
	st.content = append([]byte(nil), content...)
	st.version++
	version := st.version
	s.mu.Unlock()

	s.notify(symbols.Change{Document: id, Version: version})
	return nil
}

// Close discards a buffer.
func (s *Store) Close(id document.ID) bool {
	s.mu.Lock()
	_, ok := s.buffers[id]
	delete(s.buffers, id)
	s.mu.Unlock()

	if ok {
		s.notify(symbols.Change{Document: id, Closed: true})
	}
	return ok
}

// Get returns an open buffer.
func (s *Store) Get(id document.ID) (*Buffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.buffers[id]
	if !ok {
		return nil, false
	}
	return st.buf, true
}

// Content returns a copy of the buffer content.
func (s *Store) Content(id document.ID) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.buffers[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), st.content...), true
}

// ContentVersion implements symbols.Source. Unknown documents report 0.
func (s *Store) ContentVersion(id document.ID) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.buffers[id]; ok {
		return st.version
	}
	return 0
}

// ParseSymbols implements symbols.Source.
func (s *Store) ParseSymbols(ctx context.Context, id document.ID) ([]symbols.Entry, error) {
	s.mu.RLock()
	st, ok := s.buffers[id]
	var content []byte
	var lang string
	if ok {
		content = append([]byte(nil), st.content...)
		lang = st.buf.language
	}
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, id)
	}
	return ParseSymbols(ctx, lang, content)
}

// ParseSymbols parses content with tree-sitter when a grammar exists for
// lang and with the line scanner otherwise.
func ParseSymbols(ctx context.Context, lang string, content []byte) ([]symbols.Entry, error) {
	if HasGrammar(lang) {
		return ParseTree(ctx, lang, content)
	}
	return ParseOutline(lang, content), nil
}

type subscription struct {
	store *Store
	id    uint64
}

// Unsubscribe removes the subscription.
func (s subscription) Unsubscribe() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.subs, s.id)
}

// Subscribe implements symbols.Notifier.
func (s *Store) Subscribe(fn func(symbols.Change)) symbols.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	s.subs[s.nextSub] = fn
	return subscription{store: s, id: s.nextSub}
}

func (s *Store) notify(ch symbols.Change) {
	s.mu.RLock()
	fns := make([]func(symbols.Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ch)
	}
}
