// Package document defines the non-owning document handle used by the window
// core and the ordered open-document list.
//
// Documents are created and destroyed by the editing subsystem. The window core
// only registers and unregisters them; closing the last view of a document never
// destroys it.
package document

import (
	"path/filepath"
	"strings"
)

// ID identifies a document by its resource identifier (a URL or absolute path).
type ID string

// String returns the identifier as a string.
func (id ID) String() string {
	return string(id)
}

// Document is an opaque handle to editable content owned by the editing subsystem.
type Document interface {
	// ID returns the resource identifier. Two handles with the same ID refer to
	// the same document.
	ID() ID

	// Name returns the display name (usually the base file name).
	Name() string
}

// DisplayName derives a display name from an identifier.
func DisplayName(id ID) string {
	s := string(id)
	if s == "" {
		return "Untitled"
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	return filepath.Base(s)
}

// Ref is a minimal Document implementation for callers that only have an ID.
type Ref struct {
	Resource ID
	Title    string
}

// NewRef creates a Ref with a name derived from the identifier.
func NewRef(id ID) Ref {
	return Ref{Resource: id, Title: DisplayName(id)}
}

// ID implements Document.
func (r Ref) ID() ID {
	return r.Resource
}

// Name implements Document.
func (r Ref) Name() string {
	if r.Title == "" {
		return DisplayName(r.Resource)
	}
	return r.Title
}
