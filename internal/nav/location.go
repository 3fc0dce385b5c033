package nav

import (
	"fmt"

	"github.com/dshills/winctl/internal/document"
)

// Position is a zero-based line/column pair inside a document.
type Position struct {
	Line   int
	Column int
}

// Location identifies a point of interest in a document.
// Location is a value type; compare with == or Equal.
type Location struct {
	Resource document.ID
	Line     int
	Column   int
}

// NewLocation creates a location. Negative coordinates are clamped to zero.
func NewLocation(resource document.ID, line, column int) Location {
	if line < 0 {
		line = 0
	}
	if column < 0 {
		column = 0
	}
	return Location{Resource: resource, Line: line, Column: column}
}

// At creates a location from a document ID and a position.
func At(resource document.ID, pos Position) Location {
	return NewLocation(resource, pos.Line, pos.Column)
}

// Position returns the line/column part of the location.
func (l Location) Position() Position {
	return Position{Line: l.Line, Column: l.Column}
}

// IsZero reports whether the location has no resource.
func (l Location) IsZero() bool {
	return l.Resource == ""
}

// Equal reports whether two locations are identical.
func (l Location) Equal(other Location) bool {
	return l == other
}

// String formats the location as resource:line:column with one-based numbers.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Resource, l.Line+1, l.Column+1)
}
