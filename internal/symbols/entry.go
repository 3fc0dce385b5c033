package symbols

import (
	"fmt"
	"sort"
)

// Kind classifies a symbol entry. Values follow the LSP SymbolKind numbering
// so entries from a language server can be stored without translation.
type Kind int

// Symbol kinds.
const (
	KindFile        Kind = 1
	KindModule      Kind = 2
	KindNamespace   Kind = 3
	KindPackage     Kind = 4
	KindClass       Kind = 5
	KindMethod      Kind = 6
	KindProperty    Kind = 7
	KindField       Kind = 8
	KindConstructor Kind = 9
	KindEnum        Kind = 10
	KindInterface   Kind = 11
	KindFunction    Kind = 12
	KindVariable    Kind = 13
	KindConstant    Kind = 14
	KindStruct      Kind = 23
	KindHeading     Kind = 100
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "File"
	case KindModule:
		return "Module"
	case KindNamespace:
		return "Namespace"
	case KindPackage:
		return "Package"
	case KindClass:
		return "Class"
	case KindMethod:
		return "Method"
	case KindProperty:
		return "Property"
	case KindField:
		return "Field"
	case KindConstructor:
		return "Constructor"
	case KindEnum:
		return "Enum"
	case KindInterface:
		return "Interface"
	case KindFunction:
		return "Function"
	case KindVariable:
		return "Variable"
	case KindConstant:
		return "Constant"
	case KindStruct:
		return "Struct"
	case KindHeading:
		return "Heading"
	default:
		return "Unknown"
	}
}

// Icon returns a one-letter abbreviation for outline displays.
func (k Kind) Icon() string {
	switch k {
	case KindClass:
		return "C"
	case KindMethod:
		return "m"
	case KindField, KindProperty:
		return "f"
	case KindFunction, KindConstructor:
		return "F"
	case KindInterface:
		return "I"
	case KindStruct:
		return "S"
	case KindVariable:
		return "v"
	case KindConstant:
		return "c"
	case KindHeading:
		return "#"
	case KindPackage, KindModule, KindNamespace:
		return "M"
	default:
		return "?"
	}
}

// Entry is a named symbol in a document. Line and Column are zero-based.
type Entry struct {
	Name      string `yaml:"name" json:"name"`
	Kind      Kind   `yaml:"kind" json:"kind"`
	Line      int    `yaml:"line" json:"line"`
	Column    int    `yaml:"column" json:"column"`
	Container string `yaml:"container,omitempty" json:"container,omitempty"`
}

// String formats the entry as "Name (Kind) line:col" with one-based positions.
func (e Entry) String() string {
	return fmt.Sprintf("%s (%s) %d:%d", e.Name, e.Kind, e.Line+1, e.Column+1)
}

// SortBySource orders entries by line, then column, then name.
func SortBySource(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return lessBySource(entries[i], entries[j])
	})
}

func lessBySource(a, b Entry) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	if a.Column != b.Column {
		return a.Column < b.Column
	}
	return a.Name < b.Name
}

// Enclosing returns the last entry that starts on or before line, which is the
// symbol an outline should highlight for a caret on that line. entries must be
// in source order.
func Enclosing(entries []Entry, line int) (Entry, bool) {
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].Line > line
	})
	if idx == 0 {
		return Entry{}, false
	}
	return entries[idx-1], true
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
