package document

import "strings"

// List is the ordered open-document list of a window.
//
// Documents appear in registration order. Filtering produces a derived slice
// and never reorders or mutates the list. List is not safe for concurrent use;
// it is owned by the window registry on the UI goroutine.
type List struct {
	docs  map[ID]Document
	order []ID
}

// NewList creates an empty document list.
func NewList() *List {
	return &List{
		docs:  make(map[ID]Document),
		order: make([]ID, 0),
	}
}

// Add registers a document. It returns false if a document with the same ID
// is already registered; the existing handle is kept.
func (l *List) Add(doc Document) bool {
	if doc == nil {
		return false
	}
	id := doc.ID()
	if _, exists := l.docs[id]; exists {
		return false
	}
	l.docs[id] = doc
	l.order = append(l.order, id)
	return true
}

// Remove unregisters a document by ID. Returns false if it was not registered.
func (l *List) Remove(id ID) bool {
	if _, exists := l.docs[id]; !exists {
		return false
	}
	delete(l.docs, id)
	for i, cur := range l.order {
		if cur == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the registered document with the given ID.
func (l *List) Get(id ID) (Document, bool) {
	doc, ok := l.docs[id]
	return doc, ok
}

// Contains reports whether a document with the given ID is registered.
func (l *List) Contains(id ID) bool {
	_, ok := l.docs[id]
	return ok
}

// Len returns the number of registered documents.
func (l *List) Len() int {
	return len(l.order)
}

// All returns the registered documents in order. The returned slice is a copy.
func (l *List) All() []Document {
	out := make([]Document, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.docs[id])
	}
	return out
}

// Filter returns the documents whose name or identifier contains filter,
// compared case-insensitively, in list order. An empty filter returns All.
func (l *List) Filter(filter string) []Document {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return l.All()
	}
	var out []Document
	for _, id := range l.order {
		doc := l.docs[id]
		if strings.Contains(strings.ToLower(doc.Name()), filter) ||
			strings.Contains(strings.ToLower(string(id)), filter) {
			out = append(out, doc)
		}
	}
	return out
}

// Index returns the position of the document in the list, or -1.
func (l *List) Index(id ID) int {
	for i, cur := range l.order {
		if cur == id {
			return i
		}
	}
	return -1
}
