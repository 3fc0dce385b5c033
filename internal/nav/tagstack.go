package nav

// TagStack is an unbounded LIFO stack of saved locations.
type TagStack struct {
	entries []Location
}

// NewTagStack creates an empty tag stack.
func NewTagStack() *TagStack {
	return &TagStack{}
}

// Push saves a location on top of the stack.
func (s *TagStack) Push(loc Location) {
	s.entries = append(s.entries, loc)
}

// Pop removes and returns the top location. An empty stack returns false.
func (s *TagStack) Pop() (Location, bool) {
	if len(s.entries) == 0 {
		return Location{}, false
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return top, true
}

// Peek returns the top location without removing it.
func (s *TagStack) Peek() (Location, bool) {
	if len(s.entries) == 0 {
		return Location{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Len returns the stack depth.
func (s *TagStack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the stack, bottom first.
func (s *TagStack) Entries() []Location {
	out := make([]Location, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear empties the stack.
func (s *TagStack) Clear() {
	s.entries = nil
}
