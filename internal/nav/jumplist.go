package nav

// DefaultJumpListCapacity is used when a non-positive capacity is given.
const DefaultJumpListCapacity = 100

// JumpList is a bounded back/forward navigation history.
//
// The cursor is the index of the current entry. An empty list has cursor 0,
// so the cursor always lies in [0, Len()].
type JumpList struct {
	entries  []Location
	cursor   int
	capacity int

	// OnChange is called after any mutation that may change back/forward
	// availability. It may be nil.
	OnChange func(canBack, canForward bool)
}

// NewJumpList creates a jump list that keeps at most capacity entries.
func NewJumpList(capacity int) *JumpList {
	if capacity <= 0 {
		capacity = DefaultJumpListCapacity
	}
	return &JumpList{capacity: capacity}
}

// Push records a location.
//
// Entries after the cursor are discarded, the location is appended and the
// cursor moves to the new tail. Pushing the entry already under the cursor is
// a no-op. When the list exceeds its capacity the oldest entries are dropped.
func (j *JumpList) Push(loc Location) {
	if len(j.entries) > 0 && j.entries[j.cursor] == loc {
		return
	}

	if len(j.entries) > 0 {
		j.entries = j.entries[:j.cursor+1]
	}
	j.entries = append(j.entries, loc)

	if excess := len(j.entries) - j.capacity; excess > 0 {
		j.entries = append(j.entries[:0:0], j.entries[excess:]...)
	}
	j.cursor = len(j.entries) - 1
	j.changed()
}

// Back moves the cursor one entry towards the head and returns that entry.
// At the head it returns false and leaves the cursor unchanged.
func (j *JumpList) Back() (Location, bool) {
	if !j.CanGoBack() {
		return Location{}, false
	}
	j.cursor--
	j.changed()
	return j.entries[j.cursor], true
}

// Forward moves the cursor one entry towards the tail and returns that entry.
// At the tail it returns false and leaves the cursor unchanged.
func (j *JumpList) Forward() (Location, bool) {
	if !j.CanGoForward() {
		return Location{}, false
	}
	j.cursor++
	j.changed()
	return j.entries[j.cursor], true
}

// CanGoBack reports whether Back would move.
func (j *JumpList) CanGoBack() bool {
	return j.cursor > 0
}

// CanGoForward reports whether Forward would move.
func (j *JumpList) CanGoForward() bool {
	return j.cursor < len(j.entries)-1
}

// Current returns the entry under the cursor.
func (j *JumpList) Current() (Location, bool) {
	if len(j.entries) == 0 {
		return Location{}, false
	}
	return j.entries[j.cursor], true
}

// Cursor returns the cursor index.
func (j *JumpList) Cursor() int {
	return j.cursor
}

// Len returns the number of entries.
func (j *JumpList) Len() int {
	return len(j.entries)
}

// Capacity returns the maximum number of entries.
func (j *JumpList) Capacity() int {
	return j.capacity
}

// SetCapacity changes the maximum number of entries, trimming the oldest
// entries if needed. The cursor keeps pointing at the same entry when it
// survives the trim.
func (j *JumpList) SetCapacity(capacity int) {
	if capacity <= 0 {
		capacity = DefaultJumpListCapacity
	}
	j.capacity = capacity
	excess := len(j.entries) - capacity
	if excess <= 0 {
		return
	}
	j.entries = append(j.entries[:0:0], j.entries[excess:]...)
	j.cursor -= excess
	if j.cursor < 0 {
		j.cursor = 0
	}
	j.changed()
}

// Entries returns a copy of all entries, oldest first.
func (j *JumpList) Entries() []Location {
	out := make([]Location, len(j.entries))
	copy(out, j.entries)
	return out
}

// Clear removes all entries.
func (j *JumpList) Clear() {
	j.entries = nil
	j.cursor = 0
	j.changed()
}

func (j *JumpList) changed() {
	if j.OnChange != nil {
		j.OnChange(j.CanGoBack(), j.CanGoForward())
	}
}
