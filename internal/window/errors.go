package window

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	// ErrViewNotFound indicates a view slot that is not part of the window.
	ErrViewNotFound = errors.New("view not found")

	// ErrIndexOutOfRange indicates a tab index outside the current bounds.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrIllegalClose indicates an attempt to close the last remaining view
	// while the policy forbids it.
	ErrIllegalClose = errors.New("cannot close last view")

	// ErrCannotMoveLastView indicates an attempt to move the only view of a
	// tab into a new tab.
	ErrCannotMoveLastView = errors.New("cannot move last view in single-leaf tab")

	// ErrNoCurrentView indicates an operation that needs a current view on an
	// empty window.
	ErrNoCurrentView = errors.New("no current view")

	// ErrNoDocument indicates a missing or unresolvable document.
	ErrNoDocument = errors.New("no document")
)

// OperationError records the registry operation and target that failed.
type OperationError struct {
	Op     string // Operation name (e.g., "close view", "select tab")
	Target string // Target of the operation (e.g., document, tab index)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements errors.Is for OperationError.
// Matches both the wrapper itself and the wrapped error.
func (e *OperationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*OperationError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}

// IsStructural reports whether err is one of the structural registry errors
// that callers are expected to surface to the user.
func IsStructural(err error) bool {
	return errors.Is(err, ErrViewNotFound) ||
		errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrIllegalClose) ||
		errors.Is(err, ErrCannotMoveLastView)
}
