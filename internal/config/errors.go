package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is matched by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError describes one invalid setting.
type ValidationError struct {
	// Path is the dotted setting path (e.g., "jumplist.capacity").
	Path string
	// Value is the rejected value.
	Value string
	// Message explains the constraint.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s = %q: %s", e.Path, e.Value, e.Message)
}

// Is reports ErrInvalidConfig.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// ValidationErrors collects every invalid setting of a configuration.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Is reports ErrInvalidConfig.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Unwrap exposes the individual errors to errors.As.
func (e ValidationErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, v := range e {
		out[i] = v
	}
	return out
}
