// models/errors.go
package models

import "fmt"

// The three error kinds every operation can fail with. All are user-facing
// and non-fatal: the caller surfaces the message and leaves state untouched.

// ValidationError reports malformed, missing or out-of-range input.
// Validators stop at the first violated rule, so a ValidationError always
// describes exactly one problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StateError reports an operation that is invalid for the current lifecycle
// state, such as assigning an asset that is not in stock.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

func NewStateError(format string, args ...interface{}) *StateError {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}

// PolicyError reports an actor lacking permission or scope for the target
// resource.
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

func NewPolicyError(format string, args ...interface{}) *PolicyError {
	return &PolicyError{Message: fmt.Sprintf(format, args...)}
}
