package dispatch

import "fmt"

// ValidationError marks a malformed or missing user-supplied argument. It is
// always recovered locally: the user gets a friendly message and no
// capability is invoked.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// StateError marks an invalid session transition, such as accepting terms
// for a user the store no longer knows. Treated as a logged no-op, never
// surfaced to the user.
type StateError struct {
	Op     string
	UserID string
	Cause  error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state: %s for %s: %v", e.Op, e.UserID, e.Cause)
}

func (e *StateError) Unwrap() error { return e.Cause }
