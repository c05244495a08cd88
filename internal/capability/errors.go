package capability

import "fmt"

// Error reports a failed or malformed capability invocation. The dispatch
// layer decides recovery; the raw cause is never shown to end users.
type Error struct {
	Capability string
	Cause      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("capability %s: %v", e.Capability, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func capErr(capability string, format string, args ...any) *Error {
	return &Error{Capability: capability, Cause: fmt.Errorf(format, args...)}
}
