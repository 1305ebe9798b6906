package dispatch

import "fmt"

// Error is a dispatch-level error with a stable code the HTTP layer maps to
// a status. Conflict is the expected outcome of losing the accept race and
// must never be conflated with transport or validation failures; Timeout
// means the store's answer is unknown and the caller has to re-query before
// retrying.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrConflict = &Error{Code: "conflict", Message: "booking is no longer available"}
	ErrNotFound = &Error{Code: "notFound", Message: "booking or professional not found"}
	ErrTimeout  = &Error{Code: "timeout", Message: "booking store did not respond in time"}
)
