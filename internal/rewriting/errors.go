package rewriting

import "fmt"

// UnavailableError indicates the rewrite service is not configured or the
// upstream provider could not be reached. Callers treat this as a per-recipe
// failure, never a pipeline crash.
type UnavailableError struct {
	Message string
	Cause   error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rewrite service unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rewrite service unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError indicates the upstream response could not be parsed
// as the expected JSON shape, even after fence stripping and brace-delimited
// extraction.
type MalformedResponseError struct {
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed rewrite response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed rewrite response: %s", e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
