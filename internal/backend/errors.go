package backend

import "fmt"

// TransportError means the backend could not be reached at all (connection,
// DNS, timeout). It aborts the whole run.
type TransportError struct {
	RequestID string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend unreachable (request %s): %v", e.RequestID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError means the backend answered with a non-success HTTP status.
// The affected page is skipped; the run continues.
type StatusError struct {
	RequestID  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d (request %s): %s",
		e.StatusCode, e.RequestID, e.Body)
}
