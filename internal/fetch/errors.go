package fetch

import "fmt"

// UserMessage is the single message shown for any fetch failure.
const UserMessage = "could not load news"

// TransportError is a network-level failure: connect, timeout, cancellation,
// or an unreadable body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteServiceError is a non-2xx status or a body that could not be decoded.
type RemoteServiceError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("fetch: gnews returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("fetch: gnews returned status %d", e.Status)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }
