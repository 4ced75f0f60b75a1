package errors

import (
	stdErrors "errors"
	"fmt"
)

// NetworkErrorKind classifies transport failures.
type NetworkErrorKind int

const (
	// NetworkOther is any transport failure that is neither a timeout nor a connection failure.
	NetworkOther NetworkErrorKind = iota
	// NetworkTimeout means the request did not complete within the client timeout.
	NetworkTimeout
	// NetworkUnreachable means the connection to the API could not be established.
	NetworkUnreachable
)

func (k NetworkErrorKind) String() string {
	switch k {
	case NetworkTimeout:
		return "timeout"
	case NetworkUnreachable:
		return "unreachable"
	default:
		return "other"
	}
}

// NetworkError wraps a transport-level failure talking to the OMDB API
type NetworkError struct {
	Kind NetworkErrorKind
	Err  error
}

func (e *NetworkError) Error() string {
	switch e.Kind {
	case NetworkTimeout:
		return "Sorry, we timed out trying to reach the OMDB API. Please check your network connection and try again later."
	case NetworkUnreachable:
		return "Sorry, we are having trouble reaching the OMDB API. Please check your network connection and try again later."
	default:
		return fmt.Sprintf("Sorry, an unrecoverable error occurred: %v", e.Err)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) diagnostic() {}

// NewNetworkError creates a NetworkError of the given kind
func NewNetworkError(kind NetworkErrorKind, err error) *NetworkError {
	return &NetworkError{Kind: kind, Err: err}
}

// IsNetworkError checks if err is a NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return stdErrors.As(err, &netErr)
}
