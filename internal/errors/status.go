package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// StatusError represents a non-200 HTTP status returned by the OMDB API
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return e.Message
}

func (e *StatusError) diagnostic() {}

// NewStatusError creates a StatusError with the user-facing message for the status code
func NewStatusError(statusCode int) *StatusError {
	var message string

	switch statusCode {
	case http.StatusUnauthorized:
		message = "Sorry, your API Key was not valid. Please check it and try again."
	case http.StatusServiceUnavailable:
		message = "Sorry, it seems like OMDB is busy. Please try again later."
	default:
		message = fmt.Sprintf("Sorry, there was some error communicating with the OMDB API: Error Code %d", statusCode)
	}

	return &StatusError{
		Message:    message,
		StatusCode: statusCode,
	}
}

// IsStatusError checks if err is a StatusError
func IsStatusError(err error) bool {
	var statusErr *StatusError
	return stdErrors.As(err, &statusErr)
}
