package errors

import stdErrors "errors"

// RateLimitError represents the OMDB API refusing a request because the daily request limit was reached
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) diagnostic() {}

// NewRateLimitError creates a new RateLimitError with the given message
func NewRateLimitError(message string) *RateLimitError {
	if message == "" {
		message = "Sorry, the OMDB API request limit has been reached. Please try again later."
	}
	return &RateLimitError{Message: message}
}

// IsRateLimitError checks if err is a RateLimitError (even when wrapped)
func IsRateLimitError(err error) bool {
	var rateErr *RateLimitError
	return stdErrors.As(err, &rateErr)
}
