package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrNoRating is returned when a movie was found but has no Rotten Tomatoes rating.
var ErrNoRating error = &NoRatingError{}

// NoRatingError is the type of ErrNoRating.
type NoRatingError struct{}

func (e *NoRatingError) Error() string {
	return "No Rotten Tomatoes rating was found for this movie"
}

func (e *NoRatingError) diagnostic() {}

// NotFoundError means OMDB has no movie matching the title (and year, when given)
type NotFoundError struct {
	Title string
	Year  int // 0 when no year was requested
}

func (e *NotFoundError) Error() string {
	if e.Year != 0 {
		return fmt.Sprintf("We're sorry, but a movie by that name (%s) in that year (%d) was not found", e.Title, e.Year)
	}
	return fmt.Sprintf("We're sorry, but a movie by that name (%s) was not found", e.Title)
}

func (e *NotFoundError) diagnostic() {}

// NewNotFoundError creates a NotFoundError for a title/year lookup
func NewNotFoundError(title string, year int) *NotFoundError {
	return &NotFoundError{Title: title, Year: year}
}

// IsNotFoundError checks if err is a NotFoundError
func IsNotFoundError(err error) bool {
	var notFound *NotFoundError
	return stdErrors.As(err, &notFound)
}

// APIError carries an OMDB "Response": "False" error other than a missing movie
type APIError struct {
	Message string // the Error field of the OMDB response
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Sorry, the OMDB API returned an error: %s", e.Message)
}

func (e *APIError) diagnostic() {}

// NewAPIError creates an APIError from the OMDB error text
func NewAPIError(message string) *APIError {
	return &APIError{Message: message}
}

// IsAPIError checks if err is an APIError
func IsAPIError(err error) bool {
	var apiErr *APIError
	return stdErrors.As(err, &apiErr)
}

// ShapeError means a 200 response body was not the JSON object OMDB documents
type ShapeError struct {
	Err error
}

func (e *ShapeError) Error() string {
	return "Sorry, but the response from OMDB did not contain the expected data"
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

func (e *ShapeError) diagnostic() {}

// NewShapeError creates a ShapeError wrapping the decode failure, if any
func NewShapeError(err error) *ShapeError {
	return &ShapeError{Err: err}
}

// IsShapeError checks if err is a ShapeError
func IsShapeError(err error) bool {
	var shapeErr *ShapeError
	return stdErrors.As(err, &shapeErr)
}
