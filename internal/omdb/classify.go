package omdb

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net"
	"net/http"
	"net/url"
	"syscall"

	"github.com/lepinkainen/movierating/internal/errors"
)

// Classify turns an HTTP status and body into a decoded Response or a typed error.
// Only a 200 carrying a JSON object with a "Response" field is accepted.
func Classify(status int, body []byte) (*Response, error) {
	if status != http.StatusOK {
		return nil, errors.NewStatusError(status)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.NewShapeError(err)
	}
	if _, ok := fields["Response"]; !ok {
		return nil, errors.NewShapeError(nil)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.NewShapeError(err)
	}

	return &resp, nil
}

// ClassifyTransportError maps an error from the HTTP client to a NetworkError.
// The request URL is stripped from the cause since it carries the API key.
func ClassifyTransportError(err error) error {
	cause := err
	var urlErr *url.Error
	if stdErrors.As(err, &urlErr) {
		cause = urlErr.Err
	}

	switch {
	case isTimeout(err):
		return errors.NewNetworkError(errors.NetworkTimeout, cause)
	case isConnectionFailure(err):
		return errors.NewNetworkError(errors.NetworkUnreachable, cause)
	default:
		return errors.NewNetworkError(errors.NetworkOther, cause)
	}
}

// FailureError interprets a well-formed "Response": "False" answer
func FailureError(req LookupRequest, resp *Response) error {
	switch resp.Error {
	case MovieNotFound:
		return errors.NewNotFoundError(req.Title, req.Year)
	case RequestLimitReached:
		return errors.NewRateLimitError("")
	case "":
		return errors.NewAPIError("no error message was given")
	default:
		return errors.NewAPIError(resp.Error)
	}
}

func isTimeout(err error) bool {
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stdErrors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionFailure(err error) bool {
	var opErr *net.OpError
	if stdErrors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if stdErrors.As(err, &dnsErr) {
		return true
	}
	return stdErrors.Is(err, syscall.ECONNREFUSED) || stdErrors.Is(err, syscall.ECONNRESET)
}
