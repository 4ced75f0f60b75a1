package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// OMDBServer is a fake OMDB API that serves a fixed status and body and
// records the query of every request it receives.
type OMDBServer struct {
	*httptest.Server

	mu      sync.Mutex
	queries []url.Values
}

// NewOMDBServer starts a fake OMDB API answering every request with status and body.
// The server is closed when the test completes.
func NewOMDBServer(t *testing.T, status int, body string) *OMDBServer {
	t.Helper()

	s := &OMDBServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.queries = append(s.queries, r.URL.Query())
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)

	return s
}

// Requests returns the number of requests served so far.
func (s *OMDBServer) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

// LastQuery returns the query parameters of the most recent request, or nil.
func (s *OMDBServer) LastQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return nil
	}
	return s.queries[len(s.queries)-1]
}
