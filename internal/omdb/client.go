// Package omdb provides a client for looking up movie ratings in the OMDB API.
package omdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/movierating/internal/cache"
	"github.com/lepinkainen/movierating/internal/errors"
	"github.com/lepinkainen/movierating/internal/ratelimit"
)

const (
	// DefaultBaseURL is the OMDB API endpoint
	DefaultBaseURL = "http://www.omdbapi.com/"
	// DefaultTimeout bounds a single request, including reading the body
	DefaultTimeout = 10 * time.Second

	apiVersion           = "1"
	resultType           = "movie"
	defaultRatePerSecond = 1 // OMDB free tier allows 1000 requests/day
	maxResponseBytes     = 1 << 20
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is an OMDB API client.
type Client struct {
	apiKey           string
	baseURL          string
	httpClient       HTTPDoer
	rateLimiter      *ratelimit.Limiter
	cache            *cache.CacheDB
	cacheTTL         time.Duration
	negativeCacheTTL time.Duration
	refresh          bool
}

// NewClient creates a new OMDB API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:           apiKey,
		baseURL:          DefaultBaseURL,
		httpClient:       &http.Client{Timeout: DefaultTimeout},
		rateLimiter:      ratelimit.New("OMDB", defaultRatePerSecond),
		cacheTTL:         cache.DefaultCacheTTL,
		negativeCacheTTL: cache.NegativeCacheTTL,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the OMDB API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = base
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
// It has no effect on a custom HTTPDoer that is not an *http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout <= 0 {
			return
		}
		if hc, ok := client.httpClient.(*http.Client); ok {
			clone := *hc
			clone.Timeout = timeout
			client.httpClient = &clone
		}
	}
}

// WithRateLimiter sets the rate limiter. A nil limiter disables rate limiting.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.rateLimiter = limiter
	}
}

// WithCache enables the response cache. Non-positive TTLs keep the defaults.
// With refresh set cached entries are ignored but fresh responses are still stored.
func WithCache(db *cache.CacheDB, ttl, negativeTTL time.Duration, refresh bool) Option {
	return func(client *Client) {
		client.cache = db
		client.refresh = refresh
		if ttl > 0 {
			client.cacheTTL = ttl
		}
		if negativeTTL > 0 {
			client.negativeCacheTTL = negativeTTL
		}
	}
}

// QueryParams builds the query string for a title lookup. The year is only
// sent when one was given.
func QueryParams(apiKey string, req LookupRequest) url.Values {
	params := url.Values{}
	params.Set("apikey", apiKey)
	params.Set("v", apiVersion)
	params.Set("type", resultType)
	params.Set("t", req.Title)
	if req.Year != 0 {
		params.Set("y", strconv.Itoa(req.Year))
	}
	return params
}

// Validate checks that the request can be sent to the API
func (req LookupRequest) Validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.NewConfigError("You must provide a non-empty --title", nil)
	}
	return nil
}

// Lookup retrieves the OMDB response for a title (and optional year),
// from the cache when one is configured.
// The returned Response always has its Response field set; it may be "False".
func (c *Client) Lookup(ctx context.Context, req LookupRequest) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, errors.ErrMissingAPIKey
	}

	if c.cache == nil {
		return c.fetch(ctx, req)
	}

	cached, fromCache, err := cache.GetOrFetchWithTTL(c.cache, cache.OMDBTable, CacheKey(c.apiKey, req), c.refresh,
		func() (*CachedResponse, error) {
			resp, fetchErr := c.fetch(ctx, req)
			if fetchErr != nil {
				// Transport, status and shape errors are never cached
				return nil, fetchErr
			}
			return &CachedResponse{
				Response: resp,
				NotFound: resp.Response != ResponseTrue && resp.Error == MovieNotFound,
			}, nil
		},
		c.cacheTTLFor)
	if err != nil {
		return nil, err
	}

	if cached == nil || cached.Response == nil {
		slog.Debug("Empty cache entry, fetching directly", "key", CacheKey(c.apiKey, req))
		return c.fetch(ctx, req)
	}

	slog.Debug("OMDB lookup complete", "title", req.Title, "year", req.Year, "from_cache", fromCache)
	return cached.Response, nil
}

// cacheTTLFor caches successful lookups and "Movie not found!" answers only
func (c *Client) cacheTTLFor(r *CachedResponse) time.Duration {
	switch {
	case r == nil || r.Response == nil:
		return 0
	case r.NotFound:
		return c.negativeCacheTTL
	case r.Response.Response == ResponseTrue:
		return c.cacheTTL
	default:
		return 0
	}
}

// fetch performs exactly one GET request against the API and classifies the outcome
func (c *Client) fetch(ctx context.Context, req LookupRequest) (*Response, error) {
	slog.Debug("Waiting for rate limiter", "limiter", c.rateLimiter.Name())
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.NewNetworkError(errors.NetworkOther, err)
	}

	endpoint, err := c.requestURL(req)
	if err != nil {
		return nil, errors.NewNetworkError(errors.NetworkOther, err)
	}

	slog.Debug("Fetching OMDB data by title and year", "title", req.Title, "year", req.Year)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewNetworkError(errors.NetworkOther, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, ClassifyTransportError(err)
	}

	slog.Debug("OMDB response received", "status", resp.StatusCode, "bytes", len(body))

	return Classify(resp.StatusCode, body)
}

func (c *Client) requestURL(req LookupRequest) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid OMDB base URL %q: %w", c.baseURL, err)
	}
	u.RawQuery = QueryParams(c.apiKey, req).Encode()
	return u.String(), nil
}
