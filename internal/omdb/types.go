package omdb

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Values the OMDB API uses in its responses
const (
	ResponseTrue        = "True"
	ResponseFalse       = "False"
	MovieNotFound       = "Movie not found!"
	RequestLimitReached = "Request limit reached!"

	// RottenTomatoesSource is the Ratings[].Source of the Rotten Tomatoes score
	RottenTomatoesSource = "Rotten Tomatoes"
)

// LookupRequest is a single title lookup. Year 0 means no year was given.
type LookupRequest struct {
	Title string
	Year  int
}

// Response holds the parts of an OMDB title lookup that are read.
// Other fields are ignored, whatever their type.
type Response struct {
	Ratings  []Rating `json:"Ratings,omitempty"`
	Response string   `json:"Response"`        // "True" or "False"
	Error    string   `json:"Error,omitempty"` // Present if Response is "False"
}

// Rating represents a rating from a specific source
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// CachedResponse wraps a Response for the cache so "not found" answers can be
// stored with their own TTL
type CachedResponse struct {
	Response *Response `json:"response"`
	NotFound bool      `json:"not_found"`
}

// CacheKey is the cache key for a lookup: the normalized title, the year and
// a fingerprint of the API key, so entries fetched with one key are never
// served to another. The key itself is not stored.
func CacheKey(apiKey string, req LookupRequest) string {
	sum := sha256.Sum256([]byte(apiKey))
	return strings.ToLower(strings.TrimSpace(req.Title)) + "|" + strconv.Itoa(req.Year) + "|" + hex.EncodeToString(sum[:8])
}
