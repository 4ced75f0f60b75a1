package omdb

import (
	"context"

	"github.com/lepinkainen/movierating/internal/errors"
)

// RottenTomatoes returns the Rotten Tomatoes value from ratings.
// Every matching entry overwrites the previous one, so the last match wins.
// An empty value counts as no rating.
func RottenTomatoes(ratings []Rating) (string, bool) {
	var value string
	for _, rating := range ratings {
		if rating.Source == RottenTomatoesSource {
			value = rating.Value
		}
	}
	return value, value != ""
}

// RottenTomatoesRating looks up a movie and returns its Rotten Tomatoes rating,
// e.g. "94%".
func (c *Client) RottenTomatoesRating(ctx context.Context, req LookupRequest) (string, error) {
	resp, err := c.Lookup(ctx, req)
	if err != nil {
		return "", err
	}

	if resp.Response != ResponseTrue {
		return "", FailureError(req, resp)
	}

	rating, ok := RottenTomatoes(resp.Ratings)
	if !ok {
		return "", errors.ErrNoRating
	}

	return rating, nil
}
