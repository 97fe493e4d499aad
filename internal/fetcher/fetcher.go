// Package fetcher performs rate-limited, retrying HTTP requests against
// upstream statistics APIs. Retries and backoff live here, outside the
// analysis core.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for talking to a remote data API.
type Fetcher interface {
	// Get fetches the URL and returns the response body.
	Get(ctx context.Context, url string) (io.ReadCloser, error)

	// PostJSON sends the given body as JSON and returns the response body.
	PostJSON(ctx context.Context, url string, body any) (io.ReadCloser, error)
}
