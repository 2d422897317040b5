package interfaces

import (
	"context"
	"net/http"
)

// PageFetcher issues GET requests against the catalog site and download hosts
type PageFetcher interface {
	// GetText fetches url and returns the response body as text.
	// Non-2xx responses are errors.
	GetText(ctx context.Context, url string) (string, error)

	// Open issues a GET and returns the live response for streaming.
	// The caller must close the body.
	Open(ctx context.Context, url string) (*http.Response, error)
}
