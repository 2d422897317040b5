package web

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/fetchcr/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// maxPageSize caps how much of a listing page or JSON document is read
const maxPageSize = 16 * 1024 * 1024

type client struct {
	httpClient  *http.Client
	userAgent   string
	pageTimeout time.Duration
}

// Option is a functional option for the web client
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(x *client) {
		x.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(x *client) {
		if ua != "" {
			x.userAgent = ua
		}
	}
}

// WithPageTimeout bounds GetText calls. Streaming responses from Open are
// bounded only by the caller's context.
func WithPageTimeout(d time.Duration) Option {
	return func(x *client) {
		x.pageTimeout = d
	}
}

// NewClient creates a PageFetcher backed by net/http
func NewClient(opts ...Option) interfaces.PageFetcher {
	c := &client{
		httpClient:  &http.Client{},
		userAgent:   types.ServiceName + "/" + types.Version,
		pageTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetText fetches target and returns its body
func (c *client) GetText(ctx context.Context, target string) (string, error) {
	if c.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.pageTimeout)
		defer cancel()
	}

	resp, err := c.Open(ctx, target)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read response body", goerr.V("url", model.RedactURL(target)))
	}

	return string(data), nil
}

// Open issues a GET request and returns the response with an open body.
// URLs in returned errors have their query redacted.
func (c *client) Open(ctx context.Context, target string) (*http.Response, error) {
	safe := model.RedactURL(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, goerr.Wrap(model.RedactURLError(err), "failed to create request", goerr.V("url", safe))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.RedactURLError(err), "failed to GET", goerr.V("url", safe))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, goerr.Wrap(model.ErrUnexpectedStatus, "unexpected status code",
			goerr.V("url", safe),
			goerr.V("status", resp.StatusCode),
		)
	}

	return resp, nil
}
