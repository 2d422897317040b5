package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/fetchcr/pkg/domain/model"
)

// listingHTML builds a listing page with one product block per href.
// An empty href produces an anchor without the attribute.
func listingHTML(hrefs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><header><div><a href="/">home</a></div></header>`)
	sb.WriteString(`<section class="products"><div class="product-list">`)
	for _, href := range hrefs {
		attr := ""
		if href != "" {
			attr = fmt.Sprintf(` href="%s"`, href)
		}
		fmt.Fprintf(&sb, `<div class="product">`+
			`<div class="thumb"><a href="/images/x.png"><img src="x.png"></a></div>`+
			`<div class="info"><a%s>title</a><a href="/macos/utilities/">category</a></div>`+
			`</div>`, attr)
	}
	sb.WriteString(`</div></section></body></html>`)
	return sb.String()
}

// recordSink collects events for assertions
type recordSink struct {
	mu       sync.Mutex
	progress []model.TransferState
	finished []model.TransferState
}

func (s *recordSink) DownloadProgress(ctx context.Context, state model.TransferState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, state)
}

func (s *recordSink) DownloadFinished(ctx context.Context, state model.TransferState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, state)
}

// stepClock returns start on the first call and advances by step on every
// following call.
type stepClock struct {
	mu    sync.Mutex
	next  time.Time
	step  time.Duration
	calls int
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{next: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	c.calls++
	return now
}

// staticFetcher serves a fixed response from Open
type staticFetcher struct {
	resp   *http.Response
	opened []string
}

func (f *staticFetcher) GetText(ctx context.Context, u string) (string, error) {
	return "", errors.New("not supported")
}

func (f *staticFetcher) Open(ctx context.Context, u string) (*http.Response, error) {
	f.opened = append(f.opened, u)
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, err
	}
	f.resp.Request = &http.Request{Method: http.MethodGet, URL: parsed}
	return f.resp, nil
}
