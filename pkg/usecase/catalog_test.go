package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/fetchcr/pkg/infra/web"
	"github.com/m-mizutani/fetchcr/pkg/usecase"
)

func TestCatalogUseCase_ListCatalog(t *testing.T) {
	fs := &fakeSite{
		listing: listingHTML("/macos/appA/", "/macos/", "/macos/appB/", "/macos/appC/"),
		details: map[string]string{
			"appA": `{"pageProps":{"post":{"downloads":[{"id":"42"}]}}}`,
			"appB": `{"pageProps":{"post":{"downloads":[]}}}`,
			"appC": `{"pageProps":{"post":{"downloads":[{"links":[{"id":"7"}]}]}}}`,
		},
		links: map[string]string{
			"42": `{"url":"https://cdn/x.zip"}`,
			"7":  `{"url":"https://cdn/c.dmg"}`,
		},
	}
	site := newFakeSite(t, fs)
	uc := usecase.NewCatalog(web.NewClient(), site)

	entries, err := uc.ListCatalog(context.Background(), "3")
	gt.NoError(t, err).Required()
	gt.A(t, entries).Length(3).Required()

	gt.Equal(t, entries[0].Name, "appA")
	gt.Equal(t, entries[0].DownloadLink, "https://cdn/x.zip")
	gt.Equal(t, entries[0].SourceURL, "/macos/appA/")
	gt.Equal(t, entries[1].Name, "appB")
	gt.Equal(t, entries[1].DownloadLink, "")
	gt.Equal(t, entries[2].Name, "appC")
	gt.Equal(t, entries[2].DownloadLink, "https://cdn/c.dmg")

	gt.Equal(t, fs.requestedPages(), []string{"3"})
}

func TestCatalogUseCase_DefaultPage(t *testing.T) {
	fs := &fakeSite{listing: listingHTML("/macos/")}
	uc := usecase.NewCatalog(web.NewClient(), newFakeSite(t, fs))

	entries, err := uc.ListCatalog(context.Background(), "")
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
	gt.Equal(t, fs.requestedPages(), []string{"1"})
}

func TestCatalogUseCase_ResolverFailureDegrades(t *testing.T) {
	fs := &fakeSite{
		listing: listingHTML("/macos/broken/", "/macos/fine/"),
		details: map[string]string{
			"broken": `not json at all`,
			"fine":   `{"pageProps":{"post":{"downloads":[{"id":"1"}]}}}`,
		},
		links: map[string]string{
			"1": `{"url":"https://cdn/fine.zip"}`,
		},
	}
	uc := usecase.NewCatalog(web.NewClient(), newFakeSite(t, fs))

	entries, err := uc.ListCatalog(context.Background(), "1")
	gt.NoError(t, err).Required()
	gt.A(t, entries).Length(2).Required()
	gt.Equal(t, entries[0].Name, "broken")
	gt.Equal(t, entries[0].DownloadLink, "")
	gt.Equal(t, entries[1].DownloadLink, "https://cdn/fine.zip")
}

func TestCatalogUseCase_ScrapeFailure(t *testing.T) {
	t.Run("listing unavailable", func(t *testing.T) {
		fs := &fakeSite{}
		uc := usecase.NewCatalog(web.NewClient(), newFakeSite(t, fs))

		entries, err := uc.ListCatalog(context.Background(), "1")
		gt.Error(t, err)
		gt.A(t, entries).Length(0)
	})

	t.Run("listing malformed", func(t *testing.T) {
		fs := &fakeSite{listing: `<html><body>maintenance</body></html>`}
		resolver := &fakeResolver{}
		uc := usecase.NewCatalog(web.NewClient(), newFakeSite(t, fs), usecase.WithResolver(resolver))

		entries, err := uc.ListCatalog(context.Background(), "1")
		gt.Error(t, err)
		gt.A(t, entries).Length(0)
		gt.Equal(t, resolver.calls.Load(), int32(0))
	})
}

// fakeResolver returns "link-<slug>" after a per-slug delay
type fakeResolver struct {
	delays map[string]time.Duration
	fail   map[string]bool
	calls  atomic.Int32

	mu       sync.Mutex
	inflight int
	peak     int
}

func (r *fakeResolver) Resolve(ctx context.Context, slug string) (string, error) {
	r.calls.Add(1)
	r.mu.Lock()
	r.inflight++
	r.peak = max(r.peak, r.inflight)
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inflight--
		r.mu.Unlock()
	}()

	select {
	case <-time.After(r.delays[slug]):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if r.fail[slug] {
		return "", errors.New("resolve failed")
	}
	return "link-" + slug, nil
}

func (r *fakeResolver) peakInflight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak
}

func TestCatalogUseCase_ResolveWorkers(t *testing.T) {
	hrefs := []string{"/macos/a/", "/macos/b/", "/macos/c/", "/macos/d/", "/macos/e/"}
	resolver := &fakeResolver{
		delays: map[string]time.Duration{
			"a": 80 * time.Millisecond,
			"b": 60 * time.Millisecond,
			"c": 40 * time.Millisecond,
			"d": 20 * time.Millisecond,
			"e": 0,
		},
		fail: map[string]bool{"c": true},
	}

	tests := []struct {
		name     string
		workers  int
		wantPeak int
	}{
		{name: "sequential", workers: 1, wantPeak: 1},
		{name: "bounded pool", workers: 3, wantPeak: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeResolver{delays: resolver.delays, fail: resolver.fail}
			fs := &fakeSite{listing: listingHTML(hrefs...)}
			uc := usecase.NewCatalog(web.NewClient(), newFakeSite(t, fs),
				usecase.WithResolver(r),
				usecase.WithResolveWorkers(tt.workers),
			)

			entries, err := uc.ListCatalog(context.Background(), "1")
			gt.NoError(t, err).Required()
			gt.A(t, entries).Length(5).Required()

			for i, want := range []string{"link-a", "link-b", "", "link-d", "link-e"} {
				gt.Equal(t, entries[i].DownloadLink, want)
			}
			gt.Equal(t, entries[2].Name, "c")
			gt.True(t, r.peakInflight() <= tt.wantPeak)
			if tt.workers == 1 {
				gt.Equal(t, r.peakInflight(), 1)
			}
		})
	}
}

func TestCatalogUseCase_Cancel(t *testing.T) {
	fs := &fakeSite{listing: listingHTML("/macos/slow/", "/macos/slower/")}
	resolver := &fakeResolver{delays: map[string]time.Duration{
		"slow":   5 * time.Second,
		"slower": 5 * time.Second,
	}}
	uc := usecase.NewCatalog(web.NewClient(), newFakeSite(t, fs), usecase.WithResolver(resolver))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	entries, err := uc.ListCatalog(ctx, "1")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, context.DeadlineExceeded))
	gt.A(t, entries).Length(0)
	gt.True(t, time.Since(start) < 2*time.Second)
}
