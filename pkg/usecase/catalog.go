package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/fetchcr/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultPage is listed when no page is given
const DefaultPage = "1"

type catalogUseCase struct {
	fetcher  interfaces.PageFetcher
	resolver interfaces.DetailResolver
	site     model.Site
	workers  int
}

// CatalogOption is a functional option for the catalog use case
type CatalogOption func(*catalogUseCase)

// WithResolver replaces the detail resolver
func WithResolver(r interfaces.DetailResolver) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.resolver = r
	}
}

// WithResolveWorkers sets how many entries are resolved concurrently.
// Values below 1 mean one.
func WithResolveWorkers(n int) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.workers = max(n, 1)
	}
}

// NewCatalog creates a new instance of CatalogUseCase
func NewCatalog(fetcher interfaces.PageFetcher, site model.Site, opts ...CatalogOption) interfaces.CatalogUseCase {
	uc := &catalogUseCase{
		fetcher: fetcher,
		site:    site,
		workers: 1,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.resolver == nil {
		uc.resolver = NewDetailResolver(fetcher, site)
	}
	return uc
}

// ListCatalog scrapes one listing page, then resolves the download link of
// every entry. The two stages run in their own goroutines and hand their
// results back through single-value channels.
func (uc *catalogUseCase) ListCatalog(ctx context.Context, page string) ([]model.CatalogEntry, error) {
	logger := ctxlog.From(ctx)
	if page == "" {
		page = DefaultPage
	}

	logger.Info("Listing catalog page", "page", page, "site", uc.site.BaseURL)

	entries, err := async.Await(ctx, async.Go(ctx, func(ctx context.Context) ([]model.CatalogEntry, error) {
		return uc.scrape(ctx, page)
	}))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scrape catalog page", goerr.V("page", page))
	}

	logger.Info("Scraped catalog page", "page", page, "entry_count", len(entries))

	resolved, err := async.Await(ctx, async.Go(ctx, func(ctx context.Context) ([]model.CatalogEntry, error) {
		return uc.resolveAll(ctx, entries)
	}))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve catalog entries", goerr.V("page", page))
	}

	return resolved, nil
}

func (uc *catalogUseCase) scrape(ctx context.Context, page string) ([]model.CatalogEntry, error) {
	url := uc.site.ListingURL(page)
	body, err := uc.fetcher.GetText(ctx, url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch listing page", goerr.V("url", model.RedactURL(url)))
	}
	return ParseCatalog(body, uc.site.RootPath())
}

// resolveAll returns a new slice in input order. A failed resolution
// empties that entry's link; only cancellation aborts the batch.
func (uc *catalogUseCase) resolveAll(ctx context.Context, entries []model.CatalogEntry) ([]model.CatalogEntry, error) {
	resolved := make([]model.CatalogEntry, len(entries))

	if uc.workers <= 1 {
		for i, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			resolved[i] = entry.WithDownloadLink(uc.resolveOne(ctx, entry))
		}
	} else {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(uc.workers)
		for i, entry := range entries {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				resolved[i] = entry.WithDownloadLink(uc.resolveOne(egCtx, entry))
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	// a cancelled resolution looks like an empty link, so re-check
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (uc *catalogUseCase) resolveOne(ctx context.Context, entry model.CatalogEntry) string {
	link, err := uc.resolver.Resolve(ctx, entry.DownloadLink)
	if err != nil {
		ctxlog.From(ctx).Warn("Failed to resolve download link",
			"name", entry.Name,
			"error", err,
		)
		return ""
	}
	return link
}
