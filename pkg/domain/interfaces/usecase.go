package interfaces

import (
	"context"

	"github.com/m-mizutani/fetchcr/pkg/domain/model"
)

// CatalogUseCase lists catalog entries with resolved download links
type CatalogUseCase interface {
	// ListCatalog scrapes one listing page and resolves every entry
	ListCatalog(ctx context.Context, page string) ([]model.CatalogEntry, error)
}

// DownloadUseCase streams a remote file to local storage
type DownloadUseCase interface {
	// DownloadFile downloads url, reporting progress to sink
	DownloadFile(ctx context.Context, url string, sink EventSink) (*model.DownloadResult, error)
}

// DetailResolver turns an item slug into a direct download URL
type DetailResolver interface {
	// Resolve returns an empty string when the item has no download
	Resolve(ctx context.Context, slug string) (string, error)
}
