package notify

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
)

// Log writes every transfer event to the context logger
type Log struct{}

// DownloadProgress logs a progress event
func (Log) DownloadProgress(ctx context.Context, state model.TransferState) {
	ctxlog.From(ctx).Info("Download progress", transferAttrs(state)...)
}

// DownloadFinished logs a completion event
func (Log) DownloadFinished(ctx context.Context, state model.TransferState) {
	ctxlog.From(ctx).Info("Download finished", transferAttrs(state)...)
}

func transferAttrs(state model.TransferState) []any {
	return []any{
		"id", state.ID,
		"transferred", humanize.Bytes(state.TransferredBytes),
		"total", humanize.Bytes(state.TotalBytes),
		"rate", humanize.Bytes(uint64(state.RateBytesPerSec)) + "/s",
		"percent", state.PercentComplete,
	}
}
