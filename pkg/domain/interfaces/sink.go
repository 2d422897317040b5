package interfaces

import (
	"context"

	"github.com/m-mizutani/fetchcr/pkg/domain/model"
)

// EventSink receives transfer notifications. Delivery is best effort:
// implementations must not block the transfer for long and never report
// failures back to the caller.
type EventSink interface {
	// DownloadProgress is called at most once per second during a transfer
	DownloadProgress(ctx context.Context, state model.TransferState)

	// DownloadFinished is called once when a transfer reaches 100%
	DownloadFinished(ctx context.Context, state model.TransferState)
}
