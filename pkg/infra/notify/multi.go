package notify

import (
	"context"

	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
)

// Multi forwards each event to every sink in order
type Multi []interfaces.EventSink

// DownloadProgress implements interfaces.EventSink
func (m Multi) DownloadProgress(ctx context.Context, state model.TransferState) {
	for _, sink := range m {
		if sink != nil {
			sink.DownloadProgress(ctx, state)
		}
	}
}

// DownloadFinished implements interfaces.EventSink
func (m Multi) DownloadFinished(ctx context.Context, state model.TransferState) {
	for _, sink := range m {
		if sink != nil {
			sink.DownloadFinished(ctx, state)
		}
	}
}
