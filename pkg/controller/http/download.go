package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/fetchcr/pkg/usecase"
	"github.com/m-mizutani/fetchcr/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
)

const maxRequestBody = 64 * 1024

// DownloadRequest is the body of POST /api/downloads
type DownloadRequest struct {
	URL string `json:"url"`
}

// DownloadHandler starts downloads in the background
type DownloadHandler struct {
	downloadUC interfaces.DownloadUseCase
	sink       interfaces.EventSink

	inflight sync.WaitGroup
	abort    context.Context
	abortAll context.CancelFunc
}

// NewDownloadHandler creates a new DownloadHandler
func NewDownloadHandler(downloadUC interfaces.DownloadUseCase, sink interfaces.EventSink) *DownloadHandler {
	abort, abortAll := context.WithCancel(context.Background())
	return &DownloadHandler{
		downloadUC: downloadUC,
		sink:       sink,
		abort:      abort,
		abortAll:   abortAll,
	}
}

// Handle processes POST /api/downloads. The transfer outlives the request.
func (h *DownloadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	var req DownloadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		logger.Warn("Failed to decode download request", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	target := usecase.CleanURL(req.URL)
	if target == "" {
		writeError(w, model.ErrEmptyURL, http.StatusBadRequest)
		return
	}

	h.inflight.Add(1)
	async.Dispatch(ctx, func(ctx context.Context) error {
		defer h.inflight.Done()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		defer context.AfterFunc(h.abort, cancel)()

		result, err := h.downloadUC.DownloadFile(ctx, target, h.sink)
		if err != nil {
			return goerr.Wrap(err, "background download failed", goerr.V("url", model.RedactURL(target)))
		}
		ctxlog.From(ctx).Info("Download saved",
			"id", result.ID,
			"path", result.Path,
			"bytes", result.Bytes,
		)
		return nil
	})

	writeJSON(ctx, w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

// Drain waits for background downloads to end. When ctx is done first, the
// remaining downloads are cancelled (their partial files are kept) and Drain
// waits for them to return.
func (h *DownloadHandler) Drain(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-ctx.Done():
		ctxlog.From(ctx).Warn("Cancelling unfinished downloads")
		h.abortAll()
		<-done
	}
}
