package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/fetchcr/pkg/infra/notify"
	"github.com/m-mizutani/gt"
)

type received struct {
	event     string
	signature string
	body      []byte
}

type hookServer struct {
	mu     sync.Mutex
	got    []received
	status int
}

func (h *hookServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	h.mu.Lock()
	h.got = append(h.got, received{
		event:     r.Header.Get(notify.EventHeader),
		signature: r.Header.Get(notify.SignatureHeader),
		body:      body,
	})
	status := h.status
	h.mu.Unlock()
	if status == 0 {
		status = http.StatusNoContent
	}
	w.WriteHeader(status)
}

func (h *hookServer) requests() []received {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]received(nil), h.got...)
}

func TestWebhook_DeliversInOrder(t *testing.T) {
	hook := &hookServer{}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	ctx := context.Background()
	sink := notify.NewWebhook(ctx, srv.URL, notify.WithSecret("s3cret"))

	sink.DownloadProgress(ctx, model.TransferState{ID: "d1", TotalBytes: 100, TransferredBytes: 50, PercentComplete: 50})
	sink.DownloadProgress(ctx, model.TransferState{ID: "d1", TotalBytes: 100, TransferredBytes: 90, PercentComplete: 90})
	sink.DownloadFinished(ctx, model.TransferState{ID: "d1", TotalBytes: 100, TransferredBytes: 100, PercentComplete: 100})
	sink.Close()

	got := hook.requests()
	gt.A(t, got).Length(3).Required()

	wantEvents := []string{"DOWNLOAD_PROGRESS", "DOWNLOAD_PROGRESS", "DOWNLOAD_FINISHED"}
	wantPercent := []float64{50, 90, 100}
	for i, r := range got {
		gt.Equal(t, r.event, wantEvents[i])
		gt.True(t, notify.Verify("s3cret", r.body, r.signature))

		var payload notify.WebhookPayload
		gt.NoError(t, json.Unmarshal(r.body, &payload)).Required()
		gt.Equal(t, string(payload.Event), wantEvents[i])
		gt.Equal(t, payload.Payload.ID, "d1")
		gt.Equal(t, payload.Payload.PercentComplete, wantPercent[i])
	}
}

func TestWebhook_PayloadFieldNames(t *testing.T) {
	hook := &hookServer{}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	ctx := context.Background()
	sink := notify.NewWebhook(ctx, srv.URL)
	sink.DownloadFinished(ctx, model.TransferState{
		ID:               "d2",
		TotalBytes:       10,
		TransferredBytes: 10,
		RateBytesPerSec:  5,
		PercentComplete:  100,
	})
	sink.Close()

	got := hook.requests()
	gt.A(t, got).Length(1).Required()
	gt.Equal(t, got[0].signature, "")

	var raw map[string]json.RawMessage
	gt.NoError(t, json.Unmarshal(got[0].body, &raw)).Required()
	gt.Equal(t, string(raw["event"]), `"DOWNLOAD_FINISHED"`)

	var payload map[string]any
	gt.NoError(t, json.Unmarshal(raw["payload"], &payload)).Required()
	gt.Equal(t, len(payload), 5)
	for _, key := range []string{"download_id", "filesize", "transfered", "transfer_rate", "percentage"} {
		_, ok := payload[key]
		gt.True(t, ok)
	}
}

func TestWebhook_FailureIsNotRetried(t *testing.T) {
	hook := &hookServer{status: http.StatusInternalServerError}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	ctx := context.Background()
	sink := notify.NewWebhook(ctx, srv.URL)
	sink.DownloadFinished(ctx, model.TransferState{ID: "d3", PercentComplete: 100})
	sink.Close()

	gt.A(t, hook.requests()).Length(1)
}

func TestWebhook_EventAfterCloseIsDropped(t *testing.T) {
	hook := &hookServer{}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	ctx := context.Background()
	sink := notify.NewWebhook(ctx, srv.URL)
	sink.Close()
	sink.DownloadFinished(ctx, model.TransferState{ID: "late"})
	sink.Close()

	gt.A(t, hook.requests()).Length(0)
}

func TestSignAndVerify(t *testing.T) {
	payload := []byte(`{"event":"DOWNLOAD_FINISHED"}`)
	sig := notify.Sign("key", payload)

	gt.True(t, notify.Verify("key", payload, sig))
	gt.False(t, notify.Verify("other", payload, sig))
	gt.False(t, notify.Verify("key", []byte("tampered"), sig))
	gt.False(t, notify.Verify("key", payload, ""))
}

type countSink struct {
	progress int
	finished int
}

func (c *countSink) DownloadProgress(context.Context, model.TransferState) { c.progress++ }
func (c *countSink) DownloadFinished(context.Context, model.TransferState) { c.finished++ }

func TestMulti(t *testing.T) {
	a, b := &countSink{}, &countSink{}
	sink := notify.Multi{a, nil, b, notify.Log{}}

	ctx := context.Background()
	sink.DownloadProgress(ctx, model.TransferState{ID: "x"})
	sink.DownloadProgress(ctx, model.TransferState{ID: "x"})
	sink.DownloadFinished(ctx, model.TransferState{ID: "x", PercentComplete: 100})

	gt.Equal(t, a.progress, 2)
	gt.Equal(t, b.progress, 2)
	gt.Equal(t, a.finished, 1)
	gt.Equal(t, b.finished, 1)
}
