package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// SignatureHeader carries "sha256=<hex hmac>" of the request body
	SignatureHeader = "X-Fetchcr-Signature-256"

	// EventHeader carries the event name
	EventHeader = "X-Fetchcr-Event"
)

// WebhookPayload is the JSON body posted for every event
type WebhookPayload struct {
	Event   model.EventName     `json:"event"`
	Payload model.TransferState `json:"payload"`
}

type webhookConfig struct {
	secret    string
	client    *http.Client
	queueSize int
}

// WebhookOption is a functional option for Webhook
type WebhookOption func(*webhookConfig)

// WithSecret signs every request body with HMAC-SHA256
func WithSecret(secret string) WebhookOption {
	return func(c *webhookConfig) {
		c.secret = secret
	}
}

// WithClient replaces the HTTP client used for delivery
func WithClient(client *http.Client) WebhookOption {
	return func(c *webhookConfig) {
		c.client = client
	}
}

// WithQueueSize sets how many undelivered events are buffered before new
// ones are dropped
func WithQueueSize(n int) WebhookOption {
	return func(c *webhookConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// Webhook posts transfer events to an HTTP endpoint. Events are queued and
// delivered in order by a single goroutine so a slow endpoint never stalls
// the transfer; when the queue is full the event is dropped.
type Webhook struct {
	url    string
	cfg    webhookConfig
	queue  chan WebhookPayload
	done   chan struct{}
	ctx    context.Context

	mu     sync.RWMutex
	closed bool
}

// NewWebhook starts a webhook sink posting to url. Close must be called to
// flush pending events.
func NewWebhook(ctx context.Context, url string, opts ...WebhookOption) *Webhook {
	cfg := webhookConfig{
		client:    &http.Client{Timeout: 10 * time.Second},
		queueSize: 64,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &Webhook{
		url:   url,
		cfg:   cfg,
		queue: make(chan WebhookPayload, cfg.queueSize),
		done:  make(chan struct{}),
		ctx:   context.WithoutCancel(ctx),
	}
	go w.run()
	return w
}

// DownloadProgress implements interfaces.EventSink
func (w *Webhook) DownloadProgress(ctx context.Context, state model.TransferState) {
	w.enqueue(ctx, model.EventDownloadProgress, state)
}

// DownloadFinished implements interfaces.EventSink
func (w *Webhook) DownloadFinished(ctx context.Context, state model.TransferState) {
	w.enqueue(ctx, model.EventDownloadFinished, state)
}

// Close stops accepting events and waits until queued events are delivered
func (w *Webhook) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Webhook) enqueue(ctx context.Context, event model.EventName, state model.TransferState) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		ctxlog.From(ctx).Warn("Webhook closed, event dropped", "event", event, "id", state.ID)
		return
	}

	select {
	case w.queue <- WebhookPayload{Event: event, Payload: state}:
	default:
		ctxlog.From(ctx).Warn("Webhook queue full, event dropped", "event", event, "id", state.ID)
	}
}

func (w *Webhook) run() {
	defer close(w.done)
	logger := ctxlog.From(w.ctx)

	for payload := range w.queue {
		if err := w.post(payload); err != nil {
			logger.Warn("Failed to deliver webhook event",
				"event", payload.Event,
				"id", payload.Payload.ID,
				"error", err,
			)
		}
	}
}

func (w *Webhook) post(payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(w.ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(model.RedactURLError(err), "failed to create webhook request", goerr.V("url", model.RedactURL(w.url)))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, string(payload.Event))
	if w.cfg.secret != "" {
		req.Header.Set(SignatureHeader, Sign(w.cfg.secret, body))
	}

	resp, err := w.cfg.client.Do(req)
	if err != nil {
		return goerr.Wrap(model.RedactURLError(err), "failed to post webhook", goerr.V("url", model.RedactURL(w.url)))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return goerr.Wrap(model.ErrUnexpectedStatus, "webhook rejected event",
			goerr.V("url", model.RedactURL(w.url)),
			goerr.V("status", resp.StatusCode),
		)
	}
	return nil
}

// Sign returns the signature header value for payload
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature header value produced by Sign
func Verify(secret string, payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
