package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/infra/notify"
)

// config holds internal HTTP server configuration
type config struct {
	addr string
	sink interfaces.EventSink
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithEventSink sets where events of API-triggered downloads go. Events are
// logged when no sink is set.
func WithEventSink(sink interfaces.EventSink) Option {
	return func(c *config) {
		c.sink = sink
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
	downloads *DownloadHandler
}

// Drain waits for downloads started through the API. Call it after
// Shutdown and before closing the event sinks.
func (s *Server) Drain(ctx context.Context) {
	s.downloads.Drain(ctx)
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	catalogUC interfaces.CatalogUseCase,
	downloadUC interfaces.DownloadUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
		sink: notify.Log{},
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth)

	downloads := NewDownloadHandler(downloadUC, cfg.sink)

	router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", NewCatalogHandler(catalogUC).Handle)
		r.Post("/downloads", downloads.Handle)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		downloads: downloads,
	}

	return server, nil
}
