package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/cli/config"
	controller "github.com/m-mizutani/fetchcr/pkg/controller/http"
	"github.com/m-mizutani/fetchcr/pkg/infra/notify"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe(siteCfg *config.Site) *cli.Command {
	var (
		serverCfg   config.Server
		catalogCfg  config.Catalog
		downloadCfg config.Download
		webhookCfg  config.Webhook
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, downloadCfg.Flags()...)
	flags = append(flags, webhookCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting fetchcr server",
				slog.String("addr", serverCfg.Addr),
			)

			site, err := siteCfg.Configure()
			if err != nil {
				return err
			}
			fetcher := siteCfg.Fetcher(site)

			// Create use cases
			catalogUC := catalogCfg.Configure(fetcher, site)
			downloadUC := downloadCfg.Configure(fetcher)

			sink := notify.Multi{notify.Log{}}
			if hook := webhookCfg.Configure(ctx); hook != nil {
				defer hook.Close()
				sink = append(sink, hook)
			}

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				catalogUC,
				downloadUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithEventSink(sink),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			// webhook sink is closed after this returns
			server.Drain(shutdownCtx)

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
