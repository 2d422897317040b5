package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/cli/config"
	"github.com/m-mizutani/fetchcr/pkg/infra/notify"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdDownload(siteCfg *config.Site) *cli.Command {
	var (
		downloadCfg config.Download
		webhookCfg  config.Webhook
	)

	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"dl"},
		Usage:     "Download one file with progress",
		ArgsUsage: "URL",
		Flags:     append(downloadCfg.Flags(), webhookCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			target := c.Args().First()

			site, err := siteCfg.Configure()
			if err != nil {
				return err
			}

			// interrupt keeps the partial file
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			sink := notify.Multi{newConsoleSink(os.Stderr)}
			if hook := webhookCfg.Configure(ctx); hook != nil {
				defer hook.Close()
				sink = append(sink, hook)
			}

			downloadUC := downloadCfg.Configure(siteCfg.Fetcher(site))
			result, err := downloadUC.DownloadFile(ctx, target, sink)
			if err != nil {
				return goerr.Wrap(err, "download failed")
			}

			ctxlog.From(ctx).Info("Download saved",
				"id", result.ID,
				"path", result.Path,
				"size", humanize.Bytes(result.Bytes),
			)
			fmt.Fprintln(os.Stdout, result.Path)
			return nil
		},
	}
}
