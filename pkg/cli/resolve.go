package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/fetchcr/pkg/cli/config"
	"github.com/m-mizutani/fetchcr/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdResolve(siteCfg *config.Site) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Print the direct download link of one catalog entry",
		ArgsUsage: "SLUG",
		Action: func(ctx context.Context, c *cli.Command) error {
			slug := c.Args().First()
			if slug == "" {
				return goerr.New("slug is required")
			}

			site, err := siteCfg.Configure()
			if err != nil {
				return err
			}

			link, err := usecase.NewDetailResolver(siteCfg.Fetcher(site), site).Resolve(ctx, slug)
			if err != nil {
				return goerr.Wrap(err, "failed to resolve entry", goerr.V("slug", slug))
			}
			if link == "" {
				return goerr.New("entry has no download", goerr.V("slug", slug))
			}

			fmt.Fprintln(os.Stdout, link)
			return nil
		},
	}
}
