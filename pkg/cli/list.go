package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/cli/config"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/fetchcr/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdList(siteCfg *config.Site) *cli.Command {
	var (
		catalogCfg config.Catalog
		page       string
		asJSON     bool
	)

	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:        "page",
			Aliases:     []string{"p"},
			Usage:       "Listing page number",
			Value:       usecase.DefaultPage,
			Destination: &page,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print entries as JSON",
			Destination: &asJSON,
		},
	}, catalogCfg.Flags()...)

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List one catalog page with resolved download links",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			site, err := siteCfg.Configure()
			if err != nil {
				return err
			}

			catalogUC := catalogCfg.Configure(siteCfg.Fetcher(site), site)

			ctxlog.From(ctx).Debug("Listing catalog",
				"page", page,
				"base_url", site.BaseURL,
				"category", site.Category,
			)

			entries, err := catalogUC.ListCatalog(ctx, page)
			if err != nil {
				return goerr.Wrap(err, "failed to list catalog", goerr.V("page", page))
			}

			if asJSON {
				return printCatalogJSON(os.Stdout, entries)
			}
			printCatalog(os.Stdout, entries)
			return nil
		},
	}
}

var (
	entryName  = color.New(color.Bold)
	entryLink  = color.New(color.FgCyan)
	entryEmpty = color.New(color.FgYellow)
)

func printCatalog(w io.Writer, entries []model.CatalogEntry) {
	if len(entries) == 0 {
		entryEmpty.Fprintln(w, "no entries")
		return
	}

	for i, entry := range entries {
		fmt.Fprintf(w, "%3d. ", i+1)
		entryName.Fprintln(w, entry.Name)
		if entry.DownloadLink == "" {
			entryEmpty.Fprintln(w, "     (no download link)")
		} else {
			entryLink.Fprintln(w, "     "+entry.DownloadLink)
		}
	}
}

func printCatalogJSON(w io.Writer, entries []model.CatalogEntry) error {
	if entries == nil {
		entries = []model.CatalogEntry{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return goerr.Wrap(err, "failed to encode entries")
	}
	return nil
}
