package config

import (
	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/fetchcr/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Catalog holds catalog pipeline configuration
type Catalog struct {
	ResolveWorkers int
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "resolve-workers",
			Usage:       "Number of entries resolved concurrently (1 keeps requests sequential)",
			Value:       1,
			Destination: &c.ResolveWorkers,
			Sources:     cli.EnvVars("FETCHCR_RESOLVE_WORKERS"),
		},
	}
}

// Configure builds the catalog use case
func (c *Catalog) Configure(fetcher interfaces.PageFetcher, site model.Site) interfaces.CatalogUseCase {
	return usecase.NewCatalog(fetcher, site, usecase.WithResolveWorkers(c.ResolveWorkers))
}
