package config

import (
	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Download holds download engine configuration
type Download struct {
	OutputDir   string
	DefaultName string
}

// Flags returns CLI flags for download configuration
func (c *Download) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output-dir",
			Usage:       "Destination directory (default: ~/Downloads, or the working directory)",
			Destination: &c.OutputDir,
			Sources:     cli.EnvVars("FETCHCR_OUTPUT_DIR"),
		},
		&cli.StringFlag{
			Name:        "default-name",
			Usage:       "File name used when the URL has no usable last segment",
			Value:       usecase.DefaultFileName,
			Destination: &c.DefaultName,
			Sources:     cli.EnvVars("FETCHCR_DEFAULT_NAME"),
		},
	}
}

// Configure builds the download use case
func (c *Download) Configure(fetcher interfaces.PageFetcher) interfaces.DownloadUseCase {
	var opts []usecase.DownloadOption
	if c.OutputDir != "" {
		opts = append(opts, usecase.WithOutputDir(c.OutputDir))
	}
	if c.DefaultName != "" {
		opts = append(opts, usecase.WithDefaultFileName(c.DefaultName))
	}
	return usecase.NewDownload(fetcher, opts...)
}
