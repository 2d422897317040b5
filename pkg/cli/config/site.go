package config

import (
	"os"
	"time"

	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/fetchcr/pkg/infra/web"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Site holds the catalog site configuration. Values are layered: built-in
// defaults, then the TOML profile, then flags and environment.
type Site struct {
	File      string
	BaseURL   string
	Category  string
	BuildID   string
	UserAgent string
	Timeout   time.Duration
}

// siteProfile is the TOML layout of --site-config
type siteProfile struct {
	BaseURL   string `toml:"base_url"`
	Category  string `toml:"category"`
	BuildID   string `toml:"build_id"`
	UserAgent string `toml:"user_agent"`
}

// Flags returns CLI flags for site configuration
func (c *Site) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "site-config",
			Usage:       "TOML file with base_url, category, build_id and user_agent",
			Destination: &c.File,
			Sources:     cli.EnvVars("FETCHCR_SITE_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Catalog site origin (default: " + model.DefaultBaseURL + ")",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("FETCHCR_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Catalog category (default: " + model.DefaultCategory + ")",
			Destination: &c.Category,
			Sources:     cli.EnvVars("FETCHCR_CATEGORY"),
		},
		&cli.StringFlag{
			Name:        "build-id",
			Usage:       "Build identifier embedded in detail document URLs",
			Destination: &c.BuildID,
			Sources:     cli.EnvVars("FETCHCR_BUILD_ID"),
		},
		&cli.StringFlag{
			Name:        "user-agent",
			Usage:       "User-Agent header sent with every request",
			Destination: &c.UserAgent,
			Sources:     cli.EnvVars("FETCHCR_USER_AGENT"),
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout for listing and API requests (downloads are not limited)",
			Value:       30 * time.Second,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("FETCHCR_TIMEOUT"),
		},
	}
}

// Configure resolves the effective site
func (c *Site) Configure() (model.Site, error) {
	site := model.DefaultSite()

	if c.File != "" {
		raw, err := os.ReadFile(c.File)
		if err != nil {
			return model.Site{}, goerr.Wrap(err, "failed to read site config", goerr.V("path", c.File))
		}

		var profile siteProfile
		if err := toml.Unmarshal(raw, &profile); err != nil {
			return model.Site{}, goerr.Wrap(err, "failed to parse site config", goerr.V("path", c.File))
		}
		site = overlay(site, profile)
	}

	site = overlay(site, siteProfile{
		BaseURL:   c.BaseURL,
		Category:  c.Category,
		BuildID:   c.BuildID,
		UserAgent: c.UserAgent,
	})

	if site.BaseURL == "" || site.Category == "" || site.BuildID == "" {
		return model.Site{}, goerr.New("incomplete site configuration",
			goerr.V("base_url", site.BaseURL),
			goerr.V("category", site.Category),
			goerr.V("build_id", site.BuildID),
		)
	}

	return site, nil
}

// Fetcher builds the HTTP client for site
func (c *Site) Fetcher(site model.Site) interfaces.PageFetcher {
	opts := []web.Option{web.WithPageTimeout(c.Timeout)}
	if site.UserAgent != "" {
		opts = append(opts, web.WithUserAgent(site.UserAgent))
	}
	return web.NewClient(opts...)
}

func overlay(site model.Site, p siteProfile) model.Site {
	if p.BaseURL != "" {
		site.BaseURL = p.BaseURL
	}
	if p.Category != "" {
		site.Category = p.Category
	}
	if p.BuildID != "" {
		site.BuildID = p.BuildID
	}
	if p.UserAgent != "" {
		site.UserAgent = p.UserAgent
	}
	return site
}
