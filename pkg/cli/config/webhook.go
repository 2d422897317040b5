package config

import (
	"context"

	"github.com/m-mizutani/fetchcr/pkg/infra/notify"
	"github.com/urfave/cli/v3"
)

// Webhook holds transfer event webhook configuration
type Webhook struct {
	URL    string
	Secret string
}

// Flags returns CLI flags for webhook configuration
func (c *Webhook) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "webhook-url",
			Usage:       "Endpoint receiving download events as JSON POST",
			Destination: &c.URL,
			Sources:     cli.EnvVars("FETCHCR_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "webhook-secret",
			Usage:       "HMAC-SHA256 key for the " + notify.SignatureHeader + " header",
			Destination: &c.Secret,
			Sources:     cli.EnvVars("FETCHCR_WEBHOOK_SECRET"),
		},
	}
}

// Configure returns a webhook sink, or nil when no URL is set
func (c *Webhook) Configure(ctx context.Context) *notify.Webhook {
	if c.URL == "" {
		return nil
	}

	var opts []notify.WebhookOption
	if c.Secret != "" {
		opts = append(opts, notify.WithSecret(c.Secret))
	}
	return notify.NewWebhook(ctx, c.URL, opts...)
}
