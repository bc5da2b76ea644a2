package config

import (
	"time"

	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	MinValid      string
	Calendar      string
	DisableNotify bool
}

// WithCLIConfig returns an Option that applies command-line overrides. It
// must follow WithViperConfig.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		return applyCLIOptions(c, CLIOptions{
			MinValid:      ctx.String("min-valid"),
			Calendar:      ctx.String("calendar"),
			DisableNotify: ctx.Bool("disable-notification"),
		})
	}
}

func applyCLIOptions(c *Config, opts CLIOptions) error {
	if opts.MinValid != "" {
		d, err := time.ParseDuration(opts.MinValid)
		if err != nil {
			return errInvalidCLIDuration.Fmt("min-valid", err)
		}

		c.Timer.MinValidDuration = d
	}

	if opts.Calendar != "" {
		c.Calendar.SyncEnabled = true
		c.Calendar.SelectedID = opts.Calendar
	}

	if opts.DisableNotify {
		c.Notifications.Enabled = false
	}

	return nil
}
