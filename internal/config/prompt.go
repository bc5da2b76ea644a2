package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/spf13/viper"
)

const asciiLogo = `
██╗████████╗██╗███╗   ███╗███████╗
██║╚══██╔══╝██║████╗ ████║██╔════╝
██║   ██║   ██║██╔████╔██║█████╗
██║   ██║   ██║██║╚██╔╝██║██╔══╝
██║   ██║   ██║██║ ╚═╝ ██║███████╗
╚═╝   ╚═╝   ╚═╝╚═╝     ╚═╝╚══════╝`

// PromptOptions holds the user's responses to the configuration prompts.
type PromptOptions struct {
	MinValidDuration string
	ReminderInterval string
}

// WithPromptConfig returns an Option that asks for the main settings when
// no config file exists yet. It must precede WithViperConfig.
func WithPromptConfig(configPath string) Option {
	return func(c *Config) error {
		_, err := os.Stat(configPath)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return err
		}

		opts, err := promptUser()
		if err != nil {
			return fmt.Errorf("user prompt failed: %w", err)
		}

		c.prompted = &opts

		return nil
	}
}

func promptUser() (PromptOptions, error) {
	var opts PromptOptions

	pterm.Println(asciiLogo)

	_ = putils.BulletListFromString(`Follow the prompts below to configure iTime for the first time.
Select your preferred value, or press ENTER to accept the defaults.
Change any setting later with 'itime config set'.`, " ").
		Render()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Shortest session that counts").
				Options(
					huh.NewOption("1 minute", "1m"),
					huh.NewOption("5 minutes", "5m").Selected(true),
					huh.NewOption("10 minutes", "10m"),
					huh.NewOption("15 minutes", "15m"),
				).
				Value(&opts.MinValidDuration),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Remind me while a session runs").
				Options(
					huh.NewOption("Never", ReminderNever),
					huh.NewOption("Every 15 minutes", "15m"),
					huh.NewOption("Every 30 minutes", "30m"),
					huh.NewOption("Every hour", "60m").Selected(true),
				).
				Value(&opts.ReminderInterval),
		),
	)

	if err := form.Run(); err != nil {
		return opts, fmt.Errorf("form interaction failed: %w", err)
	}

	return opts, nil
}

func (p *PromptOptions) apply(v *viper.Viper) {
	if p.MinValidDuration != "" {
		v.Set(keyMinValidDuration, p.MinValidDuration)
	}

	if p.ReminderInterval != "" {
		v.Set(keyNotificationInterval, p.ReminderInterval)
	}
}
