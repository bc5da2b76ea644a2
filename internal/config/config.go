// Package config loads and validates user settings.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/itimeapp/itime/internal/models"
)

type (
	// Config holds all configuration settings.
	Config struct {
		prompted      *PromptOptions
		Path          string             `mapstructure:"-"`
		Calendar      CalendarConfig     `mapstructure:"calendar"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		Timer         TimerConfig        `mapstructure:"timer"`
	}

	// TimerConfig holds engine settings.
	TimerConfig struct {
		MinValidDuration    time.Duration `mapstructure:"min_valid_duration"`
		TickInterval        time.Duration `mapstructure:"tick_interval"`
		PointerRefreshTicks int           `mapstructure:"pointer_refresh_ticks"`
	}

	// CalendarConfig controls syncing completed sessions to a calendar.
	CalendarConfig struct {
		SelectedID  string `mapstructure:"selected_id"`
		SyncEnabled bool   `mapstructure:"sync_enabled"`
	}

	// NotificationConfig holds reminder settings. Interval is one of
	// ReminderIntervals.
	NotificationConfig struct {
		Interval string `mapstructure:"interval"`
		Enabled  bool   `mapstructure:"enabled"`
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.3.0"

// ReminderNever disables session reminders.
const ReminderNever = "never"

// ReminderIntervals lists the accepted values of notifications.interval.
var ReminderIntervals = []string{
	ReminderNever, "1m", "5m", "15m", "30m", "45m", "60m",
}

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// New creates a new Config and applies options in order.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

// CompletionPolicy returns the policy applied to explicit stops.
func (c *Config) CompletionPolicy() models.CompletionPolicy {
	return models.CompletionPolicy{
		MinValidDuration:    c.Timer.MinValidDuration,
		CalendarSyncEnabled: c.Calendar.SyncEnabled,
		CalendarID:          c.Calendar.SelectedID,
	}
}

// ReminderInterval returns the reminder cadence. ok is false when
// reminders are off.
func (c *Config) ReminderInterval() (d time.Duration, ok bool) {
	if !c.Notifications.Enabled || c.Notifications.Interval == ReminderNever {
		return 0, false
	}

	d, err := time.ParseDuration(c.Notifications.Interval)
	if err != nil || d <= 0 {
		return 0, false
	}

	return d, true
}

// Entry is one configuration key and its effective value.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Entries lists the effective settings in Keys order.
func (c *Config) Entries() []Entry {
	return []Entry{
		{keyMinValidDuration, c.Timer.MinValidDuration.String()},
		{keyTickInterval, c.Timer.TickInterval.String()},
		{keyPointerRefreshTicks, strconv.Itoa(c.Timer.PointerRefreshTicks)},
		{keyCalendarSyncEnabled, strconv.FormatBool(c.Calendar.SyncEnabled)},
		{keyCalendarSelectedID, c.Calendar.SelectedID},
		{keyNotificationsEnabled, strconv.FormatBool(c.Notifications.Enabled)},
		{keyNotificationInterval, c.Notifications.Interval},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"min_valid_duration=%s reminders=%s calendar_sync=%t",
		c.Timer.MinValidDuration,
		c.Notifications.Interval,
		c.Calendar.SyncEnabled,
	)
}
