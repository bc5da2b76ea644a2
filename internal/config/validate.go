package config

import (
	"slices"
	"strings"
	"time"
)

var (
	maxMinValidDuration = 24 * time.Hour

	minTickInterval = 100 * time.Millisecond
	maxTickInterval = time.Minute

	minRefreshTicks = 1
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if c.Timer.MinValidDuration < 0 ||
		c.Timer.MinValidDuration > maxMinValidDuration {
		return errInvalidDuration.Fmt(
			"minimum valid duration",
			time.Duration(0),
			maxMinValidDuration,
		)
	}

	if c.Timer.TickInterval < minTickInterval ||
		c.Timer.TickInterval > maxTickInterval {
		return errInvalidDuration.Fmt(
			"tick interval",
			minTickInterval,
			maxTickInterval,
		)
	}

	if c.Timer.PointerRefreshTicks < minRefreshTicks {
		return errInvalidRefreshTicks.Fmt(minRefreshTicks)
	}

	if !slices.Contains(ReminderIntervals, c.Notifications.Interval) {
		return errInvalidReminderInterval.Fmt(
			strings.Join(ReminderIntervals, ", "),
			c.Notifications.Interval,
		)
	}

	return nil
}
