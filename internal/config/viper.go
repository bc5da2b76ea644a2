package config

import (
	"errors"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/viper"
)

const (
	keyMinValidDuration     = "timer.min_valid_duration"
	keyTickInterval         = "timer.tick_interval"
	keyPointerRefreshTicks  = "timer.pointer_refresh_ticks"
	keyCalendarSyncEnabled  = "calendar.sync_enabled"
	keyCalendarSelectedID   = "calendar.selected_id"
	keyNotificationsEnabled = "notifications.enabled"
	keyNotificationInterval = "notifications.interval"
)

// Keys lists every settable configuration key.
func Keys() []string {
	return []string{
		keyMinValidDuration,
		keyTickInterval,
		keyPointerRefreshTicks,
		keyCalendarSyncEnabled,
		keyCalendarSelectedID,
		keyNotificationsEnabled,
		keyNotificationInterval,
	}
}

// WithViperConfig returns an Option that loads configuration from the YAML
// file at configPath, creating it with defaults when missing.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := newViper(configPath)

		if c.prompted != nil {
			c.prompted.apply(v)
		}

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c, configPath)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c, configPath)
	}
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault(keyMinValidDuration, "5m")
	v.SetDefault(keyTickInterval, "1s")
	v.SetDefault(keyPointerRefreshTicks, 10)
	v.SetDefault(keyCalendarSyncEnabled, false)
	v.SetDefault(keyCalendarSelectedID, "")
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keyNotificationInterval, "60m")

	return v
}

func loadViperConfig(v *viper.Viper, c *Config, configPath string) error {
	if err := v.Unmarshal(c); err != nil {
		return errReadConfig.Wrap(err)
	}

	c.Path = configPath

	return nil
}

// Set validates and persists a single key in the config file at configPath.
func Set(configPath, key, value string) error {
	if !slices.Contains(Keys(), key) {
		return errUnknownKey.Fmt(key)
	}

	v := newViper(configPath)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errReadConfig.Wrap(err)
	}

	typed, err := coerce(v.Get(key), value)
	if err != nil {
		return errInvalidValue.Fmt(value, key)
	}

	v.Set(key, typed)

	c := &Config{}
	if err := loadViperConfig(v, c, configPath); err != nil {
		return err
	}

	if err := c.Validate(); err != nil {
		return err
	}

	if err := v.WriteConfig(); err != nil {
		return errWriteConfig.Wrap(err)
	}

	return nil
}

// coerce converts value to the type of the key's current value.
func coerce(current any, value string) (any, error) {
	switch current.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int:
		return strconv.Atoi(value)
	default:
		return value, nil
	}
}
