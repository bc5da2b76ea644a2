package config

import "github.com/itimeapp/itime/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing config file failed",
	}

	errUnknownKey = &apperr.Error{
		Message: "unknown config key: %s",
	}

	errInvalidValue = &apperr.Error{
		Message: "invalid value %q for %s",
	}

	errInvalidDuration = &apperr.Error{
		Message: "%s must be between %v and %v",
	}

	errInvalidRefreshTicks = &apperr.Error{
		Message: "pointer refresh interval must be at least %d ticks",
	}

	errInvalidReminderInterval = &apperr.Error{
		Message: "reminder interval must be one of %v, got %s",
	}

	errInvalidCLIDuration = &apperr.Error{
		Message: "invalid %s duration: %v",
	}
)
