package config

import (
	"strings"

	"git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
)

// Normalize case-folds enumerations and trims subjects. Unknown enum values
// are reported rather than silently replaced.
func Normalize(cfg *Config) error {
	var err error
	if cfg.Logging.Level, err = logLevels.Parse(string(cfg.Logging.Level)); err != nil {
		return invalid("logging.level", err)
	}
	if cfg.Logging.Format, err = logFormats.Parse(string(cfg.Logging.Format)); err != nil {
		return invalid("logging.format", err)
	}
	if cfg.Screen.TimerPolicy, err = timerPolicies.Parse(string(cfg.Screen.TimerPolicy)); err != nil {
		return invalid("screen.timer_policy", err)
	}
	if cfg.Transport.Retry.Mode, err = retryModes.Parse(string(cfg.Transport.Retry.Mode)); err != nil {
		return invalid("transport.retry.mode", err)
	}
	cfg.Transport.URL = strings.TrimSpace(cfg.Transport.URL)
	cfg.Transport.InboundSubject = strings.TrimSpace(cfg.Transport.InboundSubject)
	cfg.Transport.OutboundSubject = strings.TrimSpace(cfg.Transport.OutboundSubject)
	return nil
}

func invalid(field string, err error) error {
	return errors.WrapError(err, errors.CategoryValidation, "invalid configuration value").
		WithContext("field", field).Build()
}
