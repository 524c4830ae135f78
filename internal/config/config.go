// Package config loads the wristrelay YAML configuration.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
	"git.home.luguber.info/inful/wristrelay/internal/retry"
)

// Config is the complete configuration file.
type Config struct {
	Transport TransportConfig `yaml:"transport" validate:"required"`
	Settings  SettingsConfig  `yaml:"settings"`
	Screen    ScreenConfig    `yaml:"screen"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TransportConfig describes the NATS message channel.
type TransportConfig struct {
	URL             string        `yaml:"url" validate:"required,url"`
	InboundSubject  string        `yaml:"inbound_subject" validate:"required"`
	OutboundSubject string        `yaml:"outbound_subject" validate:"required,nefield=InboundSubject"`
	FlushTimeout    time.Duration `yaml:"flush_timeout" validate:"gt=0"`
	Retry           RetryConfig   `yaml:"retry"`
}

// RetryConfig is the backoff used by companion commands while the channel
// is still connecting.
type RetryConfig struct {
	Mode       retry.Mode    `yaml:"mode"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	MaxRetries int           `yaml:"max_retries"`
}

// raw is the policy exactly as configured, without the clamping of
// retry.NewPolicy.
func (r RetryConfig) raw() retry.Policy {
	return retry.Policy{Mode: r.Mode, Initial: r.Initial, Max: r.Max, MaxRetries: r.MaxRetries}
}

// Policy converts the section into a retry policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.NewPolicy(r.Mode, r.Initial, r.Max, r.MaxRetries)
}

// SettingsConfig locates the settings database.
type SettingsConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ScreenConfig controls the notification screen lifecycle.
type ScreenConfig struct {
	// ExitOnClose stops the daemon when the screen closes instead of waiting
	// for the next notification to reopen it.
	ExitOnClose bool        `yaml:"exit_on_close"`
	TimerPolicy TimerPolicy `yaml:"timer_policy" validate:"oneof=coexist replace"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address" validate:"required,hostname_port"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level" validate:"oneof=debug info warn error"`
	Format LogFormat `yaml:"format" validate:"oneof=json text"`
}

var (
	// ErrNotFound indicates the configuration file does not exist.
	ErrNotFound = errors.ConfigError("configuration file not found").Build()

	// ErrParse indicates the file is not valid YAML for Config.
	ErrParse = errors.ConfigError("failed to parse configuration").Build()

	// ErrExists indicates Init refused to overwrite a file.
	ErrExists = errors.ConfigError("configuration file already exists").Build()
)

// Load reads, normalizes, defaults and validates the configuration at path.
// Variables from a .env file in the working directory are loaded first and
// ${VAR} references in the file are expanded.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load .env").Build()
	}

	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound.WithContext("path", path)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration").
			WithContext("path", path).Build()
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, ErrParse.Message()).Build()
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used by Init.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Init writes the default configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ErrExists.WithContext("path", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal configuration").Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to write configuration").
			WithContext("path", path).Build()
	}
	return nil
}
