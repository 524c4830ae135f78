package config

import (
	"time"

	"git.home.luguber.info/inful/wristrelay/internal/retry"
)

// Defaults applied to unset fields.
const (
	DefaultURL             = "nats://127.0.0.1:4222"
	DefaultInboundSubject  = "wristrelay.inbound"
	DefaultOutboundSubject = "wristrelay.outbound"
	DefaultFlushTimeout    = 2 * time.Second
	DefaultSettingsPath    = "./wristrelay.db"
	DefaultMetricsAddress  = "127.0.0.1:9464"
)

// ApplyDefaults fills every unset field.
func ApplyDefaults(cfg *Config) {
	t := &cfg.Transport
	if t.URL == "" {
		t.URL = DefaultURL
	}
	if t.InboundSubject == "" {
		t.InboundSubject = DefaultInboundSubject
	}
	if t.OutboundSubject == "" {
		t.OutboundSubject = DefaultOutboundSubject
	}
	if t.FlushTimeout == 0 {
		t.FlushTimeout = DefaultFlushTimeout
	}
	d, r := retry.DefaultPolicy(), &t.Retry
	if r.Mode == "" {
		r.Mode = d.Mode
	}
	if r.Initial == 0 && r.Max == 0 && r.MaxRetries == 0 {
		r.Initial, r.Max, r.MaxRetries = d.Initial, d.Max, d.MaxRetries
	}
	if cfg.Settings.Path == "" {
		cfg.Settings.Path = DefaultSettingsPath
	}
	if cfg.Screen.TimerPolicy == "" {
		cfg.Screen.TimerPolicy = TimerPolicyCoexist
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = DefaultMetricsAddress
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}
