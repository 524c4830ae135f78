package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
	"git.home.luguber.info/inful/wristrelay/internal/retry"
)

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, DefaultURL, cfg.Transport.URL)
	require.Equal(t, TimerPolicyCoexist, cfg.Screen.TimerPolicy)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, retry.DefaultPolicy(), cfg.Transport.Retry.Policy())
}

func TestParse_FullFile(t *testing.T) {
	t.Setenv("WR_NATS", "nats://broker:4222")
	cfg, err := Parse([]byte(`
transport:
  url: ${WR_NATS}
  inbound_subject: watch.in
  outbound_subject: watch.out
  flush_timeout: 750ms
  retry:
    mode: Linear
    initial: 50ms
    max: 1s
    max_retries: 0
settings:
  path: /var/lib/wristrelay/settings.db
screen:
  exit_on_close: true
  timer_policy: " Replace "
metrics:
  enabled: true
  address: 0.0.0.0:9464
logging:
  level: WARNING
  format: json
`))
	require.NoError(t, err)
	require.Equal(t, "nats://broker:4222", cfg.Transport.URL)
	require.Equal(t, 750*time.Millisecond, cfg.Transport.FlushTimeout)
	require.Equal(t, retry.Policy{Mode: retry.ModeLinear, Initial: 50 * time.Millisecond, Max: time.Second}, cfg.Transport.Retry.Policy())
	require.True(t, cfg.Screen.ExitOnClose)
	require.Equal(t, TimerPolicyReplace, cfg.Screen.TimerPolicy)
	require.Equal(t, LogLevelWarn, cfg.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]struct {
		yaml     string
		category ferrors.ErrorCategory
	}{
		"unknown field":           {"transport:\n  port: 4222\n", ferrors.CategoryConfig},
		"bad policy":              {"screen:\n  timer_policy: merge\n", ferrors.CategoryValidation},
		"bad level":               {"logging:\n  level: loud\n", ferrors.CategoryValidation},
		"same subjects":           {"transport:\n  inbound_subject: x\n  outbound_subject: x\n", ferrors.CategoryValidation},
		"bad url":                 {"transport:\n  url: not a url\n", ferrors.CategoryValidation},
		"bad address":             {"metrics:\n  address: nowhere\n", ferrors.CategoryValidation},
		"negative flush":          {"transport:\n  flush_timeout: -1s\n", ferrors.CategoryValidation},
		"malformed yaml":          {"transport: [\n", ferrors.CategoryConfig},
		"bad retry mode":          {"transport:\n  retry:\n    mode: jitter\n", ferrors.CategoryValidation},
		"retry max below initial": {"transport:\n  retry:\n    initial: 2s\n    max: 1s\n", ferrors.CategoryValidation},
		"negative retries":        {"transport:\n  retry:\n    initial: 1s\n    max: 1s\n    max_retries: -1\n", ferrors.CategoryValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			require.Equal(t, tc.category, ferrors.GetCategory(err))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInit_WritesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wristrelay.yaml")
	require.NoError(t, Init(path, false))
	require.ErrorIs(t, Init(path, false), ErrExists)
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "flush_timeout: 2s")
	require.Contains(t, string(data), "mode: exponential")
}

func TestDefault_PassesValidation(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	require.Equal(t, retry.ModeExponential, cfg.Transport.Retry.Mode)
}

func TestValidate_RetryModeOnly(t *testing.T) {
	cfg := Default()
	cfg.Transport.Retry = RetryConfig{Mode: retry.ModeLinear}
	ApplyDefaults(cfg)
	require.Equal(t, retry.ModeLinear, cfg.Transport.Retry.Mode)
	require.Equal(t, retry.DefaultPolicy().Initial, cfg.Transport.Retry.Initial)
	require.NoError(t, Validate(cfg))

	cfg.Transport.Retry.Mode = "jitter"
	err := Validate(cfg)
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryValidation, ferrors.GetCategory(err))
	require.Contains(t, err.Error(), "unknown mode")
}
