package config

import (
	"git.home.luguber.info/inful/wristrelay/internal/foundation/normalization"
	"git.home.luguber.info/inful/wristrelay/internal/retry"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = normalization.New("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = normalization.New("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// TimerPolicy selects how overlapping vibration-stop timers behave.
type TimerPolicy string

const (
	TimerPolicyCoexist TimerPolicy = "coexist"
	TimerPolicyReplace TimerPolicy = "replace"
)

var timerPolicies = normalization.New("timer policy", map[string]TimerPolicy{
	"coexist": TimerPolicyCoexist,
	"replace": TimerPolicyReplace,
}, TimerPolicyCoexist)

var retryModes = normalization.New("retry mode", map[string]retry.Mode{
	"fixed":       retry.ModeFixed,
	"linear":      retry.ModeLinear,
	"exponential": retry.ModeExponential,
}, retry.ModeExponential)
