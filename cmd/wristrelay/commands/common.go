// Package commands implements the wristrelay command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/wristrelay/internal/config"
	"git.home.luguber.info/inful/wristrelay/internal/effects"
	"git.home.luguber.info/inful/wristrelay/internal/engine"
	"git.home.luguber.info/inful/wristrelay/internal/transport"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"wristrelay.yaml" env:"WRISTRELAY_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run      RunCmd      `cmd:"" help:"Run the notification screen against the message channel"`
	Phone    PhoneCmd    `cmd:"" help:"Companion-side tools talking to a running relay"`
	Settings SettingsCmd `cmd:"" help:"Read and write user settings"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`

	// Level is shared by every handler installed for this process so a
	// configuration reload can change verbosity live.
	Level *slog.LevelVar `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	c.Level = &slog.LevelVar{}
	if c.Verbose {
		c.Level.Set(slog.LevelDebug)
	}
	g.Logger = newLogger(os.Stderr, config.LogFormatText, c.Level)
	slog.SetDefault(g.Logger)
	return nil
}

// configure applies the logging section of cfg. --verbose always wins.
func (c *CLI) configure(g *Global, cfg *config.Config) {
	if !c.Verbose {
		c.Level.Set(slogLevel(cfg.Logging.Level))
	}
	g.Logger = newLogger(os.Stderr, cfg.Logging.Format, c.Level)
	slog.SetDefault(g.Logger)
}

func newLogger(w io.Writer, format config.LogFormat, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func slogLevel(l config.LogLevel) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func transportOptions(cfg *config.Config, name string) transport.Options {
	return transport.Options{
		URL:             cfg.Transport.URL,
		Name:            name,
		InboundSubject:  cfg.Transport.InboundSubject,
		OutboundSubject: cfg.Transport.OutboundSubject,
		FlushTimeout:    cfg.Transport.FlushTimeout,
		Retry:           cfg.Transport.Retry.Policy(),
	}
}

// reconfigureEvent maps a reloaded configuration onto the engine event that
// applies it.
func reconfigureEvent(cfg *config.Config, verbose bool) engine.Reconfigure {
	level := slogLevel(cfg.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}
	return engine.Reconfigure{
		Level:       level,
		Policy:      effects.Policy(cfg.Screen.TimerPolicy),
		ExitOnClose: cfg.Screen.ExitOnClose,
	}
}
