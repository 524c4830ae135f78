package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/wristrelay/internal/config"
	"git.home.luguber.info/inful/wristrelay/internal/device"
	"git.home.luguber.info/inful/wristrelay/internal/effects"
	"git.home.luguber.info/inful/wristrelay/internal/engine"
	"git.home.luguber.info/inful/wristrelay/internal/logfields"
	"git.home.luguber.info/inful/wristrelay/internal/metrics"
	"git.home.luguber.info/inful/wristrelay/internal/settings"
	"git.home.luguber.info/inful/wristrelay/internal/transport"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Stdin   bool `help:"Read button events from standard input" default:"true" negatable:""`
	NoWatch bool `help:"Do not reload the configuration file when it changes"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	root.configure(g, cfg)
	return r.run(g.Logger, root, cfg)
}

func (r *RunCmd) run(logger *slog.Logger, root *CLI, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := settings.NewSQLiteStore(cfg.Settings.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		stop := serveMetrics(cfg.Metrics.Address, reg, logger)
		defer stop()
	}

	link, err := transport.Connect(transportOptions(cfg, "wristrelay-device"), logger)
	if err != nil {
		return err
	}
	defer func() { _ = link.Close() }()

	eng := engine.New(engine.Deps{
		Sender:   link,
		Device:   device.NewHeadless(os.Stdout, logger),
		Settings: store,
		Recorder: rec,
		Logger:   logger,
		LogLevel: root.Level,
	}, engine.Options{
		ExitOnClose: cfg.Screen.ExitOnClose,
		TimerPolicy: effects.Policy(cfg.Screen.TimerPolicy),
	})

	link.OnSent(func() { eng.Post(engine.Sent{}) })
	if err := link.Subscribe(eng.Deliver); err != nil {
		return err
	}

	ticker, err := engine.NewTicker(eng, engine.TickInterval)
	if err != nil {
		return err
	}
	ticker.Start()
	defer func() { _ = ticker.Stop() }()

	if !r.NoWatch {
		w, err := config.NewWatcher(root.Config, config.DefaultDebounce, func(c *config.Config) {
			eng.Post(reconfigureEvent(c, root.Verbose))
		}, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Warn("Config watcher stopped", logfields.Error(err))
			}
		}()
	}

	if r.Stdin {
		go func() {
			if err := readInput(os.Stdin, eng, logger); err != nil {
				logger.Warn("Input reader stopped", logfields.Error(err))
			}
		}()
	}

	logger.Info("Relay running",
		slog.String("url", cfg.Transport.URL),
		slog.String("inbound_subject", cfg.Transport.InboundSubject))
	return eng.Run(ctx)
}

// serveMetrics exposes reg on addr and returns a function stopping the
// server.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Serving metrics", slog.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", logfields.Error(fmt.Errorf("listen %s: %w", addr, err)))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
