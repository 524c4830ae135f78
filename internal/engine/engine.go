// Package engine runs the notification screen: one goroutine consumes a queue
// of inbound messages, input, ticks, send completions and timer expiries and
// is the only place where screen state changes.
package engine

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/wristrelay/internal/device"
	"git.home.luguber.info/inful/wristrelay/internal/effects"
	"git.home.luguber.info/inful/wristrelay/internal/logfields"
	"git.home.luguber.info/inful/wristrelay/internal/metrics"
	"git.home.luguber.info/inful/wristrelay/internal/navigation"
	"git.home.luguber.info/inful/wristrelay/internal/settings"
	"git.home.luguber.info/inful/wristrelay/internal/slots"
)

// DefaultQueueSize is the event queue capacity used when Options leaves it
// unset.
const DefaultQueueSize = 64

// ReasonShutdown is the close reason recorded when the engine stops with a
// screen open.
const ReasonShutdown = "shutdown"

// Device is the hardware surface of the watch.
type Device interface {
	navigation.View
	effects.Vibrator
	effects.Backlight
	effects.StatusBar
	Attach(store *slots.Store, menu device.Menu, invert bool)
	Detach()
}

// SettingsLoader reads user settings at screen entry.
type SettingsLoader interface {
	Load(ctx context.Context) (settings.Values, error)
}

// Options tune engine behaviour.
type Options struct {
	// ExitOnClose stops Run when the screen closes instead of waiting for the
	// next notification.
	ExitOnClose bool
	TimerPolicy effects.Policy
	QueueSize   int
}

// Deps are the collaborators of an Engine. Sender and Device are required.
type Deps struct {
	Sender   navigation.Sender
	Device   Device
	Settings SettingsLoader
	Recorder metrics.Recorder
	Logger   *slog.Logger
	// LogLevel is adjusted by Reconfigure events when set.
	LogLevel *slog.LevelVar
	Now      func() time.Time
}

// Engine owns the notification screen.
type Engine struct {
	deps   Deps
	opts   Options
	rec    metrics.Recorder
	log    *slog.Logger
	events chan Event
	done   chan struct{}

	screen *Screen
}

// New returns an idle engine. No screen is open until the first notification
// arrives.
func New(d Deps, opts Options) *Engine {
	if d.Recorder == nil {
		d.Recorder = metrics.NoopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.TimerPolicy == "" {
		opts.TimerPolicy = effects.PolicyCoexist
	}
	return &Engine{
		deps:   d,
		opts:   opts,
		rec:    d.Recorder,
		log:    d.Logger,
		events: make(chan Event, opts.QueueSize),
		done:   make(chan struct{}),
	}
}

// Post enqueues ev. It blocks while the queue is full and returns false once
// Run has returned.
func (e *Engine) Post(ev Event) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.events <- ev:
		return true
	case <-e.done:
		return false
	}
}

// Deliver enqueues raw inbound bytes. It matches the transport callback
// signature.
func (e *Engine) Deliver(data []byte) { e.Post(Inbound{Data: data}) }

// Run consumes events until ctx ends, or until the screen closes when
// ExitOnClose is set.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	e.log.Info("Notification engine started",
		slog.Bool("exit_on_close", e.opts.ExitOnClose),
		slog.String("timer_policy", string(e.opts.TimerPolicy)))

	for {
		select {
		case <-ctx.Done():
			if e.screen != nil {
				e.closeScreen(ReasonShutdown)
			}
			e.log.Info("Notification engine stopped")
			return nil
		case ev := <-e.events:
			if stop := e.dispatch(ctx, ev); stop {
				e.log.Info("Notification engine exiting after screen close")
				return nil
			}
		}
	}
}

// dispatch handles one event and reports whether Run should return.
func (e *Engine) dispatch(ctx context.Context, ev Event) bool {
	var out navigation.Outcome

	switch ev := ev.(type) {
	case Inbound:
		out = e.handleInbound(ctx, ev.Data)
	case Input:
		if e.screen == nil {
			return false
		}
		out = e.screen.Nav.Press(ev.Button)
	case Shake:
		if e.screen == nil {
			return false
		}
		out = e.screen.Nav.Shake()
	case Reply:
		if e.screen == nil {
			return false
		}
		e.screen.Nav.Reply(ev.Text)
	case Tick:
		if e.screen == nil {
			return false
		}
		out = e.screen.Effects.Tick()
	case Sent:
		if e.screen == nil {
			return false
		}
		e.screen.Nav.Sent()
	case timerFired:
		if e.screen == nil || e.screen.ID != ev.screen {
			return false
		}
		ev.fire()
	case Reconfigure:
		e.reconfigure(ev)
	}

	if e.screen != nil && out.Close {
		e.closeScreen(out.Reason)
		return e.opts.ExitOnClose
	}
	e.observe()
	return false
}

func (e *Engine) reconfigure(ev Reconfigure) {
	if e.deps.LogLevel != nil {
		e.deps.LogLevel.Set(ev.Level)
	}
	e.opts.TimerPolicy = ev.Policy
	e.opts.ExitOnClose = ev.ExitOnClose
	e.log.Info("Configuration applied",
		slog.String("level", ev.Level.String()),
		slog.String("timer_policy", string(ev.Policy)),
		slog.Bool("exit_on_close", ev.ExitOnClose))
}

// observe publishes the store gauges of the open screen.
func (e *Engine) observe() {
	if e.screen == nil {
		return
	}
	e.rec.SetFreeBudget(e.screen.Store.Free())
	e.rec.SetStoredRecords(e.screen.Store.Len())
}

// Screen returns the open screen, or nil. Only safe to call from the engine
// goroutine or after Run returned.
func (e *Engine) Screen() *Screen { return e.screen }

func screenAttr(s *Screen) slog.Attr { return logfields.ScreenID(s.ID) }
