// Package effects derives vibration, backlight and idle-close behaviour from
// the navigation state and the one-second tick.
package effects

import (
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/wristrelay/internal/logfields"
	"git.home.luguber.info/inful/wristrelay/internal/metrics"
	"git.home.luguber.info/inful/wristrelay/internal/navigation"
	"git.home.luguber.info/inful/wristrelay/internal/protocol"
	"git.home.luguber.info/inful/wristrelay/internal/settings"
	"git.home.luguber.info/inful/wristrelay/internal/slots"
)

// PulseDuration is the length of a periodic reminder pulse.
const PulseDuration = 500 * time.Millisecond

// ReasonIdleTimeout is the close reason reported by Tick.
const ReasonIdleTimeout = "idle_timeout"

// Policy decides what happens to a pending vibration-stop timer when a new
// vibration starts.
type Policy string

const (
	// PolicyCoexist lets every timer run; the first to expire clears the
	// vibrating flag.
	PolicyCoexist Policy = "coexist"
	// PolicyReplace cancels the pending timer before registering a new one.
	PolicyReplace Policy = "replace"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyCoexist, PolicyReplace:
		return p, nil
	}
	return "", fmt.Errorf("unknown timer policy %q", s)
}

// Vibrator is the vibration motor.
type Vibrator interface {
	// Play runs a custom pattern of alternating buzz and rest durations.
	Play(pattern []uint16)
	Pulse()
}

// Backlight is the screen light.
type Backlight interface {
	SetLight(on bool)
}

// StatusBar shows the clock text.
type StatusBar interface {
	SetClock(text string)
}

// Timers registers single-shot callbacks. fire must run on the caller's
// event loop. The returned function cancels the timer.
type Timers interface {
	After(d time.Duration, fire func()) (cancel func())
}

// Deps are the collaborators of a Scheduler.
type Deps struct {
	State     *navigation.State
	Store     *slots.Store
	Menu      interface{ Visible() bool }
	Vibrator  Vibrator
	Backlight Backlight
	Status    StatusBar
	Timers    Timers
	Policy    Policy
	Settings  settings.Values
	Recorder  metrics.Recorder
	Logger    *slog.Logger
	Now       func() time.Time
}

// Scheduler owns the side effects of one screen lifetime.
type Scheduler struct {
	Deps

	period  uint16
	lightOn bool
	nextID  int
	pending map[int]func()
}

// New returns a Scheduler with no periodic vibration configured.
func New(d Deps) *Scheduler {
	if d.Recorder == nil {
		d.Recorder = metrics.NoopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Policy == "" {
		d.Policy = PolicyCoexist
	}
	return &Scheduler{Deps: d, pending: map[int]func(){}}
}

// ObservePeriod lowers the periodic vibration period to p. Zero never
// changes the period.
func (s *Scheduler) ObservePeriod(p uint16) {
	if p == 0 {
		return
	}
	if s.period == 0 || p < s.period {
		s.period = p
	}
}

// Period returns the effective periodic vibration period in ticks.
func (s *Scheduler) Period() uint16 { return s.period }

// LightOn reports whether the backlight was turned on by an arrival.
func (s *Scheduler) LightOn() bool { return s.lightOn }

// Arrived applies the effects of a newly created standalone notification.
func (s *Scheduler) Arrived(h protocol.Header) {
	if s.Settings.Vibrate && h.HasVibration() {
		var total time.Duration
		for _, d := range h.Vibration {
			total += time.Duration(d) * time.Millisecond
		}
		s.Vibrator.Play(h.Vibration)
		s.startVibration(total)
		s.Recorder.IncVibration("pattern")
	}
	if s.Settings.LightScreen {
		s.lightOn = true
		s.Backlight.SetLight(true)
	}
	s.State.Idle = true
	s.State.IdleElapsed = 0
}

// Tick advances idle time by one second.
func (s *Scheduler) Tick() navigation.Outcome {
	st := s.State
	st.IdleElapsed++

	if st.Idle && s.Settings.IdleTimeout > 0 && st.IdleElapsed > s.Settings.IdleTimeout && !s.Menu.Visible() {
		return navigation.Outcome{Close: true, Reason: ReasonIdleTimeout}
	}

	if s.lightOn && st.IdleElapsed >= s.Settings.LightTimeout {
		s.lightOn = false
		s.Backlight.SetLight(false)
	}

	if s.shouldPulse() {
		s.Vibrator.Pulse()
		s.startVibration(PulseDuration)
		s.Recorder.IncVibration("pulse")
	}

	s.UpdateClock()
	return navigation.Outcome{}
}

func (s *Scheduler) shouldPulse() bool {
	st := s.State
	if s.period == 0 || !st.Idle || st.IdleElapsed%int(s.period) != 0 {
		return false
	}
	rec, ok := s.Store.Displayed()
	if !ok || rec.InList || !s.Settings.Vibrate {
		return false
	}
	return s.Settings.PeriodicTimeout == 0 || st.IdleElapsed < s.Settings.PeriodicTimeout
}

// UpdateClock refreshes the status clock text.
func (s *Scheduler) UpdateClock() {
	s.Status.SetClock(s.Now().Format(s.Settings.ClockFormat()))
}

func (s *Scheduler) startVibration(d time.Duration) {
	if s.Policy == PolicyReplace {
		s.cancelPending()
	}
	s.State.Vibrating = true

	id := s.nextID
	s.nextID++
	s.pending[id] = s.Timers.After(d, func() {
		if _, live := s.pending[id]; !live {
			return
		}
		delete(s.pending, id)
		s.State.Vibrating = false
		s.Logger.Debug("Vibration stopped", logfields.DurationMS(d.Milliseconds()))
	})
}

// Pending returns the number of registered vibration-stop timers.
func (s *Scheduler) Pending() int { return len(s.pending) }

func (s *Scheduler) cancelPending() {
	for id, cancel := range s.pending {
		cancel()
		delete(s.pending, id)
	}
}

// Stop cancels outstanding timers and turns the light off. Called when the
// screen closes.
func (s *Scheduler) Stop() {
	s.cancelPending()
	if s.lightOn {
		s.lightOn = false
		s.Backlight.SetLight(false)
	}
}
