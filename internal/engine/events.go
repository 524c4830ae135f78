package engine

import (
	"log/slog"

	"git.home.luguber.info/inful/wristrelay/internal/effects"
	"git.home.luguber.info/inful/wristrelay/internal/navigation"
)

// Event is one unit of work for the engine goroutine. The set is closed.
type Event interface{ event() }

// Inbound carries raw dictionary bytes received from the phone.
type Inbound struct{ Data []byte }

// Input is a button event.
type Input struct{ Button navigation.Button }

// Shake is an accelerometer shake gesture.
type Shake struct{}

// Reply carries text written by the user for the displayed notification.
type Reply struct{ Text string }

// Tick is the one-second heartbeat.
type Tick struct{}

// Sent reports that an outbound message left the channel.
type Sent struct{}

// Reconfigure applies a reloaded configuration.
type Reconfigure struct {
	Level       slog.Level
	Policy      effects.Policy
	ExitOnClose bool
}

// timerFired runs a vibration-stop callback registered by the screen with
// the given id. Callbacks of a closed screen are ignored.
type timerFired struct {
	screen string
	fire   func()
}

func (Inbound) event()     {}
func (Input) event()       {}
func (Shake) event()       {}
func (Reply) event()       {}
func (Tick) event()        {}
func (Sent) event()        {}
func (Reconfigure) event() {}
func (timerFired) event()  {}
