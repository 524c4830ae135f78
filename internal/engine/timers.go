package engine

import "time"

// screenTimers implements effects.Timers for one screen lifetime. Expiries
// travel through the event queue so callbacks run on the engine goroutine.
type screenTimers struct {
	e      *Engine
	screen string
}

func (t screenTimers) After(d time.Duration, fire func()) func() {
	timer := time.AfterFunc(d, func() {
		t.e.Post(timerFired{screen: t.screen, fire: fire})
	})
	return func() { timer.Stop() }
}
