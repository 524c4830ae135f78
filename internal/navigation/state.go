package navigation

// NoPendingAction marks State.PendingAction as empty.
const NoPendingAction = -1

// State holds the flags shared by input handling and the side-effect
// scheduler for one screen lifetime.
type State struct {
	// Busy is set by every successful send and cleared by acks, arrivals,
	// dismissals and completed list syncs.
	Busy bool
	// AutoSwitch selects the newest record on the next arrival. One-shot.
	AutoSwitch bool
	// Idle is cleared by user input and set again by a qualifying arrival.
	Idle bool
	// IdleElapsed counts ticks since the last qualifying arrival.
	IdleElapsed int
	Vibrating   bool
	// PendingAction is an action-menu result whose send failed, retried on
	// the next send completion.
	PendingAction int
}

// NewState returns the state of a freshly opened screen.
func NewState() *State {
	return &State{Idle: true, PendingAction: NoPendingAction}
}
