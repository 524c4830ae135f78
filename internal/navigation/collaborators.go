package navigation

import "git.home.luguber.info/inful/wristrelay/internal/protocol"

// Sender delivers an outbound message. A non-nil error means the channel
// refused the message immediately.
type Sender interface {
	Send(msg protocol.Outbound) error
}

// Menu is the action menu as seen by input handling.
type Menu interface {
	Visible() bool
	Show(n int)
	Hide()
	MoveUp()
	MoveDown()
	Selected() int
}

// View is the scrollable notification view and its status bar.
type View interface {
	// Refresh redraws the displayed record, or the empty placeholder.
	Refresh()
	// ScrollToStart jumps to the top, or the end for scroll-to-end records.
	ScrollToStart()
	// ScrollStep scrolls one click up (-1) or down (+1).
	ScrollStep(dir int)
	// ScrollBy scrolls by px pixels, positive meaning towards the top.
	ScrollBy(px int)
	SetBusy(busy bool)
}
