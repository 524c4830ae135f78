package navigation

import (
	"log/slog"

	"git.home.luguber.info/inful/wristrelay/internal/logfields"
	"git.home.luguber.info/inful/wristrelay/internal/metrics"
	"git.home.luguber.info/inful/wristrelay/internal/protocol"
	"git.home.luguber.info/inful/wristrelay/internal/slots"
)

// repeatScroll is the distance scrolled by every second held-button repeat.
const repeatScroll = 50

// Deps are the collaborators of a Machine.
type Deps struct {
	Store    *slots.Store
	State    *State
	Menu     Menu
	View     View
	Sender   Sender
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Machine handles input for one screen lifetime.
type Machine struct {
	store  *slots.Store
	state  *State
	menu   Menu
	view   View
	sender Sender
	rec    metrics.Recorder
	log    *slog.Logger

	upHeld, downHeld       bool
	upSkipped, downSkipped bool
}

// New wires a Machine. Store, State, Menu, View and Sender are required.
func New(d Deps) *Machine {
	if d.Recorder == nil {
		d.Recorder = metrics.NoopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Machine{
		store:  d.Store,
		state:  d.State,
		menu:   d.Menu,
		view:   d.View,
		sender: d.Sender,
		rec:    d.Recorder,
		log:    d.Logger,
	}
}

// Press handles one button event.
func (m *Machine) Press(b Button) Outcome {
	switch b {
	case Back:
		if m.menu.Visible() {
			m.menu.Hide()
			return Outcome{}
		}
		return closeFor(ReasonBack)
	case Select:
		m.selectPress()
	case SelectHold:
		m.selectHold()
	case UpPress:
		m.scrollPress(-1)
		m.upHeld, m.upSkipped = true, false
	case DownPress:
		m.scrollPress(1)
		m.downHeld, m.downSkipped = true, false
	case UpRelease:
		m.upHeld = false
	case DownRelease:
		m.downHeld = false
	case UpRepeat:
		if m.upHeld {
			m.upSkipped = m.repeat(-1, m.upSkipped)
		}
	case DownRepeat:
		if m.downHeld {
			m.downSkipped = m.repeat(1, m.downSkipped)
		}
	case UpDouble:
		m.double(-1)
	case DownDouble:
		m.double(1)
	}
	return Outcome{}
}

func (m *Machine) selectPress() {
	m.state.Idle = false

	rec, ok := m.store.Displayed()
	if !ok {
		return
	}
	if m.menu.Visible() {
		m.sendActionResult(m.menu.Selected())
		return
	}
	if m.state.Busy {
		return
	}
	if rec.MenuOnSelectPress {
		m.menu.Show(int(rec.ActionMenuSize))
	}
	m.send(protocol.SelectAction{ID: rec.ID, Action: protocol.ActionPress})
}

func (m *Machine) selectHold() {
	if m.menu.Visible() {
		return
	}
	rec, ok := m.store.Displayed()
	if !ok || m.state.Busy {
		return
	}
	if rec.MenuOnSelectHold {
		m.menu.Show(int(rec.ActionMenuSize))
	}
	m.send(protocol.SelectAction{ID: rec.ID, Action: protocol.ActionHold})
}

func (m *Machine) scrollPress(dir int) {
	switch {
	case m.menu.Visible() && dir < 0:
		m.menu.MoveUp()
	case m.menu.Visible():
		m.menu.MoveDown()
	default:
		m.view.ScrollStep(dir)
	}
	m.state.Idle = false
}

// repeat handles a held-button repeat. Only every second repeat scrolls the
// view; the menu cursor moves on each one. It returns the new skip flag.
func (m *Machine) repeat(dir int, skipped bool) bool {
	if m.menu.Visible() {
		if dir < 0 {
			m.menu.MoveUp()
		} else {
			m.menu.MoveDown()
		}
		return skipped
	}
	if !skipped {
		return true
	}
	m.view.ScrollBy(-dir * repeatScroll)
	return false
}

func (m *Machine) double(dir int) {
	if m.menu.Visible() {
		return
	}
	count := m.store.Len()
	if count == 0 {
		return
	}
	sel := m.store.Selected()

	boundary := (dir < 0 && sel == 0) || (dir > 0 && sel == count-1)
	if boundary {
		rec, _ := m.store.Displayed()
		if rec.InList && !m.state.Busy {
			m.send(protocol.ListPage{Direction: int8(dir)})
			return
		}
	}

	if count == 1 {
		m.view.ScrollStep(dir)
		return
	}

	m.store.Select((sel + dir + count) % count)
	m.view.Refresh()
	m.view.ScrollToStart()
}

// Shake handles a shake gesture on the displayed record.
func (m *Machine) Shake() Outcome {
	if m.state.Vibrating {
		return Outcome{}
	}
	rec, ok := m.store.Displayed()
	if !ok {
		return Outcome{}
	}

	switch rec.ShakeAction {
	case slots.ShakeNone:
		return Outcome{}
	case slots.ShakeMarkRead:
		m.state.Idle = false
		return Outcome{}
	case slots.ShakeAdvance:
		m.state.Idle = false
		m.state.AutoSwitch = true
		return Outcome{}
	case slots.ShakeDismiss:
		r := m.store.Remove(m.store.Selected(), true)
		if r.Closed {
			return closeFor(ReasonDismissed)
		}
		m.Removed(r)
		return Outcome{}
	case slots.ShakeShowMenu:
		m.menu.Show(int(rec.ActionMenuSize))
	}

	m.send(protocol.SelectAction{ID: rec.ID, Action: protocol.ActionShake})
	return Outcome{}
}

// Reply sends text written by the user for the displayed notification.
func (m *Machine) Reply(text string) {
	m.send(protocol.ReplyText{Text: text})
}

// Arrived applies selection rules after a notification was created or
// updated. autoSwitch is the flag carried by the message; it joins any flag
// armed by a shake and is consumed here.
func (m *Machine) Arrived(autoSwitch bool) {
	m.state.AutoSwitch = m.state.AutoSwitch || autoSwitch
	if m.store.Len() == 0 {
		m.state.AutoSwitch = false
		return
	}
	if m.state.AutoSwitch && !m.menu.Visible() {
		m.store.Select(m.store.Len() - 1)
	}
	if m.store.IsLast() {
		m.view.Refresh()
		m.view.ScrollToStart()
	}
	m.SetBusy(false)
	m.state.AutoSwitch = false
}

// TextAppended refreshes the view when more body text reached the record at
// index i while it is displayed.
func (m *Machine) TextAppended(i int) {
	if m.store.Len() == 0 || m.store.Selected() != i {
		return
	}
	m.view.Refresh()
	if rec := m.store.At(i); rec.ScrollToEnd {
		m.view.ScrollToStart()
	}
}

// Removed updates the view after a record left the store. When the displayed
// record went away the menu belongs to a different notification and is hidden.
func (m *Machine) Removed(r slots.Removal) {
	if !r.DisplayedRemoved {
		return
	}
	m.menu.Hide()
	m.view.Refresh()
	m.view.ScrollToStart()
}

// SetBusy records whether an outbound action awaits its round trip.
func (m *Machine) SetBusy(busy bool) {
	m.state.Busy = busy
	m.view.SetBusy(busy)
}

// Sent handles a send-completion event: a remembered action-menu result is
// sent again.
func (m *Machine) Sent() {
	if m.state.PendingAction == NoPendingAction {
		return
	}
	idx := m.state.PendingAction
	m.rec.IncOutbound(protocol.ActionResult{}.Kind(), metrics.ResultRetried)
	m.log.Debug("Retrying action menu result", slog.Int("index", idx))
	m.sendActionResult(idx)
}

func (m *Machine) sendActionResult(idx int) {
	m.state.PendingAction = NoPendingAction
	if !m.send(protocol.ActionResult{Index: uint8(idx)}) {
		m.state.PendingAction = idx
		return
	}
	m.menu.Hide()
}

func (m *Machine) send(msg protocol.Outbound) bool {
	if err := m.sender.Send(msg); err != nil {
		m.rec.IncOutbound(msg.Kind(), metrics.ResultFailed)
		m.log.Warn("Outbound send failed",
			logfields.Kind(msg.Kind()),
			logfields.Error(err))
		return false
	}
	m.rec.IncOutbound(msg.Kind(), metrics.ResultSuccess)
	m.SetBusy(true)
	return true
}
