package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/wristrelay/internal/actionmenu"
	"git.home.luguber.info/inful/wristrelay/internal/effects"
	"git.home.luguber.info/inful/wristrelay/internal/logfields"
	"git.home.luguber.info/inful/wristrelay/internal/navigation"
	"git.home.luguber.info/inful/wristrelay/internal/protocol"
	"git.home.luguber.info/inful/wristrelay/internal/settings"
	"git.home.luguber.info/inful/wristrelay/internal/slots"
)

// Screen is the state of one notification screen lifetime. It is created
// when a notification arrives with no screen open and discarded on close.
type Screen struct {
	ID       string
	Store    *slots.Store
	State    *navigation.State
	Menu     *actionmenu.Menu
	Nav      *navigation.Machine
	Effects  *effects.Scheduler
	Settings settings.Values
}

func (e *Engine) openScreen(ctx context.Context) *Screen {
	values := settings.Defaults()
	if e.deps.Settings != nil {
		loaded, err := e.deps.Settings.Load(ctx)
		if err != nil {
			e.log.Warn("Using default settings", logfields.Error(err))
		} else {
			values = loaded
		}
	}

	id := uuid.NewString()
	log := e.log.With(logfields.ScreenID(id))
	s := &Screen{
		ID:       id,
		Store:    slots.New(),
		State:    navigation.NewState(),
		Menu:     actionmenu.New(log),
		Settings: values,
	}
	s.Nav = navigation.New(navigation.Deps{
		Store:    s.Store,
		State:    s.State,
		Menu:     s.Menu,
		View:     e.deps.Device,
		Sender:   e.deps.Sender,
		Recorder: e.rec,
		Logger:   log,
	})
	s.Effects = effects.New(effects.Deps{
		State:     s.State,
		Store:     s.Store,
		Menu:      s.Menu,
		Vibrator:  e.deps.Device,
		Backlight: e.deps.Device,
		Status:    e.deps.Device,
		Timers:    screenTimers{e: e, screen: id},
		Policy:    e.opts.TimerPolicy,
		Settings:  values,
		Recorder:  e.rec,
		Logger:    log,
		Now:       e.deps.Now,
	})

	e.deps.Device.Attach(s.Store, s.Menu, values.InvertColors)
	s.Effects.UpdateClock()
	e.screen = s
	e.log.Info("Notification screen opened",
		screenAttr(s),
		slog.String("timer_policy", string(e.opts.TimerPolicy)))
	return s
}

func (e *Engine) closeScreen(reason string) {
	s := e.screen
	s.Effects.Stop()
	s.Menu.Hide()
	s.Store.Reset()
	e.deps.Device.Detach()
	e.screen = nil

	e.rec.IncScreenClose(reason)
	e.rec.SetFreeBudget(slots.MemoryBudget)
	e.rec.SetStoredRecords(0)
	e.log.Info("Notification screen closed", screenAttr(s), logfields.Reason(reason))
}

// handleInbound decodes and applies one message. A notification arriving
// with no screen open opens one; other messages are dropped until then.
func (e *Engine) handleInbound(ctx context.Context, data []byte) navigation.Outcome {
	msg, err := protocol.Decode(data)
	if err != nil {
		e.rec.IncDecodeFailure(decodeReason(err))
		e.log.Debug("Dropping undecodable message", logfields.Error(err))
		return navigation.Outcome{}
	}
	e.rec.IncInbound(msg.Kind())

	if e.screen == nil {
		if _, ok := msg.(protocol.NewNotification); !ok {
			e.log.Debug("No screen open, dropping message", logfields.Kind(msg.Kind()))
			return navigation.Outcome{}
		}
		e.openScreen(ctx)
	}
	return e.apply(e.screen, msg)
}

func (e *Engine) apply(s *Screen, msg protocol.Inbound) navigation.Outcome {
	switch m := msg.(type) {
	case protocol.HandshakeAck:
		s.Nav.SetBusy(false)
	case protocol.NewNotification:
		e.newNotification(s, m)
	case protocol.MoreText:
		i, ok := s.Store.AppendText(m.ID, m.Text)
		if !ok {
			e.dropUnknown(s, m.Kind(), m.ID)
			return navigation.Outcome{}
		}
		s.Nav.TextAppended(i)
	case protocol.Dismiss:
		i, ok := s.Store.Find(m.ID)
		if !ok {
			e.dropUnknown(s, m.Kind(), m.ID)
			return navigation.Outcome{}
		}
		r := s.Store.Remove(i, !m.KeepOpen)
		if r.Closed {
			return navigation.Outcome{Close: true, Reason: navigation.ReasonDismissed}
		}
		s.Nav.Removed(r)
		s.Nav.SetBusy(false)
	case protocol.ListItems:
		if s.Menu.GotItems(m.Payload) {
			s.Nav.SetBusy(false)
		}
		if s.Menu.Visible() {
			e.deps.Device.Refresh()
		}
	}
	return navigation.Outcome{}
}

func (e *Engine) newNotification(s *Screen, m protocol.NewNotification) {
	s.Effects.ObservePeriod(m.Header.PeriodicVibration)
	attrs := m.Header.Attributes()

	i, found := s.Store.Find(m.ID)
	if !found {
		c := s.Store.Create(m.ID, m.Header.TextLength, false)
		if n := len(c.Evicted); n > 0 {
			e.rec.AddEvictions(n)
			e.log.Debug("Evicted oldest notifications",
				screenAttr(s),
				slog.Any("ids", c.Evicted),
				logfields.FreeBudget(s.Store.Free()))
		}
		if c.DisplayedEvicted {
			s.Nav.Removed(slots.Removal{DisplayedRemoved: true})
		}
		i = c.Index
		if !attrs.InList {
			s.Effects.Arrived(m.Header)
		}
	}
	s.Store.Update(i, m.ID, attrs, m.Title, m.Subtitle)

	if attrs.InList {
		removed, displayed := s.Store.RemoveOtherListItems(m.ID)
		if len(removed) > 0 {
			e.log.Debug("Replaced list notifications", screenAttr(s), slog.Any("ids", removed))
		}
		if displayed {
			s.Nav.Removed(slots.Removal{DisplayedRemoved: true})
		}
		// removals compact the store
		i, _ = s.Store.Find(m.ID)
	}

	s.Nav.Arrived(m.Header.Flags.Has(protocol.FlagAutoSwitch))
	e.log.Debug("Notification stored",
		screenAttr(s),
		logfields.NotificationID(m.ID),
		logfields.Slot(i),
		slog.Bool("created", !found),
		logfields.FreeBudget(s.Store.Free()))
}

func (e *Engine) dropUnknown(s *Screen, kind string, id int32) {
	e.rec.IncDropped(kind)
	e.log.Debug("Dropping message for unknown notification",
		screenAttr(s),
		logfields.Kind(kind),
		logfields.NotificationID(id))
}

func decodeReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrUnknownRoute):
		return "unknown_route"
	case errors.Is(err, protocol.ErrMissingField):
		return "missing_field"
	case errors.Is(err, protocol.ErrMalformedHeader):
		return "malformed_header"
	default:
		return "malformed"
	}
}
