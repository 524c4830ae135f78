package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/wristrelay/internal/device"
	"git.home.luguber.info/inful/wristrelay/internal/effects"
	"git.home.luguber.info/inful/wristrelay/internal/logfields"
	"git.home.luguber.info/inful/wristrelay/internal/metrics"
	"git.home.luguber.info/inful/wristrelay/internal/navigation"
	"git.home.luguber.info/inful/wristrelay/internal/protocol"
	"git.home.luguber.info/inful/wristrelay/internal/settings"
)

type fakeSender struct {
	sent []protocol.Outbound
	err  error
}

func (f *fakeSender) Send(m protocol.Outbound) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type senderFunc func(protocol.Outbound) error

func (f senderFunc) Send(m protocol.Outbound) error { return f(m) }

type staticSettings struct {
	values settings.Values
	err    error
}

func (s staticSettings) Load(context.Context) (settings.Values, error) { return s.values, s.err }

type countingRecorder struct {
	metrics.NoopRecorder
	closes         []string
	dropped        []string
	decodeFailures []string
	inbound        []string
	evictions      int
}

func (r *countingRecorder) IncScreenClose(reason string)   { r.closes = append(r.closes, reason) }
func (r *countingRecorder) IncDropped(kind string)         { r.dropped = append(r.dropped, kind) }
func (r *countingRecorder) IncDecodeFailure(reason string) { r.decodeFailures = append(r.decodeFailures, reason) }
func (r *countingRecorder) IncInbound(kind string)         { r.inbound = append(r.inbound, kind) }
func (r *countingRecorder) AddEvictions(n int)             { r.evictions += n }

type harness struct {
	e      *Engine
	sender *fakeSender
	rec    *countingRecorder
	dev    *device.Headless
	level  *slog.LevelVar
}

func newHarness(t *testing.T, values settings.Values, opts Options) *harness {
	t.Helper()
	h := &harness{
		sender: &fakeSender{},
		rec:    &countingRecorder{},
		dev:    device.NewHeadless(io.Discard, nil),
		level:  &slog.LevelVar{},
	}
	h.e = New(Deps{
		Sender:   h.sender,
		Device:   h.dev,
		Settings: staticSettings{values: values},
		Recorder: h.rec,
		LogLevel: h.level,
		Now:      func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) },
	}, opts)
	return h
}

// deliver encodes and dispatches msgs in order and reports whether the
// engine asked to stop.
func (h *harness) deliver(t *testing.T, msgs ...protocol.Inbound) bool {
	t.Helper()
	var stop bool
	for _, m := range msgs {
		data, err := protocol.Encode(m)
		require.NoError(t, err)
		stop = h.e.dispatch(context.Background(), Inbound{Data: data})
	}
	return stop
}

func notify(id int32, flags protocol.Flags, textLength uint16) protocol.NewNotification {
	return protocol.NewNotification{
		ID:     id,
		Header: protocol.Header{Flags: flags, TextLength: textLength},
		Title:  "title",
	}
}

func TestNotificationOpensScreen(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	require.Nil(t, h.e.Screen())

	h.deliver(t, notify(7, 0, 5), protocol.MoreText{ID: 7, Text: "hello"})

	s := h.e.Screen()
	require.NotNil(t, s)
	require.NotEmpty(t, s.ID)
	require.Equal(t, 1, s.Store.Len())
	require.Equal(t, "hello", s.Store.At(0).Body())
	require.True(t, h.dev.Light())
	require.Equal(t, []string{"new", "more_text"}, h.rec.inbound)
}

func TestMessagesWithoutScreenAreDropped(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t,
		protocol.MoreText{ID: 1, Text: "x"},
		protocol.Dismiss{ID: 1},
		protocol.HandshakeAck{})

	require.Nil(t, h.e.Screen())
	require.Empty(t, h.rec.dropped)
}

func TestUnknownIDIsDroppedAndCounted(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t, notify(1, 0, 4),
		protocol.MoreText{ID: 99, Text: "lost"},
		protocol.Dismiss{ID: 99})

	require.Equal(t, []string{"more_text", "dismiss"}, h.rec.dropped)
	require.Equal(t, 1, h.e.Screen().Store.Len())
	require.Empty(t, h.e.Screen().Store.At(0).Body())
}

func TestDecodeFailuresAreCounted(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})

	h.e.dispatch(context.Background(), Inbound{Data: []byte{3, 0}})

	unknown, err := (&protocol.Dictionary{}).PutUint8(protocol.KeyModule, 9).PutUint8(protocol.KeyPacket, 9).MarshalBinary()
	require.NoError(t, err)
	h.e.dispatch(context.Background(), Inbound{Data: unknown})

	require.Equal(t, []string{"malformed", "unknown_route"}, h.rec.decodeFailures)
	require.Nil(t, h.e.Screen())
}

func TestListRecordReplacesOtherListRecord(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t,
		notify(1, protocol.FlagInList, 10),
		notify(2, protocol.FlagInList, 10))

	s := h.e.Screen()
	require.Equal(t, 1, s.Store.Len())
	require.Equal(t, int32(2), s.Store.At(0).ID)
	require.True(t, s.Store.At(0).InList)
}

func TestStoredListRecordLogsSlotAfterCompaction(t *testing.T) {
	var buf bytes.Buffer
	level := &slog.LevelVar{}
	level.Set(slog.LevelDebug)
	h := newHarness(t, settings.Defaults(), Options{})
	h.e.log = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))

	h.deliver(t,
		notify(1, 0, 10),
		notify(2, protocol.FlagInList, 10),
		notify(3, protocol.FlagInList, 10))

	s := h.e.Screen()
	i, ok := s.Store.Find(3)
	require.True(t, ok)
	require.Equal(t, 1, i)

	slot := -1
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "Notification stored" && entry[logfields.KeyNotificationID] == float64(3) {
			slot = int(entry[logfields.KeySlot].(float64))
		}
	}
	require.Equal(t, 1, slot)
}

func TestListRecordDoesNotVibrate(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	n := notify(1, protocol.FlagInList, 10)
	n.Header.Vibration = []uint16{300}
	h.deliver(t, n)

	s := h.e.Screen()
	require.False(t, s.State.Vibrating)
	require.Zero(t, s.Effects.Pending())
}

func TestDismissLastRecordClosesScreen(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	stop := h.deliver(t, notify(1, 0, 10), protocol.Dismiss{ID: 1})

	require.False(t, stop)
	require.Nil(t, h.e.Screen())
	require.Equal(t, []string{navigation.ReasonDismissed}, h.rec.closes)
	require.False(t, h.dev.Light())
}

func TestDismissWithExitOnCloseStopsEngine(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{ExitOnClose: true})
	require.True(t, h.deliver(t, notify(1, 0, 10), protocol.Dismiss{ID: 1}))
}

func TestDismissKeepOpenLeavesEmptyScreen(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t, notify(1, 0, 10), protocol.Dismiss{ID: 1, KeepOpen: true})

	s := h.e.Screen()
	require.NotNil(t, s)
	require.Zero(t, s.Store.Len())
	require.Contains(t, h.dev.Frame(), device.Placeholder)
}

func TestPeriodicPeriodKeepsSmallestNonZero(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	for i, p := range []uint16{5, 0, 3, 7, 0, 2} {
		n := notify(int32(i+1), 0, 10)
		n.Header.PeriodicVibration = p
		h.deliver(t, n)
	}
	require.Equal(t, uint16(2), h.e.Screen().Effects.Period())
}

func TestEleventhRecordEvictsOldest(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	for id := int32(1); id <= 11; id++ {
		h.deliver(t, notify(id, 0, 300))
	}

	s := h.e.Screen()
	require.Equal(t, 10, s.Store.Len())
	require.Equal(t, int32(2), s.Store.At(0).ID)
	require.Equal(t, int32(11), s.Store.At(9).ID)
	require.Equal(t, 1, h.rec.evictions)
}

func TestAutoSwitchSelectsNewest(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t, notify(1, 0, 10), notify(2, 0, 10))
	require.Equal(t, 0, h.e.Screen().Store.Selected())

	h.deliver(t, notify(3, protocol.FlagAutoSwitch, 10))
	s := h.e.Screen()
	require.Equal(t, 2, s.Store.Selected())
	require.False(t, s.State.AutoSwitch)
}

func TestSelectSendsActionAndAckClearsBusy(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t, notify(4, 0, 10))

	h.e.dispatch(context.Background(), Input{Button: navigation.Select})
	require.Equal(t, []protocol.Outbound{protocol.SelectAction{ID: 4, Action: protocol.ActionPress}}, h.sender.sent)
	require.True(t, h.e.Screen().State.Busy)

	h.deliver(t, protocol.HandshakeAck{})
	require.False(t, h.e.Screen().State.Busy)
}

func TestActionResultRetriedOnSent(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	n := notify(4, protocol.FlagMenuOnPress, 10)
	n.Header.ActionCount = 3
	h.deliver(t, n)
	ctx := context.Background()

	h.e.dispatch(ctx, Input{Button: navigation.Select})
	require.True(t, h.e.Screen().Menu.Visible())

	h.sender.err = errors.New("not connected")
	h.e.dispatch(ctx, Input{Button: navigation.Select})
	require.Equal(t, 0, h.e.Screen().State.PendingAction)

	h.sender.err = nil
	h.e.dispatch(ctx, Sent{})
	require.Equal(t, navigation.NoPendingAction, h.e.Screen().State.PendingAction)
	require.Equal(t, protocol.ActionResult{Index: 0}, h.sender.sent[len(h.sender.sent)-1])
	require.False(t, h.e.Screen().Menu.Visible())
}

func TestBackClosesScreenAndNextNotificationReopens(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t, notify(1, 0, 10))
	first := h.e.Screen().ID

	h.e.dispatch(context.Background(), Input{Button: navigation.Back})
	require.Nil(t, h.e.Screen())
	require.Equal(t, []string{navigation.ReasonBack}, h.rec.closes)

	h.deliver(t, notify(2, 0, 10))
	require.NotNil(t, h.e.Screen())
	require.NotEqual(t, first, h.e.Screen().ID)
	require.Equal(t, 1, h.e.Screen().Store.Len())
}

func TestIdleTimeoutClosesScreen(t *testing.T) {
	v := settings.Defaults()
	v.IdleTimeout = 1
	h := newHarness(t, v, Options{})
	h.deliver(t, notify(1, 0, 10))

	h.e.dispatch(context.Background(), Tick{})
	require.NotNil(t, h.e.Screen())
	h.e.dispatch(context.Background(), Tick{})
	require.Nil(t, h.e.Screen())
	require.Equal(t, []string{effects.ReasonIdleTimeout}, h.rec.closes)
}

func TestSettingsErrorFallsBackToDefaults(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.e.deps.Settings = staticSettings{err: errors.New("locked")}
	h.deliver(t, notify(1, 0, 10))

	require.Equal(t, settings.Defaults(), h.e.Screen().Settings)
}

func TestStaleTimerIsIgnored(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t, notify(1, 0, 10))

	called := false
	h.e.dispatch(context.Background(), timerFired{screen: "gone", fire: func() { called = true }})
	require.False(t, called)

	h.e.dispatch(context.Background(), timerFired{screen: h.e.Screen().ID, fire: func() { called = true }})
	require.True(t, called)
}

func TestReconfigure(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t, notify(1, 0, 10))

	h.e.dispatch(context.Background(), Reconfigure{Level: slog.LevelDebug, Policy: effects.PolicyReplace})
	require.Equal(t, slog.LevelDebug, h.level.Level())
	require.Equal(t, effects.PolicyCoexist, h.e.Screen().Effects.Policy)

	h.e.dispatch(context.Background(), Input{Button: navigation.Back})
	h.deliver(t, notify(2, 0, 10))
	require.Equal(t, effects.PolicyReplace, h.e.Screen().Effects.Policy)
}

func TestReconfigureExitOnCloseAppliesToOpenScreen(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	h.deliver(t, notify(1, 0, 10))

	h.e.dispatch(context.Background(), Reconfigure{Level: slog.LevelInfo, Policy: effects.PolicyCoexist, ExitOnClose: true})
	require.True(t, h.e.dispatch(context.Background(), Input{Button: navigation.Back}))
	require.Nil(t, h.e.Screen())
}

func TestRunProcessesQueueUntilCancelled(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{})
	replied := make(chan struct{})
	h.e.deps.Sender = senderFunc(func(m protocol.Outbound) error {
		if _, ok := m.(protocol.ReplyText); ok {
			close(replied)
		}
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())

	data, err := protocol.Encode(notify(1, 0, 10))
	require.NoError(t, err)
	h.e.Deliver(data)
	require.True(t, h.e.Post(Reply{Text: "ok"}))

	done := make(chan error, 1)
	go func() { done <- h.e.Run(ctx) }()

	select {
	case <-replied:
	case <-time.After(2 * time.Second):
		t.Fatal("reply was not sent")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	require.False(t, h.e.Post(Tick{}))
	require.Equal(t, []string{ReasonShutdown}, h.rec.closes)
}

func TestRunReturnsWhenScreenClosesWithExitOnClose(t *testing.T) {
	h := newHarness(t, settings.Defaults(), Options{ExitOnClose: true})
	for _, m := range []protocol.Inbound{notify(1, 0, 10), protocol.Dismiss{ID: 1}} {
		data, err := protocol.Encode(m)
		require.NoError(t, err)
		h.e.Deliver(data)
	}

	require.NoError(t, h.e.Run(context.Background()))
	require.Equal(t, []string{navigation.ReasonDismissed}, h.rec.closes)
}
