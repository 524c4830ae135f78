package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyNotificationID = "notification_id"
	KeySlot           = "slot"
	KeyModule         = "module"
	KeyPacket         = "packet"
	KeyKind           = "kind"
	KeyFreeBudget     = "free_budget"
	KeyScreenID       = "screen_id"
	KeyReason         = "reason"
	KeySubject        = "subject"
	KeyDurationMS     = "duration_ms"
	KeyError          = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func NotificationID(id int32) slog.Attr { return slog.Int64(KeyNotificationID, int64(id)) }
func Slot(i int) slog.Attr              { return slog.Int(KeySlot, i) }
func Module(m uint8) slog.Attr          { return slog.Int(KeyModule, int(m)) }
func Packet(p uint8) slog.Attr          { return slog.Int(KeyPacket, int(p)) }
func Kind(k string) slog.Attr           { return slog.String(KeyKind, k) }
func FreeBudget(n int) slog.Attr        { return slog.Int(KeyFreeBudget, n) }
func ScreenID(id string) slog.Attr      { return slog.String(KeyScreenID, id) }
func Reason(r string) slog.Attr         { return slog.String(KeyReason, r) }
func Subject(s string) slog.Attr        { return slog.String(KeySubject, s) }
func DurationMS(ms int64) slog.Attr     { return slog.Int64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
