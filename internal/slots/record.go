package slots

import "unicode/utf8"

// TextCapacity bounds the title and subtitle of a record, in bytes.
const TextCapacity = 30

// Shake action codes with local meaning. Every other nonzero code is sent to
// the phone as a shake action.
const (
	ShakeNone     uint8 = 0
	ShakeShowMenu uint8 = 2
	ShakeMarkRead uint8 = 60
	ShakeAdvance  uint8 = 61
	ShakeDismiss  uint8 = 62
)

// Fonts are opaque style selectors resolved by the drawing surface.
type Fonts struct {
	Title    uint8
	Subtitle uint8
	Body     uint8
}

// Attributes are the per-notification presentation flags set by the phone.
type Attributes struct {
	InList            bool
	ScrollToEnd       bool
	MenuOnSelectPress bool
	MenuOnSelectHold  bool
	ShakeAction       uint8
	ActionMenuSize    uint8
	Fonts             Fonts
}

// Record is one stored notification.
type Record struct {
	ID int32
	Attributes
	Title    string
	Subtitle string

	capacity int
	body     []byte
}

// Body returns the text appended so far.
func (r Record) Body() string { return string(r.body) }

// Capacity is the number of bytes charged for the body, terminator included.
func (r Record) Capacity() int { return r.capacity }

func (r *Record) cost() int { return RecordOverhead + r.capacity }

func (r *Record) append(text string) {
	room := cap(r.body) - len(r.body)
	if room <= 0 {
		return
	}
	if len(text) > room {
		text = Truncate(text, room)
	}
	r.body = append(r.body, text...)
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
