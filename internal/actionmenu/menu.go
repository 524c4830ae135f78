// Package actionmenu holds the fixed-capacity list of actions offered for the
// displayed notification. Item texts arrive from the phone in list-sync
// payloads and may trickle in over several messages.
package actionmenu

import (
	"log/slog"

	"git.home.luguber.info/inful/wristrelay/internal/protocol"
	"git.home.luguber.info/inful/wristrelay/internal/slots"
)

// MaxItems bounds the number of entries the menu can show.
const MaxItems = 20

// List-sync payload keys.
const (
	KeyFirstIndex uint32 = 2
	KeyTotal      uint32 = 3
	KeyFirstItem  uint32 = 4
)

// Menu is the action menu collaborator. It is not safe for concurrent use;
// the engine owns it on its event goroutine.
type Menu struct {
	items    [MaxItems]string
	received [MaxItems]bool
	count    int
	cursor   int
	visible  bool
	log      *slog.Logger
}

// New returns a hidden, empty menu.
func New(logger *slog.Logger) *Menu {
	if logger == nil {
		logger = slog.Default()
	}
	return &Menu{log: logger}
}

// Show opens the menu with n entries whose texts are not yet known.
func (m *Menu) Show(n int) {
	m.setCount(n)
	m.ResetText()
	m.cursor = 0
	m.visible = true
}

func (m *Menu) Hide()         { m.visible = false }
func (m *Menu) Visible() bool { return m.visible }
func (m *Menu) Count() int    { return m.count }
func (m *Menu) Selected() int { return m.cursor }

// MoveUp moves the cursor one entry up, wrapping to the last entry.
func (m *Menu) MoveUp() {
	if m.count == 0 {
		return
	}
	m.cursor = (m.cursor - 1 + m.count) % m.count
}

// MoveDown moves the cursor one entry down, wrapping to the first entry.
func (m *Menu) MoveDown() {
	if m.count == 0 {
		return
	}
	m.cursor = (m.cursor + 1) % m.count
}

// ResetText clears every entry text so stale labels are not shown.
func (m *Menu) ResetText() {
	for i := range m.items {
		m.items[i] = ""
		m.received[i] = false
	}
}

// Items returns the current entry texts; missing ones are empty.
func (m *Menu) Items() []string {
	out := make([]string, m.count)
	copy(out, m.items[:m.count])
	return out
}

// GotItems stores the entries carried by a list-sync payload. It reports
// whether every declared entry has now been received.
func (m *Menu) GotItems(d *protocol.Dictionary) bool {
	if total, ok := d.Uint8(KeyTotal); ok && int(total) != m.count {
		m.setCount(int(total))
	}
	first, _ := d.Uint8(KeyFirstIndex)

	for _, t := range d.Tuples() {
		if t.Key < KeyFirstItem {
			continue
		}
		idx := int(first) + int(t.Key-KeyFirstItem)
		if idx >= m.count {
			m.log.Debug("Action menu item beyond declared count", slog.Int("index", idx), slog.Int("count", m.count))
			continue
		}
		text, ok := d.CString(t.Key)
		if !ok {
			continue
		}
		m.items[idx] = slots.Truncate(text, slots.TextCapacity)
		m.received[idx] = true
	}

	for i := 0; i < m.count; i++ {
		if !m.received[i] {
			return false
		}
	}
	return true
}

func (m *Menu) setCount(n int) {
	m.count = max(0, min(n, MaxItems))
	if m.cursor >= m.count {
		m.cursor = 0
	}
}

// Payload builds the list-sync dictionary carrying items starting at entry
// first of a menu with total entries.
func Payload(first, total int, items []string) *protocol.Dictionary {
	d := &protocol.Dictionary{}
	d.PutUint8(KeyFirstIndex, uint8(first)).PutUint8(KeyTotal, uint8(total))
	for i, s := range items {
		d.PutCString(KeyFirstItem+uint32(i), s)
	}
	return d
}
