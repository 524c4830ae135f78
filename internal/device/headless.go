// Package device provides the drawing surface, vibration motor and backlight
// of a wearable without hardware: frames are printed to a writer and effects
// are logged.
package device

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/wristrelay/internal/slots"
)

// Scroll geometry of the text view.
const (
	LineHeight = 16
	ScrollStep = 3 * LineHeight
	lineWidth  = 24
)

// Placeholder is shown when the store is empty.
const Placeholder = "No notifications"

// Menu is the read side of the action menu used for rendering.
type Menu interface {
	Visible() bool
	Items() []string
	Selected() int
}

// Headless renders the notification screen as text frames.
type Headless struct {
	w   io.Writer
	log *slog.Logger

	store  *slots.Store
	menu   Menu
	busy   bool
	clock  string
	light  bool
	invert bool
	offset int
}

// NewHeadless returns a device writing frames to w.
func NewHeadless(w io.Writer, logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	return &Headless{w: w, log: logger}
}

// Attach binds the device to the store and menu of a newly opened screen.
func (h *Headless) Attach(store *slots.Store, menu Menu, invert bool) {
	h.store, h.menu, h.invert = store, menu, invert
	h.busy, h.offset = false, 0
	h.Refresh()
}

// Detach releases the screen state after it closed.
func (h *Headless) Detach() {
	h.store, h.menu = nil, nil
}

func (h *Headless) Refresh() {
	if h.store == nil {
		return
	}
	_, _ = io.WriteString(h.w, h.Frame())
}

// ScrollToStart moves to the top of the record, or to the end when the
// record asks for it.
func (h *Headless) ScrollToStart() {
	h.offset = 0
	if rec, ok := h.displayed(); ok && rec.ScrollToEnd {
		h.offset = -h.contentHeight()
	}
}

func (h *Headless) ScrollStep(dir int) { h.ScrollBy(-dir * ScrollStep) }

func (h *Headless) ScrollBy(px int) {
	h.offset = min(0, max(h.offset+px, -h.contentHeight()))
}

// Offset returns the current content offset, zero or negative.
func (h *Headless) Offset() int { return h.offset }

func (h *Headless) SetBusy(busy bool) {
	h.busy = busy
	h.log.Debug("Busy indicator", slog.Bool("busy", busy))
}

func (h *Headless) SetClock(text string) { h.clock = text }

func (h *Headless) Play(pattern []uint16) {
	h.log.Info("Vibrating pattern", slog.Any("segments", pattern))
}

func (h *Headless) Pulse() { h.log.Info("Vibrating short pulse") }

func (h *Headless) SetLight(on bool) {
	h.light = on
	h.log.Debug("Backlight", slog.Bool("on", on))
}

// Light reports the backlight state.
func (h *Headless) Light() bool { return h.light }

// Frame renders the current screen.
func (h *Headless) Frame() string {
	var b strings.Builder
	b.WriteString(h.statusBar())
	b.WriteByte('\n')

	rec, ok := h.displayed()
	if !ok {
		b.WriteString(Placeholder)
		b.WriteString("\n\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%s\n%s\n", rec.Title, rec.Subtitle)
	for _, line := range wrap(rec.Body(), lineWidth) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if h.menu != nil && h.menu.Visible() {
		for i, item := range h.menu.Items() {
			marker := "  "
			if i == h.menu.Selected() {
				marker = "> "
			}
			b.WriteString(marker + item + "\n")
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// statusBar renders one dot per record, filled for the selected one.
func (h *Headless) statusBar() string {
	var b strings.Builder
	if h.invert {
		b.WriteString("[inv] ")
	}
	for i := 0; i < h.store.Len(); i++ {
		if i == h.store.Selected() {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	if h.busy {
		b.WriteString(" …")
	}
	if h.clock != "" {
		b.WriteString(" " + h.clock)
	}
	return b.String()
}

func (h *Headless) displayed() (slots.Record, bool) {
	if h.store == nil {
		return slots.Record{}, false
	}
	return h.store.Displayed()
}

func (h *Headless) contentHeight() int {
	rec, ok := h.displayed()
	if !ok {
		return 0
	}
	return (2 + len(wrap(rec.Body(), lineWidth))) * LineHeight
}

func wrap(s string, width int) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			if line != "" && len(line)+1+len(word) > width {
				lines = append(lines, line)
				line = ""
			}
			if line != "" {
				line += " "
			}
			line += word
		}
		lines = append(lines, line)
	}
	return lines
}
