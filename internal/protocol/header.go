package protocol

import (
	"encoding/binary"

	"git.home.luguber.info/inful/wristrelay/internal/slots"
)

// Flags is the bitmask in byte 0 of a notification header.
type Flags uint8

const (
	FlagInList      Flags = 0x02
	FlagAutoSwitch  Flags = 0x04
	FlagScrollToEnd Flags = 0x08
	FlagMenuOnPress Flags = 0x10
	FlagMenuOnHold  Flags = 0x20
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

const (
	headerFixedLen = 11
	// MaxVibrationSegments bounds the custom vibration pattern.
	MaxVibrationSegments = 20
)

// Header is the fixed byte block of a new-notification message.
type Header struct {
	Flags             Flags
	PeriodicVibration uint16
	ActionCount       uint8
	TextLength        uint16
	ShakeAction       uint8
	Fonts             slots.Fonts
	// Vibration alternates buzz and rest durations in milliseconds, buzz first.
	Vibration []uint16
}

// ParseHeader decodes the header byte block. Multi-byte scalars are
// big-endian; vibration segments are little-endian.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < headerFixedLen {
		return Header{}, ErrMalformedHeader.WithContext("length", len(b))
	}
	h := Header{
		Flags:             Flags(b[0]),
		PeriodicVibration: binary.BigEndian.Uint16(b[1:3]),
		ActionCount:       b[3],
		TextLength:        binary.BigEndian.Uint16(b[4:6]),
		ShakeAction:       b[6],
		Fonts:             slots.Fonts{Title: b[7], Subtitle: b[8], Body: b[9]},
	}

	segments := min(int(b[10])/2, MaxVibrationSegments)
	if len(b) < headerFixedLen+2*segments {
		return Header{}, ErrMalformedHeader.
			WithContext("length", len(b)).
			WithContext("vibration_bytes", int(b[10]))
	}
	if segments > 0 {
		h.Vibration = make([]uint16, segments)
		for i := range h.Vibration {
			off := headerFixedLen + 2*i
			h.Vibration[i] = uint16(b[off]) | uint16(b[off+1])<<8
		}
	}
	return h, nil
}

// Bytes encodes the header in wire layout.
func (h Header) Bytes() []byte {
	segments := min(len(h.Vibration), MaxVibrationSegments)
	b := make([]byte, headerFixedLen, headerFixedLen+2*segments)
	b[0] = byte(h.Flags)
	binary.BigEndian.PutUint16(b[1:3], h.PeriodicVibration)
	b[3] = h.ActionCount
	binary.BigEndian.PutUint16(b[4:6], h.TextLength)
	b[6] = h.ShakeAction
	b[7], b[8], b[9] = h.Fonts.Title, h.Fonts.Subtitle, h.Fonts.Body
	b[10] = byte(2 * segments)
	for _, d := range h.Vibration[:segments] {
		b = binary.LittleEndian.AppendUint16(b, d)
	}
	return b
}

// HasVibration reports whether any buzz segment (even index) is nonzero.
func (h Header) HasVibration() bool {
	for i := 0; i < len(h.Vibration); i += 2 {
		if h.Vibration[i] > 0 {
			return true
		}
	}
	return false
}

// Attributes converts the header into the stored presentation flags.
func (h Header) Attributes() slots.Attributes {
	return slots.Attributes{
		InList:            h.Flags.Has(FlagInList),
		ScrollToEnd:       h.Flags.Has(FlagScrollToEnd),
		MenuOnSelectPress: h.Flags.Has(FlagMenuOnPress),
		MenuOnSelectHold:  h.Flags.Has(FlagMenuOnHold),
		ShakeAction:       h.ShakeAction,
		ActionMenuSize:    h.ActionCount,
		Fonts:             h.Fonts,
	}
}
