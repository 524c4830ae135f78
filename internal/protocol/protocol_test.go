package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
)

func TestDictionary_WireLayout(t *testing.T) {
	d := &Dictionary{}
	d.PutUint8(0, 1).PutInt32(2, -2).PutCString(4, "hi")

	b, err := d.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{
		3,
		0, 0, 0, 0, byte(TypeUint), 1, 0, 1,
		2, 0, 0, 0, byte(TypeInt), 4, 0, 0xFE, 0xFF, 0xFF, 0xFF,
		4, 0, 0, 0, byte(TypeCString), 3, 0, 'h', 'i', 0,
	}, b)

	var back Dictionary
	require.NoError(t, back.UnmarshalBinary(b))
	id, ok := back.Int(2)
	require.True(t, ok)
	require.Equal(t, int32(-2), id)
	s, ok := back.CString(4)
	require.True(t, ok)
	require.Equal(t, "hi", s)
}

func TestDictionary_RejectsBrokenInput(t *testing.T) {
	var d Dictionary
	require.ErrorIs(t, d.UnmarshalBinary(nil), ErrTruncated)
	require.ErrorIs(t, d.UnmarshalBinary([]byte{1, 0, 0, 0, 0, 2, 4, 0, 1}), ErrTruncated)
	require.ErrorIs(t, d.UnmarshalBinary([]byte{1, 0, 0, 0, 0, 9, 0, 0}), ErrUnknownValueType)
	require.Error(t, d.UnmarshalBinary([]byte{0, 7}))

	big := &Dictionary{}
	big.PutBytes(2, make([]byte, MaxMessageSize))
	_, err := big.MarshalBinary()
	require.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestParseHeader_ByteOffsets(t *testing.T) {
	raw := []byte{
		0x02 | 0x04 | 0x20, // inList, autoSwitch, menuOnHold
		0x01, 0x2C, // periodic 300
		3,          // actions
		0x01, 0x00, // text length 256
		61,       // shake
		1, 2, 3,  // fonts
		6,        // three segments
		0x10, 0x00, 0xF4, 0x01, 0x00, 0x00,
	}

	h, err := ParseHeader(raw)
	require.NoError(t, err)
	require.Equal(t, uint16(300), h.PeriodicVibration)
	require.Equal(t, uint8(3), h.ActionCount)
	require.Equal(t, uint16(256), h.TextLength)
	require.Equal(t, uint8(61), h.ShakeAction)
	require.Equal(t, []uint16{16, 500, 0}, h.Vibration)
	require.True(t, h.HasVibration())

	attrs := h.Attributes()
	require.True(t, attrs.InList)
	require.True(t, attrs.MenuOnSelectHold)
	require.False(t, attrs.MenuOnSelectPress)
	require.False(t, attrs.ScrollToEnd)
	require.Equal(t, uint8(2), attrs.Fonts.Subtitle)
	require.True(t, h.Flags.Has(FlagAutoSwitch))

	require.Equal(t, raw, h.Bytes())
}

func TestHeader_HasVibrationOnlyCountsBuzzSegments(t *testing.T) {
	require.False(t, Header{Vibration: []uint16{0, 500, 0, 300}}.HasVibration())
	require.True(t, Header{Vibration: []uint16{0, 500, 20}}.HasVibration())
	require.False(t, Header{}.HasVibration())
}

func TestParseHeader_Malformed(t *testing.T) {
	_, err := ParseHeader(make([]byte, 10))
	require.ErrorIs(t, err, ErrMalformedHeader)

	short := make([]byte, 11)
	short[10] = 4
	_, err = ParseHeader(append(short, 1, 0))
	require.ErrorIs(t, err, ErrMalformedHeader)

	capped := make([]byte, 11+80)
	capped[10] = 80
	h, err := ParseHeader(capped)
	require.NoError(t, err)
	require.Len(t, h.Vibration, MaxVibrationSegments)
}

func TestDecode_InboundVariants(t *testing.T) {
	msgs := []Inbound{
		HandshakeAck{},
		NewNotification{ID: 9, Header: Header{Flags: FlagScrollToEnd, TextLength: 5}, Title: "Mail", Subtitle: "Bob"},
		MoreText{ID: 9, Text: "hello"},
		Dismiss{ID: 9, KeepOpen: true},
		Dismiss{ID: 10},
	}
	for _, m := range msgs {
		t.Run(m.Kind(), func(t *testing.T) {
			b, err := Encode(m)
			require.NoError(t, err)
			got, err := Decode(b)
			require.NoError(t, err)
			require.Equal(t, m, got)
		})
	}
}

func TestDecode_ListItemsForwardsPayload(t *testing.T) {
	payload := &Dictionary{}
	payload.PutUint8(2, 0).PutUint8(3, 1).PutCString(4, "Reply")
	b, err := Encode(ListItems{Payload: payload})
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	items, ok := got.(ListItems)
	require.True(t, ok)
	text, ok := items.Payload.CString(4)
	require.True(t, ok)
	require.Equal(t, "Reply", text)
}

func TestDecode_UnknownRouteAndMissingFields(t *testing.T) {
	d := &Dictionary{}
	d.PutUint8(KeyModule, 9).PutUint8(KeyPacket, 9)
	_, err := DecodeInbound(d)
	require.ErrorIs(t, err, ErrUnknownRoute)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryProtocol))

	_, err = DecodeInbound(newDictionary(MoreText{}.Route()))
	require.ErrorIs(t, err, ErrMissingField)

	_, err = DecodeInbound(&Dictionary{})
	require.ErrorIs(t, err, ErrMissingField)
}

func TestOutbound_RoutesAndRoundTrip(t *testing.T) {
	cases := []struct {
		msg   Outbound
		route Route
	}{
		{SelectAction{ID: 77, Action: ActionHold}, Route{4, 0}},
		{ActionResult{Index: 3}, Route{4, 2}},
		{ReplyText{Text: "on my way"}, Route{4, 3}},
		{ListPage{Direction: -1}, Route{2, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.msg.Kind(), func(t *testing.T) {
			require.Equal(t, tc.route, tc.msg.Route())
			got, err := DecodeOutbound(tc.msg.Dictionary())
			require.NoError(t, err)
			require.Equal(t, tc.msg, got)
		})
	}
}

func TestCompose_SplitsBody(t *testing.T) {
	msgs := Compose(Notification{ID: 4, Title: "t", Body: "abcdefghij"}, 4)

	require.Len(t, msgs, 4)
	first := msgs[0].(NewNotification)
	require.Equal(t, uint16(10), first.Header.TextLength)
	require.Equal(t, MoreText{ID: 4, Text: "abcd"}, msgs[1])
	require.Equal(t, MoreText{ID: 4, Text: "ij"}, msgs[3])

	require.Len(t, Compose(Notification{ID: 1}, 0), 1)
}
