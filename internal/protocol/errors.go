package protocol

import ferrors "git.home.luguber.info/inful/wristrelay/internal/foundation/errors"

var (
	// ErrTruncated indicates the wire data ended inside a tuple.
	ErrTruncated = ferrors.ProtocolError("dictionary truncated").Build()

	// ErrUnknownValueType indicates a tuple type byte outside the known set.
	ErrUnknownValueType = ferrors.ProtocolError("unknown tuple value type").Build()

	// ErrTooManyTuples indicates a dictionary that cannot be counted in one byte.
	ErrTooManyTuples = ferrors.ProtocolError("too many tuples").Build()

	// ErrMessageTooLarge indicates an encoded dictionary above MaxMessageSize.
	ErrMessageTooLarge = ferrors.ProtocolError("message exceeds channel limit").Build()

	// ErrUnknownRoute indicates a module/packet pair with no handler.
	ErrUnknownRoute = ferrors.ProtocolError("unknown module/packet route").Build()

	// ErrMissingField indicates a required tuple is absent or has the wrong type.
	ErrMissingField = ferrors.ProtocolError("missing message field").Build()

	// ErrMalformedHeader indicates a notification header shorter than its layout.
	ErrMalformedHeader = ferrors.ProtocolError("malformed notification header").Build()
)

func missing(field string, r Route) error {
	return ErrMissingField.
		WithContext("field", field).
		WithContext("module", int(r.Module)).
		WithContext("packet", int(r.Packet))
}
