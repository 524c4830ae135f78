package protocol

// Inbound is a decoded phone-to-watch message. The set of implementations is
// closed; handlers switch over the concrete types.
type Inbound interface {
	Route() Route
	Kind() string
	Dictionary() *Dictionary
	inbound()
}

// HandshakeAck acknowledges the last outbound message.
type HandshakeAck struct{}

// NewNotification creates or updates a record by id.
type NewNotification struct {
	ID       int32
	Header   Header
	Title    string
	Subtitle string
}

// MoreText carries a body continuation for an existing record.
type MoreText struct {
	ID   int32
	Text string
}

// Dismiss removes a record by id.
type Dismiss struct {
	ID       int32
	KeepOpen bool
}

// ListItems is a list-sync payload for the action menu, forwarded verbatim.
type ListItems struct {
	Payload *Dictionary
}

func (HandshakeAck) inbound()    {}
func (NewNotification) inbound() {}
func (MoreText) inbound()        {}
func (Dismiss) inbound()         {}
func (ListItems) inbound()       {}

func (HandshakeAck) Route() Route    { return Route{ModuleConfig, PacketAck} }
func (NewNotification) Route() Route { return Route{ModuleNotify, PacketNew} }
func (MoreText) Route() Route        { return Route{ModuleNotify, PacketMoreText} }
func (Dismiss) Route() Route         { return Route{ModuleDismiss, PacketDismiss} }
func (ListItems) Route() Route       { return Route{ModuleList, PacketItems} }

func (HandshakeAck) Kind() string    { return "ack" }
func (NewNotification) Kind() string { return "new" }
func (MoreText) Kind() string        { return "more_text" }
func (Dismiss) Kind() string         { return "dismiss" }
func (ListItems) Kind() string       { return "list_items" }

func (m HandshakeAck) Dictionary() *Dictionary { return newDictionary(m.Route()) }

func (m NewNotification) Dictionary() *Dictionary {
	return newDictionary(m.Route()).
		PutInt32(KeyID, m.ID).
		PutBytes(KeyHeader, m.Header.Bytes()).
		PutCString(KeyTitle, m.Title).
		PutCString(KeySubtitle, m.Subtitle)
}

func (m MoreText) Dictionary() *Dictionary {
	return newDictionary(m.Route()).PutInt32(KeyID, m.ID).PutCString(KeyText, m.Text)
}

func (m Dismiss) Dictionary() *Dictionary {
	var keep uint8
	if m.KeepOpen {
		keep = 1
	}
	return newDictionary(m.Route()).PutInt32(KeyID, m.ID).PutUint8(KeyKeepOpen, keep)
}

func (m ListItems) Dictionary() *Dictionary {
	d := newDictionary(m.Route())
	if m.Payload == nil {
		return d
	}
	for _, t := range m.Payload.Tuples() {
		if t.Key == KeyModule || t.Key == KeyPacket {
			continue
		}
		d.put(t.Key, t.Type, t.Data)
	}
	return d
}

// DecodeInbound routes a received dictionary to its variant.
func DecodeInbound(d *Dictionary) (Inbound, error) {
	r, ok := routeOf(d)
	if !ok {
		return nil, missing("route", r)
	}

	switch r {
	case HandshakeAck{}.Route():
		return HandshakeAck{}, nil

	case NewNotification{}.Route():
		id, ok := d.Int(KeyID)
		if !ok {
			return nil, missing("id", r)
		}
		raw, ok := d.Bytes(KeyHeader)
		if !ok {
			return nil, missing("header", r)
		}
		h, err := ParseHeader(raw)
		if err != nil {
			return nil, err
		}
		title, _ := d.CString(KeyTitle)
		subtitle, _ := d.CString(KeySubtitle)
		return NewNotification{ID: id, Header: h, Title: title, Subtitle: subtitle}, nil

	case MoreText{}.Route():
		id, ok := d.Int(KeyID)
		if !ok {
			return nil, missing("id", r)
		}
		text, ok := d.CString(KeyText)
		if !ok {
			return nil, missing("text", r)
		}
		return MoreText{ID: id, Text: text}, nil

	case Dismiss{}.Route():
		id, ok := d.Int(KeyID)
		if !ok {
			return nil, missing("id", r)
		}
		keep, _ := d.Uint8(KeyKeepOpen)
		return Dismiss{ID: id, KeepOpen: keep != 0}, nil

	case ListItems{}.Route():
		return ListItems{Payload: d}, nil
	}

	return nil, ErrUnknownRoute.WithContext("module", int(r.Module)).WithContext("packet", int(r.Packet))
}

// Decode parses wire bytes into an inbound variant.
func Decode(data []byte) (Inbound, error) {
	var d Dictionary
	if err := d.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return DecodeInbound(&d)
}
