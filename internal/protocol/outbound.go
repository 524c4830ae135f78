package protocol

// ActionType says how the user triggered a select action.
type ActionType uint8

const (
	ActionPress ActionType = 0
	ActionHold  ActionType = 1
	ActionShake ActionType = 2
)

func (a ActionType) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionHold:
		return "hold"
	case ActionShake:
		return "shake"
	}
	return "unknown"
}

// Outbound is a watch-to-phone message.
type Outbound interface {
	Route() Route
	Kind() string
	Dictionary() *Dictionary
	outbound()
}

// SelectAction invokes the default action of a notification.
type SelectAction struct {
	ID     int32
	Action ActionType
}

// ActionResult reports the entry picked in the action menu.
type ActionResult struct {
	Index uint8
}

// ReplyText carries text written by the user.
type ReplyText struct {
	Text string
}

// ListPage asks the phone for the previous (-1) or next (+1) list item.
type ListPage struct {
	Direction int8
}

func (SelectAction) outbound() {}
func (ActionResult) outbound() {}
func (ReplyText) outbound()    {}
func (ListPage) outbound()     {}

func (SelectAction) Route() Route { return Route{OutModuleNotify, PacketSelect} }
func (ActionResult) Route() Route { return Route{OutModuleNotify, PacketActionResult} }
func (ReplyText) Route() Route    { return Route{OutModuleNotify, PacketReply} }
func (ListPage) Route() Route     { return Route{OutModuleList, PacketListPage} }

func (SelectAction) Kind() string { return "select" }
func (ActionResult) Kind() string { return "action_result" }
func (ReplyText) Kind() string    { return "reply" }
func (ListPage) Kind() string     { return "list_page" }

func (m SelectAction) Dictionary() *Dictionary {
	return newDictionary(m.Route()).PutInt32(KeyID, m.ID).PutUint8(KeyAction, uint8(m.Action))
}

func (m ActionResult) Dictionary() *Dictionary {
	return newDictionary(m.Route()).PutUint8(KeyValue, m.Index)
}

func (m ReplyText) Dictionary() *Dictionary {
	return newDictionary(m.Route()).PutCString(KeyValue, m.Text)
}

func (m ListPage) Dictionary() *Dictionary {
	return newDictionary(m.Route()).PutInt8(KeyValue, m.Direction)
}

// Encode returns the wire bytes of an outbound message.
func Encode(m interface{ Dictionary() *Dictionary }) ([]byte, error) {
	return m.Dictionary().MarshalBinary()
}

// DecodeOutbound routes a dictionary sent by the watch. The companion side
// uses it to interpret actions.
func DecodeOutbound(d *Dictionary) (Outbound, error) {
	r, ok := routeOf(d)
	if !ok {
		return nil, missing("route", r)
	}

	switch r {
	case SelectAction{}.Route():
		id, ok := d.Int(KeyID)
		if !ok {
			return nil, missing("id", r)
		}
		action, _ := d.Uint8(KeyAction)
		return SelectAction{ID: id, Action: ActionType(action)}, nil

	case ActionResult{}.Route():
		idx, ok := d.Uint8(KeyValue)
		if !ok {
			return nil, missing("index", r)
		}
		return ActionResult{Index: idx}, nil

	case ReplyText{}.Route():
		text, ok := d.CString(KeyValue)
		if !ok {
			return nil, missing("text", r)
		}
		return ReplyText{Text: text}, nil

	case ListPage{}.Route():
		dir, ok := d.Int(KeyValue)
		if !ok {
			return nil, missing("direction", r)
		}
		return ListPage{Direction: int8(dir)}, nil
	}

	return nil, ErrUnknownRoute.WithContext("module", int(r.Module)).WithContext("packet", int(r.Packet))
}
