package protocol

// Route is the (module, packet) pair carried in keys 0 and 1 of every message.
type Route struct {
	Module uint8
	Packet uint8
}

// Tuple keys shared by every message.
const (
	KeyModule uint32 = 0
	KeyPacket uint32 = 1
)

// Inbound routes, phone to watch.
const (
	ModuleConfig  uint8 = 0
	ModuleNotify  uint8 = 1
	ModuleDismiss uint8 = 3
	ModuleList    uint8 = 4

	PacketAck      uint8 = 1
	PacketNew      uint8 = 0
	PacketMoreText uint8 = 1
	PacketDismiss  uint8 = 0
	PacketItems    uint8 = 0
)

// Outbound routes, watch to phone.
const (
	OutModuleNotify uint8 = 4
	OutModuleList   uint8 = 2

	PacketSelect       uint8 = 0
	PacketActionResult uint8 = 2
	PacketReply        uint8 = 3
	PacketListPage     uint8 = 2
)

// Payload keys. Their meaning depends on the route.
const (
	KeyID       uint32 = 2
	KeyHeader   uint32 = 3
	KeyTitle    uint32 = 4
	KeySubtitle uint32 = 5

	KeyText     uint32 = 3 // more-text body fragment
	KeyKeepOpen uint32 = 3 // dismiss
	KeyAction   uint32 = 3 // select action type
	KeyValue    uint32 = 2 // single-value outbound payloads
)

func routeOf(d *Dictionary) (Route, bool) {
	m, ok := d.Uint8(KeyModule)
	if !ok {
		return Route{}, false
	}
	p, ok := d.Uint8(KeyPacket)
	if !ok {
		return Route{}, false
	}
	return Route{Module: m, Packet: p}, true
}

func newDictionary(r Route) *Dictionary {
	d := &Dictionary{}
	return d.PutUint8(KeyModule, r.Module).PutUint8(KeyPacket, r.Packet)
}
