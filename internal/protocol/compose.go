package protocol

// Notification is the companion-side description of a notification before it
// is split into channel-sized messages.
type Notification struct {
	ID       int32
	Header   Header
	Title    string
	Subtitle string
	Body     string
}

// Compose splits n into a NewNotification declaring the full body length and
// MoreText messages carrying at most chunk bytes of body each.
func Compose(n Notification, chunk int) []Inbound {
	if chunk <= 0 {
		chunk = 200
	}
	h := n.Header
	h.TextLength = uint16(min(len(n.Body), 0xFFFF))

	msgs := []Inbound{NewNotification{ID: n.ID, Header: h, Title: n.Title, Subtitle: n.Subtitle}}
	body := n.Body[:h.TextLength]
	for len(body) > 0 {
		end := min(chunk, len(body))
		msgs = append(msgs, MoreText{ID: n.ID, Text: body[:end]})
		body = body[end:]
	}
	return msgs
}
