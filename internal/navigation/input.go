package navigation

// Button is a decoded input event.
type Button int

const (
	Back Button = iota
	Select
	SelectHold
	UpPress
	UpRelease
	UpRepeat
	UpDouble
	DownPress
	DownRelease
	DownRepeat
	DownDouble
)

var buttonNames = map[Button]string{
	Back:        "back",
	Select:      "select",
	SelectHold:  "select_hold",
	UpPress:     "up",
	UpRelease:   "up_release",
	UpRepeat:    "up_repeat",
	UpDouble:    "up_double",
	DownPress:   "down",
	DownRelease: "down_release",
	DownRepeat:  "down_repeat",
	DownDouble:  "down_double",
}

func (b Button) String() string {
	if n, ok := buttonNames[b]; ok {
		return n
	}
	return "unknown"
}

// ParseButton resolves a button name as printed by String.
func ParseButton(s string) (Button, bool) {
	for b, n := range buttonNames {
		if n == s {
			return b, true
		}
	}
	return 0, false
}

// Close reasons reported in Outcome.
const (
	ReasonBack      = "back"
	ReasonDismissed = "dismissed"
)

// Outcome tells the caller whether input asked for the screen to close.
type Outcome struct {
	Close  bool
	Reason string
}

func closeFor(reason string) Outcome { return Outcome{Close: true, Reason: reason} }
