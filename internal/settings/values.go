// Package settings persists the small set of integer settings the
// notification screen reads on entry.
package settings

// Setting names as stored and accepted by the CLI.
const (
	IdleTimeout     = "idle_timeout"
	LightTimeout    = "light_timeout"
	PeriodicTimeout = "periodic_timeout"
	Vibrate         = "vibrate"
	LightScreen     = "light_screen"
	InvertColors    = "invert_colors"
	Clock24h        = "clock_24h"
)

type definition struct {
	def     int64
	boolean bool
	max     int64
}

var definitions = map[string]definition{
	IdleTimeout:     {def: 0, max: 86400},
	LightTimeout:    {def: 5, max: 86400},
	PeriodicTimeout: {def: 0, max: 86400},
	Vibrate:         {def: 1, boolean: true},
	LightScreen:     {def: 1, boolean: true},
	InvertColors:    {def: 0, boolean: true},
	Clock24h:        {def: 1, boolean: true},
}

// Names returns every known setting name in display order.
func Names() []string {
	return []string{IdleTimeout, LightTimeout, PeriodicTimeout, Vibrate, LightScreen, InvertColors, Clock24h}
}

// Values is the typed view of the settings read at screen entry. Timeouts
// are in seconds; zero disables the idle and periodic timeouts.
type Values struct {
	IdleTimeout     int
	LightTimeout    int
	PeriodicTimeout int
	Vibrate         bool
	LightScreen     bool
	InvertColors    bool
	Clock24h        bool
}

// Defaults returns the values used when nothing is stored.
func Defaults() Values {
	return fromMap(map[string]int64{})
}

// ClockFormat returns the time layout of the status clock.
func (v Values) ClockFormat() string {
	if v.Clock24h {
		return "15:04"
	}
	return "03:04 PM"
}

func fromMap(m map[string]int64) Values {
	get := func(name string) int64 {
		if v, ok := m[name]; ok {
			return v
		}
		return definitions[name].def
	}
	return Values{
		IdleTimeout:     int(get(IdleTimeout)),
		LightTimeout:    int(get(LightTimeout)),
		PeriodicTimeout: int(get(PeriodicTimeout)),
		Vibrate:         get(Vibrate) != 0,
		LightScreen:     get(LightScreen) != 0,
		InvertColors:    get(InvertColors) != 0,
		Clock24h:        get(Clock24h) != 0,
	}
}
