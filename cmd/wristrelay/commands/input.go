package commands

import (
	"bufio"
	"io"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/wristrelay/internal/engine"
	"git.home.luguber.info/inful/wristrelay/internal/navigation"
)

// readInput turns lines from r into engine events until r is exhausted or
// the engine stops. A line is a button name, "shake" or "reply <text>".
func readInput(r io.Reader, p engine.Poster, logger *slog.Logger) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ev, ok := parseInput(line)
		if !ok {
			logger.Warn("Unknown input", slog.String("line", line))
			continue
		}
		if !p.Post(ev) {
			return nil
		}
	}
	return sc.Err()
}

func parseInput(line string) (engine.Event, bool) {
	word, rest, _ := strings.Cut(line, " ")
	switch word {
	case "shake":
		return engine.Shake{}, true
	case "reply":
		return engine.Reply{Text: strings.TrimSpace(rest)}, true
	}
	if b, ok := navigation.ParseButton(word); ok {
		return engine.Input{Button: b}, true
	}
	return nil, false
}
