package commands

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/wristrelay/internal/actionmenu"
	"git.home.luguber.info/inful/wristrelay/internal/config"
	"git.home.luguber.info/inful/wristrelay/internal/effects"
	"git.home.luguber.info/inful/wristrelay/internal/engine"
	"git.home.luguber.info/inful/wristrelay/internal/navigation"
	"git.home.luguber.info/inful/wristrelay/internal/protocol"
	"git.home.luguber.info/inful/wristrelay/internal/slots"
	"git.home.luguber.info/inful/wristrelay/internal/version"
)

func parse(t *testing.T, args ...string) (*kong.Context, *CLI) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("wristrelay"), kong.Vars{"version": "test"}, kong.Bind(&Global{}, cli))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx, cli
}

func TestCLI_VersionFlagPrintsBuildIdentity(t *testing.T) {
	var out bytes.Buffer
	exited := -1
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("wristrelay"),
		kong.Vars{"version": version.String()},
		kong.Writers(&out, &out),
		kong.Exit(func(code int) { exited = code }),
		kong.Bind(&Global{}, cli))
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--version"})
	require.Zero(t, exited)
	require.Contains(t, out.String(), "unknown (unknown, built unknown)")
}

func TestCLI_ParsesCommands(t *testing.T) {
	cases := map[string][]string{
		"run":                         {"run", "--no-stdin"},
		"phone notify":                {"phone", "notify", "--id", "3", "--vibration", "200,100,200"},
		"phone dismiss <id>":          {"phone", "dismiss", "3", "--keep-open"},
		"phone ack":                   {"phone", "ack"},
		"phone items <items>":         {"phone", "items", "Reply", "Archive"},
		"phone listen":                {"phone", "listen"},
		"settings get <name>":         {"settings", "get", "vibrate"},
		"settings set <name> <value>": {"settings", "set", "idle_timeout", "30"},
		"settings list":               {"settings", "list"},
		"init":                        {"init", "--force"},
	}
	for want, args := range cases {
		ctx, _ := parse(t, args...)
		require.Equal(t, want, ctx.Command(), strings.Join(args, " "))
	}
}

func TestCLI_VerboseSetsDebugLevel(t *testing.T) {
	_, cli := parse(t, "-v", "phone", "ack")
	require.Equal(t, slog.LevelDebug, cli.Level.Level())

	_, cli = parse(t, "phone", "ack")
	require.Equal(t, slog.LevelInfo, cli.Level.Level())
}

func TestCLI_ConfigureKeepsVerbose(t *testing.T) {
	_, cli := parse(t, "-v", "phone", "ack")
	cfg := config.Default()
	cfg.Logging.Level = config.LogLevelError
	g := &Global{}

	cli.configure(g, cfg)
	require.Equal(t, slog.LevelDebug, cli.Level.Level())
	require.NotNil(t, g.Logger)

	_, quiet := parse(t, "phone", "ack")
	quiet.configure(g, cfg)
	require.Equal(t, slog.LevelError, quiet.Level.Level())
}

func TestNotifyBuildsHeader(t *testing.T) {
	_, cli := parse(t, "phone", "notify", "--id", "9", "-t", "Mail", "-b", "hello",
		"--in-list", "--menu-on-hold", "--actions", "2", "--shake", "dismiss",
		"--periodic", "30", "--vibration", "100,50")

	n := cli.Phone.Notify.notification()
	require.Equal(t, int32(9), n.ID)
	require.Equal(t, "Mail", n.Title)
	require.True(t, n.Header.Flags.Has(protocol.FlagInList))
	require.True(t, n.Header.Flags.Has(protocol.FlagMenuOnHold))
	require.False(t, n.Header.Flags.Has(protocol.FlagAutoSwitch))
	require.Equal(t, uint8(2), n.Header.ActionCount)
	require.Equal(t, slots.ShakeDismiss, n.Header.ShakeAction)
	require.Equal(t, uint16(30), n.Header.PeriodicVibration)
	require.Equal(t, []uint16{100, 50}, n.Header.Vibration)

	msgs := protocol.Compose(n, cli.Phone.Notify.Chunk)
	require.Len(t, msgs, 2)
}

func TestItemsMessageDefaultsTotal(t *testing.T) {
	cmd := PhoneItemsCmd{First: 1, Items: []string{"Archive", "Delete"}}
	msg := cmd.message()

	total, ok := msg.Payload.Uint8(actionmenu.KeyTotal)
	require.True(t, ok)
	require.Equal(t, uint8(3), total)
	text, ok := msg.Payload.CString(actionmenu.KeyFirstItem + 1)
	require.True(t, ok)
	require.Equal(t, "Delete", text)
}

func TestPrintOutbound(t *testing.T) {
	var buf bytes.Buffer
	printOutbound(&buf, protocol.SelectAction{ID: 4, Action: protocol.ActionHold})
	printOutbound(&buf, protocol.ActionResult{Index: 2})
	printOutbound(&buf, protocol.ReplyText{Text: "on my way"})
	printOutbound(&buf, protocol.ListPage{Direction: -1})

	require.Equal(t, "select id=4 action=hold\n"+
		"action_result index=2\n"+
		"reply text=\"on my way\"\n"+
		"list_page direction=-1\n", buf.String())
}

func TestPrintSettingsSorted(t *testing.T) {
	var buf bytes.Buffer
	printSettings(&buf, map[string]int64{"vibrate": 1, "idle_timeout": 30})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "idle_timeout"))
	require.True(t, strings.HasSuffix(lines[1], " 1"))
}

type recordingPoster struct {
	events []engine.Event
	closed bool
}

func (p *recordingPoster) Post(ev engine.Event) bool {
	if p.closed {
		return false
	}
	p.events = append(p.events, ev)
	return true
}

func TestReadInput(t *testing.T) {
	p := &recordingPoster{}
	in := strings.NewReader("select\n\nup_double\nshake\nreply  on my way \njump\n")

	require.NoError(t, readInput(in, p, slog.Default()))
	require.Equal(t, []engine.Event{
		engine.Input{Button: navigation.Select},
		engine.Input{Button: navigation.UpDouble},
		engine.Shake{},
		engine.Reply{Text: "on my way"},
	}, p.events)
}

func TestReadInputStopsWithEngine(t *testing.T) {
	p := &recordingPoster{closed: true}
	require.NoError(t, readInput(strings.NewReader("select\nback\n"), p, slog.Default()))
	require.Empty(t, p.events)
}

func TestReconfigureEvent(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = config.LogLevelWarn
	cfg.Screen.TimerPolicy = config.TimerPolicyReplace
	cfg.Screen.ExitOnClose = true

	require.Equal(t, engine.Reconfigure{
		Level:       slog.LevelWarn,
		Policy:      effects.PolicyReplace,
		ExitOnClose: true,
	}, reconfigureEvent(cfg, false))
	require.Equal(t, slog.LevelDebug, reconfigureEvent(cfg, true).Level)
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wristrelay.yaml")
	require.NoError(t, RunInit(path, false))
	require.Error(t, RunInit(path, false))
	require.NoError(t, RunInit(path, true))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}
