package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/wristrelay/internal/actionmenu"
	"git.home.luguber.info/inful/wristrelay/internal/config"
	"git.home.luguber.info/inful/wristrelay/internal/protocol"
	"git.home.luguber.info/inful/wristrelay/internal/slots"
	"git.home.luguber.info/inful/wristrelay/internal/transport"
)

// PhoneCmd groups the companion-side commands.
type PhoneCmd struct {
	Notify  PhoneNotifyCmd  `cmd:"" help:"Send a notification, splitting the body into text chunks"`
	Dismiss PhoneDismissCmd `cmd:"" help:"Dismiss a notification by id"`
	Ack     PhoneAckCmd     `cmd:"" help:"Acknowledge the last watch action"`
	Items   PhoneItemsCmd   `cmd:"" help:"Send action menu entries"`
	Listen  PhoneListenCmd  `cmd:"" help:"Print messages sent by the watch"`
}

// PhoneNotifyCmd implements 'phone notify'.
type PhoneNotifyCmd struct {
	ID          int32    `required:"" help:"Notification id"`
	Title       string   `short:"t" help:"Title line"`
	Subtitle    string   `short:"s" help:"Subtitle line"`
	Body        string   `short:"b" help:"Body text"`
	InList      bool     `help:"Show as the single list item"`
	AutoSwitch  bool     `help:"Switch the screen to this notification"`
	ScrollToEnd bool     `help:"Scroll to the end when more text arrives"`
	MenuOnPress bool     `help:"Open the action menu on select"`
	MenuOnHold  bool     `help:"Open the action menu on long select"`
	Actions     uint8    `help:"Number of action menu entries"`
	Shake       string   `help:"Shake action" enum:"none,menu,read,advance,dismiss" default:"none"`
	Periodic    uint16   `help:"Periodic reminder vibration in seconds (0 = off)"`
	Vibration   []uint16 `help:"Vibration pattern in milliseconds, buzz first" sep:","`
	Chunk       int      `help:"Maximum body bytes per message" default:"200"`
}

var shakeCodes = map[string]uint8{
	"none":    slots.ShakeNone,
	"menu":    slots.ShakeShowMenu,
	"read":    slots.ShakeMarkRead,
	"advance": slots.ShakeAdvance,
	"dismiss": slots.ShakeDismiss,
}

func (n *PhoneNotifyCmd) notification() protocol.Notification {
	var flags protocol.Flags
	for flag, set := range map[protocol.Flags]bool{
		protocol.FlagInList:      n.InList,
		protocol.FlagAutoSwitch:  n.AutoSwitch,
		protocol.FlagScrollToEnd: n.ScrollToEnd,
		protocol.FlagMenuOnPress: n.MenuOnPress,
		protocol.FlagMenuOnHold:  n.MenuOnHold,
	} {
		if set {
			flags |= flag
		}
	}
	return protocol.Notification{
		ID: n.ID,
		Header: protocol.Header{
			Flags:             flags,
			PeriodicVibration: n.Periodic,
			ActionCount:       n.Actions,
			ShakeAction:       shakeCodes[n.Shake],
			Vibration:         n.Vibration,
		},
		Title:    n.Title,
		Subtitle: n.Subtitle,
		Body:     n.Body,
	}
}

func (n *PhoneNotifyCmd) Run(g *Global, root *CLI) error {
	msgs := protocol.Compose(n.notification(), n.Chunk)
	return withPhone(g, root, func(p *transport.Phone) error {
		if err := p.Publish(msgs...); err != nil {
			return err
		}
		fmt.Printf("Sent notification %d in %d messages\n", n.ID, len(msgs))
		return nil
	})
}

// PhoneDismissCmd implements 'phone dismiss'.
type PhoneDismissCmd struct {
	ID       int32 `arg:"" help:"Notification id"`
	KeepOpen bool  `help:"Keep the screen open when the last notification goes away"`
}

func (d *PhoneDismissCmd) Run(g *Global, root *CLI) error {
	return withPhone(g, root, func(p *transport.Phone) error {
		return p.Publish(protocol.Dismiss{ID: d.ID, KeepOpen: d.KeepOpen})
	})
}

// PhoneAckCmd implements 'phone ack'.
type PhoneAckCmd struct{}

func (a *PhoneAckCmd) Run(g *Global, root *CLI) error {
	return withPhone(g, root, func(p *transport.Phone) error {
		return p.Publish(protocol.HandshakeAck{})
	})
}

// PhoneItemsCmd implements 'phone items'.
type PhoneItemsCmd struct {
	First int      `help:"Index of the first entry carried" default:"0"`
	Total int      `help:"Total number of menu entries (defaults to first + count)"`
	Items []string `arg:"" help:"Entry texts"`
}

func (i *PhoneItemsCmd) message() protocol.ListItems {
	total := i.Total
	if total == 0 {
		total = i.First + len(i.Items)
	}
	return protocol.ListItems{Payload: actionmenu.Payload(i.First, total, i.Items)}
}

func (i *PhoneItemsCmd) Run(g *Global, root *CLI) error {
	if i.Total > actionmenu.MaxItems || i.First+len(i.Items) > actionmenu.MaxItems {
		return fmt.Errorf("action menu holds at most %d entries", actionmenu.MaxItems)
	}
	return withPhone(g, root, func(p *transport.Phone) error {
		return p.Publish(i.message())
	})
}

// PhoneListenCmd implements 'phone listen'.
type PhoneListenCmd struct{}

func (l *PhoneListenCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return withPhone(g, root, func(p *transport.Phone) error {
		return p.Listen(ctx, func(m protocol.Outbound) { printOutbound(os.Stdout, m) })
	})
}

func printOutbound(w io.Writer, m protocol.Outbound) {
	switch m := m.(type) {
	case protocol.SelectAction:
		_, _ = fmt.Fprintf(w, "select id=%d action=%s\n", m.ID, m.Action)
	case protocol.ActionResult:
		_, _ = fmt.Fprintf(w, "action_result index=%d\n", m.Index)
	case protocol.ReplyText:
		_, _ = fmt.Fprintf(w, "reply text=%q\n", m.Text)
	case protocol.ListPage:
		_, _ = fmt.Fprintf(w, "list_page direction=%+d\n", m.Direction)
	}
}

func withPhone(g *Global, root *CLI, fn func(p *transport.Phone) error) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	root.configure(g, cfg)

	p, err := transport.DialPhone(transportOptions(cfg, "wristrelay-phone"), g.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()
	return fn(p)
}
