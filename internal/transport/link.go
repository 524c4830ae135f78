// Package transport carries encoded dictionaries between the wearable and the
// phone over NATS subjects.
package transport

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
	"git.home.luguber.info/inful/wristrelay/internal/logfields"
	"git.home.luguber.info/inful/wristrelay/internal/protocol"
	"git.home.luguber.info/inful/wristrelay/internal/retry"
)

var (
	// ErrNotConnected indicates a send attempted while the connection is down.
	ErrNotConnected = errors.TransportError("message channel not connected").Build()

	// ErrPublishFailed indicates the client refused the message.
	ErrPublishFailed = errors.TransportError("failed to publish message").Build()

	// ErrConnectFailed indicates the NATS connection could not be set up.
	ErrConnectFailed = errors.TransportError("failed to connect to message channel").Build()
)

const defaultFlushTimeout = 2 * time.Second

// Options configure a connection.
type Options struct {
	URL             string
	Name            string
	InboundSubject  string // phone to wearable
	OutboundSubject string // wearable to phone
	FlushTimeout    time.Duration
	// Retry paces flush attempts of the companion side. Zero means
	// retry.DefaultPolicy.
	Retry retry.Policy
}

// conn is the subset of *nats.Conn used here.
type conn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Drain() error
}

func dial(opts Options, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(opts.URL,
		nats.Name(opts.Name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("Message channel disconnected", logfields.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("Message channel reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryTransport, ErrConnectFailed.Message()).
			WithContext("url", opts.URL).Build()
	}
	return nc, nil
}

// Link is the wearable side of the channel.
type Link struct {
	conn   conn
	opts   Options
	log    *slog.Logger
	onSent func()
}

// Connect dials NATS. The connection keeps retrying in the background, so
// sends fail with ErrNotConnected until the server is reachable.
func Connect(opts Options, logger *slog.Logger) (*Link, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := dial(opts, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Message channel initialized",
		slog.String("url", opts.URL),
		logfields.Subject(opts.InboundSubject),
		slog.String("outbound_subject", opts.OutboundSubject))
	return newLink(nc, opts, logger), nil
}

func newLink(c conn, opts Options, logger *slog.Logger) *Link {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = defaultFlushTimeout
	}
	return &Link{conn: c, opts: opts, log: logger}
}

// OnSent registers the callback run after a sent message was flushed to the
// server. It runs on a transport goroutine.
func (l *Link) OnSent(fn func()) { l.onSent = fn }

// Subscribe delivers every inbound payload to deliver. deliver runs on the
// NATS dispatch goroutine and must only enqueue.
func (l *Link) Subscribe(deliver func(data []byte)) error {
	_, err := l.conn.Subscribe(l.opts.InboundSubject, func(m *nats.Msg) {
		deliver(m.Data)
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryTransport, "failed to subscribe").
			WithContext("subject", l.opts.InboundSubject).Build()
	}
	return nil
}

// Send encodes msg and publishes it. It fails immediately when the channel is
// down; completion is reported through OnSent.
func (l *Link) Send(msg protocol.Outbound) error {
	if !l.conn.IsConnected() {
		return ErrNotConnected
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if err := l.conn.Publish(l.opts.OutboundSubject, data); err != nil {
		return errors.WrapError(err, errors.CategoryTransport, ErrPublishFailed.Message()).
			WithContext("kind", msg.Kind()).Build()
	}

	go l.flush(msg.Kind())
	return nil
}

func (l *Link) flush(kind string) {
	start := time.Now()
	if err := l.conn.FlushTimeout(l.opts.FlushTimeout); err != nil {
		l.log.Warn("Outbound flush failed", logfields.Kind(kind), logfields.Error(err))
		return
	}
	l.log.Debug("Outbound message sent",
		logfields.Kind(kind),
		logfields.DurationMS(time.Since(start).Milliseconds()))
	if l.onSent != nil {
		l.onSent()
	}
}

// Close drains pending messages and closes the connection.
func (l *Link) Close() error {
	return l.conn.Drain()
}
