package transport

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
	"git.home.luguber.info/inful/wristrelay/internal/logfields"
	"git.home.luguber.info/inful/wristrelay/internal/protocol"
	"git.home.luguber.info/inful/wristrelay/internal/retry"
)

// Phone is the companion side of the channel: it publishes inbound messages
// and watches the actions the wearable sends back.
type Phone struct {
	conn conn
	opts Options
	log  *slog.Logger
}

// DialPhone connects the companion side.
func DialPhone(opts Options, logger *slog.Logger) (*Phone, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := dial(opts, logger)
	if err != nil {
		return nil, err
	}
	return newPhone(nc, opts, logger), nil
}

func newPhone(c conn, opts Options, logger *slog.Logger) *Phone {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = defaultFlushTimeout
	}
	if opts.Retry.Initial <= 0 {
		opts.Retry = retry.DefaultPolicy()
	}
	return &Phone{conn: c, opts: opts, log: logger}
}

// Publish sends msgs in order and waits until the server has them. Messages
// published while the connection is still being set up are buffered by the
// client; the flush is retried until it succeeds or the policy gives up.
func (p *Phone) Publish(msgs ...protocol.Inbound) error {
	for _, m := range msgs {
		data, err := protocol.Encode(m)
		if err != nil {
			return err
		}
		if err := p.conn.Publish(p.opts.InboundSubject, data); err != nil {
			return errors.WrapError(err, errors.CategoryTransport, ErrPublishFailed.Message()).
				WithContext("kind", m.Kind()).Build()
		}
		p.log.Debug("Published", logfields.Kind(m.Kind()), logfields.Subject(p.opts.InboundSubject))
	}
	err := p.opts.Retry.Do(context.Background(), func(attempt int) error {
		if attempt > 0 {
			p.log.Debug("Retrying flush", slog.Int("attempt", attempt))
		}
		return p.conn.FlushTimeout(p.opts.FlushTimeout)
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryTransport, "flush failed").
			WithRetry(errors.RetryBackoff).Build()
	}
	return nil
}

// Listen calls fn for every outbound message from the wearable until ctx is
// done. Payloads that do not decode are logged and skipped.
func (p *Phone) Listen(ctx context.Context, fn func(protocol.Outbound)) error {
	msgs := make(chan *nats.Msg, 64)
	sub, err := p.conn.Subscribe(p.opts.OutboundSubject, func(m *nats.Msg) {
		select {
		case msgs <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryTransport, "failed to subscribe").
			WithContext("subject", p.opts.OutboundSubject).Build()
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			p.log.Debug("Unsubscribe failed", logfields.Subject(p.opts.OutboundSubject), logfields.Error(err))
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-msgs:
			var d protocol.Dictionary
			if err := d.UnmarshalBinary(m.Data); err != nil {
				p.log.Warn("Undecodable outbound payload", logfields.Error(err))
				continue
			}
			out, err := protocol.DecodeOutbound(&d)
			if err != nil {
				p.log.Warn("Unknown outbound message", logfields.Error(err))
				continue
			}
			fn(out)
		}
	}
}

// Close drains pending messages and closes the connection.
func (p *Phone) Close() error {
	return p.conn.Drain()
}
