package natsadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber with a durable JetStream
// consumer on SOS_EVENTS.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber connects to NATS. durable names the consumer so restarts
// resume where they stopped.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeSOSEvents delivers every SOS event to handler. A handler error
// naks the message for redelivery, up to five attempts.
func (s *Subscriber) SubscribeSOSEvents(ctx context.Context, handler func(ctx context.Context, event domain.Event) error) error {
	sub, err := s.js.Subscribe(SubjectSOSEvents, func(msg *nats.Msg) {
		event, _, err := decodeEvent(msg)
		if err != nil {
			slog.Warn("dropping undecodable sos event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			slog.Warn("sos event handler failed", "type", event.Type, "sos_id", event.SOSID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(5),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectSOSEvents, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
