package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/minarah/internal/core/domain"
)

const (
	// StreamSOSEvents retains every SOS transition for durable consumers.
	StreamSOSEvents = "SOS_EVENTS"
	// SubjectSOSEvents is the wildcard all SOS events are published under.
	SubjectSOSEvents = "sos.events.>"
	// HeaderOrigin carries the id of the API instance that applied the transition.
	HeaderOrigin = "Minarah-Origin"
)

// Publisher implements ports.EventPublisher on NATS. Events go out as core
// NATS publishes on sos.events.<type>; the SOS_EVENTS stream captures them.
type Publisher struct {
	conn   *nats.Conn
	origin string
}

// NewPublisher connects to NATS and ensures the SOS_EVENTS stream exists.
// origin tags every published message.
func NewPublisher(url, origin string) (*Publisher, error) {
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

	return &Publisher{conn: conn, origin: origin}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:      StreamSOSEvents,
		Subjects:  []string{SubjectSOSEvents},
		Retention: nats.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// PublishSOSEvent sends event without waiting for a stream ack.
func (p *Publisher) PublishSOSEvent(ctx context.Context, event domain.Event) error {
	msg, err := encodeEvent(event, p.origin)
	if err != nil {
		return err
	}
	return p.conn.PublishMsg(msg)
}

// Conn exposes the connection for the relay and readiness checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Origin returns the instance id stamped on published events.
func (p *Publisher) Origin() string { return p.origin }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Connect opens a NATS connection that keeps retrying in the background.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

func subjectFor(t domain.EventType) string {
	return "sos.events." + strings.ToLower(string(t))
}

func encodeEvent(event domain.Event, origin string) (*nats.Msg, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event.Type, err)
	}
	msg := nats.NewMsg(subjectFor(event.Type))
	msg.Data = data
	msg.Header.Set(HeaderOrigin, origin)
	return msg, nil
}

func decodeEvent(msg *nats.Msg) (domain.Event, string, error) {
	var event domain.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return domain.Event{}, "", fmt.Errorf("decode %s: %w", msg.Subject, err)
	}
	return event, msg.Header.Get(HeaderOrigin), nil
}
