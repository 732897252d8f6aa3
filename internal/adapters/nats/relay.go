package natsadapter

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/minarah/internal/core/ports"
)

// Relay forwards SOS events applied by other API instances into the local
// hub. Events this instance published itself were already broadcast
// locally and are skipped.
type Relay struct {
	origin string
	hub    ports.Broadcaster
	sub    *nats.Subscription
}

// NewRelay creates a relay for the instance identified by origin.
func NewRelay(origin string, hub ports.Broadcaster) *Relay {
	return &Relay{origin: origin, hub: hub}
}

// Start subscribes on conn with plain core NATS; missed events are not replayed.
func (r *Relay) Start(conn *nats.Conn) error {
	sub, err := conn.Subscribe(SubjectSOSEvents, func(msg *nats.Msg) { r.handle(msg) })
	if err != nil {
		return fmt.Errorf("relay subscribe: %w", err)
	}
	r.sub = sub
	return nil
}

// Stop unsubscribes.
func (r *Relay) Stop() {
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
	}
}

// handle returns whether msg was forwarded.
func (r *Relay) handle(msg *nats.Msg) bool {
	event, origin, err := decodeEvent(msg)
	if err != nil {
		slog.Warn("relay: dropping undecodable event", "subject", msg.Subject, "error", err)
		return false
	}
	if origin == r.origin {
		return false
	}
	n := r.hub.Publish(event)
	slog.Debug("relay: forwarded event", "type", event.Type, "sos_id", event.SOSID, "origin", origin, "subscribers", n)
	return true
}
