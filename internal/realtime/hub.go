// Package realtime fans SOS state changes out to live observers.
//
// Delivery is at-most-once: an event is queued to each subscriber's buffer
// without blocking, and a subscriber whose buffer is full is disconnected
// rather than allowed to stall the publisher. There is no replay.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/pkg/metrics"
)

// DefaultBufferSize is the per-subscriber queue length used when none is configured.
const DefaultBufferSize = 64

// Subscription is one live observer. Messages arrive on C as encoded JSON
// events; C is closed once the subscription is removed from the hub.
type Subscription struct {
	ID string
	ch chan []byte
}

// C returns the delivery channel.
func (s *Subscription) C() <-chan []byte { return s.ch }

// Hub is the in-memory subscriber registry.
type Hub struct {
	mu         sync.Mutex
	subs       map[string]*Subscription
	bufferSize int
	closed     bool
}

// NewHub creates a hub whose subscribers buffer up to bufferSize events.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{subs: make(map[string]*Subscription), bufferSize: bufferSize}
}

// Subscribe registers a new observer. Subscribing to a closed hub returns
// a subscription whose channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{ID: uuid.NewString(), ch: make(chan []byte, h.bufferSize)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s
	}
	h.subs[s.ID] = s
	metrics.HubSubscribers.Set(float64(len(h.subs)))
	slog.Debug("hub subscriber added", "subscriber", s.ID, "subscribers", len(h.subs))
	return s
}

// Unsubscribe removes s. Removing an unknown or already removed
// subscription is a no-op.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removeLocked(s) {
		slog.Debug("hub subscriber removed", "subscriber", s.ID, "subscribers", len(h.subs))
	}
}

// Drop removes s after a failed write on its connection.
func (h *Hub) Drop(s *Subscription, cause error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removeLocked(s) {
		metrics.HubDrops.WithLabelValues("write").Inc()
		slog.Warn("hub subscriber dropped", "subscriber", s.ID, "error", cause)
	}
}

// Publish queues event to every subscriber and returns how many accepted
// it. Subscribers that cannot take the event immediately are removed.
func (h *Hub) Publish(event domain.Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("hub encode event", "type", event.Type, "error", err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, s := range h.subs {
		select {
		case s.ch <- data:
			delivered++
		default:
			h.removeLocked(s)
			metrics.HubDrops.WithLabelValues("slow").Inc()
			slog.Warn("hub subscriber dropped", "subscriber", s.ID, "event", event.Type, "error", domain.ErrConnectionLost)
		}
	}
	metrics.HubDeliveries.Add(float64(delivered))
	return delivered
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close removes every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, s := range h.subs {
		h.removeLocked(s)
	}
}

// removeLocked deletes s and closes its channel. Deleting from the map
// while ranging over it is safe.
func (h *Hub) removeLocked(s *Subscription) bool {
	if s == nil {
		return false
	}
	if cur, ok := h.subs[s.ID]; !ok || cur != s {
		return false
	}
	delete(h.subs, s.ID)
	close(s.ch)
	metrics.HubSubscribers.Set(float64(len(h.subs)))
	return true
}
