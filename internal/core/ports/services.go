package ports

import (
	"context"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// Broadcaster fans an event out to every live observer. Delivery is
// best-effort and never fails the caller.
type Broadcaster interface {
	Publish(event domain.Event) int
}

// EventPublisher mirrors domain events to a message broker.
type EventPublisher interface {
	PublishSOSEvent(ctx context.Context, event domain.Event) error
}

// EventSubscriber consumes domain events from a message broker.
type EventSubscriber interface {
	SubscribeSOSEvents(ctx context.Context, handler func(ctx context.Context, event domain.Event) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// FloodScorer is the opaque flood/severity model.
type FloodScorer interface {
	Score(ctx context.Context, in domain.FloodPredictionInput) (domain.FloodPrediction, error)
}
