package usecases

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/ports"
	"github.com/samirrijal/minarah/internal/pkg/metrics"
)

// DefaultNodeTTL is how long a road node stays in the shared cache, in seconds.
const DefaultNodeTTL = 3600

// RoadGraphService serves road node lookups through the shared cache.
// Topology only changes on re-seeding, so cached nodes are safe to reuse
// across queries; the per-query cache in the route finder is separate.
type RoadGraphService struct {
	nodes ports.RoadGraphRepository
	cache ports.CacheService
	ttl   int
}

// NewRoadGraphService creates a new RoadGraphService. cache may be nil.
func NewRoadGraphService(nodes ports.RoadGraphRepository, cache ports.CacheService, ttlSeconds int) *RoadGraphService {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultNodeTTL
	}
	return &RoadGraphService{nodes: nodes, cache: cache, ttl: ttlSeconds}
}

// GetByID returns a road node or domain.ErrNotFound.
func (s *RoadGraphService) GetByID(ctx context.Context, id string) (*domain.RoadNode, error) {
	cacheKey := "roadnode:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var node domain.RoadNode
			if err := json.Unmarshal(data, &node); err == nil {
				metrics.CacheHits.WithLabelValues("road_node").Inc()
				return &node, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("road_node").Inc()
	}

	node, err := s.nodes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(node); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}

	return node, nil
}

// Invalidate drops cached copies of ids after re-seeding.
func (s *RoadGraphService) Invalidate(ctx context.Context, ids ...string) {
	if s.cache == nil {
		return
	}
	for _, id := range ids {
		_ = s.cache.Delete(ctx, "roadnode:"+id)
	}
}
