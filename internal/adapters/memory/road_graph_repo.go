// Package memory holds process-local implementations of the repository
// ports, used by tests and by storage.driver=memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// RoadGraphRepo implements ports.RoadGraphRepository and ports.RoadGraphWriter.
type RoadGraphRepo struct {
	mu    sync.RWMutex
	nodes map[string]domain.RoadNode
}

// NewRoadGraphRepo creates a repo seeded with nodes.
func NewRoadGraphRepo(nodes ...domain.RoadNode) *RoadGraphRepo {
	r := &RoadGraphRepo{nodes: make(map[string]domain.RoadNode, len(nodes))}
	_ = r.UpsertBatch(context.Background(), nodes)
	return r
}

// GetByID returns a copy of the node so callers cannot mutate the graph.
func (r *RoadGraphRepo) GetByID(_ context.Context, id string) (*domain.RoadNode, error) {
	r.mu.RLock()
	n, ok := r.nodes[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("road node %s: %w", id, domain.ErrNotFound)
	}
	return cloneNode(n), nil
}

// UpsertBatch replaces nodes by id.
func (r *RoadGraphRepo) UpsertBatch(_ context.Context, nodes []domain.RoadNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range nodes {
		r.nodes[n.ID] = *cloneNode(n)
	}
	return nil
}

// Len returns the number of stored nodes.
func (r *RoadGraphRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

func cloneNode(n domain.RoadNode) *domain.RoadNode {
	out := n
	out.Neighbors = make(map[string]float64, len(n.Neighbors))
	for k, v := range n.Neighbors {
		out.Neighbors[k] = v
	}
	return &out
}
