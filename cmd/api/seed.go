package main

import (
	"context"
	"fmt"

	"github.com/samirrijal/minarah/internal/adapters/graphfile"
	"github.com/samirrijal/minarah/internal/core/ports"
)

// seedRoadGraph loads path with edges mirrored and writes it to w.
func seedRoadGraph(ctx context.Context, path string, w ports.RoadGraphWriter) (graphfile.Stats, error) {
	nodes, st, err := graphfile.Load(path, graphfile.Options{Symmetric: true})
	if err != nil {
		return graphfile.Stats{}, err
	}
	if err := w.UpsertBatch(ctx, nodes); err != nil {
		return graphfile.Stats{}, fmt.Errorf("write %d nodes: %w", len(nodes), err)
	}
	return st, nil
}
