// Package routing finds flood-safe shortest paths over the road network.
//
// The search is best-first on g+h where h is the straight-line distance
// between raw lat/lng coordinates. Hazarded nodes are removed from the graph
// for the duration of one query; they are never treated as expensive edges.
package routing

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// DefaultMaxExpansions bounds a single search on malformed or cyclic data.
const DefaultMaxExpansions = 200_000

// NodeLookup resolves road nodes by id. Unknown ids return domain.ErrNotFound.
type NodeLookup interface {
	GetByID(ctx context.Context, id string) (*domain.RoadNode, error)
}

// Route is the outcome of a search. An empty Path means no route exists.
type Route struct {
	Path     []string
	Cost     float64
	Expanded int
}

// Found reports whether a path was produced.
func (r Route) Found() bool { return len(r.Path) > 0 }

// Finder runs route searches against a NodeLookup. It keeps no state
// between calls and is safe for concurrent use.
type Finder struct {
	nodes         NodeLookup
	maxExpansions int
}

// NewFinder creates a Finder. maxExpansions <= 0 selects DefaultMaxExpansions.
func NewFinder(nodes NodeLookup, maxExpansions int) *Finder {
	if maxExpansions <= 0 {
		maxExpansions = DefaultMaxExpansions
	}
	return &Finder{nodes: nodes, maxExpansions: maxExpansions}
}

// FindRoute returns the cheapest path from start to end that avoids every
// node in hazards. A search that exhausts the frontier returns a Route with
// no path and a nil error.
func (f *Finder) FindRoute(ctx context.Context, start, end *domain.RoadNode, hazards HazardSet) (Route, error) {
	if start == nil || end == nil {
		return Route{}, fmt.Errorf("%w: start and end nodes are required", domain.ErrInvalidInput)
	}
	if start.ID == end.ID {
		return Route{Path: []string{start.ID}}, nil
	}
	if hazards.Contains(start.ID) || hazards.Contains(end.ID) {
		return Route{}, nil
	}

	s := &search{
		lookup: f.nodes,
		cache:  map[string]*domain.RoadNode{start.ID: start, end.ID: end},
	}
	goal := end.Location

	best := map[string]float64{start.ID: 0}
	parent := make(map[string]string)

	fr := &frontier{}
	heap.Push(fr, &frontierItem{id: start.ID, priority: start.Location.PlanarDistance(goal)})

	expanded := 0
	for fr.Len() > 0 {
		item := heap.Pop(fr).(*frontierItem)

		if item.id == end.ID {
			return Route{
				Path:     reconstruct(parent, start.ID, end.ID),
				Cost:     item.cost,
				Expanded: expanded,
			}, nil
		}

		// Superseded by a cheaper push of the same node.
		if item.cost > best[item.id] {
			continue
		}

		if expanded >= f.maxExpansions {
			return Route{Expanded: expanded}, domain.ErrSearchLimit
		}
		if err := ctx.Err(); err != nil {
			return Route{Expanded: expanded}, err
		}
		expanded++

		node, err := s.node(ctx, item.id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return Route{Expanded: expanded}, err
		}

		for nid, dist := range node.Neighbors {
			if hazards.Contains(nid) {
				continue
			}
			if dist < 0 || math.IsNaN(dist) || math.IsInf(dist, 0) {
				continue
			}

			cost := item.cost + dist
			if old, seen := best[nid]; seen && cost >= old {
				continue
			}

			neighbor, err := s.node(ctx, nid)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return Route{Expanded: expanded}, err
			}

			best[nid] = cost
			parent[nid] = item.id
			heap.Push(fr, &frontierItem{
				id:       nid,
				cost:     cost,
				priority: cost + neighbor.Location.PlanarDistance(goal),
			})
		}
	}

	return Route{Expanded: expanded}, nil
}

// search is the per-call state. Its node cache must never outlive one
// FindRoute call.
type search struct {
	lookup NodeLookup
	cache  map[string]*domain.RoadNode
}

func (s *search) node(ctx context.Context, id string) (*domain.RoadNode, error) {
	if n, ok := s.cache[id]; ok {
		return n, nil
	}
	n, err := s.lookup.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache[id] = n
	return n, nil
}

func reconstruct(parent map[string]string, startID, endID string) []string {
	path := []string{endID}
	for cur := endID; cur != startID; {
		cur = parent[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
