// Package graphfile reads road graphs from JSON seed files:
//
//	{"nodes": [{"id": "n1", "name": "Saddar", "lat": 24.85, "lng": 67.02,
//	            "neighbors": {"n2": 1.4, "n3": null}}]}
//
// A null or missing distance is filled with the great-circle distance in km.
package graphfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/pkg/geospatial"
)

type fileNode struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Lat       float64             `json:"lat"`
	Lng       float64             `json:"lng"`
	Neighbors map[string]*float64 `json:"neighbors"`
}

type file struct {
	Nodes []fileNode `json:"nodes"`
}

// Options controls how edges are completed.
type Options struct {
	// Symmetric mirrors every edge a->b as b->a when b lacks it.
	Symmetric bool
}

// Stats summarises a load.
type Stats struct {
	Nodes    int
	Edges    int
	Filled   int // distances computed from coordinates
	Mirrored int // edges added by Symmetric
	Dangling int // neighbor ids with no node of their own
}

// Load reads and completes a graph from path.
func Load(path string, opts Options) ([]domain.RoadNode, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open graph: %w", err)
	}
	defer f.Close()
	return Decode(f, opts)
}

// Decode reads and completes a graph from r. Nodes are returned sorted by id.
func Decode(r io.Reader, opts Options) ([]domain.RoadNode, Stats, error) {
	var in file
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, Stats{}, fmt.Errorf("%w: decode graph: %v", domain.ErrInvalidInput, err)
	}

	byID := make(map[string]*domain.RoadNode, len(in.Nodes))
	for _, n := range in.Nodes {
		if n.ID == "" {
			return nil, Stats{}, fmt.Errorf("%w: node without id", domain.ErrInvalidInput)
		}
		if _, dup := byID[n.ID]; dup {
			return nil, Stats{}, fmt.Errorf("%w: duplicate node %s", domain.ErrInvalidInput, n.ID)
		}
		if !geospatial.ValidCoordinate(n.Lat, n.Lng) {
			return nil, Stats{}, fmt.Errorf("%w: node %s has invalid coordinates", domain.ErrInvalidInput, n.ID)
		}
		byID[n.ID] = &domain.RoadNode{
			ID:        n.ID,
			Name:      n.Name,
			Location:  domain.GeoPoint{Lat: n.Lat, Lng: n.Lng},
			Neighbors: make(map[string]float64, len(n.Neighbors)),
		}
	}

	var st Stats
	for _, n := range in.Nodes {
		node := byID[n.ID]
		for nid, dist := range n.Neighbors {
			other, ok := byID[nid]
			switch {
			case dist != nil:
				if *dist < 0 {
					return nil, Stats{}, fmt.Errorf("%w: negative distance %s->%s", domain.ErrInvalidInput, n.ID, nid)
				}
				node.Neighbors[nid] = *dist
			case ok:
				node.Neighbors[nid] = geospatial.HaversineKm(n.Lat, n.Lng, other.Location.Lat, other.Location.Lng)
				st.Filled++
			default:
				// Unknown neighbor without a distance cannot be completed.
				st.Dangling++
				continue
			}
			if !ok {
				st.Dangling++
			}
		}
	}

	if opts.Symmetric {
		for _, node := range byID {
			for nid, dist := range node.Neighbors {
				other, ok := byID[nid]
				if !ok {
					continue
				}
				if _, has := other.Neighbors[node.ID]; !has {
					other.Neighbors[node.ID] = dist
					st.Mirrored++
				}
			}
		}
	}

	nodes := make([]domain.RoadNode, 0, len(byID))
	for _, n := range byID {
		st.Edges += len(n.Neighbors)
		nodes = append(nodes, *n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	st.Nodes = len(nodes)
	return nodes, st, nil
}
