package routing_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/routing"
)

// graph is an in-memory NodeLookup that counts lookups per id.
type graph struct {
	nodes   map[string]*domain.RoadNode
	lookups map[string]int
	err     error
}

func newGraph() *graph {
	return &graph{nodes: map[string]*domain.RoadNode{}, lookups: map[string]int{}}
}

func (g *graph) add(id string, lat, lng float64) *domain.RoadNode {
	n := &domain.RoadNode{ID: id, Name: id, Location: domain.GeoPoint{Lat: lat, Lng: lng}, Neighbors: map[string]float64{}}
	g.nodes[id] = n
	return n
}

func (g *graph) link(a, b string, dist float64) {
	g.nodes[a].Neighbors[b] = dist
	g.nodes[b].Neighbors[a] = dist
}

func (g *graph) GetByID(_ context.Context, id string) (*domain.RoadNode, error) {
	g.lookups[id]++
	if g.err != nil {
		return nil, g.err
	}
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("road node %s: %w", id, domain.ErrNotFound)
	}
	return n, nil
}

func abc() *graph {
	g := newGraph()
	g.add("A", 0, 0)
	g.add("B", 1, 0)
	g.add("C", 2, 0)
	g.link("A", "B", 1)
	g.link("B", "C", 1)
	g.link("A", "C", 5)
	return g
}

func TestFindRoute_PrefersCheaperDetour(t *testing.T) {
	g := abc()
	f := routing.NewFinder(g, 0)

	route, err := f.FindRoute(context.Background(), g.nodes["A"], g.nodes["C"], nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, route.Path)
	assert.InDelta(t, 2.0, route.Cost, 1e-9)
}

func TestFindRoute_HazardForcesDirectEdge(t *testing.T) {
	g := abc()
	f := routing.NewFinder(g, 0)

	route, err := f.FindRoute(context.Background(), g.nodes["A"], g.nodes["C"], routing.NewHazardSet("B"))
	require.NoError(t, err)
	require.True(t, route.Found())
	assert.Equal(t, []string{"A", "C"}, route.Path)
	assert.InDelta(t, 5.0, route.Cost, 1e-9)
}

func TestFindRoute_StartEqualsEnd(t *testing.T) {
	g := abc()
	f := routing.NewFinder(g, 0)

	route, err := f.FindRoute(context.Background(), g.nodes["A"], g.nodes["A"], routing.NewHazardSet("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, route.Path)
	assert.Zero(t, route.Cost)
	assert.Empty(t, g.lookups, "no search should run")
}

func TestFindRoute_AllPathsFlooded(t *testing.T) {
	g := newGraph()
	g.add("A", 0, 0)
	g.add("B", 1, 0)
	g.add("C", 2, 0)
	g.link("A", "B", 1)
	g.link("B", "C", 1)
	f := routing.NewFinder(g, 0)

	route, err := f.FindRoute(context.Background(), g.nodes["A"], g.nodes["C"], routing.NewHazardSet("B"))
	require.NoError(t, err)
	assert.False(t, route.Found())
	assert.Empty(t, route.Path)
}

func TestFindRoute_GoalFlooded(t *testing.T) {
	g := abc()
	f := routing.NewFinder(g, 0)

	route, err := f.FindRoute(context.Background(), g.nodes["A"], g.nodes["C"], routing.NewHazardSet("C"))
	require.NoError(t, err)
	assert.False(t, route.Found())
}

func TestFindRoute_DisconnectedComponents(t *testing.T) {
	g := abc()
	g.add("X", 9, 9)
	g.add("Y", 9, 10)
	g.link("X", "Y", 1)
	f := routing.NewFinder(g, 0)

	route, err := f.FindRoute(context.Background(), g.nodes["A"], g.nodes["Y"], nil)
	require.NoError(t, err)
	assert.False(t, route.Found())
}

func TestFindRoute_DanglingNeighborIgnored(t *testing.T) {
	g := abc()
	g.nodes["A"].Neighbors["ghost"] = 0.1
	f := routing.NewFinder(g, 0)

	route, err := f.FindRoute(context.Background(), g.nodes["A"], g.nodes["C"], nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, route.Path)
}

func TestFindRoute_StoreErrorPropagates(t *testing.T) {
	g := abc()
	g.err = errors.New("connection reset")
	f := routing.NewFinder(g, 0)

	_, err := f.FindRoute(context.Background(), g.nodes["A"], g.nodes["C"], nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFindRoute_ExpansionLimit(t *testing.T) {
	g := newGraph()
	const n = 50
	for i := 0; i < n; i++ {
		g.add(fmt.Sprintf("n%d", i), 0, float64(i))
	}
	for i := 1; i < n; i++ {
		g.link(fmt.Sprintf("n%d", i-1), fmt.Sprintf("n%d", i), 1)
	}
	f := routing.NewFinder(g, 5)

	_, err := f.FindRoute(context.Background(), g.nodes["n0"], g.nodes["n49"], nil)
	assert.ErrorIs(t, err, domain.ErrSearchLimit)
}

func TestFindRoute_CacheIsPerCall(t *testing.T) {
	g := abc()
	f := routing.NewFinder(g, 0)

	_, err := f.FindRoute(context.Background(), g.nodes["A"], g.nodes["C"], nil)
	require.NoError(t, err)
	for id, count := range g.lookups {
		assert.LessOrEqualf(t, count, 1, "node %s looked up %d times in one call", id, count)
	}

	first := g.lookups["B"]
	_, err = f.FindRoute(context.Background(), g.nodes["A"], g.nodes["C"], nil)
	require.NoError(t, err)
	assert.Greater(t, g.lookups["B"], first, "second call must not reuse the first call's cache")
}

func TestFindRoute_CanceledContext(t *testing.T) {
	g := abc()
	f := routing.NewFinder(g, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FindRoute(ctx, g.nodes["A"], g.nodes["C"], nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// gridGraph builds a w*h grid whose edge lengths are at least the planar
// distance between endpoints, so the heuristic stays admissible.
func gridGraph(rng *rand.Rand, w, h int) *graph {
	g := newGraph()
	id := func(x, y int) string { return fmt.Sprintf("%d:%d", x, y) }
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			g.add(id(x, y), float64(x), float64(y))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if x+1 < w {
				g.link(id(x, y), id(x+1, y), 1+rng.Float64()*3)
			}
			if y+1 < h {
				g.link(id(x, y), id(x, y+1), 1+rng.Float64()*3)
			}
			if x+1 < w && y+1 < h && rng.Intn(3) == 0 {
				g.link(id(x, y), id(x+1, y+1), math.Sqrt2+rng.Float64())
			}
		}
	}
	return g
}

// dijkstra is a quadratic reference implementation.
func dijkstra(g *graph, start, end string, hazards routing.HazardSet) (float64, bool) {
	if start == end {
		return 0, true
	}
	if hazards.Contains(start) || hazards.Contains(end) {
		return 0, false
	}
	dist := map[string]float64{start: 0}
	done := map[string]bool{}
	for {
		cur, curDist, ok := "", math.Inf(1), false
		for id, d := range dist {
			if !done[id] && d < curDist {
				cur, curDist, ok = id, d, true
			}
		}
		if !ok {
			return 0, false
		}
		if cur == end {
			return curDist, true
		}
		done[cur] = true
		for nid, w := range g.nodes[cur].Neighbors {
			if hazards.Contains(nid) {
				continue
			}
			if old, seen := dist[nid]; !seen || curDist+w < old {
				dist[nid] = curDist + w
			}
		}
	}
}

func pathCost(t *testing.T, g *graph, path []string) float64 {
	t.Helper()
	total := 0.0
	for i := 1; i < len(path); i++ {
		w, ok := g.nodes[path[i-1]].Neighbors[path[i]]
		require.Truef(t, ok, "path uses missing edge %s->%s", path[i-1], path[i])
		total += w
	}
	return total
}

func TestFindRoute_MatchesReferenceOnRandomGrids(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		g := gridGraph(rng, 7, 6)
		start := g.nodes[fmt.Sprintf("%d:%d", rng.Intn(7), rng.Intn(6))]
		end := g.nodes[fmt.Sprintf("%d:%d", rng.Intn(7), rng.Intn(6))]

		hazards := routing.HazardSet{}
		for i := 0; i < rng.Intn(12); i++ {
			hazards = hazards.With(fmt.Sprintf("%d:%d", rng.Intn(7), rng.Intn(6)))
		}

		f := routing.NewFinder(g, 0)
		route, err := f.FindRoute(context.Background(), start, end, hazards)
		require.NoError(t, err)

		want, ok := dijkstra(g, start.ID, end.ID, hazards)
		if start.ID == end.ID {
			require.Equal(t, []string{start.ID}, route.Path)
			continue
		}
		require.Equalf(t, ok, route.Found(), "trial %d reachability", trial)
		if !ok {
			continue
		}
		assert.InDeltaf(t, want, route.Cost, 1e-9, "trial %d cost", trial)
		assert.InDeltaf(t, route.Cost, pathCost(t, g, route.Path), 1e-9, "trial %d summed cost", trial)
		assert.Equal(t, start.ID, route.Path[0])
		assert.Equal(t, end.ID, route.Path[len(route.Path)-1])
		for _, id := range route.Path {
			assert.Falsef(t, hazards.Contains(id), "trial %d path crosses flooded node %s", trial, id)
		}
	}
}

func TestFindRoute_AddingHazardNeverLowersCost(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := gridGraph(rng, 6, 6)
	start, end := g.nodes["0:0"], g.nodes["5:5"]
	f := routing.NewFinder(g, 0)

	hazards := routing.HazardSet{}
	prev, err := f.FindRoute(context.Background(), start, end, hazards)
	require.NoError(t, err)
	require.True(t, prev.Found())

	for i := 0; i < 15; i++ {
		hazards = hazards.With(fmt.Sprintf("%d:%d", rng.Intn(6), rng.Intn(6)))
		next, err := f.FindRoute(context.Background(), start, end, hazards)
		require.NoError(t, err)
		if !next.Found() {
			return
		}
		assert.GreaterOrEqual(t, next.Cost+1e-9, prev.Cost)
		prev = next
	}
}

func TestParseHazardList(t *testing.T) {
	h := routing.ParseHazardList(" n1, n2,,n3 ,")
	assert.Equal(t, []string{"n1", "n2", "n3"}, h.IDs())
	assert.Empty(t, routing.ParseHazardList("").IDs())
	assert.False(t, routing.HazardSet(nil).Contains("n1"))
}
