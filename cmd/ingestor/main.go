package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"github.com/samirrijal/minarah/internal/adapters/graphfile"
	"github.com/samirrijal/minarah/internal/adapters/postgres"
	"github.com/samirrijal/minarah/internal/adapters/valkey"
	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/usecases"
	"github.com/samirrijal/minarah/internal/pkg/config"
	"github.com/samirrijal/minarah/internal/pkg/logging"
)

// batchSize bounds the rows sent in one pgx.Batch.
const batchSize = 500

func main() {
	symmetric := flag.Bool("symmetric", false, "mirror every edge that lacks a reverse")
	dryRun := flag.Bool("dry-run", false, "parse and validate only")
	flag.Parse()

	path := "graph.json"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	cfg, err := config.Load("minarah-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("minarah-ingestor", cfg.Log.Level, cfg.Log.Format)

	nodes, st, err := graphfile.Load(path, graphfile.Options{Symmetric: *symmetric})
	if err != nil {
		log.Fatalf("load %s: %v", path, err)
	}
	slog.Info("road graph parsed",
		"file", path,
		"nodes", st.Nodes,
		"edges", st.Edges,
		"filled", st.Filled,
		"mirrored", st.Mirrored,
		"dangling", st.Dangling,
	)
	if *dryRun {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRoadGraphRepo(db)
	start := time.Now()
	for i := 0; i < len(nodes); i += batchSize {
		end := min(i+batchSize, len(nodes))
		if err := repo.UpsertBatch(ctx, nodes[i:end]); err != nil {
			log.Fatalf("upsert nodes %d-%d: %v", i, end, err)
		}
		slog.Debug("batch written", "from", i, "to", end)
	}
	slog.Info("road graph stored", "nodes", len(nodes), "elapsed", time.Since(start).Round(time.Millisecond))

	// Drop stale cached nodes so API instances pick up the new edges.
	if cfg.Valkey.Enabled {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, cached nodes expire after ttl", "error", err, "ttl", cfg.Valkey.NodeTTL)
			return
		}
		defer cache.Close()
		usecases.NewRoadGraphService(repo, cache, cfg.Valkey.NodeTTL).Invalidate(ctx, nodeIDs(nodes)...)
		slog.Info("node cache invalidated", "nodes", len(nodes))
	}
}

func nodeIDs(nodes []domain.RoadNode) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
