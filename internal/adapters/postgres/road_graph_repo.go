package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// RoadGraphRepo implements ports.RoadGraphRepository and ports.RoadGraphWriter.
type RoadGraphRepo struct {
	db *DB
}

func NewRoadGraphRepo(db *DB) *RoadGraphRepo { return &RoadGraphRepo{db: db} }

func (r *RoadGraphRepo) GetByID(ctx context.Context, id string) (*domain.RoadNode, error) {
	var n domain.RoadNode
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, lat, lng, neighbors
		FROM road_nodes WHERE id = $1
	`, id).Scan(&n.ID, &n.Name, &n.Location.Lat, &n.Location.Lng, &n.Neighbors)
	if err != nil {
		return nil, notFound(err, "road node", id)
	}
	if n.Neighbors == nil {
		n.Neighbors = map[string]float64{}
	}
	return &n, nil
}

// UpsertBatch inserts or replaces nodes using pgx.Batch.
func (r *RoadGraphRepo) UpsertBatch(ctx context.Context, nodes []domain.RoadNode) error {
	batch := &pgx.Batch{}
	for _, n := range nodes {
		neighbors := n.Neighbors
		if neighbors == nil {
			neighbors = map[string]float64{}
		}
		batch.Queue(`
			INSERT INTO road_nodes (id, name, lat, lng, neighbors, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, lat = EXCLUDED.lat, lng = EXCLUDED.lng,
			    neighbors = EXCLUDED.neighbors, updated_at = now()
		`, n.ID, n.Name, n.Location.Lat, n.Location.Lng, neighbors)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range nodes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}
