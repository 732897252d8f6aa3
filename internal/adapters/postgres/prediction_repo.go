package postgres

import (
	"context"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// PredictionRepo implements ports.PredictionRepository.
type PredictionRepo struct {
	db *DB
}

func NewPredictionRepo(db *DB) *PredictionRepo { return &PredictionRepo{db: db} }

func (r *PredictionRepo) Insert(ctx context.Context, rec *domain.PredictionRecord) error {
	in, out := rec.Input, rec.Result
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO flood_predictions
			(id, month, year, temp, ice, veg, rain_mm, province, flood, severity, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, rec.ID, in.Month, in.Year, in.Temp, in.Ice, in.Veg, in.RainMM, in.Province,
		out.Flood, out.Severity, out.Confidence, rec.CreatedAt)
	return err
}
