package memory

import (
	"context"
	"sync"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// PredictionRepo implements ports.PredictionRepository.
type PredictionRepo struct {
	mu      sync.Mutex
	records []domain.PredictionRecord
}

func NewPredictionRepo() *PredictionRepo { return &PredictionRepo{} }

func (r *PredictionRepo) Insert(_ context.Context, rec *domain.PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

// Records returns a snapshot of everything inserted so far.
func (r *PredictionRepo) Records() []domain.PredictionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PredictionRecord(nil), r.records...)
}
