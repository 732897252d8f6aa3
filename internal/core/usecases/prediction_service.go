package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/ports"
	"github.com/samirrijal/minarah/internal/pkg/metrics"
	"github.com/samirrijal/minarah/internal/pkg/telemetry"
)

// PredictionService runs the flood scorer and keeps a record of each call.
type PredictionService struct {
	scorer  ports.FloodScorer
	records ports.PredictionRepository
	clock   clockwork.Clock
}

// NewPredictionService creates a new PredictionService. A nil clock uses real time.
func NewPredictionService(scorer ports.FloodScorer, records ports.PredictionRepository, clock clockwork.Clock) *PredictionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PredictionService{scorer: scorer, records: records, clock: clock}
}

// Predict scores in and persists the outcome. Severity is domain.NoFlood
// whenever no flood is predicted.
func (s *PredictionService) Predict(ctx context.Context, in domain.FloodPredictionInput) (domain.FloodPrediction, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanPredict)
	defer span.End()

	in.Province = cases.Title(language.Und).String(strings.ToLower(strings.TrimSpace(in.Province)))
	if err := in.Validate(); err != nil {
		return domain.FloodPrediction{}, err
	}
	span.SetAttributes(attribute.String("prediction.province", in.Province))

	out, err := s.scorer.Score(ctx, in)
	if err != nil {
		return domain.FloodPrediction{}, fmt.Errorf("score: %w", err)
	}
	if !out.Flood {
		out.Severity = domain.NoFlood
	}

	rec := &domain.PredictionRecord{
		ID:        uuid.NewString(),
		Input:     in,
		Result:    out,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		return domain.FloodPrediction{}, fmt.Errorf("store prediction: %w", err)
	}

	metrics.FloodPredictions.WithLabelValues(out.Severity).Inc()
	return out, nil
}
