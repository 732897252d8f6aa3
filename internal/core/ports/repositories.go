package ports

import (
	"context"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// RoadGraphRepository is read-only access to persisted road nodes.
// GetByID returns domain.ErrNotFound for unknown ids.
type RoadGraphRepository interface {
	GetByID(ctx context.Context, id string) (*domain.RoadNode, error)
}

// RoadGraphWriter seeds the road network. Only the ingestor uses it.
type RoadGraphWriter interface {
	UpsertBatch(ctx context.Context, nodes []domain.RoadNode) error
}

// SOSRepository persists SOS requests. Requests are never deleted.
type SOSRepository interface {
	Create(ctx context.Context, req *domain.SOSRequest) error
	GetByID(ctx context.Context, id string) (*domain.SOSRequest, error)
	List(ctx context.Context) ([]domain.SOSRequest, error)
	ListByStatus(ctx context.Context, status domain.SOSStatus) ([]domain.SOSRequest, error)
	ListByArea(ctx context.Context, province, area string) ([]domain.SOSRequest, error)
	ListByTeam(ctx context.Context, teamID string, status domain.SOSStatus) ([]domain.SOSRequest, error)

	// Assign moves a Pending or Assigned request to Assigned with teamID.
	// changed is false when the request was already assigned to teamID.
	// Unknown ids return domain.ErrNotFound; Rescued requests return
	// domain.ErrInvalidTransition.
	Assign(ctx context.Context, id, teamID string) (changed bool, err error)

	// Resolve moves an Assigned request to Rescued. changed is false when it
	// was already Rescued. Pending requests return domain.ErrInvalidTransition.
	Resolve(ctx context.Context, id string) (changed bool, err error)
}

// RescueTeamRepository reads teams and updates their availability.
type RescueTeamRepository interface {
	GetByID(ctx context.Context, id string) (*domain.RescueTeam, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.RescueTeam, error)
	List(ctx context.Context) ([]domain.RescueTeam, error)
	ListByAvailability(ctx context.Context, a domain.Availability) ([]domain.RescueTeam, error)
	UpdateAvailability(ctx context.Context, id string, a domain.Availability) error
}

// PredictionRepository persists flood predictions.
type PredictionRepository interface {
	Insert(ctx context.Context, rec *domain.PredictionRecord) error
}
