package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/minarah/internal/core/dispatch"
	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/ports"
	"github.com/samirrijal/minarah/internal/pkg/metrics"
	"github.com/samirrijal/minarah/internal/pkg/telemetry"
)

// SOSService coordinates the SOS lifecycle Pending -> Assigned -> Rescued.
//
// Every transition that changes state is broadcast to the local hub before
// the call returns, and in the order the transitions were applied. Events
// are mirrored to the broker when one is configured; broker failures are
// logged and never fail the transition.
type SOSService struct {
	mu     sync.Mutex
	sos    ports.SOSRepository
	teams  ports.RescueTeamRepository
	hub    ports.Broadcaster
	events ports.EventPublisher
	clock  clockwork.Clock
	tracer trace.Tracer
}

// NewSOSService creates a new SOSService. events may be nil; a nil clock
// uses real time.
func NewSOSService(
	sos ports.SOSRepository,
	teams ports.RescueTeamRepository,
	hub ports.Broadcaster,
	events ports.EventPublisher,
	clock clockwork.Clock,
) *SOSService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SOSService{
		sos:    sos,
		teams:  teams,
		hub:    hub,
		events: events,
		clock:  clock,
		tracer: otel.Tracer(telemetry.TracerName),
	}
}

// Create stores a new Pending request and announces it.
func (s *SOSService) Create(ctx context.Context, req *domain.SOSRequest) (*domain.SOSRequest, error) {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanSOSCreate)
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Version 7 ids sort by creation time.
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("sos id: %w", err)
	}
	now := s.clock.Now().UTC()
	req.ID = id.String()
	req.Status = domain.StatusPending
	req.RescueTeam = nil
	req.CreatedAt = now
	req.UpdatedAt = now
	span.SetAttributes(attribute.String("sos.id", req.ID), attribute.String("sos.priority", string(req.Priority)))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sos.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create sos: %w", err)
	}
	slog.InfoContext(ctx, "sos created", "sos_id", req.ID, "priority", req.Priority, "province", req.Province)
	s.emit(ctx, domain.NewSOSEvent(req))
	return req, nil
}

// ListPending returns every Pending request, most urgent first. Requests of
// equal urgency are listed oldest first.
func (s *SOSService) ListPending(ctx context.Context) ([]domain.SOSRequest, error) {
	pending, err := s.sos.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return dispatch.Order(pending), nil
}

// Assign dispatches teamID to the request. changed is false when the team
// was already assigned, in which case nothing is broadcast.
func (s *SOSService) Assign(ctx context.Context, id, teamID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanSOSAssign)
	defer span.End()
	span.SetAttributes(attribute.String("sos.id", id), attribute.String("sos.team", teamID))

	id, teamID = strings.TrimSpace(id), strings.TrimSpace(teamID)
	if id == "" || teamID == "" {
		return false, fmt.Errorf("%w: sos id and rescue team are required", domain.ErrInvalidInput)
	}
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.sos.Assign(ctx, id, teamID)
	if err != nil {
		return false, err
	}
	span.SetAttributes(attribute.Bool("sos.changed", changed))
	if changed {
		slog.InfoContext(ctx, "sos assigned", "sos_id", id, "team", teamID)
		s.emit(ctx, domain.SOSAssignedEvent(id, teamID))
	}
	return changed, nil
}

// Resolve marks the request Rescued. changed is false when it already was.
func (s *SOSService) Resolve(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanSOSResolve)
	defer span.End()
	span.SetAttributes(attribute.String("sos.id", id))

	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("%w: sos id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.sos.Resolve(ctx, id)
	if err != nil {
		return false, err
	}
	span.SetAttributes(attribute.Bool("sos.changed", changed))
	if changed {
		slog.InfoContext(ctx, "sos rescued", "sos_id", id)
		s.emit(ctx, domain.SOSRescuedEvent(id))
	}
	return changed, nil
}

// GetByID returns a single request.
func (s *SOSService) GetByID(ctx context.Context, id string) (*domain.SOSRequest, error) {
	return s.sos.GetByID(ctx, id)
}

// List returns every request in creation order.
func (s *SOSService) List(ctx context.Context) ([]domain.SOSRequest, error) {
	return s.sos.List(ctx)
}

// ListByArea returns requests in a province, optionally narrowed to an area.
func (s *SOSService) ListByArea(ctx context.Context, province, area string) ([]domain.SOSRequest, error) {
	province = strings.TrimSpace(province)
	if province == "" {
		return nil, fmt.Errorf("%w: province is required", domain.ErrInvalidInput)
	}
	return s.sos.ListByArea(ctx, province, strings.TrimSpace(area))
}

// ListAssignedTo returns the open requests a team is working on.
func (s *SOSService) ListAssignedTo(ctx context.Context, teamID string) ([]domain.SOSRequest, error) {
	return s.listByTeam(ctx, teamID, domain.StatusAssigned)
}

// ListRescuedBy returns the requests a team has closed.
func (s *SOSService) ListRescuedBy(ctx context.Context, teamID string) ([]domain.SOSRequest, error) {
	return s.listByTeam(ctx, teamID, domain.StatusRescued)
}

func (s *SOSService) listByTeam(ctx context.Context, teamID string, status domain.SOSStatus) ([]domain.SOSRequest, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.sos.ListByTeam(ctx, teamID, status)
}

// emit must be called with s.mu held.
func (s *SOSService) emit(ctx context.Context, event domain.Event) {
	metrics.SOSTransitions.WithLabelValues(string(event.Type)).Inc()
	n := s.hub.Publish(event)
	slog.DebugContext(ctx, "sos event broadcast", "type", event.Type, "sos_id", event.SOSID, "subscribers", n)

	if s.events == nil {
		return
	}
	if err := s.events.PublishSOSEvent(ctx, event); err != nil {
		slog.WarnContext(ctx, "sos event mirror failed", "type", event.Type, "sos_id", event.SOSID, "error", err)
	}
}
