package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/routing"
	"github.com/samirrijal/minarah/internal/pkg/metrics"
	"github.com/samirrijal/minarah/internal/pkg/telemetry"
)

// RoutingService answers flood-safe routing queries.
type RoutingService struct {
	nodes  routing.NodeLookup
	finder *routing.Finder
}

// NewRoutingService creates a new RoutingService.
func NewRoutingService(nodes routing.NodeLookup, maxExpansions int) *RoutingService {
	return &RoutingService{nodes: nodes, finder: routing.NewFinder(nodes, maxExpansions)}
}

// FindRoute resolves the endpoints and searches for a path avoiding hazards.
//
// The result is always populated. A missing endpoint yields status ERROR
// together with an error wrapping domain.ErrNotFound; an unreachable goal is
// status NO_ROUTE with a nil error.
func (s *RoutingService) FindRoute(ctx context.Context, startID, endID string, hazards routing.HazardSet) (domain.RouteResult, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanFindRoute)
	defer span.End()
	span.SetAttributes(
		attribute.String("route.start", startID),
		attribute.String("route.end", endID),
		attribute.Int("route.hazards", len(hazards)),
	)

	started := time.Now()
	res, err := s.findRoute(ctx, strings.TrimSpace(startID), strings.TrimSpace(endID), hazards)
	metrics.RouteSearchDuration.Observe(time.Since(started).Seconds())
	metrics.RouteSearches.WithLabelValues(string(res.Status)).Inc()

	span.SetAttributes(attribute.String("route.status", string(res.Status)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (s *RoutingService) findRoute(ctx context.Context, startID, endID string, hazards routing.HazardSet) (domain.RouteResult, error) {
	if startID == "" || endID == "" {
		err := fmt.Errorf("%w: start and end are required", domain.ErrInvalidInput)
		return errorResult(err), err
	}

	start, err := s.endpoint(ctx, "start", startID)
	if err != nil {
		return errorResult(err), err
	}
	end, err := s.endpoint(ctx, "end", endID)
	if err != nil {
		return errorResult(err), err
	}

	route, err := s.finder.FindRoute(ctx, start, end, hazards)
	metrics.RouteExpansions.Observe(float64(route.Expanded))
	if err != nil {
		return errorResult(err), err
	}
	if !route.Found() {
		return domain.RouteResult{Status: domain.RouteNoRoute, Path: []string{}, Message: "no safe route found, every path may be flooded"}, nil
	}
	return domain.RouteResult{Status: domain.RouteOK, Path: route.Path, Distance: route.Cost}, nil
}

func (s *RoutingService) endpoint(ctx context.Context, role, id string) (*domain.RoadNode, error) {
	node, err := s.nodes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%s node %s: %w", role, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("lookup %s node: %w", role, err)
	}
	return node, nil
}

func errorResult(err error) domain.RouteResult {
	return domain.RouteResult{Status: domain.RouteError, Path: []string{}, Message: err.Error()}
}
