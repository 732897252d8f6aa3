package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// SOSRepo implements ports.SOSRepository.
type SOSRepo struct {
	mu    sync.RWMutex
	reqs  map[string]domain.SOSRequest
	clock clockwork.Clock
}

// NewSOSRepo creates an empty repo that stamps updates with clock, or real
// time when clock is nil.
func NewSOSRepo(clock clockwork.Clock) *SOSRepo {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SOSRepo{reqs: make(map[string]domain.SOSRequest), clock: clock}
}

func (r *SOSRepo) Create(_ context.Context, req *domain.SOSRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reqs[req.ID]; exists {
		return fmt.Errorf("%w: sos %s already exists", domain.ErrInvalidInput, req.ID)
	}
	r.reqs[req.ID] = cloneSOS(*req)
	return nil
}

func (r *SOSRepo) GetByID(_ context.Context, id string) (*domain.SOSRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.reqs[id]
	if !ok {
		return nil, fmt.Errorf("sos %s: %w", id, domain.ErrNotFound)
	}
	out := cloneSOS(req)
	return &out, nil
}

func (r *SOSRepo) List(_ context.Context) ([]domain.SOSRequest, error) {
	return r.filter(func(domain.SOSRequest) bool { return true }), nil
}

func (r *SOSRepo) ListByStatus(_ context.Context, status domain.SOSStatus) ([]domain.SOSRequest, error) {
	return r.filter(func(req domain.SOSRequest) bool { return req.Status == status }), nil
}

// ListByArea matches province and area case-insensitively. An empty area
// matches every area in the province.
func (r *SOSRepo) ListByArea(_ context.Context, province, area string) ([]domain.SOSRequest, error) {
	return r.filter(func(req domain.SOSRequest) bool {
		if !strings.EqualFold(req.Province, province) {
			return false
		}
		return area == "" || strings.EqualFold(req.Area, area)
	}), nil
}

func (r *SOSRepo) ListByTeam(_ context.Context, teamID string, status domain.SOSStatus) ([]domain.SOSRequest, error) {
	return r.filter(func(req domain.SOSRequest) bool {
		return req.Status == status && req.RescueTeam != nil && *req.RescueTeam == teamID
	}), nil
}

func (r *SOSRepo) Assign(_ context.Context, id, teamID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs[id]
	if !ok {
		return false, fmt.Errorf("sos %s: %w", id, domain.ErrNotFound)
	}
	switch req.Status {
	case domain.StatusRescued:
		return false, fmt.Errorf("%w: sos %s is already rescued", domain.ErrInvalidTransition, id)
	case domain.StatusAssigned:
		if req.RescueTeam != nil && *req.RescueTeam == teamID {
			return false, nil
		}
	}
	team := teamID
	req.RescueTeam = &team
	req.Status = domain.StatusAssigned
	req.UpdatedAt = r.clock.Now().UTC()
	r.reqs[id] = req
	return true, nil
}

func (r *SOSRepo) Resolve(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs[id]
	if !ok {
		return false, fmt.Errorf("sos %s: %w", id, domain.ErrNotFound)
	}
	switch req.Status {
	case domain.StatusRescued:
		return false, nil
	case domain.StatusPending:
		return false, fmt.Errorf("%w: sos %s has no rescue team", domain.ErrInvalidTransition, id)
	}
	req.Status = domain.StatusRescued
	req.UpdatedAt = r.clock.Now().UTC()
	r.reqs[id] = req
	return true, nil
}

// filter returns matches ordered by creation time, then id.
func (r *SOSRepo) filter(keep func(domain.SOSRequest) bool) []domain.SOSRequest {
	r.mu.RLock()
	out := make([]domain.SOSRequest, 0, len(r.reqs))
	for _, req := range r.reqs {
		if keep(req) {
			out = append(out, cloneSOS(req))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneSOS(req domain.SOSRequest) domain.SOSRequest {
	if req.RescueTeam != nil {
		team := *req.RescueTeam
		req.RescueTeam = &team
	}
	return req
}
