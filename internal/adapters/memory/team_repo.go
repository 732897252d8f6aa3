package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// TeamRepo implements ports.RescueTeamRepository.
type TeamRepo struct {
	mu    sync.RWMutex
	teams map[string]domain.RescueTeam
}

// NewTeamRepo creates a repo seeded with teams.
func NewTeamRepo(teams ...domain.RescueTeam) *TeamRepo {
	r := &TeamRepo{teams: make(map[string]domain.RescueTeam, len(teams))}
	for _, t := range teams {
		r.teams[t.ID] = t
	}
	return r
}

func (r *TeamRepo) GetByID(_ context.Context, id string) (*domain.RescueTeam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, fmt.Errorf("rescue team %s: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *TeamRepo) GetByEmail(_ context.Context, email string) (*domain.RescueTeam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.teams {
		if strings.EqualFold(t.Email, email) {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("rescue team %s: %w", email, domain.ErrNotFound)
}

func (r *TeamRepo) List(_ context.Context) ([]domain.RescueTeam, error) {
	return r.filter(func(domain.RescueTeam) bool { return true }), nil
}

func (r *TeamRepo) ListByAvailability(_ context.Context, a domain.Availability) ([]domain.RescueTeam, error) {
	return r.filter(func(t domain.RescueTeam) bool { return t.Availability == a }), nil
}

func (r *TeamRepo) UpdateAvailability(_ context.Context, id string, a domain.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return fmt.Errorf("rescue team %s: %w", id, domain.ErrNotFound)
	}
	t.Availability = a
	r.teams[id] = t
	return nil
}

func (r *TeamRepo) filter(keep func(domain.RescueTeam) bool) []domain.RescueTeam {
	r.mu.RLock()
	out := make([]domain.RescueTeam, 0, len(r.teams))
	for _, t := range r.teams {
		if keep(t) {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
