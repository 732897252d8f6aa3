package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/ports"
)

// RescueTeamService handles team lookups and availability.
type RescueTeamService struct {
	teams ports.RescueTeamRepository
}

// NewRescueTeamService creates a new RescueTeamService.
func NewRescueTeamService(teams ports.RescueTeamRepository) *RescueTeamService {
	return &RescueTeamService{teams: teams}
}

// ListAvailable returns teams that can take a new mission.
func (s *RescueTeamService) ListAvailable(ctx context.Context) ([]domain.RescueTeam, error) {
	return s.teams.ListByAvailability(ctx, domain.Available)
}

// List returns all teams.
func (s *RescueTeamService) List(ctx context.Context) ([]domain.RescueTeam, error) {
	return s.teams.List(ctx)
}

// GetByID returns a single team.
func (s *RescueTeamService) GetByID(ctx context.Context, id string) (*domain.RescueTeam, error) {
	return s.teams.GetByID(ctx, id)
}

// SetAvailability parses status and stores it.
func (s *RescueTeamService) SetAvailability(ctx context.Context, id, status string) (*domain.RescueTeam, error) {
	a, err := domain.ParseAvailability(status)
	if err != nil {
		return nil, err
	}
	if err := s.teams.UpdateAvailability(ctx, id, a); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "team availability changed", "team", id, "availability", a)
	return s.teams.GetByID(ctx, id)
}

// GetByEmail resolves a team by contact email, ignoring case.
func (s *RescueTeamService) GetByEmail(ctx context.Context, email string) (*domain.RescueTeam, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: team email is required", domain.ErrInvalidInput)
	}
	return s.teams.GetByEmail(ctx, email)
}
