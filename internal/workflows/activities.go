package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/usecases"
)

// MissionActivities holds the activity implementations for MissionWorkflow.
type MissionActivities struct {
	Teams *usecases.RescueTeamService
}

// MarkTeamBusy flags a team as on a mission.
func (a *MissionActivities) MarkTeamBusy(ctx context.Context, teamID string) error {
	return a.setAvailability(ctx, teamID, domain.Busy)
}

// MarkTeamAvailable returns a team to the available pool.
func (a *MissionActivities) MarkTeamAvailable(ctx context.Context, teamID string) error {
	return a.setAvailability(ctx, teamID, domain.Available)
}

func (a *MissionActivities) setAvailability(ctx context.Context, teamID string, av domain.Availability) error {
	_, err := a.Teams.SetAvailability(ctx, teamID, string(av))
	if err == nil {
		activity.GetLogger(ctx).Info("team availability updated", "team", teamID, "availability", string(av))
		return nil
	}
	// Retrying cannot make an unknown team appear.
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		return temporal.NewNonRetryableApplicationError(err.Error(), "team", err)
	}
	return err
}
