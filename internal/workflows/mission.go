// Package workflows tracks rescue missions in Temporal. One workflow runs
// per SOS request and keeps the assigned team's availability in step with
// the request's lifecycle.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Signal names understood by MissionWorkflow.
const (
	SignalTeamAssigned = "team-assigned"
	SignalSOSRescued   = "sos-rescued"
)

// DefaultTaskQueue is used when no task queue is configured.
const DefaultTaskQueue = "minarah-missions"

// MissionInput identifies the SOS request a mission belongs to.
type MissionInput struct {
	SOSID string
}

// TeamSignal carries the team named by a lifecycle signal. It is empty for
// SOS_RESCUED, which releases whichever team the mission holds.
type TeamSignal struct {
	TeamID string
}

// MissionWorkflowID is the workflow id used for an SOS request.
func MissionWorkflowID(sosID string) string {
	return "mission-" + sosID
}

// MissionWorkflow marks the assigned team Busy, releases the previous team
// on reassignment, and frees the team when the request is rescued.
func MissionWorkflow(ctx workflow.Context, input MissionInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Mission started", "sos_id", input.SOSID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 5,
		},
	})

	assigned := workflow.GetSignalChannel(ctx, SignalTeamAssigned)
	rescued := workflow.GetSignalChannel(ctx, SignalSOSRescued)

	var team string
	done := false
	for !done {
		sel := workflow.NewSelector(ctx)
		sel.AddReceive(assigned, func(c workflow.ReceiveChannel, _ bool) {
			var sig TeamSignal
			c.Receive(ctx, &sig)
			if sig.TeamID == "" || sig.TeamID == team {
				return
			}
			if team != "" {
				if err := workflow.ExecuteActivity(ctx, "MarkTeamAvailable", team).Get(ctx, nil); err != nil {
					logger.Warn("release previous team failed", "team", team, "error", err)
				}
			}
			if err := workflow.ExecuteActivity(ctx, "MarkTeamBusy", sig.TeamID).Get(ctx, nil); err != nil {
				logger.Warn("mark team busy failed", "team", sig.TeamID, "error", err)
			}
			team = sig.TeamID
		})
		sel.AddReceive(rescued, func(c workflow.ReceiveChannel, _ bool) {
			var sig TeamSignal
			c.Receive(ctx, &sig)
			if team == "" {
				team = sig.TeamID
			}
			done = true
		})
		sel.Select(ctx)
	}

	if team != "" {
		if err := workflow.ExecuteActivity(ctx, "MarkTeamAvailable", team).Get(ctx, nil); err != nil {
			return err
		}
	}

	logger.Info("Mission completed", "sos_id", input.SOSID, "team", team)
	return nil
}
