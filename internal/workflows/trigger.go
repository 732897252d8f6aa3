package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// WorkflowStarter is the subset of client.Client the trigger needs.
type WorkflowStarter interface {
	SignalWithStartWorkflow(ctx context.Context, workflowID string, signalName string, signalArg interface{},
		options client.StartWorkflowOptions, workflow interface{}, workflowArgs ...interface{}) (client.WorkflowRun, error)
}

// Trigger turns SOS lifecycle events into mission workflow signals.
type Trigger struct {
	starter   WorkflowStarter
	taskQueue string
}

// NewTrigger creates a Trigger. An empty taskQueue selects DefaultTaskQueue.
func NewTrigger(starter WorkflowStarter, taskQueue string) *Trigger {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &Trigger{starter: starter, taskQueue: taskQueue}
}

// HandleEvent signals (starting if needed) the mission for event.SOSID.
// NEW_SOS events are ignored.
func (t *Trigger) HandleEvent(ctx context.Context, event domain.Event) error {
	var (
		signal string
		arg    TeamSignal
	)
	switch event.Type {
	case domain.EventSOSAssigned:
		signal, arg = SignalTeamAssigned, TeamSignal{TeamID: event.RescueTeam}
	case domain.EventSOSRescued:
		signal = SignalSOSRescued
	default:
		return nil
	}
	if event.SOSID == "" {
		return fmt.Errorf("%w: %s event without sos id", domain.ErrInvalidInput, event.Type)
	}

	opts := client.StartWorkflowOptions{
		ID:        MissionWorkflowID(event.SOSID),
		TaskQueue: t.taskQueue,
	}
	run, err := t.starter.SignalWithStartWorkflow(ctx, opts.ID, signal, arg, opts, MissionWorkflow, MissionInput{SOSID: event.SOSID})
	if err != nil {
		return fmt.Errorf("signal mission %s: %w", opts.ID, err)
	}
	slog.InfoContext(ctx, "mission signalled", "workflow_id", opts.ID, "run_id", run.GetRunID(), "signal", signal)
	return nil
}
