package workflows_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/minarah/internal/adapters/memory"
	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/usecases"
	"github.com/samirrijal/minarah/internal/workflows"
)

func newTeams() (*memory.TeamRepo, *usecases.RescueTeamService) {
	repo := memory.NewTeamRepo(
		domain.RescueTeam{ID: "t1", Name: "Alpha", Availability: domain.Available},
		domain.RescueTeam{ID: "t2", Name: "Bravo", Availability: domain.Available},
	)
	return repo, usecases.NewRescueTeamService(repo)
}

func availability(t *testing.T, repo *memory.TeamRepo, id string) domain.Availability {
	t.Helper()
	team, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return team.Availability
}

func TestMissionWorkflow_AssignReassignRescue(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	repo, teams := newTeams()
	env.RegisterActivity(&workflows.MissionActivities{Teams: teams})

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(workflows.SignalTeamAssigned, workflows.TeamSignal{TeamID: "t1"})
	}, time.Minute)
	env.RegisterDelayedCallback(func() {
		assert.Equal(t, domain.Busy, availability(t, repo, "t1"))
		env.SignalWorkflow(workflows.SignalTeamAssigned, workflows.TeamSignal{TeamID: "t2"})
	}, 2*time.Minute)
	env.RegisterDelayedCallback(func() {
		assert.Equal(t, domain.Available, availability(t, repo, "t1"), "reassignment releases the first team")
		assert.Equal(t, domain.Busy, availability(t, repo, "t2"))
		env.SignalWorkflow(workflows.SignalSOSRescued, workflows.TeamSignal{})
	}, 3*time.Minute)

	env.ExecuteWorkflow(workflows.MissionWorkflow, workflows.MissionInput{SOSID: "s1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, domain.Available, availability(t, repo, "t2"))
}

func TestMissionWorkflow_RepeatedAssignIsIgnored(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	calls := 0
	env.RegisterActivity(&workflows.MissionActivities{})
	env.OnActivity("MarkTeamBusy", mock.Anything, "t1").Return(func(context.Context, string) error {
		calls++
		return nil
	})
	env.OnActivity("MarkTeamAvailable", mock.Anything, "t1").Return(nil).Once()

	for i := 1; i <= 2; i++ {
		env.RegisterDelayedCallback(func() {
			env.SignalWorkflow(workflows.SignalTeamAssigned, workflows.TeamSignal{TeamID: "t1"})
		}, time.Duration(i)*time.Minute)
	}
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(workflows.SignalSOSRescued, workflows.TeamSignal{})
	}, 3*time.Minute)

	env.ExecuteWorkflow(workflows.MissionWorkflow, workflows.MissionInput{SOSID: "s1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, 1, calls)
	env.AssertExpectations(t)
}

func TestMissionWorkflow_RescueWithoutTeam(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	_, teams := newTeams()
	env.RegisterActivity(&workflows.MissionActivities{Teams: teams})

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(workflows.SignalSOSRescued, workflows.TeamSignal{})
	}, time.Minute)

	env.ExecuteWorkflow(workflows.MissionWorkflow, workflows.MissionInput{SOSID: "s1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
}

func TestMissionActivities_UnknownTeamIsNotRetried(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	_, teams := newTeams()
	env.RegisterActivity(&workflows.MissionActivities{Teams: teams})

	_, err := env.ExecuteActivity("MarkTeamBusy", "t9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

// ---- Trigger ----

type signalCall struct {
	workflowID string
	signal     string
	arg        interface{}
	taskQueue  string
}

type fakeRun struct {
	client.WorkflowRun
	id string
}

func (r fakeRun) GetRunID() string { return r.id }

type fakeStarter struct {
	calls []signalCall
	err   error
}

func (f *fakeStarter) SignalWithStartWorkflow(_ context.Context, workflowID string, signalName string, signalArg interface{},
	options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, signalCall{workflowID, signalName, signalArg, options.TaskQueue})
	return fakeRun{id: "run-1"}, nil
}

func TestTrigger_HandleEvent(t *testing.T) {
	starter := &fakeStarter{}
	trig := workflows.NewTrigger(starter, "")
	ctx := context.Background()

	require.NoError(t, trig.HandleEvent(ctx, domain.Event{Type: domain.EventNewSOS, SOSID: "s1"}))
	require.NoError(t, trig.HandleEvent(ctx, domain.SOSAssignedEvent("s1", "t1")))
	require.NoError(t, trig.HandleEvent(ctx, domain.SOSRescuedEvent("s1")))

	require.Len(t, starter.calls, 2)
	assert.Equal(t, signalCall{"mission-s1", workflows.SignalTeamAssigned, workflows.TeamSignal{TeamID: "t1"}, workflows.DefaultTaskQueue}, starter.calls[0])
	assert.Equal(t, signalCall{"mission-s1", workflows.SignalSOSRescued, workflows.TeamSignal{}, workflows.DefaultTaskQueue}, starter.calls[1])
}

func TestTrigger_Errors(t *testing.T) {
	trig := workflows.NewTrigger(&fakeStarter{err: errors.New("temporal unavailable")}, "q")

	err := trig.HandleEvent(context.Background(), domain.SOSRescuedEvent("s1"))
	assert.ErrorContains(t, err, "temporal unavailable")

	err = trig.HandleEvent(context.Background(), domain.Event{Type: domain.EventSOSRescued})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
