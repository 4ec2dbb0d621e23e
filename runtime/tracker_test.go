package runtime

import (
	"testing"

	"github.com/agentbackplane/abp/contract"
	"github.com/stretchr/testify/require"
)

func TestRunTracker_LifecycleTransitions(t *testing.T) {
	t.Parallel()

	tracker := NewRunTracker()
	id := contract.NewRunID()

	require.NoError(t, tracker.MarkPending(id))
	status, err := tracker.Get(id)
	require.NoError(t, err)
	require.Equal(t, RunPending, status.Kind)

	tracker.MarkRunning(id)
	status, err = tracker.Get(id)
	require.NoError(t, err)
	require.Equal(t, RunRunning, status.Kind)

	tracker.MarkFailed(id, "boom")
	status, err = tracker.Get(id)
	require.NoError(t, err)
	require.Equal(t, RunFailed, status.Kind)
	require.Equal(t, "boom", status.Error)
}

func TestRunTracker_MarkPendingRejectsDuplicate(t *testing.T) {
	t.Parallel()

	tracker := NewRunTracker()
	id := contract.NewRunID()
	require.NoError(t, tracker.MarkPending(id))
	require.Error(t, tracker.MarkPending(id))
}

func TestRunTracker_RemoveRejectsRunning(t *testing.T) {
	t.Parallel()

	tracker := NewRunTracker()
	id := contract.NewRunID()
	require.NoError(t, tracker.MarkPending(id))
	tracker.MarkRunning(id)

	require.Error(t, tracker.Remove(id))

	tracker.MarkFailed(id, "x")
	require.NoError(t, tracker.Remove(id))

	_, err := tracker.Get(id)
	require.Error(t, err)
}

func TestRunTracker_ListIsSorted(t *testing.T) {
	t.Parallel()

	tracker := NewRunTracker()
	a := contract.RunID("b-run")
	b := contract.RunID("a-run")
	require.NoError(t, tracker.MarkPending(a))
	require.NoError(t, tracker.MarkPending(b))

	list := tracker.List()
	require.Equal(t, []contract.RunID{"a-run", "b-run"}, list)
}

func TestRunTracker_Counts(t *testing.T) {
	t.Parallel()

	tracker := NewRunTracker()
	running := contract.NewRunID()
	done := contract.NewRunID()
	failed := contract.NewRunID()

	require.NoError(t, tracker.MarkPending(running))
	tracker.MarkRunning(running)

	require.NoError(t, tracker.MarkPending(done))
	tracker.MarkCompleted(done, contract.Receipt{})

	require.NoError(t, tracker.MarkPending(failed))
	tracker.MarkFailed(failed, "err")

	total, runningCount, completed, failedCount := tracker.Counts()
	require.Equal(t, 3, total)
	require.Equal(t, 1, runningCount)
	require.Equal(t, 1, completed)
	require.Equal(t, 1, failedCount)
}
