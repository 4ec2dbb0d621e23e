package runtime

import (
	"context"
	"testing"

	"github.com/agentbackplane/abp/contract"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	manifest contract.CapabilityManifest
	events   []contract.AgentEvent
	receipt  contract.Receipt
	err      error
}

func (f *fakeBackend) Capabilities() contract.CapabilityManifest {
	return f.manifest
}

func (f *fakeBackend) Dispatch(ctx context.Context, run contract.RunID, wo contract.WorkOrder) (<-chan contract.AgentEvent, <-chan RunResult, error) {
	events := make(chan contract.AgentEvent, len(f.events))
	result := make(chan RunResult, 1)
	for _, e := range f.events {
		events <- e
	}
	close(events)
	if f.err != nil {
		result <- RunResult{Err: f.err}
	} else {
		result <- RunResult{Receipt: f.receipt}
	}
	close(result)
	return events, result, nil
}

func buildWorkOrder(t *testing.T) contract.WorkOrder {
	t.Helper()
	wo, err := contract.NewWorkOrder("demo task").Build()
	require.NoError(t, err)
	return wo
}

func buildReceipt(t *testing.T, runID contract.RunID, woID contract.WorkOrderID) contract.Receipt {
	t.Helper()
	r, err := contract.NewReceipt(runID, woID).
		WithBackend(contract.BackendIdentity{ID: "fake"}).
		WithOutcome(contract.Outcome{Status: contract.OutcomeComplete}).
		FinishNow().
		Build()
	require.NoError(t, err)
	return r
}

func TestRuntime_RunStreamingHappyPath(t *testing.T) {
	t.Parallel()

	rt, err := New(Options{})
	require.NoError(t, err)

	wo := buildWorkOrder(t)
	runID := contract.RunID(wo.ID)
	receipt := buildReceipt(t, runID, wo.ID)

	backend := &fakeBackend{
		events:  []contract.AgentEvent{contract.RunStartedEvent(), contract.RunCompletedEvent()},
		receipt: receipt,
	}
	require.NoError(t, rt.RegisterBackend("fake", backend))

	dispatched, err := rt.RunStreaming(context.Background(), "fake", wo)
	require.NoError(t, err)

	var events []contract.AgentEvent
	for e := range dispatched.Events {
		events = append(events, e)
	}
	require.Len(t, events, 2)

	result := <-dispatched.Receipt
	require.NoError(t, result.Err)
	require.NotEmpty(t, result.Receipt.ReceiptSHA256)

	status, err := rt.GetRunStatus(runID)
	require.NoError(t, err)
	require.Equal(t, RunCompleted, status.Kind)

	require.Contains(t, rt.ListRuns(), runID)

	cached, err := rt.GetReceipt(runID)
	require.NoError(t, err)
	require.Equal(t, result.Receipt.ReceiptSHA256, cached.ReceiptSHA256)
}

func TestRuntime_RunStreamingUnknownBackend(t *testing.T) {
	t.Parallel()

	rt, err := New(Options{})
	require.NoError(t, err)

	wo := buildWorkOrder(t)
	_, err = rt.RunStreaming(context.Background(), "missing", wo)
	require.Error(t, err)
}

func TestRuntime_RemoveRunWhileRunningConflicts(t *testing.T) {
	t.Parallel()

	rt, err := New(Options{})
	require.NoError(t, err)

	runID := contract.NewRunID()
	require.NoError(t, rt.tracker.MarkPending(runID))
	rt.tracker.MarkRunning(runID)

	err = rt.RemoveRun(runID)
	require.Error(t, err)
}

func TestRuntime_PersistsReceiptToDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rt, err := New(Options{ReceiptsDir: dir})
	require.NoError(t, err)

	wo := buildWorkOrder(t)
	runID := contract.RunID(wo.ID)
	receipt := buildReceipt(t, runID, wo.ID)
	backend := &fakeBackend{receipt: receipt}
	require.NoError(t, rt.RegisterBackend("fake", backend))

	dispatched, err := rt.RunStreaming(context.Background(), "fake", wo)
	require.NoError(t, err)
	for range dispatched.Events {
	}
	<-dispatched.Receipt

	receipts, err := HydrateReceiptsFromDisk(dir)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Equal(t, runID, receipts[0].Meta.RunID)
}

func TestRuntime_GetReceiptOrDiskFallsBackWhenNotCached(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rt, err := New(Options{ReceiptsDir: dir})
	require.NoError(t, err)
	require.Equal(t, dir, rt.ReceiptsDir())

	runID := contract.NewRunID()
	receipt := buildReceipt(t, runID, contract.WorkOrderID("wo-1"))
	require.NoError(t, PersistReceipt(dir, receipt))

	// Not in the in-memory cache, since it was written directly to disk.
	_, err = rt.GetReceipt(runID)
	require.Error(t, err)

	got, err := rt.GetReceiptOrDisk(runID)
	require.NoError(t, err)
	require.Equal(t, runID, got.Meta.RunID)
}

func TestRuntime_GetReceiptOrDiskNotFound(t *testing.T) {
	t.Parallel()

	rt, err := New(Options{})
	require.NoError(t, err)

	_, err = rt.GetReceiptOrDisk(contract.NewRunID())
	require.Error(t, err)
}
