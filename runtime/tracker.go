package runtime

import (
	"sort"
	"sync"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/apierr"
)

// RunStatusKind discriminates the RunStatus tagged union.
type RunStatusKind string

const (
	RunPending   RunStatusKind = "pending"
	RunRunning   RunStatusKind = "running"
	RunCompleted RunStatusKind = "completed"
	RunFailed    RunStatusKind = "failed"
)

// RunStatus is one run's tracked state. Exactly one of Receipt/Error is
// meaningful, matching Kind.
type RunStatus struct {
	Kind    RunStatusKind
	Receipt contract.Receipt
	Error   string
}

// RunTracker maps RunID to RunStatus, guarded by a reader-writer lock so
// status reads (the common case, from HTTP handlers) never contend with
// each other.
type RunTracker struct {
	mu   sync.RWMutex
	runs map[contract.RunID]RunStatus
}

// NewRunTracker returns an empty tracker.
func NewRunTracker() *RunTracker {
	return &RunTracker{runs: make(map[contract.RunID]RunStatus)}
}

// MarkPending records a new run as Pending. Returns Conflict if the run id
// is already tracked.
func (t *RunTracker) MarkPending(id contract.RunID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.runs[id]; exists {
		return apierr.Newf(apierr.KindConflict, "runtime: run %q already tracked", id)
	}
	t.runs[id] = RunStatus{Kind: RunPending}
	return nil
}

// MarkRunning transitions id to Running.
func (t *RunTracker) MarkRunning(id contract.RunID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[id] = RunStatus{Kind: RunRunning}
}

// MarkCompleted transitions id to Completed with the final receipt.
func (t *RunTracker) MarkCompleted(id contract.RunID, receipt contract.Receipt) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[id] = RunStatus{Kind: RunCompleted, Receipt: receipt}
}

// MarkFailed transitions id to Failed with the given error message.
func (t *RunTracker) MarkFailed(id contract.RunID, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[id] = RunStatus{Kind: RunFailed, Error: errMsg}
}

// Get returns id's tracked status.
func (t *RunTracker) Get(id contract.RunID) (RunStatus, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	status, ok := t.runs[id]
	if !ok {
		return RunStatus{}, apierr.Newf(apierr.KindNotFound, "runtime: run %q not found", id)
	}
	return status, nil
}

// List returns every tracked RunID in sorted order.
func (t *RunTracker) List() []contract.RunID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.runs))
	for id := range t.runs {
		out = append(out, string(id))
	}
	sort.Strings(out)
	ids := make([]contract.RunID, len(out))
	for i, s := range out {
		ids[i] = contract.RunID(s)
	}
	return ids
}

// Remove deletes id from the tracker. A Running status is a Conflict;
// Pending, Completed, and Failed may all be removed.
func (t *RunTracker) Remove(id contract.RunID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	status, ok := t.runs[id]
	if !ok {
		return apierr.Newf(apierr.KindNotFound, "runtime: run %q not found", id)
	}
	if status.Kind == RunRunning {
		return apierr.Newf(apierr.KindConflict, "runtime: run %q is still running", id)
	}
	delete(t.runs, id)
	return nil
}

// Counts returns the number of runs in each terminal/non-terminal bucket,
// backing the /metrics endpoint.
func (t *RunTracker) Counts() (total, running, completed, failed int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	total = len(t.runs)
	for _, s := range t.runs {
		switch s.Kind {
		case RunRunning, RunPending:
			running++
		case RunCompleted:
			completed++
		case RunFailed:
			failed++
		}
	}
	return
}
