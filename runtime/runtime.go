package runtime

import (
	"context"
	"encoding/json"
	"os"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/apierr"
	"github.com/agentbackplane/abp/internal/logging"
	"github.com/agentbackplane/abp/streamutil"
)

// Options configures a Runtime, mirroring the teacher's Options-struct
// constructor pattern used throughout this module.
type Options struct {
	ReceiptsDir string
	Logger      logging.Logger
	Pipeline    *streamutil.Pipeline
}

// Runtime ties together the backend registry, run tracker, receipt cache,
// on-disk persistence, and an optional stream pipeline into the
// dispatch-and-verify control plane described by run_streaming.
type Runtime struct {
	registry *BackendRegistry
	tracker  *RunTracker

	receiptsDir string
	cache       *ReceiptCache
	pipeline    *streamutil.Pipeline
	logger      logging.Logger
}

// New constructs a Runtime and hydrates its receipt cache from
// opts.ReceiptsDir, if set.
func New(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New()
	}

	rt := &Runtime{
		registry:    NewBackendRegistry(),
		tracker:     NewRunTracker(),
		receiptsDir: opts.ReceiptsDir,
		cache:       NewReceiptCache(),
		pipeline:    opts.Pipeline,
		logger:      logger,
	}

	if opts.ReceiptsDir != "" {
		receipts, err := HydrateReceiptsFromDisk(opts.ReceiptsDir)
		if err != nil {
			return nil, err
		}
		for _, r := range receipts {
			rt.cache.Put(r)
			rt.tracker.MarkPending(r.Meta.RunID)
			rt.tracker.MarkCompleted(r.Meta.RunID, r)
		}
	}

	return rt, nil
}

// RegisterBackend adds a backend under name. Returns Conflict if name is
// already registered.
func (rt *Runtime) RegisterBackend(name string, backend Backend) error {
	return rt.registry.Register(name, backend)
}

// Backends returns every registered backend name in registration order.
func (rt *Runtime) Backends() []string {
	return rt.registry.Names()
}

// Capabilities returns every registered backend's capability manifest.
func (rt *Runtime) Capabilities() map[string]contract.CapabilityManifest {
	return rt.registry.Capabilities()
}

// BackendCapabilities returns the capability manifest for a single
// registered backend, or NotFound if name is unknown.
func (rt *Runtime) BackendCapabilities(name string) (contract.CapabilityManifest, error) {
	backend, err := rt.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return backend.Capabilities(), nil
}

// DispatchedRun is the caller's handle to an in-flight run_streaming call.
type DispatchedRun struct {
	ID      contract.RunID
	Events  <-chan contract.AgentEvent
	Receipt <-chan RunResult
}

// RunStreaming validates backendName exists, transitions the run from
// Pending to Running, dispatches it, and arranges for the result to be
// hashed, cached, persisted, and reflected in the tracker once the backend
// completes. Events are passed through the runtime's pipeline, if any,
// before being forwarded to the caller.
func (rt *Runtime) RunStreaming(ctx context.Context, backendName string, wo contract.WorkOrder) (*DispatchedRun, error) {
	backend, err := rt.registry.Get(backendName)
	if err != nil {
		return nil, err
	}

	runID := contract.RunID(wo.ID)
	if err := rt.tracker.MarkPending(runID); err != nil {
		return nil, err
	}
	rt.tracker.MarkRunning(runID)

	backendEvents, backendResult, err := backend.Dispatch(ctx, runID, wo)
	if err != nil {
		rt.tracker.MarkFailed(runID, err.Error())
		return nil, err
	}

	outEvents := make(chan contract.AgentEvent, 256)
	outResult := make(chan RunResult, 1)

	go rt.drain(runID, backendEvents, backendResult, outEvents, outResult)

	return &DispatchedRun{ID: runID, Events: outEvents, Receipt: outResult}, nil
}

func (rt *Runtime) drain(
	runID contract.RunID,
	backendEvents <-chan contract.AgentEvent,
	backendResult <-chan RunResult,
	outEvents chan<- contract.AgentEvent,
	outResult chan<- RunResult,
) {
	defer close(outEvents)
	defer close(outResult)

	for event := range backendEvents {
		if rt.pipeline != nil {
			processed, ok := rt.pipeline.Process(event)
			if !ok {
				continue
			}
			event = processed
		}
		outEvents <- event
	}

	result := <-backendResult
	if result.Err != nil {
		rt.tracker.MarkFailed(runID, result.Err.Error())
		outResult <- result
		return
	}

	hashed, err := contract.WithHash(result.Receipt)
	if err != nil {
		rt.tracker.MarkFailed(runID, err.Error())
		outResult <- RunResult{Err: err}
		return
	}

	rt.cache.Put(hashed)
	if rt.receiptsDir != "" {
		if err := PersistReceipt(rt.receiptsDir, hashed); err != nil {
			rt.logger.Error(context.Background(), "runtime: failed to persist receipt", err, "run_id", string(runID))
		}
	}
	rt.tracker.MarkCompleted(runID, hashed)
	outResult <- RunResult{Receipt: hashed}
}

// ListRuns returns every tracked RunID in sorted order.
func (rt *Runtime) ListRuns() []contract.RunID {
	return rt.tracker.List()
}

// GetRunStatus returns id's tracked status.
func (rt *Runtime) GetRunStatus(id contract.RunID) (RunStatus, error) {
	return rt.tracker.Get(id)
}

// RemoveRun removes id from the tracker and the receipt cache. A Running
// run cannot be removed.
func (rt *Runtime) RemoveRun(id contract.RunID) error {
	if err := rt.tracker.Remove(id); err != nil {
		return err
	}
	rt.cache.Remove(id)
	return nil
}

// GetReceipt returns the cached receipt for id.
func (rt *Runtime) GetReceipt(id contract.RunID) (contract.Receipt, error) {
	return rt.cache.Get(id)
}

// GetReceiptOrDisk returns the cached receipt for id, falling back to a
// direct disk read for receipts the cache never loaded (e.g. dropped from
// memory, or written by a different process sharing the same receipts
// directory).
func (rt *Runtime) GetReceiptOrDisk(id contract.RunID) (contract.Receipt, error) {
	if r, err := rt.cache.Get(id); err == nil {
		return r, nil
	}
	if rt.receiptsDir == "" {
		return contract.Receipt{}, apierr.New(apierr.KindNotFound, "runtime: receipt "+string(id)+" not found")
	}
	data, err := os.ReadFile(receiptPath(rt.receiptsDir, id))
	if err != nil {
		return contract.Receipt{}, apierr.New(apierr.KindNotFound, "runtime: receipt "+string(id)+" not found")
	}
	var r contract.Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return contract.Receipt{}, apierr.Wrap(apierr.KindInternal, "runtime: decode receipt "+string(id), err)
	}
	return r, nil
}

// ReceiptsDir returns the configured receipts directory, empty when
// persistence is disabled.
func (rt *Runtime) ReceiptsDir() string {
	return rt.receiptsDir
}

// ListReceipts returns up to limit cached receipts, most recently finished
// first. limit <= 0 means unlimited.
func (rt *Runtime) ListReceipts(limit int) []contract.Receipt {
	return rt.cache.List(limit)
}

// Metrics reports run counts by tracker status, backing GET /metrics.
func (rt *Runtime) Metrics() (total, running, completed, failed int) {
	return rt.tracker.Counts()
}
