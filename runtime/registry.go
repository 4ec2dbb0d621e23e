// Package runtime hosts the backend registry, run tracker, receipt
// persistence, budget tracking, and cancellation primitives that turn a
// dispatched work order into a completed, hashed receipt.
package runtime

import (
	"context"
	"sync"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/apierr"
)

// Backend executes one run of a WorkOrder, emitting events and eventually a
// terminal RunResult. Both in-process adapters and sidecar-backed clients
// implement this interface uniformly.
type Backend interface {
	// Capabilities returns the backend's advertised capability manifest.
	Capabilities() contract.CapabilityManifest
	// Dispatch starts a run and returns an event channel plus a one-shot
	// result channel, mirroring sidecar.SidecarRun's shape so a sidecar
	// client is a trivial Backend implementation.
	Dispatch(ctx context.Context, run contract.RunID, wo contract.WorkOrder) (events <-chan contract.AgentEvent, result <-chan RunResult, err error)
}

// RunResult is the terminal outcome of a dispatched run.
type RunResult struct {
	Receipt contract.Receipt
	Err     error
}

// BackendRegistry is an ordered name -> Backend map. Registration order is
// preserved so /backends responses are stable across restarts with the
// same config.
type BackendRegistry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Backend
}

// NewBackendRegistry returns an empty registry.
func NewBackendRegistry() *BackendRegistry {
	return &BackendRegistry{byName: make(map[string]Backend)}
}

// Register adds name -> backend. It returns a Conflict error if name is
// already registered.
func (r *BackendRegistry) Register(name string, backend Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return apierr.Newf(apierr.KindConflict, "runtime: backend %q already registered", name)
	}
	r.byName[name] = backend
	r.order = append(r.order, name)
	return nil
}

// Get returns the backend registered under name.
func (r *BackendRegistry) Get(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byName[name]
	if !ok {
		return nil, apierr.Newf(apierr.KindNotFound, "runtime: backend %q not found", name)
	}
	return b, nil
}

// Names returns every registered backend name in registration order.
func (r *BackendRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Capabilities returns every registered backend's manifest, keyed by name.
func (r *BackendRegistry) Capabilities() map[string]contract.CapabilityManifest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]contract.CapabilityManifest, len(r.byName))
	for name, b := range r.byName {
		out[name] = b.Capabilities()
	}
	return out
}
