package sidecar

import (
	"context"
	"fmt"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/runtime"
)

// Backend adapts a started Process into a runtime.Backend, so the runtime's
// registry and dispatch loop never need to know a given backend is a
// subprocess rather than an in-process implementation.
type Backend struct {
	process    *Process
	bufferSize int
}

// NewBackend wraps an already-started Process. bufferSize is the channel
// capacity passed to Run; values <= 0 fall back to Run's own default.
func NewBackend(process *Process, bufferSize int) *Backend {
	return &Backend{process: process, bufferSize: bufferSize}
}

// Capabilities returns the manifest the process advertised in its hello
// envelope.
func (b *Backend) Capabilities() contract.CapabilityManifest {
	if hello := b.process.Hello(); hello != nil {
		return hello.Capabilities
	}
	return contract.CapabilityManifest{}
}

// Dispatch starts a run against the subprocess, using run's string form as
// the wire ref_id so event/final/fatal envelopes can be correlated back to
// this call.
func (b *Backend) Dispatch(ctx context.Context, run contract.RunID, wo contract.WorkOrder) (<-chan contract.AgentEvent, <-chan runtime.RunResult, error) {
	sidecarRun, err := Run(b.process, string(run), wo, b.bufferSize)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan contract.AgentEvent, b.bufferCap())
	result := make(chan runtime.RunResult, 1)

	go func() {
		defer close(events)
		defer close(result)
		for e := range sidecarRun.Events {
			select {
			case events <- e:
			case <-ctx.Done():
				_ = b.process.Kill()
			}
		}
		r := <-sidecarRun.Receipt
		result <- runtime.RunResult{Receipt: r.Receipt, Err: r.Err}
	}()

	return events, result, nil
}

func (b *Backend) bufferCap() int {
	if b.bufferSize > 0 {
		return b.bufferSize
	}
	return 256
}

// String identifies the backend by its resolved hello identity, falling
// back to a generic label before the handshake has completed.
func (b *Backend) String() string {
	if hello := b.process.Hello(); hello != nil {
		return fmt.Sprintf("sidecar(%s)", hello.Backend.ID)
	}
	return "sidecar(unstarted)"
}
