package sidecar

import (
	"io"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/apierr"
	"github.com/agentbackplane/abp/protocol"
)

// RunResult is the terminal outcome delivered on SidecarRun.Receipt: exactly
// one of Receipt or Err is populated.
type RunResult struct {
	Receipt contract.Receipt
	Err     error
}

// SidecarRun is the caller's handle to one in-flight run dispatched to a
// Process: an event channel, a one-shot result channel, and a Wait method
// that blocks until the reader goroutine has fully drained.
type SidecarRun struct {
	Events  <-chan contract.AgentEvent
	Receipt <-chan RunResult

	done chan struct{}
}

// Wait blocks until the reader goroutine backing this run has terminated.
func (r *SidecarRun) Wait() {
	<-r.done
}

// Run writes a run envelope to process and returns a SidecarRun whose
// reader goroutine demultiplexes process's stdout: event envelopes matching
// refID are forwarded on Events, a matching final envelope completes
// Receipt and closes Events, a fatal envelope (matching refID or with no
// ref_id at all) completes Receipt with an error and closes Events, and
// malformed JSON or an unexpected EOF reports a Protocol/Exited error the
// same way.
func Run(process *Process, refID string, workOrder contract.WorkOrder, bufferSize int) (*SidecarRun, error) {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if err := process.Send(protocol.Run(protocol.RunPayload{ID: refID, WorkOrder: workOrder})); err != nil {
		return nil, err
	}

	events := make(chan contract.AgentEvent, bufferSize)
	result := make(chan RunResult, 1)
	done := make(chan struct{})

	go readLoop(process, refID, events, result, done)

	return &SidecarRun{Events: events, Receipt: result, done: done}, nil
}

func readLoop(process *Process, refID string, events chan<- contract.AgentEvent, result chan<- RunResult, done chan<- struct{}) {
	defer close(done)
	defer close(events)

	finish := func(r RunResult) {
		select {
		case result <- r:
		default:
		}
	}

	for process.Scan() {
		env, err := protocol.Decode(process.Bytes())
		if err != nil {
			process.setState(StateFailed)
			finish(RunResult{Err: apierr.Wrap(apierr.KindProtocol, "sidecar: malformed envelope", err)})
			return
		}

		switch env.Tag {
		case protocol.TagEvent:
			if env.Event == nil || env.Event.RefID != refID {
				continue
			}
			events <- env.Event.Event
		case protocol.TagFinal:
			if env.Final == nil || env.Final.RefID != refID {
				continue
			}
			process.setState(StateIdle)
			finish(RunResult{Receipt: env.Final.Receipt})
			return
		case protocol.TagFatal:
			if env.Fatal != nil && env.Fatal.RefID != "" && env.Fatal.RefID != refID {
				continue
			}
			process.setState(StateFailed)
			msg := ""
			if env.Fatal != nil {
				msg = env.Fatal.Error
			}
			finish(RunResult{Err: apierr.New(apierr.KindFatal, msg)})
			return
		default:
			// hello/run envelopes on stdout are unexpected but not fatal; ignore.
		}
	}

	err := process.Err()
	if err == nil {
		err = io.EOF
	}
	process.setState(StateFailed)
	finish(RunResult{Err: apierr.Wrap(apierr.KindProtocol, "sidecar: process exited before final/fatal", err)})
}

// Cancel terminates the backing process, which causes the in-flight
// readLoop to observe EOF and report an Exited-style protocol error if no
// final/fatal had already arrived.
func (r *SidecarRun) Cancel(process *Process) error {
	return process.Kill()
}
