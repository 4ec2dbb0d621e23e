package streamutil

import (
	"sync"

	"github.com/agentbackplane/abp/contract"
)

// Recorder captures every event a Pipeline keeps, in order. It is safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []contract.AgentEvent
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(event contract.AgentEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of every event recorded so far.
func (r *Recorder) Events() []contract.AgentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]contract.AgentEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Stats accumulates total/per-kind/error counts for events a Pipeline
// keeps. It is safe for concurrent use.
type Stats struct {
	mu       sync.Mutex
	total    int
	perKind  map[contract.EventKind]int
	errCount int
}

// NewStats returns a zeroed Stats.
func NewStats() *Stats {
	return &Stats{perKind: make(map[contract.EventKind]int)}
}

func (s *Stats) record(event contract.AgentEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.perKind[event.Kind]++
	if event.Kind == contract.EventError {
		s.errCount++
	}
}

// Total returns the number of events recorded.
func (s *Stats) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// PerKind returns a copy of the per-kind event counts.
func (s *Stats) PerKind() map[contract.EventKind]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[contract.EventKind]int, len(s.perKind))
	for k, v := range s.perKind {
		out[k] = v
	}
	return out
}

// ErrorCount returns the number of EventError events recorded.
func (s *Stats) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errCount
}
