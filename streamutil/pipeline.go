// Package streamutil composes filters and transforms over a run's event
// stream, the way hooks.StreamSubscriber composes a StreamProfile's
// boolean flags into a filtered client-facing event feed, generalized here
// to arbitrary ordered stages over contract.AgentEvent.
package streamutil

import (
	"sync"

	"github.com/agentbackplane/abp/contract"
)

// Filter reports whether an event should be kept.
type Filter func(event contract.AgentEvent) bool

// Transform maps an event to its replacement.
type Transform func(event contract.AgentEvent) contract.AgentEvent

// stage is one pipeline step: exactly one of filter/transform is set.
type stage struct {
	filter    Filter
	transform Transform
}

// Pipeline is a composable, single-threaded-cooperative event transformer:
// an ordered list of filter/transform stages plus an optional Recorder and
// Stats, matching the process(event) -> Option<event> contract: each
// filter may drop the event, each transform replaces it, and a kept event
// is recorded before being returned to the caller.
type Pipeline struct {
	mu       sync.Mutex
	stages   []stage
	recorder *Recorder
	stats    *Stats
}

// NewPipeline returns an empty pipeline. Use WithFilter/WithTransform to add
// stages, and WithRecorder/WithStats to attach optional observers.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// WithFilter appends a filter stage and returns the pipeline for chaining.
func (p *Pipeline) WithFilter(f Filter) *Pipeline {
	p.stages = append(p.stages, stage{filter: f})
	return p
}

// WithTransform appends a transform stage and returns the pipeline for
// chaining.
func (p *Pipeline) WithTransform(t Transform) *Pipeline {
	p.stages = append(p.stages, stage{transform: t})
	return p
}

// WithRecorder attaches a Recorder that captures every event the pipeline
// keeps, in order.
func (p *Pipeline) WithRecorder(r *Recorder) *Pipeline {
	p.recorder = r
	return p
}

// WithStats attaches a Stats counter updated for every event the pipeline
// keeps.
func (p *Pipeline) WithStats(s *Stats) *Pipeline {
	p.stats = s
	return p
}

// Process runs event through every stage in order. It returns the
// (possibly transformed) event and true if it survived every filter, or
// the zero event and false if some filter dropped it.
func (p *Pipeline) Process(event contract.AgentEvent) (contract.AgentEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.stages {
		if s.filter != nil {
			if !s.filter(event) {
				return contract.AgentEvent{}, false
			}
			continue
		}
		event = s.transform(event)
	}

	if p.recorder != nil {
		p.recorder.record(event)
	}
	if p.stats != nil {
		p.stats.record(event)
	}
	return event, true
}

// ByKind keeps only events of the given kind.
func ByKind(kind contract.EventKind) Filter {
	return func(event contract.AgentEvent) bool { return event.Kind == kind }
}

// IncludeKinds keeps only events whose kind appears in kinds.
func IncludeKinds(kinds ...contract.EventKind) Filter {
	set := toKindSet(kinds)
	return func(event contract.AgentEvent) bool { return set[event.Kind] }
}

// ExcludeKinds drops events whose kind appears in kinds.
func ExcludeKinds(kinds ...contract.EventKind) Filter {
	set := toKindSet(kinds)
	return func(event contract.AgentEvent) bool { return !set[event.Kind] }
}

// ErrorsOnly keeps only EventError events.
func ErrorsOnly() Filter {
	return ByKind(contract.EventError)
}

// ExcludeErrors drops EventError events.
func ExcludeErrors() Filter {
	return func(event contract.AgentEvent) bool { return event.Kind != contract.EventError }
}

func toKindSet(kinds []contract.EventKind) map[contract.EventKind]bool {
	set := make(map[contract.EventKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
