package streamutil

import (
	"sort"
	"sync"

	"github.com/agentbackplane/abp/contract"
)

// CollectSorted drains every source channel to completion and returns all
// events merged in non-decreasing timestamp order. It blocks until every
// source is closed, so it is only appropriate for bounded, already-
// finished or soon-to-finish sources (post-hoc reporting), not for
// streaming a live multiplexed feed to a caller.
func CollectSorted(sources ...<-chan contract.AgentEvent) []contract.AgentEvent {
	var all []contract.AgentEvent
	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(len(sources))
	for _, src := range sources {
		go func(src <-chan contract.AgentEvent) {
			defer wg.Done()
			for event := range src {
				mu.Lock()
				all = append(all, event)
				mu.Unlock()
			}
		}(src)
	}
	wg.Wait()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all
}

// Merge returns a channel that relays every event from every source as it
// arrives, preserving each source's own relative order but making no
// global ordering guarantee across sources (best-effort timeliness). The
// returned channel closes once every source has closed.
func Merge(buffer int, sources ...<-chan contract.AgentEvent) <-chan contract.AgentEvent {
	out := make(chan contract.AgentEvent, buffer)
	var wg sync.WaitGroup
	wg.Add(len(sources))
	for _, src := range sources {
		go func(src <-chan contract.AgentEvent) {
			defer wg.Done()
			for event := range src {
				out <- event
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
