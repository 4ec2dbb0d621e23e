package streamutil

import (
	"testing"
	"time"

	"github.com/agentbackplane/abp/contract"
	"github.com/stretchr/testify/require"
)

func TestCollectSorted_OrdersAcrossSources(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := make(chan contract.AgentEvent, 2)
	b := make(chan contract.AgentEvent, 2)

	a <- contract.AgentEvent{Timestamp: base.Add(2 * time.Second), Kind: contract.EventToolCall}
	a <- contract.AgentEvent{Timestamp: base.Add(4 * time.Second), Kind: contract.EventToolCall}
	close(a)

	b <- contract.AgentEvent{Timestamp: base.Add(1 * time.Second), Kind: contract.EventWarning}
	b <- contract.AgentEvent{Timestamp: base.Add(3 * time.Second), Kind: contract.EventWarning}
	close(b)

	merged := CollectSorted(a, b)
	require.Len(t, merged, 4)
	for i := 1; i < len(merged); i++ {
		require.False(t, merged[i].Timestamp.Before(merged[i-1].Timestamp))
	}
}

func TestMerge_RelaysEveryEventFromEverySource(t *testing.T) {
	t.Parallel()

	a := make(chan contract.AgentEvent, 2)
	b := make(chan contract.AgentEvent, 2)

	a <- contract.AgentEvent{Kind: contract.EventToolCall}
	close(a)
	b <- contract.AgentEvent{Kind: contract.EventWarning}
	b <- contract.AgentEvent{Kind: contract.EventError}
	close(b)

	out := Merge(4, a, b)

	var got []contract.AgentEvent
	for e := range out {
		got = append(got, e)
	}
	require.Len(t, got, 3)
}
