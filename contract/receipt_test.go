package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReceiptBuilder_DerivesDurationAndHash(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)

	b := NewReceipt(NewRunID(), NewWorkOrderID()).
		WithBackend(BackendIdentity{ID: "anthropic"}).
		WithTrace([]AgentEvent{RunStartedEvent(), RunCompletedEvent()}).
		WithOutcome(Outcome{Status: OutcomeComplete}).
		WithFinishedAt(end)
	b.r.Meta.StartedAt = start

	r, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, int64(1500), r.Meta.DurationMS)
	require.Equal(t, ContractVersion, r.Meta.ContractVersion)
	require.Equal(t, ModeMapped, r.Mode)
	require.Len(t, r.Trace, 2)
	require.Len(t, r.ReceiptSHA256, 64)
}

func TestReceiptBuilder_DefaultsOutcomeCompleteAndModeMapped(t *testing.T) {
	t.Parallel()

	r, err := NewReceipt(NewRunID(), NewWorkOrderID()).FinishNow().Build()
	require.NoError(t, err)

	require.Equal(t, OutcomeComplete, r.Outcome.Status)
	require.Equal(t, ModeMapped, r.Mode)
}

func TestReceiptBuilder_RejectsFinishedBeforeStarted(t *testing.T) {
	t.Parallel()

	start := time.Now().UTC()
	earlier := start.Add(-time.Minute)

	b := NewReceipt(NewRunID(), NewWorkOrderID()).WithFinishedAt(earlier)
	b.r.Meta.StartedAt = start

	_, err := b.Build()
	require.Error(t, err)
}

func TestReceiptHash_IsStableAndExcludesSelf(t *testing.T) {
	t.Parallel()

	r, err := NewReceipt(NewRunID(), NewWorkOrderID()).
		WithBackend(BackendIdentity{ID: "openai"}).
		WithOutcome(Outcome{Status: OutcomeComplete}).
		FinishNow().
		Build()
	require.NoError(t, err)

	originalHash := r.ReceiptSHA256
	require.NotEmpty(t, originalHash)

	recomputed, err := ReceiptHash(r)
	require.NoError(t, err)
	require.Equal(t, originalHash, recomputed)

	r.ReceiptSHA256 = "tampered"
	recomputedAgain, err := ReceiptHash(r)
	require.NoError(t, err)
	require.Equal(t, originalHash, recomputedAgain, "hash must ignore the receipt_sha256 field itself")
}

func TestReceiptHash_ChangesWithTraceContentButNotExt(t *testing.T) {
	t.Parallel()

	runID, workOrderID := NewRunID(), NewWorkOrderID()
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	finished := started.Add(time.Second)

	withTrace := func(trace []AgentEvent) Receipt {
		b := NewReceipt(runID, workOrderID).
			WithTrace(trace).
			WithOutcome(Outcome{Status: OutcomeComplete}).
			WithFinishedAt(finished)
		b.r.Meta.StartedAt = started
		r, err := b.Build()
		require.NoError(t, err)
		return r
	}

	withExt := func(ext map[string]any) Receipt {
		e := AssistantMessageEvent("hello")
		e.Timestamp = started
		e.Ext = ext
		return withTrace([]AgentEvent{e})
	}

	r1 := withExt(map[string]any{"latency_ms": 12})
	r2 := withExt(map[string]any{"latency_ms": 999})

	require.Equal(t, r1.ReceiptSHA256, r2.ReceiptSHA256,
		"receipt hash must ignore per-event ext metadata")

	r3 := withTrace([]AgentEvent{AssistantMessageEvent("goodbye")})

	require.NotEqual(t, r1.ReceiptSHA256, r3.ReceiptSHA256,
		"receipt hash must change with trace content")
}

func TestWithHash_Idempotent(t *testing.T) {
	t.Parallel()

	r, err := NewReceipt(NewRunID(), NewWorkOrderID()).
		WithOutcome(Outcome{Status: OutcomeFailed, ErrorMessage: "boom"}).
		FinishNow().
		Build()
	require.NoError(t, err)

	again, err := WithHash(r)
	require.NoError(t, err)
	require.Equal(t, r.ReceiptSHA256, again.ReceiptSHA256)
}
