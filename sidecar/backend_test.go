package sidecar

import (
	"context"
	"testing"
	"time"

	"github.com/agentbackplane/abp/contract"
	"github.com/stretchr/testify/require"
)

func TestBackend_DispatchDeliversEventsAndReceipt(t *testing.T) {
	t.Parallel()

	opts := Options{
		Command: "sh",
		Args: []string{"-c", `printf '{"t":"hello","hello":{"contract_version":"abp/v0.1","backend":{"id":"x"},"capabilities":{"streaming":{"kind":"native"}}}}\n'
cat > /dev/null &
printf '{"t":"event","event":{"ref_id":"run-1","event":{"ts":"2026-01-01T00:00:00Z","kind":"run_started"}}}\n'
printf '{"t":"final","final":{"ref_id":"run-1","receipt":{"meta":{"contract_version":"abp/v0.1","run_id":"r1","work_order_id":"w1","started_at":"2026-01-01T00:00:00Z","finished_at":"2026-01-01T00:00:01Z","duration_ms":1000},"backend":{"id":"x"},"trace":[],"usage":{"input_tokens":0,"output_tokens":0,"total_tokens":0},"verification":{"harness_ok":true},"outcome":{"status":"complete"}}}}\n'
wait
`},
		HandshakeTimeout: 2 * time.Second,
	}
	p, err := Start(context.Background(), opts)
	require.NoError(t, err)
	defer p.Kill()

	backend := NewBackend(p, 16)
	require.Contains(t, backend.Capabilities(), contract.CapStreaming)

	wo, err := contract.NewWorkOrder("do a thing").Build()
	require.NoError(t, err)

	events, result, err := backend.Dispatch(context.Background(), "run-1", wo)
	require.NoError(t, err)

	var gotEvents []contract.AgentEvent
	for e := range events {
		gotEvents = append(gotEvents, e)
	}
	require.Len(t, gotEvents, 1)

	r := <-result
	require.NoError(t, r.Err)
	require.Equal(t, contract.OutcomeComplete, r.Receipt.Outcome.Status)
}

func TestBackend_StringReflectsHelloIdentity(t *testing.T) {
	t.Parallel()

	opts := Options{
		Command:          "sh",
		Args:             []string{"-c", `printf '{"t":"hello","hello":{"contract_version":"abp/v0.1","backend":{"id":"claude"}}}\n'; cat > /dev/null`},
		HandshakeTimeout: 2 * time.Second,
	}
	p, err := Start(context.Background(), opts)
	require.NoError(t, err)
	defer p.Kill()

	backend := NewBackend(p, 0)
	require.Equal(t, "sidecar(claude)", backend.String())
}
