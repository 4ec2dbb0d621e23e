package contract

import (
	"errors"
	"time"
)

// ContractVersion is the fixed contract_version stamped on every Receipt
// produced by this module version.
const ContractVersion = "abp/v0.1"

type (
	// ReceiptMeta carries the identifiers and timing envelope of a run.
	ReceiptMeta struct {
		ContractVersion string      `json:"contract_version"`
		RunID           RunID       `json:"run_id"`
		WorkOrderID     WorkOrderID `json:"work_order_id"`
		StartedAt       time.Time   `json:"started_at"`
		FinishedAt      time.Time   `json:"finished_at"`
		DurationMS      int64       `json:"duration_ms"`
	}

	// BackendIdentity names the backend and, optionally, the versions of
	// the backend itself and of the adapter that spoke to it.
	BackendIdentity struct {
		ID             string `json:"id"`
		BackendVersion string `json:"backend_version,omitempty"`
		AdapterVersion string `json:"adapter_version,omitempty"`
	}

	// UsageRaw is the backend's native usage payload, passed through
	// unmodified for audit purposes.
	UsageRaw map[string]any

	// Usage is the normalized usage summary derived from UsageRaw.
	Usage struct {
		InputTokens  int64    `json:"input_tokens"`
		OutputTokens int64    `json:"output_tokens"`
		TotalTokens  int64    `json:"total_tokens"`
		CostUSD      *float64 `json:"cost_usd,omitempty"`
	}

	// ArtifactRef names one file a run produced or modified.
	ArtifactRef struct {
		Kind string `json:"kind"`
		Path string `json:"path"`
	}

	// Verification carries the workspace-state evidence a caller needs to
	// judge whether a run actually did what its trace claims.
	Verification struct {
		GitDiff   string `json:"git_diff,omitempty"`
		GitStatus string `json:"git_status,omitempty"`
		HarnessOK bool   `json:"harness_ok"`
	}

	// Outcome is the terminal status of a run.
	Outcome struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message,omitempty"`
		ErrorCode    string `json:"error_code,omitempty"`
	}

	// Receipt is the cryptographically verifiable record of one run. It is
	// immutable once ReceiptSHA256 is populated: any further mutation
	// invalidates the hash and must go through a new WithHash call.
	Receipt struct {
		Meta          ReceiptMeta        `json:"meta"`
		Backend       BackendIdentity    `json:"backend"`
		Capabilities  CapabilityManifest `json:"capabilities,omitempty"`
		Mode          string             `json:"mode,omitempty"`
		Trace         []AgentEvent       `json:"trace"`
		UsageRaw      UsageRaw           `json:"usage_raw,omitempty"`
		Usage         Usage              `json:"usage"`
		Artifacts     []ArtifactRef      `json:"artifacts,omitempty"`
		Verification  Verification       `json:"verification"`
		Outcome       Outcome            `json:"outcome"`
		ReceiptSHA256 string             `json:"receipt_sha256,omitempty"`
	}
)

// Execution mode values.
const (
	ModePassthrough = "passthrough"
	ModeMapped      = "mapped"
)

// Outcome status values.
const (
	OutcomeComplete = "complete"
	OutcomePartial  = "partial"
	OutcomeFailed   = "failed"
)

// ReceiptHash returns the sha256 hex digest of r's canonical JSON form with
// ReceiptSHA256 cleared, so the digest never depends on itself, and each
// trace event's Ext stripped, so passthrough metadata never affects it.
func ReceiptHash(r Receipt) (string, error) {
	r.ReceiptSHA256 = ""
	r.Trace = stripExt(r.Trace)
	data, err := CanonicalJSON(r)
	if err != nil {
		return "", err
	}
	return SHA256Hex(data), nil
}

// WithHash returns a copy of r with ReceiptSHA256 populated via ReceiptHash.
func WithHash(r Receipt) (Receipt, error) {
	hash, err := ReceiptHash(r)
	if err != nil {
		return Receipt{}, err
	}
	r.ReceiptSHA256 = hash
	return r, nil
}

// ReceiptBuilder builds a Receipt fluently and validates its invariants on
// Build: finished_at must not precede started_at, duration_ms is derived
// rather than caller-supplied, and contract_version is always the module's
// fixed value regardless of what a caller sets.
type ReceiptBuilder struct {
	r Receipt
}

// NewReceipt starts a builder for a Receipt tied to the given run and work
// order, with StartedAt defaulted to now and Mode/Outcome defaulted to
// mapped/complete.
func NewReceipt(runID RunID, workOrderID WorkOrderID) *ReceiptBuilder {
	return &ReceiptBuilder{r: Receipt{
		Meta: ReceiptMeta{
			ContractVersion: ContractVersion,
			RunID:           runID,
			WorkOrderID:     workOrderID,
			StartedAt:       time.Now().UTC(),
		},
		Mode:    ModeMapped,
		Outcome: Outcome{Status: OutcomeComplete},
	}}
}

// WithBackend sets the backend identity.
func (b *ReceiptBuilder) WithBackend(backend BackendIdentity) *ReceiptBuilder {
	b.r.Backend = backend
	return b
}

// WithCapabilities sets the negotiated capability manifest.
func (b *ReceiptBuilder) WithCapabilities(caps CapabilityManifest) *ReceiptBuilder {
	b.r.Capabilities = caps
	return b
}

// WithMode records the execution mode label (ModePassthrough or ModeMapped).
func (b *ReceiptBuilder) WithMode(mode string) *ReceiptBuilder {
	b.r.Mode = mode
	return b
}

// WithTrace sets the full event trace.
func (b *ReceiptBuilder) WithTrace(trace []AgentEvent) *ReceiptBuilder {
	b.r.Trace = trace
	return b
}

// WithUsageRaw sets the backend-native usage payload.
func (b *ReceiptBuilder) WithUsageRaw(raw UsageRaw) *ReceiptBuilder {
	b.r.UsageRaw = raw
	return b
}

// WithUsage sets the normalized usage summary.
func (b *ReceiptBuilder) WithUsage(usage Usage) *ReceiptBuilder {
	b.r.Usage = usage
	return b
}

// WithArtifacts sets the list of artifacts the run produced or modified.
func (b *ReceiptBuilder) WithArtifacts(artifacts []ArtifactRef) *ReceiptBuilder {
	b.r.Artifacts = artifacts
	return b
}

// WithVerification sets the workspace-state evidence (git diff/status,
// harness result) attached to the run.
func (b *ReceiptBuilder) WithVerification(verification Verification) *ReceiptBuilder {
	b.r.Verification = verification
	return b
}

// WithOutcome sets the terminal outcome.
func (b *ReceiptBuilder) WithOutcome(outcome Outcome) *ReceiptBuilder {
	b.r.Outcome = outcome
	return b
}

// FinishNow sets FinishedAt to the current time.
func (b *ReceiptBuilder) FinishNow() *ReceiptBuilder {
	b.r.Meta.FinishedAt = time.Now().UTC()
	return b
}

// WithFinishedAt sets an explicit FinishedAt, for tests and replay.
func (b *ReceiptBuilder) WithFinishedAt(t time.Time) *ReceiptBuilder {
	b.r.Meta.FinishedAt = t
	return b
}

// Build validates the receipt's invariants, derives DurationMS, and stamps
// the content hash.
func (b *ReceiptBuilder) Build() (Receipt, error) {
	r := b.r
	r.Meta.ContractVersion = ContractVersion

	if r.Meta.FinishedAt.Before(r.Meta.StartedAt) {
		return Receipt{}, errors.New("contract: receipt finished_at precedes started_at")
	}
	r.Meta.DurationMS = r.Meta.FinishedAt.Sub(r.Meta.StartedAt).Milliseconds()

	return WithHash(r)
}

func stripExt(trace []AgentEvent) []AgentEvent {
	out := make([]AgentEvent, len(trace))
	for i, e := range trace {
		out[i] = e.WithoutExt()
	}
	return out
}
