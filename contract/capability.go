package contract

// Capability is a named feature a backend may or may not support. The set is
// closed: callers should treat an unrecognized string as invalid input
// rather than silently accepting it.
type Capability string

// The closed set of capabilities negotiated between callers and backends.
const (
	CapStreaming                  Capability = "streaming"
	CapToolRead                   Capability = "tool_read"
	CapToolWrite                  Capability = "tool_write"
	CapToolEdit                   Capability = "tool_edit"
	CapToolBash                   Capability = "tool_bash"
	CapToolGlob                   Capability = "tool_glob"
	CapToolGrep                   Capability = "tool_grep"
	CapToolWebSearch              Capability = "tool_web_search"
	CapToolWebFetch               Capability = "tool_web_fetch"
	CapToolAskUser                Capability = "tool_ask_user"
	CapHooksPreToolUse            Capability = "hooks_pre_tool_use"
	CapHooksPostToolUse           Capability = "hooks_post_tool_use"
	CapSessionResume              Capability = "session_resume"
	CapSessionFork                Capability = "session_fork"
	CapCheckpointing              Capability = "checkpointing"
	CapStructuredOutputJSONSchema Capability = "structured_output_json_schema"
	CapMCPClient                  Capability = "mcp_client"
	CapMCPServer                  Capability = "mcp_server"
	CapExtendedThinking           Capability = "extended_thinking"
	CapCodeExecution              Capability = "code_execution"
	CapImageInput                 Capability = "image_input"
	CapStopSequences              Capability = "stop_sequences"
	CapLogprobs                   Capability = "logprobs"
)

// AllCapabilities lists every member of the closed capability set, in the
// order they appear in the specification. Useful for validation and for
// building default manifests.
func AllCapabilities() []Capability {
	return []Capability{
		CapStreaming, CapToolRead, CapToolWrite, CapToolEdit, CapToolBash,
		CapToolGlob, CapToolGrep, CapToolWebSearch, CapToolWebFetch, CapToolAskUser,
		CapHooksPreToolUse, CapHooksPostToolUse, CapSessionResume, CapSessionFork,
		CapCheckpointing, CapStructuredOutputJSONSchema, CapMCPClient, CapMCPServer,
		CapExtendedThinking, CapCodeExecution, CapImageInput, CapStopSequences, CapLogprobs,
	}
}

// Known reports whether c is a member of the closed capability set.
func (c Capability) Known() bool {
	for _, known := range AllCapabilities() {
		if c == known {
			return true
		}
	}
	return false
}

// SupportLevel describes how well a backend supports a Capability.
type SupportLevel struct {
	// Kind selects the support tier.
	Kind SupportKind `json:"kind"`
	// Reason explains a Restricted support level; empty for other kinds.
	Reason string `json:"reason,omitempty"`
}

// SupportKind is the discriminator for SupportLevel.
type SupportKind string

const (
	SupportNative      SupportKind = "native"
	SupportEmulated    SupportKind = "emulated"
	SupportUnsupported SupportKind = "unsupported"
	SupportRestricted  SupportKind = "restricted"
)

// Native is the SupportLevel for a capability the backend implements directly.
func Native() SupportLevel { return SupportLevel{Kind: SupportNative} }

// Emulated is the SupportLevel for a capability the backend fakes via a
// labeled emulation strategy.
func Emulated() SupportLevel { return SupportLevel{Kind: SupportEmulated} }

// Unsupported is the SupportLevel for a capability the backend cannot offer
// at all, natively or emulated.
func Unsupported() SupportLevel { return SupportLevel{Kind: SupportUnsupported} }

// Restricted is the SupportLevel for a capability that is technically
// available but administratively disabled, with reason explaining why.
func Restricted(reason string) SupportLevel {
	return SupportLevel{Kind: SupportRestricted, Reason: reason}
}

// MinSupport is the minimum support tier a WorkOrder requirement will accept.
type MinSupport string

const (
	MinSupportNative   MinSupport = "native"
	MinSupportEmulated MinSupport = "emulated"
)

// Satisfies reports whether level meets the minimum support requirement min.
// Native satisfies both native and emulated minimums; Emulated and
// Restricted satisfy only the emulated minimum; Unsupported satisfies
// neither.
func (min MinSupport) Satisfies(level SupportLevel) bool {
	switch level.Kind {
	case SupportNative:
		return true
	case SupportEmulated, SupportRestricted:
		return min == MinSupportEmulated
	default:
		return false
	}
}

// CapabilityManifest is an ordered map of Capability to SupportLevel. It is
// serialized as a JSON object; Go's encoding/json already sorts map[string]
// keys, so two manifests built in different insertion orders produce
// identical bytes once passed through CanonicalJSON.
type CapabilityManifest map[Capability]SupportLevel

// Requirement is one entry of WorkOrder.Requirements: a capability the
// caller needs, and the minimum support tier that satisfies it.
type Requirement struct {
	Capability Capability `json:"capability"`
	MinSupport MinSupport `json:"min_support"`
}
