package capability

import (
	"testing"

	"github.com/agentbackplane/abp/contract"
	"github.com/stretchr/testify/require"
)

func reqs(caps ...contract.Capability) []contract.Requirement {
	out := make([]contract.Requirement, len(caps))
	for i, c := range caps {
		out[i] = contract.Requirement{Capability: c, MinSupport: contract.MinSupportEmulated}
	}
	return out
}

func TestNegotiate_BucketsEachRequirement(t *testing.T) {
	t.Parallel()

	manifest := contract.CapabilityManifest{
		contract.CapStreaming:   contract.Native(),
		contract.CapToolBash:    contract.Emulated(),
		contract.CapLogprobs:    contract.Restricted("disabled by org policy"),
		contract.CapImageInput:  contract.Unsupported(),
	}
	requirements := reqs(contract.CapStreaming, contract.CapToolBash, contract.CapLogprobs,
		contract.CapImageInput, contract.CapCodeExecution)

	report := Negotiate(manifest, requirements)

	require.Equal(t, []contract.Capability{contract.CapStreaming}, report.Compatible)
	require.Equal(t, []contract.Capability{contract.CapToolBash}, report.EmulationRequired)
	require.Equal(t, []contract.Capability{contract.CapImageInput, contract.CapCodeExecution}, report.Unsupported)
	require.Len(t, report.Restricted, 1)
	require.Equal(t, contract.CapLogprobs, report.Restricted[0].Capability)
}

func TestNegotiate_EmulatedFailsWhenNativeRequired(t *testing.T) {
	t.Parallel()

	manifest := contract.CapabilityManifest{contract.CapToolBash: contract.Emulated()}
	requirements := []contract.Requirement{
		{Capability: contract.CapToolBash, MinSupport: contract.MinSupportNative},
	}

	report := Negotiate(manifest, requirements)
	require.Equal(t, []contract.Capability{contract.CapToolBash}, report.Unsupported)
	require.Empty(t, report.EmulationRequired)
}

func TestNegotiate_AddingCapabilitiesNeverShrinksCompatible(t *testing.T) {
	t.Parallel()

	requirements := reqs(contract.CapStreaming, contract.CapToolBash)

	before := Negotiate(contract.CapabilityManifest{
		contract.CapStreaming: contract.Native(),
	}, requirements)

	after := Negotiate(contract.CapabilityManifest{
		contract.CapStreaming: contract.Native(),
		contract.CapToolBash:  contract.Native(),
	}, requirements)

	require.GreaterOrEqual(t, len(after.Compatible), len(before.Compatible))
	require.Subset(t, toStrings(after.Compatible), toStrings(before.Compatible))
}

func TestNegotiate_RemovingRequirementsNeverGrowsUnsupported(t *testing.T) {
	t.Parallel()

	manifest := contract.CapabilityManifest{}

	before := Negotiate(manifest, reqs(contract.CapStreaming, contract.CapToolBash))
	after := Negotiate(manifest, reqs(contract.CapStreaming))

	require.LessOrEqual(t, len(after.Unsupported), len(before.Unsupported))
}

func toStrings(caps []contract.Capability) []any {
	out := make([]any, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}
