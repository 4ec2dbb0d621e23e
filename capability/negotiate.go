// Package capability negotiates a WorkOrder's capability requirements
// against a backend's manifest, and applies emulation strategies to a
// dialect.IrConversation for capabilities the backend cannot satisfy
// natively.
package capability

import "github.com/agentbackplane/abp/contract"

// RestrictedCapability pairs a capability with the reason it was
// administratively restricted.
type RestrictedCapability struct {
	Capability contract.Capability
	Reason     string
}

// Report is the result of negotiating a manifest against a set of
// requirements.
type Report struct {
	Compatible        []contract.Capability
	Unsupported       []contract.Capability
	EmulationRequired []contract.Capability
	Restricted        []RestrictedCapability
}

// Negotiate evaluates every requirement against manifest and buckets it
// into Report. Monotonicity holds by construction: each requirement maps
// to exactly one bucket, so adding entries to manifest can only move a
// requirement from Unsupported toward Compatible/EmulationRequired, never
// the reverse, and removing a requirement can only shrink Unsupported.
func Negotiate(manifest contract.CapabilityManifest, requirements []contract.Requirement) Report {
	var report Report
	for _, req := range requirements {
		level, known := manifest[req.Capability]
		if !known {
			level = contract.Unsupported()
		}
		switch {
		case level.Kind == contract.SupportNative:
			report.Compatible = append(report.Compatible, req.Capability)
		case level.Kind == contract.SupportRestricted:
			report.Restricted = append(report.Restricted, RestrictedCapability{
				Capability: req.Capability,
				Reason:     level.Reason,
			})
		case level.Kind == contract.SupportEmulated && req.MinSupport == contract.MinSupportEmulated:
			report.EmulationRequired = append(report.EmulationRequired, req.Capability)
		case level.Kind == contract.SupportEmulated:
			report.Unsupported = append(report.Unsupported, req.Capability)
		default:
			report.Unsupported = append(report.Unsupported, req.Capability)
		}
	}
	return report
}
