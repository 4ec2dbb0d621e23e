package capability

import (
	"fmt"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/dialect"
)

// StrategyKind discriminates the EmulationStrategy tagged union.
type StrategyKind string

const (
	StrategySystemPromptInjection StrategyKind = "system_prompt_injection"
	StrategyPostProcessing        StrategyKind = "post_processing"
	StrategyDisabled              StrategyKind = "disabled"
)

// EmulationStrategy describes how a capability the backend lacks natively
// is faked. Exactly one of Prompt/Detail/Reason is meaningful, matching
// Kind.
type EmulationStrategy struct {
	Kind   StrategyKind
	Prompt string
	Detail string
	Reason string
}

// SystemPromptInjection builds a strategy that mutates the outgoing
// conversation by injecting prompt into the system message.
func SystemPromptInjection(prompt string) EmulationStrategy {
	return EmulationStrategy{Kind: StrategySystemPromptInjection, Prompt: prompt}
}

// PostProcessing builds a strategy that is recorded and applied after the
// response, never touching the outgoing conversation.
func PostProcessing(detail string) EmulationStrategy {
	return EmulationStrategy{Kind: StrategyPostProcessing, Detail: detail}
}

// Disabled builds a strategy that only produces a warning.
func Disabled(reason string) EmulationStrategy {
	return EmulationStrategy{Kind: StrategyDisabled, Reason: reason}
}

// defaultStrategies is the static per-capability default emulation table.
func defaultStrategies() map[contract.Capability]EmulationStrategy {
	return map[contract.Capability]EmulationStrategy{
		contract.CapExtendedThinking: SystemPromptInjection(
			"Think step by step before answering, and show your reasoning."),
		contract.CapStructuredOutputJSONSchema: PostProcessing(
			"validate and coerce the response against the requested JSON schema"),
		contract.CapCodeExecution: Disabled("backend has no sandboxed code execution facility"),
		contract.CapToolWebSearch: Disabled("backend has no native web search tool"),
		contract.CapToolWebFetch:  Disabled("backend has no native web fetch tool"),
		contract.CapLogprobs:      Disabled("backend does not expose token log-probabilities"),
	}
}

// Applied pairs a capability with the strategy used to emulate it.
type Applied struct {
	Capability contract.Capability
	Strategy   EmulationStrategy
}

// EmulationReport is the result of Engine.Apply.
type EmulationReport struct {
	Applied  []Applied
	Warnings []string
}

// Engine applies emulation strategies to capabilities a backend must fake.
type Engine struct {
	strategies map[contract.Capability]EmulationStrategy
}

// Options configures a new Engine.
type Options struct {
	// Overrides replaces the default strategy for the given capabilities.
	Overrides map[contract.Capability]EmulationStrategy
}

// New builds an Engine, layering opts.Overrides on top of the default
// strategy table.
func New(opts Options) (*Engine, error) {
	strategies := defaultStrategies()
	for cap, strat := range opts.Overrides {
		strategies[cap] = strat
	}
	return &Engine{strategies: strategies}, nil
}

// Apply mutates *conv in place for every capability in emulationRequired
// that uses a SystemPromptInjection strategy, and returns a report of every
// strategy applied plus any warnings raised by Disabled capabilities.
// Idempotence is not guaranteed: calling Apply twice with the same
// capabilities duplicates injected prompts.
func (e *Engine) Apply(emulationRequired []contract.Capability, conv *dialect.IrConversation) EmulationReport {
	var report EmulationReport
	for _, cap := range emulationRequired {
		strat, ok := e.strategies[cap]
		if !ok {
			strat = Disabled(fmt.Sprintf("no emulation strategy registered for %s", cap))
		}
		switch strat.Kind {
		case StrategySystemPromptInjection:
			*conv = conv.AppendToSystem(strat.Prompt)
			report.Applied = append(report.Applied, Applied{Capability: cap, Strategy: strat})
		case StrategyPostProcessing:
			report.Applied = append(report.Applied, Applied{Capability: cap, Strategy: strat})
		case StrategyDisabled:
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s: %s", cap, strat.Reason))
		}
	}
	return report
}

// FidelityLabel is the per-capability outcome of ComputeFidelity: either
// Native or Emulated naming the strategy used.
type FidelityLabel struct {
	Capability contract.Capability
	Native     bool
	Strategy   *EmulationStrategy
}

// ComputeFidelity labels every capability in native as Native, and every
// capability that appears in report.Applied as Emulated with its strategy.
// A capability that appears only in report.Warnings is absent from the
// output, matching the specification's rule that warned-and-disabled
// capabilities carry no fidelity label at all.
func ComputeFidelity(native []contract.Capability, report EmulationReport) []FidelityLabel {
	out := make([]FidelityLabel, 0, len(native)+len(report.Applied))
	for _, cap := range native {
		out = append(out, FidelityLabel{Capability: cap, Native: true})
	}
	for _, a := range report.Applied {
		strat := a.Strategy
		out = append(out, FidelityLabel{Capability: a.Capability, Native: false, Strategy: &strat})
	}
	return out
}
