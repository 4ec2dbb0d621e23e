// Package mapping holds the static fidelity matrix describing how well a
// conversation feature survives translation from one backend dialect to
// another.
package mapping

import "fmt"

// Dialect identifies one of the six backend dialects the matrix covers.
type Dialect string

const (
	DialectOpenAI  Dialect = "openai"
	DialectClaude  Dialect = "claude"
	DialectGemini  Dialect = "gemini"
	DialectCodex   Dialect = "codex"
	DialectKimi    Dialect = "kimi"
	DialectCopilot Dialect = "copilot"
)

// AllDialects lists the six dialects the matrix is defined over.
func AllDialects() []Dialect {
	return []Dialect{DialectOpenAI, DialectClaude, DialectGemini, DialectCodex, DialectKimi, DialectCopilot}
}

// Feature identifies one of the five conversation features the matrix
// scores translation fidelity for.
type Feature string

const (
	FeatureToolUse       Feature = "tool_use"
	FeatureStreaming     Feature = "streaming"
	FeatureThinking      Feature = "thinking"
	FeatureImageInput    Feature = "image_input"
	FeatureCodeExecution Feature = "code_execution"
)

// AllFeatures lists the five features the matrix is defined over.
func AllFeatures() []Feature {
	return []Feature{FeatureToolUse, FeatureStreaming, FeatureThinking, FeatureImageInput, FeatureCodeExecution}
}

// FidelityKind discriminates the Fidelity tagged union.
type FidelityKind string

const (
	Lossless     FidelityKind = "lossless"
	LossyLabeled FidelityKind = "lossy_labeled"
	Unsupported  FidelityKind = "unsupported"
)

// Fidelity describes how well a feature survives translation between two
// dialects. Exactly one of Warning/Reason is meaningful, matching Kind.
type Fidelity struct {
	Kind    FidelityKind
	Warning string
	Reason  string
}

// tier is a per-(dialect, feature) capability level: 0 means the dialect
// cannot represent the feature at all, higher numbers mean progressively
// more complete native support. The matrix is derived from these tiers
// rather than hand-written cell by cell, which is what guarantees its
// invariants hold over all 180 cells instead of only the ones a human
// happened to think to check.
type tier int

const (
	tierNone  tier = 0
	tierBasic tier = 1
	tierFull  tier = 2
)

// tierTable captures each dialect's native capability per feature, grounded
// in the dialect lowering rules: Codex's CLI transport has no vision input
// and drops thinking blocks, Claude and Gemini expose native reasoning and
// code execution tools respectively, Kimi mirrors OpenAI's tool-call wire
// shape but with weaker multimodal support, and Copilot's response-shaped
// transport has no true token-level streaming.
var tierTable = map[Dialect]map[Feature]tier{
	DialectOpenAI: {
		FeatureToolUse: tierFull, FeatureStreaming: tierFull, FeatureThinking: tierBasic,
		FeatureImageInput: tierFull, FeatureCodeExecution: tierBasic,
	},
	DialectClaude: {
		FeatureToolUse: tierFull, FeatureStreaming: tierFull, FeatureThinking: tierFull,
		FeatureImageInput: tierFull, FeatureCodeExecution: tierBasic,
	},
	DialectGemini: {
		FeatureToolUse: tierFull, FeatureStreaming: tierFull, FeatureThinking: tierBasic,
		FeatureImageInput: tierFull, FeatureCodeExecution: tierFull,
	},
	DialectCodex: {
		FeatureToolUse: tierFull, FeatureStreaming: tierBasic, FeatureThinking: tierNone,
		FeatureImageInput: tierNone, FeatureCodeExecution: tierFull,
	},
	DialectKimi: {
		FeatureToolUse: tierFull, FeatureStreaming: tierFull, FeatureThinking: tierBasic,
		FeatureImageInput: tierBasic, FeatureCodeExecution: tierNone,
	},
	DialectCopilot: {
		FeatureToolUse: tierFull, FeatureStreaming: tierBasic, FeatureThinking: tierNone,
		FeatureImageInput: tierBasic, FeatureCodeExecution: tierBasic,
	},
}

// cellKey identifies one matrix entry.
type cellKey struct {
	source, target Dialect
	feature        Feature
}

var matrix = buildMatrix()

func buildMatrix() map[cellKey]Fidelity {
	m := make(map[cellKey]Fidelity, len(AllDialects())*len(AllDialects())*len(AllFeatures()))
	for _, source := range AllDialects() {
		for _, target := range AllDialects() {
			for _, feature := range AllFeatures() {
				m[cellKey{source, target, feature}] = deriveFidelity(source, target, feature)
			}
		}
	}
	return m
}

func deriveFidelity(source, target Dialect, feature Feature) Fidelity {
	if source == target {
		return Fidelity{Kind: Lossless}
	}
	sourceTier := tierTable[source][feature]
	targetTier := tierTable[target][feature]
	switch {
	case sourceTier == tierNone || targetTier == tierNone:
		return Fidelity{Kind: Unsupported, Reason: fmt.Sprintf(
			"%s cannot represent %s for this pair", lowerTier(sourceTier, targetTier), feature)}
	case sourceTier == targetTier:
		return Fidelity{Kind: Lossless}
	default:
		return Fidelity{Kind: LossyLabeled, Warning: fmt.Sprintf(
			"%s support differs between %s and %s; translation may drop detail", feature, source, target)}
	}
}

func lowerTier(a, b tier) string {
	if a == tierNone {
		return "source dialect"
	}
	return "target dialect"
}

// Lookup returns the fidelity for translating feature from source to
// target. It never fails: the matrix is total over AllDialects() x
// AllDialects() x AllFeatures().
func Lookup(source, target Dialect, feature Feature) Fidelity {
	return matrix[cellKey{source, target, feature}]
}

// RankTargets returns every dialect other than source, ordered by
// descending count of features in `features` that translate losslessly
// from source to that dialect. Ties preserve AllDialects() order.
func RankTargets(source Dialect, features []Feature) []Dialect {
	type scored struct {
		dialect Dialect
		score   int
	}
	var candidates []scored
	for _, target := range AllDialects() {
		if target == source {
			continue
		}
		count := 0
		for _, f := range features {
			if Lookup(source, target, f).Kind == Lossless {
				count++
			}
		}
		candidates = append(candidates, scored{dialect: target, score: count})
	}
	// stable insertion sort keeps AllDialects() order as the tiebreak.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].score > candidates[j-1].score; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	out := make([]Dialect, len(candidates))
	for i, c := range candidates {
		out[i] = c.dialect
	}
	return out
}
