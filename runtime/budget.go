package runtime

import "sync"

// BudgetLimit caps a run's resource consumption. A zero field means that
// dimension is unbounded.
type BudgetLimit struct {
	MaxTokens      int64
	MaxCostUSD     float64
	MaxTurns       int
	MaxDurationSec int64
}

// BudgetStatusKind discriminates the result of a BudgetTracker update.
type BudgetStatusKind string

const (
	BudgetOk       BudgetStatusKind = "ok"
	BudgetWarning  BudgetStatusKind = "warning"
	BudgetExceeded BudgetStatusKind = "exceeded"
)

// BudgetStatus reports how close a run is to its configured limits.
// Violation names the dimension that tripped Warning/Exceeded, empty when Ok.
type BudgetStatus struct {
	Kind      BudgetStatusKind
	Violation string
	Fraction  float64
}

// warnThreshold is the fraction of a limit at which BudgetTracker starts
// reporting Warning instead of Ok, mirroring the 10%-floor/ceiling clamps
// used by the AIMD rate limiter this is adapted from.
const warnThreshold = 0.8

// BudgetTracker accumulates token/cost/turn/duration usage for a single run
// and reports Ok/Warning/Exceeded against a configured BudgetLimit. It is
// mutex-guarded the same way AdaptiveRateLimiter is: a small struct of
// counters behind a single lock, with the limit-check logic factored into a
// pure helper so it is easy to reason about independent of concurrency.
type BudgetTracker struct {
	mu sync.Mutex

	limit BudgetLimit

	tokens   int64
	costUSD  float64
	turns    int
	duration int64
}

// NewBudgetTracker returns a tracker enforcing limit. A zero-value limit
// tracks usage without ever reporting Warning or Exceeded.
func NewBudgetTracker(limit BudgetLimit) *BudgetTracker {
	return &BudgetTracker{limit: limit}
}

// RecordTurn increments the turn counter and adds the given tokens, cost,
// and elapsed seconds, then returns the resulting status.
func (b *BudgetTracker) RecordTurn(tokens int64, costUSD float64, durationSec int64) BudgetStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns++
	b.tokens += tokens
	b.costUSD += costUSD
	b.duration += durationSec

	return b.check()
}

// Snapshot returns the current accumulated usage without mutating it.
func (b *BudgetTracker) Snapshot() (tokens int64, costUSD float64, turns int, durationSec int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens, b.costUSD, b.turns, b.duration
}

// Status recomputes BudgetStatus from the current accumulated usage.
func (b *BudgetTracker) Status() BudgetStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.check()
}

// check evaluates every configured dimension and returns the worst verdict,
// preferring to report whichever dimension is closest to being exceeded.
func (b *BudgetTracker) check() BudgetStatus {
	return EvaluateBudget(b.limit, b.tokens, b.costUSD, b.turns, b.duration)
}

// EvaluateBudget evaluates accumulated usage against limit and returns the
// worst-violating dimension's status, independent of how that usage is
// stored. BudgetTracker uses it against its own mutex-guarded counters;
// redisbudget.Tracker uses it against counters held in Redis, so both share
// one definition of "close to the limit."
func EvaluateBudget(limit BudgetLimit, tokens int64, costUSD float64, turns int, durationSec int64) BudgetStatus {
	worst := BudgetStatus{Kind: BudgetOk}

	consider := func(name string, used, lim float64) {
		if lim <= 0 {
			return
		}
		fraction := used / lim
		kind := BudgetOk
		switch {
		case fraction >= 1:
			kind = BudgetExceeded
		case fraction >= warnThreshold:
			kind = BudgetWarning
		}
		if rank(kind) > rank(worst.Kind) || (rank(kind) == rank(worst.Kind) && fraction > worst.Fraction) {
			worst = BudgetStatus{Kind: kind, Violation: name, Fraction: fraction}
		}
	}

	consider("max_tokens", float64(tokens), float64(limit.MaxTokens))
	consider("max_cost_usd", costUSD, limit.MaxCostUSD)
	consider("max_turns", float64(turns), float64(limit.MaxTurns))
	consider("max_duration", float64(durationSec), float64(limit.MaxDurationSec))

	return worst
}

func rank(k BudgetStatusKind) int {
	switch k {
	case BudgetExceeded:
		return 2
	case BudgetWarning:
		return 1
	default:
		return 0
	}
}
