// Package redisbudget provides a Redis-backed BudgetTracker for ABP
// deployments that dispatch a single run's turns across multiple instances.
// It is grounded on the optimistic compare-and-set retry loop the teacher's
// AdaptiveRateLimiter uses to coordinate a shared rate across a cluster
// (globalBackoff/globalProbe in features/model/middleware/ratelimit.go),
// adapted from that map's TestAndSet primitive to a Redis WATCH/MULTI/EXEC
// transaction accumulating cumulative usage instead of a single clamped
// rate value.
package redisbudget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/agentbackplane/abp/runtime"
)

// maxAttempts bounds the optimistic retry loop at five attempts before
// giving up, like the attempt cap in the teacher's
// globalBackoff/globalProbe (which stop after three).
const maxAttempts = 5

// Tracker is a Redis-backed BudgetTracker for one run, usable from any
// instance that shares the same Redis deployment.
type Tracker struct {
	rdb   *redis.Client
	key   string
	limit runtime.BudgetLimit
}

// New returns a Tracker accumulating usage under a key derived from runID,
// enforcing limit.
func New(rdb *redis.Client, runID string, limit runtime.BudgetLimit) *Tracker {
	return &Tracker{rdb: rdb, key: "abp:budget:" + runID, limit: limit}
}

type usage struct {
	Tokens      int64   `json:"tokens"`
	CostUSD     float64 `json:"cost_usd"`
	Turns       int     `json:"turns"`
	DurationSec int64   `json:"duration_sec"`
}

// ErrConflict is returned when the optimistic update loop exhausts its
// retries because of sustained contention from concurrent writers.
var ErrConflict = errors.New("redisbudget: exceeded retry attempts under contention")

// RecordTurn atomically adds tokens/costUSD/durationSec and increments the
// turn count, using an optimistic WATCH/MULTI/EXEC loop so concurrent
// instances never lose an update to a lost race, then evaluates the result
// against the configured limit.
func (t *Tracker) RecordTurn(ctx context.Context, tokens int64, costUSD float64, durationSec int64) (runtime.BudgetStatus, error) {
	var result runtime.BudgetStatus

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := t.rdb.Watch(ctx, func(tx *redis.Tx) error {
			cur, err := readUsage(ctx, tx, t.key)
			if err != nil {
				return err
			}

			next := usage{
				Tokens:      cur.Tokens + tokens,
				CostUSD:     cur.CostUSD + costUSD,
				Turns:       cur.Turns + 1,
				DurationSec: cur.DurationSec + durationSec,
			}
			encoded, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("redisbudget: marshal usage: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, t.key, encoded, 0)
				return nil
			})
			if err != nil {
				return err
			}

			result = runtime.EvaluateBudget(t.limit, next.Tokens, next.CostUSD, next.Turns, next.DurationSec)
			return nil
		}, t.key)

		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return runtime.BudgetStatus{}, fmt.Errorf("redisbudget: record turn: %w", err)
	}
	return runtime.BudgetStatus{}, ErrConflict
}

// Snapshot returns the current accumulated usage without mutating it.
func (t *Tracker) Snapshot(ctx context.Context) (tokens int64, costUSD float64, turns int, durationSec int64, err error) {
	u, err := readUsage(ctx, t.rdb, t.key)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return u.Tokens, u.CostUSD, u.Turns, u.DurationSec, nil
}

// Status recomputes BudgetStatus from the current accumulated usage.
func (t *Tracker) Status(ctx context.Context) (runtime.BudgetStatus, error) {
	u, err := readUsage(ctx, t.rdb, t.key)
	if err != nil {
		return runtime.BudgetStatus{}, err
	}
	return runtime.EvaluateBudget(t.limit, u.Tokens, u.CostUSD, u.Turns, u.DurationSec), nil
}

// cmdable covers both *redis.Client and *redis.Tx, the two types readUsage
// is called with.
type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readUsage(ctx context.Context, c cmdable, key string) (usage, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return usage{}, nil
	}
	if err != nil {
		return usage{}, fmt.Errorf("redisbudget: read usage: %w", err)
	}
	var u usage
	if err := json.Unmarshal(raw, &u); err != nil {
		return usage{}, fmt.Errorf("redisbudget: decode usage: %w", err)
	}
	return u, nil
}
