package redisbudget

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/agentbackplane/abp/runtime"
)

type fakeCmdable struct {
	raw []byte
	err error
}

func (f fakeCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	cmd.SetVal(string(f.raw))
	return cmd
}

func TestNew_DerivesKeyFromRunID(t *testing.T) {
	t.Parallel()

	tr := New(nil, "run-123", runtime.BudgetLimit{MaxTokens: 1000})
	require.Equal(t, "abp:budget:run-123", tr.key)
}

func TestReadUsage_MissingKeyReturnsZeroValue(t *testing.T) {
	t.Parallel()

	u, err := readUsage(context.Background(), fakeCmdable{err: redis.Nil}, "k")
	require.NoError(t, err)
	require.Equal(t, usage{}, u)
}

func TestReadUsage_DecodesStoredJSON(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(usage{Tokens: 100, CostUSD: 1.5, Turns: 2, DurationSec: 30})
	require.NoError(t, err)

	u, err := readUsage(context.Background(), fakeCmdable{raw: raw}, "k")
	require.NoError(t, err)
	require.Equal(t, int64(100), u.Tokens)
	require.Equal(t, 2, u.Turns)
}

func TestReadUsage_PropagatesOtherErrors(t *testing.T) {
	t.Parallel()

	_, err := readUsage(context.Background(), fakeCmdable{err: redis.ErrClosed}, "k")
	require.Error(t, err)
}
