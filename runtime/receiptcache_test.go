package runtime

import (
	"testing"
	"time"

	"github.com/agentbackplane/abp/contract"
	"github.com/stretchr/testify/require"
)

func receiptAt(id contract.RunID, finishedAt time.Time) contract.Receipt {
	var r contract.Receipt
	r.Meta.RunID = id
	r.Meta.FinishedAt = finishedAt
	return r
}

func TestReceiptCache_PutGetRemove(t *testing.T) {
	t.Parallel()

	cache := NewReceiptCache()
	id := contract.NewRunID()
	cache.Put(receiptAt(id, time.Now()))

	got, err := cache.Get(id)
	require.NoError(t, err)
	require.Equal(t, id, got.Meta.RunID)

	cache.Remove(id)
	_, err = cache.Get(id)
	require.Error(t, err)
}

func TestReceiptCache_ListOrdersByFinishedAtDescending(t *testing.T) {
	t.Parallel()

	cache := NewReceiptCache()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := contract.RunID("oldest")
	newest := contract.RunID("newest")
	cache.Put(receiptAt(oldest, base))
	cache.Put(receiptAt(newest, base.Add(time.Hour)))

	list := cache.List(0)
	require.Len(t, list, 2)
	require.Equal(t, newest, list[0].Meta.RunID)
	require.Equal(t, oldest, list[1].Meta.RunID)
}

func TestReceiptCache_ListRespectsLimit(t *testing.T) {
	t.Parallel()

	cache := NewReceiptCache()
	for i := 0; i < 5; i++ {
		cache.Put(receiptAt(contract.NewRunID(), time.Now()))
	}

	require.Len(t, cache.List(2), 2)
}
