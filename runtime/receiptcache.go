package runtime

import (
	"sort"
	"sync"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/apierr"
)

// ReceiptCache is an in-memory RunId -> Receipt cache, the counterpart to
// ReceiptsDir's on-disk persistence. It is populated on dispatch completion
// and at startup by hydrating from disk.
type ReceiptCache struct {
	mu    sync.RWMutex
	byRun map[contract.RunID]contract.Receipt
}

// NewReceiptCache returns an empty cache.
func NewReceiptCache() *ReceiptCache {
	return &ReceiptCache{byRun: make(map[contract.RunID]contract.Receipt)}
}

// Put stores or replaces the cached receipt for its run id.
func (c *ReceiptCache) Put(r contract.Receipt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byRun[r.Meta.RunID] = r
}

// Get returns the cached receipt for id.
func (c *ReceiptCache) Get(id contract.RunID) (contract.Receipt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byRun[id]
	if !ok {
		return contract.Receipt{}, apierr.Newf(apierr.KindNotFound, "runtime: receipt %q not found", id)
	}
	return r, nil
}

// Remove deletes id's cached receipt, if any.
func (c *ReceiptCache) Remove(id contract.RunID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byRun, id)
}

// List returns up to limit receipts ordered by FinishedAt descending (most
// recently completed first). limit <= 0 means unlimited.
func (c *ReceiptCache) List(limit int) []contract.Receipt {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]contract.Receipt, 0, len(c.byRun))
	for _, r := range c.byRun {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Meta.FinishedAt.After(out[j].Meta.FinishedAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
