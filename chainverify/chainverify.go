// Package chainverify constructs and validates receipt hash chains. A chain
// entry pairs one receipt with an optional parent run id and the parent
// content hash it claims; entries are kept as a flat sequence resolved by id
// lookup rather than a graph, since receipts never form cycles in practice
// and a flat sequence is enough to validate one. Parent-chain linkage is
// bookkeeping chainverify owns itself — it is never part of a Receipt's own
// wire shape.
package chainverify

import (
	"fmt"

	"github.com/agentbackplane/abp/contract"
)

// Entry is one link in a receipt chain: a receipt, the run id of the
// receipt it is chained from (if any), and the content hash claimed for
// that parent at the time the chain was assembled.
type Entry struct {
	Receipt    contract.Receipt
	ParentID   contract.RunID
	ParentHash string
}

// BrokenHash reports that the receipt at Index failed its own content-hash
// check or no longer matches the hash its child recorded as its parent.
type BrokenHash struct {
	Index int
}

func (e BrokenHash) Error() string {
	return fmt.Sprintf("chainverify: broken hash at index %d", e.Index)
}

// Result is the outcome of verifying a chain.
type Result struct {
	Valid       bool
	ChainLength int
	Err         error
}

// Verify checks that every entry's receipt hash is self-consistent
// (receipt_sha256 matches a fresh hash of its own content) and that every
// entry with a non-empty ParentHash actually matches the hash of the entry
// it claims as its parent. Entries are resolved by run id, not by position,
// so callers may pass them in any order.
func Verify(entries []Entry) Result {
	byRunID := make(map[contract.RunID]Entry, len(entries))
	for _, e := range entries {
		byRunID[e.Receipt.Meta.RunID] = e
	}

	for i, e := range entries {
		wantHash, err := contract.ReceiptHash(e.Receipt)
		if err != nil {
			return Result{Valid: false, ChainLength: len(entries), Err: fmt.Errorf("chainverify: hash receipt at index %d: %w", i, err)}
		}
		if wantHash != e.Receipt.ReceiptSHA256 {
			return Result{Valid: false, ChainLength: len(entries), Err: BrokenHash{Index: i}}
		}

		if e.ParentHash == "" {
			continue
		}
		parent, ok := byRunID[e.ParentID]
		if !ok {
			return Result{Valid: false, ChainLength: len(entries), Err: BrokenHash{Index: i}}
		}
		if e.ParentHash != parent.Receipt.ReceiptSHA256 {
			return Result{Valid: false, ChainLength: len(entries), Err: BrokenHash{Index: i}}
		}
	}

	return Result{Valid: true, ChainLength: len(entries)}
}

// Build assembles a flat chain from receipts in issuance order, linking
// entry i to entry i-1's run id and claiming entry i-1's actual content hash
// as its parent hash, for every receipt after the first.
func Build(receipts []contract.Receipt) []Entry {
	entries := make([]Entry, len(receipts))
	for i, r := range receipts {
		e := Entry{Receipt: r}
		if i > 0 {
			e.ParentID = receipts[i-1].Meta.RunID
			e.ParentHash = receipts[i-1].ReceiptSHA256
		}
		entries[i] = e
	}
	return entries
}
