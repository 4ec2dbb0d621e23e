// Package receiptstore provides durable receipt backends beyond the
// runtime's in-memory cache: a File backend backed by the runtime package's
// write-temp-then-rename persistence, and an optional Mongo backend adapted
// from the teacher's registry/store/mongo for deployments that want a
// queryable receipt archive. The file backend is authoritative; Mongo, when
// configured, is a best-effort supplemental mirror.
package receiptstore

import (
	"context"
	"errors"

	"github.com/agentbackplane/abp/contract"
)

// ErrNotFound is returned when a lookup finds no receipt for the given run.
var ErrNotFound = errors.New("receiptstore: receipt not found")

// Store persists and retrieves receipts independent of the runtime's
// in-process cache.
type Store interface {
	Save(ctx context.Context, r contract.Receipt) error
	Get(ctx context.Context, id contract.RunID) (contract.Receipt, error)
	List(ctx context.Context, limit int) ([]contract.Receipt, error)
}
