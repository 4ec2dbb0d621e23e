package receiptstore

import (
	"context"
	"sort"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/runtime"
)

// File is the authoritative on-disk receipt backend, delegating to the
// runtime package's atomic persistence helpers.
type File struct {
	dir string
}

// NewFile returns a File backend rooted at dir.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Save writes r to disk, replacing any prior receipt with the same run id.
func (f *File) Save(ctx context.Context, r contract.Receipt) error {
	return runtime.PersistReceipt(f.dir, r)
}

// Get reads every receipt on disk and returns the one matching id.
func (f *File) Get(ctx context.Context, id contract.RunID) (contract.Receipt, error) {
	all, err := runtime.HydrateReceiptsFromDisk(f.dir)
	if err != nil {
		return contract.Receipt{}, err
	}
	for _, r := range all {
		if r.Meta.RunID == id {
			return r, nil
		}
	}
	return contract.Receipt{}, ErrNotFound
}

// List returns up to limit receipts, newest first by finished_at. limit <= 0
// means unbounded.
func (f *File) List(ctx context.Context, limit int) ([]contract.Receipt, error) {
	all, err := runtime.HydrateReceiptsFromDisk(f.dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Meta.FinishedAt.After(all[j].Meta.FinishedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
