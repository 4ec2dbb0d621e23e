package runtime

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/apierr"
)

// PersistReceipt writes receipt to <dir>/<run_id>.json using a write-temp,
// rename-into-place sequence so a concurrent reader (or a crash mid-write)
// never observes a partially written file.
func PersistReceipt(dir string, receipt contract.Receipt) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apierr.Wrap(apierr.KindInternal, "runtime: create receipts dir", err)
	}

	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "runtime: marshal receipt", err)
	}

	path := filepath.Join(dir, string(receipt.Meta.RunID)+".json")
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return apierr.Wrap(apierr.KindInternal, "runtime: write receipt", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apierr.Wrap(apierr.KindInternal, "runtime: commit receipt", err)
	}
	return nil
}

// HydrateReceiptsFromDisk reads every *.json file in dir and returns the
// receipts it can parse, in filename order. Malformed files are skipped
// rather than aborting the whole load, so one corrupt receipt from a
// crashed prior process does not take the rest of the cache down with it.
func HydrateReceiptsFromDisk(dir string) ([]contract.Receipt, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "runtime: read receipts dir", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	receipts := make([]contract.Receipt, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var r contract.Receipt
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		receipts = append(receipts, r)
	}
	return receipts, nil
}

// receiptPath is a small helper so callers (and tests) can locate a
// receipt's on-disk path without duplicating the naming convention.
func receiptPath(dir string, runID contract.RunID) string {
	return filepath.Join(dir, fmt.Sprintf("%s.json", runID))
}
