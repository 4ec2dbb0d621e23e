// Package contract defines the vendor-neutral data model exchanged between
// Agent Backplane callers and the runtime: work orders, receipts, agent
// events, and capability manifests. Types in this package are plain data —
// canonicalization and hashing live alongside them so every component that
// needs a stable wire form uses the same rules.
package contract

import (
	"fmt"

	"github.com/google/uuid"
)

// RunID is a 128-bit UUID encoded as lowercase 8-4-4-4-12 hex, identifying a
// single execution of a WorkOrder.
type RunID string

// WorkOrderID is a 128-bit UUID encoded the same way as RunID.
type WorkOrderID string

// NewRunID returns a freshly generated RunID.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

// NewWorkOrderID returns a freshly generated WorkOrderID.
func NewWorkOrderID() WorkOrderID {
	return WorkOrderID(uuid.NewString())
}

// Valid reports whether id parses as a UUID. uuid.Parse accepts the
// canonical 8-4-4-4-12 form and also its urn:uuid:, braced and unhyphenated
// variants.
func (id RunID) Valid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}

// Valid reports whether id parses as a UUID, with the same accepted forms
// as RunID.Valid.
func (id WorkOrderID) Valid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}

// String implements fmt.Stringer.
func (id RunID) String() string { return string(id) }

// String implements fmt.Stringer.
func (id WorkOrderID) String() string { return string(id) }

func requireUUID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("contract: %s is not a valid UUID: %w", field, err)
	}
	return nil
}
