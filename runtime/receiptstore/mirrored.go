package receiptstore

import (
	"context"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/logging"
)

// Mirrored composes the authoritative File backend with an optional Mongo
// mirror. Reads always go to File; writes go to File first and are mirrored
// to Mongo best-effort, so a mirror outage never blocks a run from
// completing.
type Mirrored struct {
	primary *File
	mirror  *Mongo
	logger  logging.Logger
}

// NewMirrored returns a Mirrored backend. mirror may be nil, in which case
// Mirrored behaves exactly like primary.
func NewMirrored(primary *File, mirror *Mongo, logger logging.Logger) *Mirrored {
	if logger == nil {
		logger = logging.New()
	}
	return &Mirrored{primary: primary, mirror: mirror, logger: logger}
}

// Save persists r to the file backend, then mirrors it to Mongo if
// configured, logging (but not failing on) a mirror error.
func (m *Mirrored) Save(ctx context.Context, r contract.Receipt) error {
	if err := m.primary.Save(ctx, r); err != nil {
		return err
	}
	if m.mirror != nil {
		if err := m.mirror.Save(ctx, r); err != nil {
			m.logger.Error(ctx, "receiptstore: mongo mirror write failed", err, "run_id", r.Meta.RunID)
		}
	}
	return nil
}

// Get reads from the authoritative file backend.
func (m *Mirrored) Get(ctx context.Context, id contract.RunID) (contract.Receipt, error) {
	return m.primary.Get(ctx, id)
}

// List reads from the authoritative file backend.
func (m *Mirrored) List(ctx context.Context, limit int) ([]contract.Receipt, error) {
	return m.primary.List(ctx, limit)
}
