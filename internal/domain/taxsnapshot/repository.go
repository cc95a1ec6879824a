package taxsnapshot

import (
	"context"

	"github.com/taxmill/taxmill/internal/types"
)

// Repository defines operations for managing tax snapshots.
// Snapshots are write-once: Create must reject a second snapshot for the
// same (source_type, source_id) with an already-exists error.
type Repository interface {
	Create(ctx context.Context, snapshot *TaxSnapshot) error
	Get(ctx context.Context, id string) (*TaxSnapshot, error)
	GetBySource(ctx context.Context, sourceType types.SourceType, sourceID string) (*TaxSnapshot, error)

	// List returns snapshots matching the filter in a stable order:
	// ascending calculated_at, ties broken by id.
	List(ctx context.Context, filter *types.TaxSnapshotFilter) ([]*TaxSnapshot, error)
	Count(ctx context.Context, filter *types.TaxSnapshotFilter) (int, error)
}
