package testutil

import (
	"context"

	"github.com/samber/lo"
	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// InMemoryTaxSnapshotStore implements taxsnapshot.Repository
type InMemoryTaxSnapshotStore struct {
	*InMemoryStore[*taxsnapshot.TaxSnapshot]
}

func NewInMemoryTaxSnapshotStore() *InMemoryTaxSnapshotStore {
	return &InMemoryTaxSnapshotStore{
		InMemoryStore: NewInMemoryStore[*taxsnapshot.TaxSnapshot](),
	}
}

// taxSnapshotFilterFn implements filtering logic for tax snapshots
func taxSnapshotFilterFn(ctx context.Context, snap *taxsnapshot.TaxSnapshot, filter interface{}) bool {
	if snap == nil {
		return false
	}

	if snap.TenantID != types.GetTenantID(ctx) {
		return false
	}

	if snap.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.TaxSnapshotFilter)
	if !ok {
		return true
	}

	if len(f.SourceTypes) > 0 && !lo.Contains(f.SourceTypes, snap.SourceType) {
		return false
	}

	if len(f.SourceIDs) > 0 && !lo.Contains(f.SourceIDs, snap.SourceID) {
		return false
	}

	// time range is half-open against calculated_at
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && snap.CalculatedAt.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && !snap.CalculatedAt.Before(*f.EndTime) {
			return false
		}
	}

	return true
}

// taxSnapshotSortFn orders snapshots by ascending calculated_at, ties
// broken by id, matching the repository's stable ordering
func taxSnapshotSortFn(i, j *taxsnapshot.TaxSnapshot) bool {
	if i == nil || j == nil {
		return false
	}
	if i.CalculatedAt.Equal(j.CalculatedAt) {
		return i.ID < j.ID
	}
	return i.CalculatedAt.Before(j.CalculatedAt)
}

func (s *InMemoryTaxSnapshotStore) Create(ctx context.Context, snap *taxsnapshot.TaxSnapshot) error {
	if snap == nil {
		return ierr.NewError("tax snapshot cannot be nil").
			WithHint("Tax snapshot data is required").
			Mark(ierr.ErrValidation)
	}

	// write-once per source document
	if existing, err := s.GetBySource(ctx, snap.SourceType, snap.SourceID); err == nil && existing != nil {
		return ierr.NewError("tax snapshot already exists").
			WithHint("A tax snapshot already exists for this source document").
			WithReportableDetails(map[string]any{
				"source_type": snap.SourceType,
				"source_id":   snap.SourceID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	return s.InMemoryStore.Create(ctx, snap.ID, snap)
}

func (s *InMemoryTaxSnapshotStore) Get(ctx context.Context, id string) (*taxsnapshot.TaxSnapshot, error) {
	snap, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Tax snapshot %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	if !taxSnapshotFilterFn(ctx, snap, nil) {
		return nil, ierr.NewError("tax snapshot not found").
			WithHintf("Tax snapshot %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return snap, nil
}

func (s *InMemoryTaxSnapshotStore) GetBySource(ctx context.Context, sourceType types.SourceType, sourceID string) (*taxsnapshot.TaxSnapshot, error) {
	snapshots, err := s.InMemoryStore.List(ctx, nil, taxSnapshotFilterFn, nil)
	if err != nil {
		return nil, err
	}

	for _, snap := range snapshots {
		if snap.SourceType == sourceType && snap.SourceID == sourceID {
			return snap, nil
		}
	}

	return nil, ierr.NewError("tax snapshot not found").
		WithHintf("No tax snapshot exists for %s %s", sourceType, sourceID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryTaxSnapshotStore) List(ctx context.Context, filter *types.TaxSnapshotFilter) ([]*taxsnapshot.TaxSnapshot, error) {
	return s.InMemoryStore.List(ctx, filter, taxSnapshotFilterFn, taxSnapshotSortFn)
}

func (s *InMemoryTaxSnapshotStore) Count(ctx context.Context, filter *types.TaxSnapshotFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, taxSnapshotFilterFn)
}
