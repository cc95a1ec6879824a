package service

import (
	"context"

	"github.com/taxmill/taxmill/internal/api/dto"
	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// TaxSnapshotService freezes calculated breakdowns onto source documents
// and serves snapshot queries. Snapshots are write-once and are never
// recalculated.
type TaxSnapshotService interface {
	FreezeSnapshot(ctx context.Context, req dto.FreezeSnapshotRequest) (*dto.TaxSnapshotResponse, error)
	GetSnapshot(ctx context.Context, id string) (*dto.TaxSnapshotResponse, error)
	GetSnapshotBySource(ctx context.Context, sourceType types.SourceType, sourceID string) (*dto.TaxSnapshotResponse, error)
	ListSnapshots(ctx context.Context, filter *types.TaxSnapshotFilter) (*dto.ListTaxSnapshotsResponse, error)
}

type taxSnapshotService struct {
	ServiceParams
}

func NewTaxSnapshotService(params ServiceParams) TaxSnapshotService {
	return &taxSnapshotService{ServiceParams: params}
}

func (s *taxSnapshotService) FreezeSnapshot(ctx context.Context, req dto.FreezeSnapshotRequest) (*dto.TaxSnapshotResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.Jurisdictions.GetPack(req.Jurisdiction); err != nil {
		return nil, err
	}

	snapshot := &taxsnapshot.TaxSnapshot{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_SNAPSHOT),
		SourceType:   req.SourceType,
		SourceID:     req.SourceID,
		Jurisdiction: req.Jurisdiction,
		Regime:       req.Regime,
		RoundingMode: taxsnapshot.RoundingModeHalfUp,
		Currency:     req.Currency,
		CalculatedAt: req.CalculatedAt.UTC(),
		Breakdown:    req.Breakdown,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}

	if err := s.TaxSnapshotRepo.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	s.Logger.Infow("froze tax snapshot",
		"snapshot_id", snapshot.ID,
		"source_type", snapshot.SourceType,
		"source_id", snapshot.SourceID,
		"tax_total_cents", snapshot.Breakdown.TaxTotalAmountCents)

	return &dto.TaxSnapshotResponse{TaxSnapshot: snapshot}, nil
}

func (s *taxSnapshotService) GetSnapshot(ctx context.Context, id string) (*dto.TaxSnapshotResponse, error) {
	if id == "" {
		return nil, ierr.NewError("tax_snapshot_id is required").
			WithHint("Tax snapshot ID is required").
			Mark(ierr.ErrValidation)
	}

	snapshot, err := s.TaxSnapshotRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.TaxSnapshotResponse{TaxSnapshot: snapshot}, nil
}

func (s *taxSnapshotService) GetSnapshotBySource(ctx context.Context, sourceType types.SourceType, sourceID string) (*dto.TaxSnapshotResponse, error) {
	if err := sourceType.Validate(); err != nil {
		return nil, err
	}

	if sourceID == "" {
		return nil, ierr.NewError("source_id is required").
			WithHint("Source document ID is required").
			Mark(ierr.ErrValidation)
	}

	snapshot, err := s.TaxSnapshotRepo.GetBySource(ctx, sourceType, sourceID)
	if err != nil {
		return nil, err
	}

	return &dto.TaxSnapshotResponse{TaxSnapshot: snapshot}, nil
}

func (s *taxSnapshotService) ListSnapshots(ctx context.Context, filter *types.TaxSnapshotFilter) (*dto.ListTaxSnapshotsResponse, error) {
	if filter == nil {
		filter = types.NewDefaultTaxSnapshotFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	snapshots, err := s.TaxSnapshotRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.TaxSnapshotRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TaxSnapshotResponse, len(snapshots))
	for i, snap := range snapshots {
		items[i] = &dto.TaxSnapshotResponse{TaxSnapshot: snap}
	}

	pagination := types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset())

	return &dto.ListTaxSnapshotsResponse{
		Items:      items,
		Pagination: &pagination,
	}, nil
}
