package dto

import (
	"time"

	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// FreezeSnapshotRequest freezes a calculated breakdown onto a source
// document. The engine never freezes on its own; the document lifecycle
// decides when a breakdown becomes tax-relevant.
type FreezeSnapshotRequest struct {
	SourceType   types.SourceType `json:"source_type" binding:"required"`
	SourceID     string           `json:"source_id" binding:"required"`
	Jurisdiction string           `json:"jurisdiction" binding:"required"`
	Regime       types.VatRegime  `json:"regime" binding:"required"`
	Currency     string           `json:"currency" binding:"required"`

	// calculated_at is the source document date used for period bucketing
	CalculatedAt time.Time `json:"calculated_at" binding:"required"`

	Breakdown *taxsnapshot.TaxBreakdown `json:"breakdown" binding:"required"`
}

func (r FreezeSnapshotRequest) Validate() error {
	if err := r.SourceType.Validate(); err != nil {
		return err
	}

	if r.SourceID == "" {
		return ierr.NewError("source_id is required").
			WithHint("Source document ID is required").
			Mark(ierr.ErrValidation)
	}

	if r.Jurisdiction == "" {
		return ierr.NewError("jurisdiction is required").
			WithHint("Jurisdiction is required").
			Mark(ierr.ErrValidation)
	}

	if r.Currency == "" {
		return ierr.NewError("currency is required").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}

	if r.CalculatedAt.IsZero() {
		return ierr.NewError("calculated_at is required").
			WithHint("Calculation date is required").
			Mark(ierr.ErrValidation)
	}

	if r.Breakdown == nil {
		return ierr.NewError("breakdown is required").
			WithHint("Tax breakdown is required").
			Mark(ierr.ErrValidation)
	}

	// never freeze an inconsistent breakdown
	return r.Breakdown.Validate()
}

// TaxSnapshotResponse represents the response for snapshot operations
type TaxSnapshotResponse struct {
	*taxsnapshot.TaxSnapshot `json:",inline"`
}

// ListTaxSnapshotsResponse represents a paginated snapshot list
type ListTaxSnapshotsResponse struct {
	Items      []*TaxSnapshotResponse    `json:"items"`
	Pagination *types.PaginationResponse `json:"pagination,omitempty"`
}
