package dto

import (
	"time"

	"github.com/taxmill/taxmill/internal/domain/taxfiling"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// CreateTaxFilingRequest opens a filing for one reporting period.
// Creation is idempotent per (tenant, type, period): concurrent creators
// race to one filing, the rest observe a conflict.
type CreateTaxFilingRequest struct {
	FilingType types.FilingType `json:"filing_type" binding:"required"`
	Year       int              `json:"year" binding:"required"`
	PeriodKey  string           `json:"period_key" binding:"required"`
}

func (r CreateTaxFilingRequest) Validate() error {
	if err := r.FilingType.Validate(); err != nil {
		return err
	}

	if r.PeriodKey == "" {
		return ierr.NewError("period_key is required").
			WithHint("Period key is required").
			Mark(ierr.ErrValidation)
	}

	year, err := types.PeriodYear(r.PeriodKey)
	if err != nil {
		return err
	}

	if r.Year != 0 && r.Year != year {
		return ierr.NewError("year does not match period_key").
			WithHintf("Period key %s does not belong to year %d", r.PeriodKey, r.Year).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// SubmitTaxFilingRequest records the hand-over of an OPEN filing to the
// tax authority
type SubmitTaxFilingRequest struct {
	Method       string     `json:"method" binding:"required"`
	SubmissionID string     `json:"submission_id,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}

func (r SubmitTaxFilingRequest) Validate() error {
	if r.Method == "" {
		return ierr.NewError("method is required").
			WithHint("Submission method is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// MarkFilingPaidRequest settles a SUBMITTED filing
type MarkFilingPaidRequest struct {
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	Method      string     `json:"method" binding:"required"`
	AmountCents int64      `json:"amount_cents"`
}

func (r MarkFilingPaidRequest) Validate() error {
	if r.Method == "" {
		return ierr.NewError("method is required").
			WithHint("Payment method is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TaxFilingResponse carries a filing plus its currently legal transitions
type TaxFilingResponse struct {
	*taxfiling.TaxFiling `json:",inline"`

	Capabilities taxfiling.Capabilities `json:"capabilities"`
}

// NewTaxFilingResponse builds a response with computed capabilities
func NewTaxFilingResponse(filing *taxfiling.TaxFiling) *TaxFilingResponse {
	return &TaxFilingResponse{
		TaxFiling:    filing,
		Capabilities: filing.Capabilities(),
	}
}

// ListTaxFilingsResponse represents a paginated filing list
type ListTaxFilingsResponse struct {
	Items      []*TaxFilingResponse      `json:"items"`
	Pagination *types.PaginationResponse `json:"pagination,omitempty"`
}

// FilingLineItemsFilter narrows the snapshot rows backing a filing
type FilingLineItemsFilter struct {
	SourceType types.SourceType `json:"source_type,omitempty" form:"source_type"`
	Page       int              `json:"page,omitempty" form:"page"`
	PageSize   int              `json:"page_size,omitempty" form:"page_size"`
}

// ListFilingItemsResponse lists the snapshot rows backing a filing's totals
type ListFilingItemsResponse struct {
	Items      []*VatPeriodAggregateRow  `json:"items"`
	Pagination *types.PaginationResponse `json:"pagination,omitempty"`
}
