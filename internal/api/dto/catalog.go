package dto

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/taxmill/taxmill/internal/domain/taxcode"
	"github.com/taxmill/taxmill/internal/domain/taxrate"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// CreateTaxCodeRequest adds a catalog entry for a tax treatment
type CreateTaxCodeRequest struct {
	Code        string        `json:"code" binding:"required"`
	Kind        types.TaxKind `json:"kind" binding:"required"`
	Label       string        `json:"label" binding:"required"`
	Description string        `json:"description,omitempty"`
}

func (r CreateTaxCodeRequest) Validate() error {
	if r.Code == "" {
		return ierr.NewError("code is required").
			WithHint("Tax code is required").
			Mark(ierr.ErrValidation)
	}

	if r.Label == "" {
		return ierr.NewError("label is required").
			WithHint("Tax code label is required").
			Mark(ierr.ErrValidation)
	}

	return r.Kind.Validate()
}

// ToTaxCode converts the request to a domain TaxCode
func (r CreateTaxCodeRequest) ToTaxCode(ctx context.Context) *taxcode.TaxCode {
	return &taxcode.TaxCode{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_CODE),
		Code:        r.Code,
		Kind:        r.Kind,
		Label:       r.Label,
		Description: r.Description,
		IsActive:    true,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

// TaxCodeResponse represents the response for tax code operations
type TaxCodeResponse struct {
	*taxcode.TaxCode `json:",inline"`
}

// ListTaxCodesResponse represents a paginated tax code list
type ListTaxCodesResponse struct {
	Items      []*TaxCodeResponse        `json:"items"`
	Pagination *types.PaginationResponse `json:"pagination,omitempty"`
}

// CreateTaxRateRequest adds a time-ranged basis-point rate to a tax code
type CreateTaxRateRequest struct {
	TaxCodeID     string     `json:"tax_code_id" binding:"required"`
	RateBps       int64      `json:"rate_bps"`
	EffectiveFrom time.Time  `json:"effective_from" binding:"required"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
}

func (r CreateTaxRateRequest) Validate() error {
	if r.TaxCodeID == "" {
		return ierr.NewError("tax_code_id is required").
			WithHint("Tax code ID is required").
			Mark(ierr.ErrValidation)
	}

	if r.RateBps < 0 {
		return ierr.NewError("rate_bps cannot be negative").
			WithHint("Tax rate basis points cannot be negative").
			Mark(ierr.ErrValidation)
	}

	if r.EffectiveFrom.IsZero() {
		return ierr.NewError("effective_from is required").
			WithHint("Effective from date is required").
			Mark(ierr.ErrValidation)
	}

	if r.EffectiveTo != nil && !r.EffectiveFrom.Before(lo.FromPtr(r.EffectiveTo)) {
		return ierr.NewError("effective_from must be before effective_to").
			WithHint("Effective from date must be before effective to date").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToTaxRate converts the request to a domain TaxRate
func (r CreateTaxRateRequest) ToTaxRate(ctx context.Context) *taxrate.TaxRate {
	return &taxrate.TaxRate{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_RATE),
		TaxCodeID:     r.TaxCodeID,
		RateBps:       r.RateBps,
		EffectiveFrom: r.EffectiveFrom.UTC(),
		EffectiveTo:   r.EffectiveTo,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// TaxRateResponse represents the response for tax rate operations
type TaxRateResponse struct {
	*taxrate.TaxRate `json:",inline"`
}

// ListTaxRatesResponse represents a tax rate list for one tax code
type ListTaxRatesResponse struct {
	Items []*TaxRateResponse `json:"items"`
}
