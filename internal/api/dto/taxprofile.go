package dto

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// CreateTaxProfileRequest configures a tenant's tax regime for a
// jurisdiction from a given date on.
type CreateTaxProfileRequest struct {
	Country         string                `json:"country" binding:"required"`
	Regime          types.VatRegime       `json:"regime" binding:"required"`
	VatID           string                `json:"vat_id,omitempty"`
	Currency        string                `json:"currency" binding:"required"`
	FilingFrequency types.FilingFrequency `json:"filing_frequency" binding:"required"`
	EffectiveFrom   time.Time             `json:"effective_from" binding:"required"`
	EffectiveTo     *time.Time            `json:"effective_to,omitempty"`
}

func (r CreateTaxProfileRequest) Validate() error {
	if r.Country == "" {
		return ierr.NewError("country is required").
			WithHint("Country is required").
			Mark(ierr.ErrValidation)
	}

	if r.Currency == "" {
		return ierr.NewError("currency is required").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}

	if err := r.Regime.Validate(); err != nil {
		return err
	}

	if err := r.FilingFrequency.Validate(); err != nil {
		return err
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

// ToTaxProfile converts the request to a domain TaxProfile
func (r CreateTaxProfileRequest) ToTaxProfile(ctx context.Context) *taxprofile.TaxProfile {
	return &taxprofile.TaxProfile{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_PROFILE),
		Country:         r.Country,
		Regime:          r.Regime,
		VatID:           r.VatID,
		Currency:        r.Currency,
		FilingFrequency: r.FilingFrequency,
		EffectiveFrom:   r.EffectiveFrom.UTC(),
		EffectiveTo:     r.EffectiveTo,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
}

// TaxProfileResponse represents the response for tax profile operations
type TaxProfileResponse struct {
	*taxprofile.TaxProfile `json:",inline"`
}

// ListTaxProfilesResponse represents a paginated tax profile list
type ListTaxProfilesResponse struct {
	Items      []*TaxProfileResponse     `json:"items"`
	Pagination *types.PaginationResponse `json:"pagination,omitempty"`
}
