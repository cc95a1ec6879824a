package types

import (
	"slices"

	ierr "github.com/taxmill/taxmill/internal/errors"
)

// VatRegime is the VAT scheme a tenant operates under in a jurisdiction.
type VatRegime string

const (
	// VatRegimeRegular charges VAT at the jurisdiction's code rates.
	VatRegimeRegular VatRegime = "REGULAR"
	// VatRegimeSmallBusiness is a no-VAT small-business scheme
	// (e.g. §19 UStG Kleinunternehmer). Every line resolves to rate 0.
	VatRegimeSmallBusiness VatRegime = "SMALL_BUSINESS"
)

func (r VatRegime) String() string {
	return string(r)
}

func (r VatRegime) Validate() error {
	allowedValues := []VatRegime{
		VatRegimeRegular,
		VatRegimeSmallBusiness,
	}

	if !slices.Contains(allowedValues, r) {
		return ierr.NewError("invalid vat regime").
			WithHint("VAT regime must be either REGULAR or SMALL_BUSINESS").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// FilingFrequency is how often a tenant must file VAT returns.
type FilingFrequency string

const (
	FilingFrequencyMonthly   FilingFrequency = "MONTHLY"
	FilingFrequencyQuarterly FilingFrequency = "QUARTERLY"
)

func (f FilingFrequency) String() string {
	return string(f)
}

func (f FilingFrequency) Validate() error {
	allowedValues := []FilingFrequency{
		FilingFrequencyMonthly,
		FilingFrequencyQuarterly,
	}

	if !slices.Contains(allowedValues, f) {
		return ierr.NewError("invalid filing frequency").
			WithHint("Filing frequency must be either MONTHLY or QUARTERLY").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// PeriodsPerYear returns the number of statutory periods in a calendar year
func (f FilingFrequency) PeriodsPerYear() int {
	if f == FilingFrequencyMonthly {
		return 12
	}
	return 4
}

// TaxProfileFilter represents filters for tax profile queries
type TaxProfileFilter struct {
	*QueryFilter
	Country string `json:"country,omitempty" form:"country" validate:"omitempty"`
}

// NewDefaultTaxProfileFilter creates a new TaxProfileFilter with default values
func NewDefaultTaxProfileFilter() *TaxProfileFilter {
	return &TaxProfileFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f TaxProfileFilter) Validate() error {
	if f.QueryFilter != nil {
		return f.QueryFilter.Validate()
	}
	return nil
}
