package types

import (
	"slices"

	ierr "github.com/taxmill/taxmill/internal/errors"
)

// TaxKind is the category of tax treatment a tax code belongs to
// within a jurisdiction.
type TaxKind string

const (
	TaxKindStandard TaxKind = "STANDARD"
	TaxKindReduced  TaxKind = "REDUCED"
	TaxKindZero     TaxKind = "ZERO"
	TaxKindExempt   TaxKind = "EXEMPT"
)

func (k TaxKind) String() string {
	return string(k)
}

func (k TaxKind) Validate() error {
	allowedValues := []TaxKind{
		TaxKindStandard,
		TaxKindReduced,
		TaxKindZero,
		TaxKindExempt,
	}

	if !slices.Contains(allowedValues, k) {
		return ierr.NewError("invalid tax kind").
			WithHint("Tax kind must be one of STANDARD, REDUCED, ZERO or EXEMPT").
			WithReportableDetails(map[string]any{
				"kind": k.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// TaxCodeFilter represents filters for tax code queries
type TaxCodeFilter struct {
	*QueryFilter
	TaxCodeIDs []string `json:"tax_code_ids,omitempty" form:"tax_code_ids" validate:"omitempty"`
	Codes      []string `json:"codes,omitempty" form:"codes" validate:"omitempty"`
	Kind       TaxKind  `json:"kind,omitempty" form:"kind" validate:"omitempty"`
	OnlyActive bool     `json:"only_active,omitempty" form:"only_active"`
}

// NewDefaultTaxCodeFilter creates a new TaxCodeFilter with default values
func NewDefaultTaxCodeFilter() *TaxCodeFilter {
	return &TaxCodeFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitTaxCodeFilter creates a new TaxCodeFilter with no pagination limits
func NewNoLimitTaxCodeFilter() *TaxCodeFilter {
	return &TaxCodeFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f TaxCodeFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}

	if f.Kind != "" {
		if err := f.Kind.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (f TaxCodeFilter) GetLimit() int {
	return f.QueryFilter.GetLimit()
}
