package types

import (
	"slices"

	ierr "github.com/taxmill/taxmill/internal/errors"
)

// FilingType is the statutory report type a filing represents.
type FilingType string

const (
	FilingTypeVat       FilingType = "vat"
	FilingTypeIncomeTax FilingType = "income_tax"
)

func (t FilingType) String() string {
	return string(t)
}

func (t FilingType) Validate() error {
	allowedValues := []FilingType{
		FilingTypeVat,
		FilingTypeIncomeTax,
	}

	if !slices.Contains(allowedValues, t) {
		return ierr.NewError("invalid filing type").
			WithHint("Filing type must be either vat or income_tax").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// FilingStatus represents the current state of a filing in its lifecycle.
// The forward path is OPEN -> SUBMITTED -> PAID.
type FilingStatus string

const (
	// FilingStatusOpen indicates the filing is a draft and may be submitted
	FilingStatusOpen FilingStatus = "OPEN"
	// FilingStatusSubmitted indicates the filing was handed to the authority
	FilingStatusSubmitted FilingStatus = "SUBMITTED"
	// FilingStatusPaid indicates the resulting tax liability was settled
	FilingStatusPaid FilingStatus = "PAID"
)

func (s FilingStatus) String() string {
	return string(s)
}

func (s FilingStatus) Validate() error {
	allowedValues := []FilingStatus{
		FilingStatusOpen,
		FilingStatusSubmitted,
		FilingStatusPaid,
	}

	if !slices.Contains(allowedValues, s) {
		return ierr.NewError("invalid filing status").
			WithHint("Filing status must be one of OPEN, SUBMITTED or PAID").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// filingTransitions holds the legal forward transitions per status
var filingTransitions = map[FilingStatus][]FilingStatus{
	FilingStatusOpen:      {FilingStatusSubmitted},
	FilingStatusSubmitted: {FilingStatusPaid},
	FilingStatusPaid:      {},
}

// CanTransitionTo reports whether moving from s to target is a legal
// lifecycle transition.
func (s FilingStatus) CanTransitionTo(target FilingStatus) bool {
	return slices.Contains(filingTransitions[s], target)
}

// IssueSeverity classifies filing readiness issues. Blockers prevent
// submission; warnings do not.
type IssueSeverity string

const (
	IssueSeverityBlocker IssueSeverity = "blocker"
	IssueSeverityWarning IssueSeverity = "warning"
)

func (s IssueSeverity) String() string {
	return string(s)
}

// Issue types produced by blocker evaluation
const (
	IssueTypeUncategorizedExpenses = "uncategorized_expenses"
	IssueTypeMissingVatID          = "missing_vat_id"
	IssueTypeEmptyPeriod           = "empty_period"
)

// TaxFilingFilter represents filters for filing queries
type TaxFilingFilter struct {
	*QueryFilter
	FilingType FilingType     `json:"filing_type,omitempty" form:"filing_type" validate:"omitempty"`
	Statuses   []FilingStatus `json:"statuses,omitempty" form:"statuses" validate:"omitempty"`
	Year       int            `json:"year,omitempty" form:"year" validate:"omitempty"`
	PeriodKey  string         `json:"period_key,omitempty" form:"period_key" validate:"omitempty"`
}

// NewDefaultTaxFilingFilter creates a new TaxFilingFilter with default values
func NewDefaultTaxFilingFilter() *TaxFilingFilter {
	return &TaxFilingFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f TaxFilingFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}

	if f.FilingType != "" {
		if err := f.FilingType.Validate(); err != nil {
			return err
		}
	}

	for _, s := range f.Statuses {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (f TaxFilingFilter) GetLimit() int {
	return f.QueryFilter.GetLimit()
}
