package types

import (
	"slices"

	ierr "github.com/taxmill/taxmill/internal/errors"
)

// SourceType identifies the kind of commercial document a tax snapshot
// was frozen from. Invoices contribute output (sales) VAT, expenses
// contribute input (purchase) VAT.
type SourceType string

const (
	SourceTypeInvoice SourceType = "INVOICE"
	SourceTypeExpense SourceType = "EXPENSE"
)

func (s SourceType) String() string {
	return string(s)
}

func (s SourceType) Validate() error {
	allowedValues := []SourceType{
		SourceTypeInvoice,
		SourceTypeExpense,
	}

	if !slices.Contains(allowedValues, s) {
		return ierr.NewError("invalid source type").
			WithHint("Source type must be either INVOICE or EXPENSE").
			WithReportableDetails(map[string]any{
				"source_type": s.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// TaxSnapshotFilter represents filters for snapshot queries.
// Period aggregation queries by time range; the range is matched against
// the snapshot's calculated_at (the source document date).
type TaxSnapshotFilter struct {
	*QueryFilter
	*TimeRangeFilter
	SourceTypes []SourceType `json:"source_types,omitempty" form:"source_types" validate:"omitempty"`
	SourceIDs   []string     `json:"source_ids,omitempty" form:"source_ids" validate:"omitempty"`
}

// NewDefaultTaxSnapshotFilter creates a new TaxSnapshotFilter with default values
func NewDefaultTaxSnapshotFilter() *TaxSnapshotFilter {
	return &TaxSnapshotFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitTaxSnapshotFilter creates a new TaxSnapshotFilter with no pagination limits
func NewNoLimitTaxSnapshotFilter() *TaxSnapshotFilter {
	return &TaxSnapshotFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f TaxSnapshotFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}

	if f.TimeRangeFilter != nil {
		if err := f.TimeRangeFilter.Validate(); err != nil {
			return err
		}
	}

	for _, st := range f.SourceTypes {
		if err := st.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (f TaxSnapshotFilter) GetLimit() int {
	return f.QueryFilter.GetLimit()
}
