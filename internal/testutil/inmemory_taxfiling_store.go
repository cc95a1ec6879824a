package testutil

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/taxmill/taxmill/internal/domain/taxfiling"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// InMemoryTaxFilingStore implements taxfiling.Repository
type InMemoryTaxFilingStore struct {
	*InMemoryStore[*taxfiling.TaxFiling]
}

func NewInMemoryTaxFilingStore() *InMemoryTaxFilingStore {
	return &InMemoryTaxFilingStore{
		InMemoryStore: NewInMemoryStore[*taxfiling.TaxFiling](),
	}
}

// taxFilingFilterFn implements filtering logic for tax filings
func taxFilingFilterFn(ctx context.Context, f *taxfiling.TaxFiling, filter interface{}) bool {
	if f == nil {
		return false
	}

	if f.TenantID != types.GetTenantID(ctx) {
		return false
	}

	if f.Status != types.StatusPublished {
		return false
	}

	flt, ok := filter.(*types.TaxFilingFilter)
	if !ok {
		return true
	}

	if flt.FilingType != "" && f.FilingType != flt.FilingType {
		return false
	}

	if len(flt.Statuses) > 0 && !lo.Contains(flt.Statuses, f.FilingStatus) {
		return false
	}

	if flt.Year != 0 && f.PeriodStart.Year() != flt.Year {
		return false
	}

	if flt.PeriodKey != "" && f.PeriodKey != flt.PeriodKey {
		return false
	}

	return true
}

// taxFilingSortFn orders filings by descending period start
func taxFilingSortFn(i, j *taxfiling.TaxFiling) bool {
	if i == nil || j == nil {
		return false
	}
	if i.PeriodStart.Equal(j.PeriodStart) {
		return strings.Compare(string(i.FilingType), string(j.FilingType)) < 0
	}
	return i.PeriodStart.After(j.PeriodStart)
}

func (s *InMemoryTaxFilingStore) Create(ctx context.Context, f *taxfiling.TaxFiling) error {
	if f == nil {
		return ierr.NewError("tax filing cannot be nil").
			WithHint("Tax filing data is required").
			Mark(ierr.ErrValidation)
	}

	// one filing per (filing_type, period_key), like the unique index
	if existing, err := s.GetByPeriod(ctx, f.FilingType, f.PeriodKey); err == nil && existing != nil {
		return ierr.NewError("tax filing already exists").
			WithHintf("A %s filing already exists for period %s", f.FilingType, f.PeriodKey).
			WithReportableDetails(map[string]any{
				"filing_type": f.FilingType,
				"period_key":  f.PeriodKey,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	return s.InMemoryStore.Create(ctx, f.ID, f)
}

func (s *InMemoryTaxFilingStore) Get(ctx context.Context, id string) (*taxfiling.TaxFiling, error) {
	f, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Tax filing %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	if !taxFilingFilterFn(ctx, f, nil) {
		return nil, ierr.NewError("tax filing not found").
			WithHintf("Tax filing %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return f, nil
}

func (s *InMemoryTaxFilingStore) GetByPeriod(ctx context.Context, filingType types.FilingType, periodKey string) (*taxfiling.TaxFiling, error) {
	filings, err := s.InMemoryStore.List(ctx, nil, taxFilingFilterFn, nil)
	if err != nil {
		return nil, err
	}

	for _, f := range filings {
		if f.FilingType == filingType && f.PeriodKey == periodKey {
			return f, nil
		}
	}

	return nil, ierr.NewError("tax filing not found").
		WithHintf("No %s filing exists for period %s", filingType, periodKey).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryTaxFilingStore) List(ctx context.Context, filter *types.TaxFilingFilter) ([]*taxfiling.TaxFiling, error) {
	return s.InMemoryStore.List(ctx, filter, taxFilingFilterFn, taxFilingSortFn)
}

func (s *InMemoryTaxFilingStore) Count(ctx context.Context, filter *types.TaxFilingFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, taxFilingFilterFn)
}

func (s *InMemoryTaxFilingStore) Update(ctx context.Context, f *taxfiling.TaxFiling) error {
	if f == nil {
		return ierr.NewError("tax filing cannot be nil").
			WithHint("Tax filing data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, f.ID, f)
}
