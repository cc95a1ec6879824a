package testutil

import (
	"context"
	"time"

	"github.com/taxmill/taxmill/internal/domain/taxrate"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// InMemoryTaxRateStore implements taxrate.Repository
type InMemoryTaxRateStore struct {
	*InMemoryStore[*taxrate.TaxRate]
}

func NewInMemoryTaxRateStore() *InMemoryTaxRateStore {
	return &InMemoryTaxRateStore{
		InMemoryStore: NewInMemoryStore[*taxrate.TaxRate](),
	}
}

// taxRateFilterFn implements filtering logic for tax rates
func taxRateFilterFn(ctx context.Context, r *taxrate.TaxRate, filter interface{}) bool {
	if r == nil {
		return false
	}

	if r.TenantID != types.GetTenantID(ctx) {
		return false
	}

	return r.Status == types.StatusPublished
}

// taxRateSortFn orders rates by ascending effective_from
func taxRateSortFn(i, j *taxrate.TaxRate) bool {
	if i == nil || j == nil {
		return false
	}
	return i.EffectiveFrom.Before(j.EffectiveFrom)
}

func (s *InMemoryTaxRateStore) Create(ctx context.Context, r *taxrate.TaxRate) error {
	if r == nil {
		return ierr.NewError("tax rate cannot be nil").
			WithHint("Tax rate data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, r.ID, r)
}

func (s *InMemoryTaxRateStore) Get(ctx context.Context, id string) (*taxrate.TaxRate, error) {
	r, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Tax rate %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	if !taxRateFilterFn(ctx, r, nil) {
		return nil, ierr.NewError("tax rate not found").
			WithHintf("Tax rate %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return r, nil
}

func (s *InMemoryTaxRateStore) ListByTaxCode(ctx context.Context, taxCodeID string) ([]*taxrate.TaxRate, error) {
	rates, err := s.InMemoryStore.List(ctx, nil, taxRateFilterFn, taxRateSortFn)
	if err != nil {
		return nil, err
	}

	matching := make([]*taxrate.TaxRate, 0, len(rates))
	for _, r := range rates {
		if r.TaxCodeID == taxCodeID {
			matching = append(matching, r)
		}
	}
	return matching, nil
}

func (s *InMemoryTaxRateStore) Update(ctx context.Context, r *taxrate.TaxRate) error {
	if r == nil {
		return ierr.NewError("tax rate cannot be nil").
			WithHint("Tax rate data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, r.ID, r)
}

func (s *InMemoryTaxRateStore) Delete(ctx context.Context, r *taxrate.TaxRate) error {
	if r == nil {
		return ierr.NewError("tax rate cannot be nil").
			WithHint("Tax rate data is required").
			Mark(ierr.ErrValidation)
	}
	r.Status = types.StatusArchived
	return s.InMemoryStore.Update(ctx, r.ID, r)
}

func (s *InMemoryTaxRateStore) GetEffectiveAt(ctx context.Context, taxCodeID string, at time.Time) (*taxrate.TaxRate, error) {
	rates, err := s.ListByTaxCode(ctx, taxCodeID)
	if err != nil {
		return nil, err
	}

	for _, r := range rates {
		if r.IsEffectiveAt(at) {
			return r, nil
		}
	}

	return nil, ierr.NewError("no tax rate effective at date").
		WithHintf("No rate is effective at %s", at.Format(time.RFC3339)).
		WithReportableDetails(map[string]any{
			"tax_code_id": taxCodeID,
			"at":          at.Format(time.RFC3339),
		}).
		Mark(ierr.ErrNotFound)
}
