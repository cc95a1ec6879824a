package testutil

import (
	"context"
	"time"

	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// InMemoryTaxProfileStore implements taxprofile.Repository
type InMemoryTaxProfileStore struct {
	*InMemoryStore[*taxprofile.TaxProfile]
}

func NewInMemoryTaxProfileStore() *InMemoryTaxProfileStore {
	return &InMemoryTaxProfileStore{
		InMemoryStore: NewInMemoryStore[*taxprofile.TaxProfile](),
	}
}

// taxProfileFilterFn implements filtering logic for tax profiles
func taxProfileFilterFn(ctx context.Context, p *taxprofile.TaxProfile, filter interface{}) bool {
	if p == nil {
		return false
	}

	if p.TenantID != types.GetTenantID(ctx) {
		return false
	}

	if p.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.TaxProfileFilter)
	if !ok {
		return true
	}

	if f.Country != "" && p.Country != f.Country {
		return false
	}

	return true
}

// taxProfileSortFn orders profiles by descending effective_from
func taxProfileSortFn(i, j *taxprofile.TaxProfile) bool {
	if i == nil || j == nil {
		return false
	}
	return i.EffectiveFrom.After(j.EffectiveFrom)
}

func (s *InMemoryTaxProfileStore) Create(ctx context.Context, p *taxprofile.TaxProfile) error {
	if p == nil {
		return ierr.NewError("tax profile cannot be nil").
			WithHint("Tax profile data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryTaxProfileStore) Get(ctx context.Context, id string) (*taxprofile.TaxProfile, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Tax profile %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	if !taxProfileFilterFn(ctx, p, nil) {
		return nil, ierr.NewError("tax profile not found").
			WithHintf("Tax profile %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (s *InMemoryTaxProfileStore) List(ctx context.Context, filter *types.TaxProfileFilter) ([]*taxprofile.TaxProfile, error) {
	return s.InMemoryStore.List(ctx, filter, taxProfileFilterFn, taxProfileSortFn)
}

func (s *InMemoryTaxProfileStore) Count(ctx context.Context, filter *types.TaxProfileFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, taxProfileFilterFn)
}

func (s *InMemoryTaxProfileStore) Update(ctx context.Context, p *taxprofile.TaxProfile) error {
	if p == nil {
		return ierr.NewError("tax profile cannot be nil").
			WithHint("Tax profile data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, p.ID, p)
}

func (s *InMemoryTaxProfileStore) Delete(ctx context.Context, p *taxprofile.TaxProfile) error {
	if p == nil {
		return ierr.NewError("tax profile cannot be nil").
			WithHint("Tax profile data is required").
			Mark(ierr.ErrValidation)
	}
	p.Status = types.StatusArchived
	return s.InMemoryStore.Update(ctx, p.ID, p)
}

func (s *InMemoryTaxProfileStore) ListEffectiveAt(ctx context.Context, country string, at time.Time) ([]*taxprofile.TaxProfile, error) {
	profiles, err := s.InMemoryStore.List(ctx, &types.TaxProfileFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		Country:     country,
	}, taxProfileFilterFn, taxProfileSortFn)
	if err != nil {
		return nil, err
	}

	effective := make([]*taxprofile.TaxProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.IsEffectiveAt(at) {
			effective = append(effective, p)
		}
	}
	return effective, nil
}
