package testutil

import (
	"context"

	"github.com/taxmill/taxmill/internal/domain/taxcode"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// InMemoryTaxCodeStore implements taxcode.Repository
type InMemoryTaxCodeStore struct {
	*InMemoryStore[*taxcode.TaxCode]
}

func NewInMemoryTaxCodeStore() *InMemoryTaxCodeStore {
	return &InMemoryTaxCodeStore{
		InMemoryStore: NewInMemoryStore[*taxcode.TaxCode](),
	}
}

// taxCodeFilterFn implements filtering logic for tax codes
func taxCodeFilterFn(ctx context.Context, c *taxcode.TaxCode, filter interface{}) bool {
	if c == nil {
		return false
	}

	if c.TenantID != types.GetTenantID(ctx) {
		return false
	}

	if c.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.TaxCodeFilter)
	if !ok {
		return true
	}

	if f.Kind != "" && c.Kind != f.Kind {
		return false
	}

	if f.OnlyActive && !c.IsActive {
		return false
	}

	return true
}

// taxCodeSortFn orders codes alphabetically
func taxCodeSortFn(i, j *taxcode.TaxCode) bool {
	if i == nil || j == nil {
		return false
	}
	return i.Code < j.Code
}

func (s *InMemoryTaxCodeStore) Create(ctx context.Context, c *taxcode.TaxCode) error {
	if c == nil {
		return ierr.NewError("tax code cannot be nil").
			WithHint("Tax code data is required").
			Mark(ierr.ErrValidation)
	}

	// the postgres store enforces code uniqueness per tenant
	if existing, err := s.GetByCode(ctx, c.Code); err == nil && existing != nil {
		return ierr.NewError("tax code already exists").
			WithHintf("A tax code %s already exists", c.Code).
			Mark(ierr.ErrAlreadyExists)
	}

	return s.InMemoryStore.Create(ctx, c.ID, c)
}

func (s *InMemoryTaxCodeStore) Get(ctx context.Context, id string) (*taxcode.TaxCode, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Tax code %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	if !taxCodeFilterFn(ctx, c, nil) {
		return nil, ierr.NewError("tax code not found").
			WithHintf("Tax code %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}

func (s *InMemoryTaxCodeStore) GetByCode(ctx context.Context, code string) (*taxcode.TaxCode, error) {
	codes, err := s.InMemoryStore.List(ctx, nil, taxCodeFilterFn, nil)
	if err != nil {
		return nil, err
	}

	for _, c := range codes {
		if c.Code == code {
			return c, nil
		}
	}

	return nil, ierr.NewError("tax code not found").
		WithHintf("Tax code %s was not found", code).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryTaxCodeStore) List(ctx context.Context, filter *types.TaxCodeFilter) ([]*taxcode.TaxCode, error) {
	return s.InMemoryStore.List(ctx, filter, taxCodeFilterFn, taxCodeSortFn)
}

func (s *InMemoryTaxCodeStore) Count(ctx context.Context, filter *types.TaxCodeFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, taxCodeFilterFn)
}

func (s *InMemoryTaxCodeStore) Update(ctx context.Context, c *taxcode.TaxCode) error {
	if c == nil {
		return ierr.NewError("tax code cannot be nil").
			WithHint("Tax code data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, c.ID, c)
}

func (s *InMemoryTaxCodeStore) Delete(ctx context.Context, c *taxcode.TaxCode) error {
	if c == nil {
		return ierr.NewError("tax code cannot be nil").
			WithHint("Tax code data is required").
			Mark(ierr.ErrValidation)
	}
	c.Status = types.StatusArchived
	return s.InMemoryStore.Update(ctx, c.ID, c)
}
