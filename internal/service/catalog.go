package service

import (
	"context"

	"github.com/taxmill/taxmill/internal/api/dto"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// TaxCatalogService manages the tenant's tax code catalog and the
// time-versioned rates attached to it.
type TaxCatalogService interface {
	CreateTaxCode(ctx context.Context, req dto.CreateTaxCodeRequest) (*dto.TaxCodeResponse, error)
	GetTaxCode(ctx context.Context, id string) (*dto.TaxCodeResponse, error)
	GetTaxCodeByCode(ctx context.Context, code string) (*dto.TaxCodeResponse, error)
	ListTaxCodes(ctx context.Context, filter *types.TaxCodeFilter) (*dto.ListTaxCodesResponse, error)
	DeactivateTaxCode(ctx context.Context, id string) (*dto.TaxCodeResponse, error)

	CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest) (*dto.TaxRateResponse, error)
	ListTaxRates(ctx context.Context, taxCodeID string) (*dto.ListTaxRatesResponse, error)
}

type taxCatalogService struct {
	ServiceParams
}

func NewTaxCatalogService(params ServiceParams) TaxCatalogService {
	return &taxCatalogService{ServiceParams: params}
}

func (s *taxCatalogService) CreateTaxCode(ctx context.Context, req dto.CreateTaxCodeRequest) (*dto.TaxCodeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	code := req.ToTaxCode(ctx)
	if err := s.TaxCodeRepo.Create(ctx, code); err != nil {
		return nil, err
	}

	return &dto.TaxCodeResponse{TaxCode: code}, nil
}

func (s *taxCatalogService) GetTaxCode(ctx context.Context, id string) (*dto.TaxCodeResponse, error) {
	if id == "" {
		return nil, ierr.NewError("tax_code_id is required").
			WithHint("Tax code ID is required").
			Mark(ierr.ErrValidation)
	}

	code, err := s.TaxCodeRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.TaxCodeResponse{TaxCode: code}, nil
}

func (s *taxCatalogService) GetTaxCodeByCode(ctx context.Context, codeStr string) (*dto.TaxCodeResponse, error) {
	if codeStr == "" {
		return nil, ierr.NewError("code is required").
			WithHint("Tax code is required").
			Mark(ierr.ErrValidation)
	}

	code, err := s.TaxCodeRepo.GetByCode(ctx, codeStr)
	if err != nil {
		return nil, err
	}

	return &dto.TaxCodeResponse{TaxCode: code}, nil
}

func (s *taxCatalogService) ListTaxCodes(ctx context.Context, filter *types.TaxCodeFilter) (*dto.ListTaxCodesResponse, error) {
	if filter == nil {
		filter = types.NewDefaultTaxCodeFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	codes, err := s.TaxCodeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.TaxCodeRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TaxCodeResponse, len(codes))
	for i, c := range codes {
		items[i] = &dto.TaxCodeResponse{TaxCode: c}
	}

	pagination := types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset())

	return &dto.ListTaxCodesResponse{
		Items:      items,
		Pagination: &pagination,
	}, nil
}

// DeactivateTaxCode stops the code from being applied to new calculations.
// Historical snapshots that reference it are unaffected.
func (s *taxCatalogService) DeactivateTaxCode(ctx context.Context, id string) (*dto.TaxCodeResponse, error) {
	code, err := s.TaxCodeRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	code.IsActive = false
	if err := s.TaxCodeRepo.Update(ctx, code); err != nil {
		return nil, err
	}

	return &dto.TaxCodeResponse{TaxCode: code}, nil
}

func (s *taxCatalogService) CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest) (*dto.TaxRateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	code, err := s.TaxCodeRepo.Get(ctx, req.TaxCodeID)
	if err != nil {
		return nil, err
	}

	// zero-rated and exempt codes never carry rate entries
	if code.Kind == types.TaxKindZero || code.Kind == types.TaxKindExempt {
		return nil, ierr.NewError("tax code kind does not take rates").
			WithHintf("Tax code %s is %s and always resolves to 0", code.Code, code.Kind).
			Mark(ierr.ErrValidation)
	}

	rate := req.ToTaxRate(ctx)

	// overlapping validity intervals for one code would make resolution
	// ambiguous
	existing, err := s.TaxRateRepo.ListByTaxCode(ctx, req.TaxCodeID)
	if err != nil {
		return nil, err
	}

	for _, other := range existing {
		if rate.Overlaps(other) {
			return nil, ierr.NewError("tax rate effective range overlaps an existing rate").
				WithHintf("Rate %s already covers part of this effective range", other.ID).
				WithReportableDetails(map[string]any{
					"conflicting_rate_id": other.ID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	if err := s.TaxRateRepo.Create(ctx, rate); err != nil {
		return nil, err
	}

	return &dto.TaxRateResponse{TaxRate: rate}, nil
}

func (s *taxCatalogService) ListTaxRates(ctx context.Context, taxCodeID string) (*dto.ListTaxRatesResponse, error) {
	if taxCodeID == "" {
		return nil, ierr.NewError("tax_code_id is required").
			WithHint("Tax code ID is required").
			Mark(ierr.ErrValidation)
	}

	rates, err := s.TaxRateRepo.ListByTaxCode(ctx, taxCodeID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TaxRateResponse, len(rates))
	for i, r := range rates {
		items[i] = &dto.TaxRateResponse{TaxRate: r}
	}

	return &dto.ListTaxRatesResponse{Items: items}, nil
}
