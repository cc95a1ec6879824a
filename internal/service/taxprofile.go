package service

import (
	"context"
	"time"

	"github.com/taxmill/taxmill/internal/api/dto"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

type TaxProfileService interface {
	CreateTaxProfile(ctx context.Context, req dto.CreateTaxProfileRequest) (*dto.TaxProfileResponse, error)
	GetTaxProfile(ctx context.Context, id string) (*dto.TaxProfileResponse, error)
	ListTaxProfiles(ctx context.Context, filter *types.TaxProfileFilter) (*dto.ListTaxProfilesResponse, error)
	DeleteTaxProfile(ctx context.Context, id string) error

	// ResolveActiveProfile returns the single profile effective at the
	// given instant. An empty country is allowed only when all effective
	// profiles agree on one country.
	ResolveActiveProfile(ctx context.Context, country string, at time.Time) (*taxprofile.TaxProfile, error)
}

type taxProfileService struct {
	ServiceParams
}

func NewTaxProfileService(params ServiceParams) TaxProfileService {
	return &taxProfileService{ServiceParams: params}
}

func (s *taxProfileService) CreateTaxProfile(ctx context.Context, req dto.CreateTaxProfileRequest) (*dto.TaxProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// the country must be served by a registered jurisdiction pack
	if _, err := s.Jurisdictions.GetPack(req.Country); err != nil {
		return nil, err
	}

	profile := req.ToTaxProfile(ctx)

	// overlapping effective ranges for one country would make resolution
	// ambiguous
	existing, err := s.TaxProfileRepo.List(ctx, &types.TaxProfileFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		Country:     req.Country,
	})
	if err != nil {
		return nil, err
	}

	for _, other := range existing {
		if profile.Overlaps(other) {
			return nil, ierr.NewError("tax profile effective range overlaps an existing profile").
				WithHintf("Profile %s already covers part of this effective range", other.ID).
				WithReportableDetails(map[string]any{
					"conflicting_profile_id": other.ID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	if err := s.TaxProfileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	return &dto.TaxProfileResponse{TaxProfile: profile}, nil
}

func (s *taxProfileService) GetTaxProfile(ctx context.Context, id string) (*dto.TaxProfileResponse, error) {
	if id == "" {
		return nil, ierr.NewError("tax_profile_id is required").
			WithHint("Tax profile ID is required").
			Mark(ierr.ErrValidation)
	}

	profile, err := s.TaxProfileRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.TaxProfileResponse{TaxProfile: profile}, nil
}

func (s *taxProfileService) ListTaxProfiles(ctx context.Context, filter *types.TaxProfileFilter) (*dto.ListTaxProfilesResponse, error) {
	if filter == nil {
		filter = types.NewDefaultTaxProfileFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	profiles, err := s.TaxProfileRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.TaxProfileRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TaxProfileResponse, len(profiles))
	for i, p := range profiles {
		items[i] = &dto.TaxProfileResponse{TaxProfile: p}
	}

	pagination := types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset())

	return &dto.ListTaxProfilesResponse{
		Items:      items,
		Pagination: &pagination,
	}, nil
}

func (s *taxProfileService) DeleteTaxProfile(ctx context.Context, id string) error {
	profile, err := s.TaxProfileRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.TaxProfileRepo.Delete(ctx, profile)
}

func (s *taxProfileService) ResolveActiveProfile(ctx context.Context, country string, at time.Time) (*taxprofile.TaxProfile, error) {
	profiles, err := s.TaxProfileRepo.ListEffectiveAt(ctx, country, at)
	if err != nil {
		return nil, err
	}

	if len(profiles) == 0 {
		return nil, ierr.NewError("no active tax profile").
			WithHintf("No tax profile is effective at %s", at.Format(time.RFC3339)).
			WithReportableDetails(map[string]any{
				"country": country,
				"at":      at.Format(time.RFC3339),
			}).
			Mark(ierr.ErrNotFound)
	}

	if country == "" {
		for _, p := range profiles[1:] {
			if p.Country != profiles[0].Country {
				return nil, ierr.NewError("jurisdiction is ambiguous").
					WithHint("Profiles for multiple countries are effective; pass an explicit jurisdiction").
					Mark(ierr.ErrValidation)
			}
		}
	}

	// non-overlap is enforced on create, so the first match is the profile
	return profiles[0], nil
}
