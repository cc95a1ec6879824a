package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"github.com/taxmill/taxmill/internal/api/dto"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/jurisdiction"
	"github.com/taxmill/taxmill/internal/testutil"
	"github.com/taxmill/taxmill/internal/types"
)

type TaxProfileServiceSuite struct {
	testutil.BaseServiceTestSuite
	service TaxProfileService
	params  ServiceParams
}

func TestTaxProfileService(t *testing.T) {
	suite.Run(t, new(TaxProfileServiceSuite))
}

func (s *TaxProfileServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.params = ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		TaxProfileRepo:  stores.TaxProfileRepo,
		TaxCodeRepo:     stores.TaxCodeRepo,
		TaxRateRepo:     stores.TaxRateRepo,
		TaxSnapshotRepo: stores.TaxSnapshotRepo,
		TaxFilingRepo:   stores.TaxFilingRepo,
		Jurisdictions: jurisdiction.NewRegistry(
			jurisdiction.NewGermanPack(stores.TaxCodeRepo, stores.TaxRateRepo),
		),
	}
	s.service = NewTaxProfileService(s.params)
}

func (s *TaxProfileServiceSuite) validRequest() dto.CreateTaxProfileRequest {
	return dto.CreateTaxProfileRequest{
		Country:         "DE",
		Regime:          types.VatRegimeRegular,
		VatID:           "DE123456789",
		Currency:        "EUR",
		FilingFrequency: types.FilingFrequencyMonthly,
		EffectiveFrom:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *TaxProfileServiceSuite) TestCreateTaxProfile() {
	resp, err := s.service.CreateTaxProfile(s.GetContext(), s.validRequest())
	s.NoError(err)

	s.NotEmpty(resp.ID)
	s.Equal("DE", resp.Country)
	s.Equal(types.VatRegimeRegular, resp.Regime)
	s.Equal(types.FilingFrequencyMonthly, resp.FilingFrequency)
	s.Nil(resp.EffectiveTo)

	got, err := s.service.GetTaxProfile(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(resp.ID, got.ID)
}

func (s *TaxProfileServiceSuite) TestCreateTaxProfileUnsupportedCountry() {
	req := s.validRequest()
	req.Country = "FR"

	_, err := s.service.CreateTaxProfile(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TaxProfileServiceSuite) TestCreateTaxProfileInvalidRange() {
	req := s.validRequest()
	req.EffectiveTo = lo.ToPtr(req.EffectiveFrom)

	_, err := s.service.CreateTaxProfile(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TaxProfileServiceSuite) TestCreateTaxProfileOverlapRejected() {
	first := s.validRequest()
	first.EffectiveTo = lo.ToPtr(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err := s.service.CreateTaxProfile(s.GetContext(), first)
	s.NoError(err)

	// starts inside the first profile's range
	second := s.validRequest()
	second.EffectiveFrom = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.service.CreateTaxProfile(s.GetContext(), second)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	// adjacent ranges do not overlap: the boundary instant belongs to the
	// later profile
	third := s.validRequest()
	third.Regime = types.VatRegimeSmallBusiness
	third.EffectiveFrom = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.service.CreateTaxProfile(s.GetContext(), third)
	s.NoError(err)
}

func (s *TaxProfileServiceSuite) TestResolveActiveProfile() {
	until := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := s.validRequest()
	first.EffectiveTo = lo.ToPtr(until)
	created, err := s.service.CreateTaxProfile(s.GetContext(), first)
	s.NoError(err)

	second := s.validRequest()
	second.Regime = types.VatRegimeSmallBusiness
	second.EffectiveFrom = until
	successor, err := s.service.CreateTaxProfile(s.GetContext(), second)
	s.NoError(err)

	resolved, err := s.service.ResolveActiveProfile(s.GetContext(), "DE",
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(created.ID, resolved.ID)

	// effective_to is exclusive: at the boundary the successor applies
	resolved, err = s.service.ResolveActiveProfile(s.GetContext(), "DE", until)
	s.NoError(err)
	s.Equal(successor.ID, resolved.ID)
}

func (s *TaxProfileServiceSuite) TestResolveActiveProfileNone() {
	_, err := s.service.ResolveActiveProfile(s.GetContext(), "DE",
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *TaxProfileServiceSuite) TestResolveActiveProfileAmbiguousCountry() {
	ctx := s.GetContext()

	_, err := s.service.CreateTaxProfile(ctx, s.validRequest())
	s.NoError(err)

	// a second country's profile seeded directly; no pack serves it yet
	other := &taxprofile.TaxProfile{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_PROFILE),
		Country:         "AT",
		Regime:          types.VatRegimeRegular,
		Currency:        "EUR",
		FilingFrequency: types.FilingFrequencyQuarterly,
		EffectiveFrom:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.params.TaxProfileRepo.Create(ctx, other))

	at := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	_, err = s.service.ResolveActiveProfile(ctx, "", at)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// an explicit country disambiguates
	resolved, err := s.service.ResolveActiveProfile(ctx, "AT", at)
	s.NoError(err)
	s.Equal(other.ID, resolved.ID)
}

func (s *TaxProfileServiceSuite) TestListTaxProfiles() {
	first := s.validRequest()
	first.EffectiveTo = lo.ToPtr(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err := s.service.CreateTaxProfile(s.GetContext(), first)
	s.NoError(err)

	second := s.validRequest()
	second.EffectiveFrom = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.service.CreateTaxProfile(s.GetContext(), second)
	s.NoError(err)

	resp, err := s.service.ListTaxProfiles(s.GetContext(), &types.TaxProfileFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		Country:     "DE",
	})
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)
}

func (s *TaxProfileServiceSuite) TestDeleteTaxProfile() {
	created, err := s.service.CreateTaxProfile(s.GetContext(), s.validRequest())
	s.NoError(err)

	s.NoError(s.service.DeleteTaxProfile(s.GetContext(), created.ID))

	_, err = s.service.GetTaxProfile(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	// a deleted profile no longer resolves
	_, err = s.service.ResolveActiveProfile(s.GetContext(), "DE",
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
