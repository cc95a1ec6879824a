package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"github.com/taxmill/taxmill/internal/api/dto"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/jurisdiction"
	"github.com/taxmill/taxmill/internal/testutil"
	"github.com/taxmill/taxmill/internal/types"
)

type TaxCatalogServiceSuite struct {
	testutil.BaseServiceTestSuite
	service TaxCatalogService
	params  ServiceParams
}

func TestTaxCatalogService(t *testing.T) {
	suite.Run(t, new(TaxCatalogServiceSuite))
}

func (s *TaxCatalogServiceSuite) SetupTest() {
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
	s.service = NewTaxCatalogService(s.params)
}

func (s *TaxCatalogServiceSuite) createCode(code string, kind types.TaxKind) *dto.TaxCodeResponse {
	resp, err := s.service.CreateTaxCode(s.GetContext(), dto.CreateTaxCodeRequest{
		Code:  code,
		Kind:  kind,
		Label: code,
	})
	s.NoError(err)
	return resp
}

func (s *TaxCatalogServiceSuite) TestCreateTaxCode() {
	resp := s.createCode("STANDARD", types.TaxKindStandard)

	s.NotEmpty(resp.ID)
	s.Equal("STANDARD", resp.Code)
	s.Equal(types.TaxKindStandard, resp.Kind)
	s.True(resp.IsActive)

	got, err := s.service.GetTaxCodeByCode(s.GetContext(), "STANDARD")
	s.NoError(err)
	s.Equal(resp.ID, got.ID)
}

func (s *TaxCatalogServiceSuite) TestCreateTaxCodeDuplicate() {
	s.createCode("STANDARD", types.TaxKindStandard)

	_, err := s.service.CreateTaxCode(s.GetContext(), dto.CreateTaxCodeRequest{
		Code:  "STANDARD",
		Kind:  types.TaxKindStandard,
		Label: "Standard rate",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *TaxCatalogServiceSuite) TestCreateTaxCodeInvalidKind() {
	_, err := s.service.CreateTaxCode(s.GetContext(), dto.CreateTaxCodeRequest{
		Code:  "WEIRD",
		Kind:  "SUPER_REDUCED",
		Label: "Weird",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TaxCatalogServiceSuite) TestListTaxCodes() {
	s.createCode("STANDARD", types.TaxKindStandard)
	s.createCode("REDUCED", types.TaxKindReduced)
	s.createCode("EXEMPT", types.TaxKindExempt)

	resp, err := s.service.ListTaxCodes(s.GetContext(), &types.TaxCodeFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
	})
	s.NoError(err)
	s.Len(resp.Items, 3)
	// catalog listings are ordered by code
	s.Equal("EXEMPT", resp.Items[0].Code)
	s.Equal("STANDARD", resp.Items[2].Code)

	resp, err = s.service.ListTaxCodes(s.GetContext(), &types.TaxCodeFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		Kind:        types.TaxKindReduced,
	})
	s.NoError(err)
	s.Len(resp.Items, 1)
	s.Equal("REDUCED", resp.Items[0].Code)
}

func (s *TaxCatalogServiceSuite) TestDeactivateTaxCode() {
	created := s.createCode("STANDARD", types.TaxKindStandard)

	resp, err := s.service.DeactivateTaxCode(s.GetContext(), created.ID)
	s.NoError(err)
	s.False(resp.IsActive)

	listed, err := s.service.ListTaxCodes(s.GetContext(), &types.TaxCodeFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		OnlyActive:  true,
	})
	s.NoError(err)
	s.Empty(listed.Items)
}

func (s *TaxCatalogServiceSuite) TestCreateTaxRate() {
	code := s.createCode("STANDARD", types.TaxKindStandard)

	resp, err := s.service.CreateTaxRate(s.GetContext(), dto.CreateTaxRateRequest{
		TaxCodeID:     code.ID,
		RateBps:       1900,
		EffectiveFrom: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.NoError(err)
	s.Equal(int64(1900), resp.RateBps)
	s.Nil(resp.EffectiveTo)
}

func (s *TaxCatalogServiceSuite) TestCreateTaxRateOverlapRejected() {
	code := s.createCode("STANDARD", types.TaxKindStandard)

	_, err := s.service.CreateTaxRate(s.GetContext(), dto.CreateTaxRateRequest{
		TaxCodeID:     code.ID,
		RateBps:       1900,
		EffectiveFrom: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.NoError(err)

	// an open-ended rate overlaps everything after its start
	_, err = s.service.CreateTaxRate(s.GetContext(), dto.CreateTaxRateRequest{
		TaxCodeID:     code.ID,
		RateBps:       2000,
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *TaxCatalogServiceSuite) TestCreateTaxRateAdjacentRanges() {
	code := s.createCode("STANDARD", types.TaxKindStandard)
	cutover := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.service.CreateTaxRate(s.GetContext(), dto.CreateTaxRateRequest{
		TaxCodeID:     code.ID,
		RateBps:       1600,
		EffectiveFrom: time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC),
		EffectiveTo:   lo.ToPtr(cutover),
	})
	s.NoError(err)

	// [from, to) ranges meeting at the cutover instant do not overlap
	_, err = s.service.CreateTaxRate(s.GetContext(), dto.CreateTaxRateRequest{
		TaxCodeID:     code.ID,
		RateBps:       1900,
		EffectiveFrom: cutover,
	})
	s.NoError(err)

	rates, err := s.service.ListTaxRates(s.GetContext(), code.ID)
	s.NoError(err)
	s.Len(rates.Items, 2)
	// oldest first
	s.Equal(int64(1600), rates.Items[0].RateBps)
	s.Equal(int64(1900), rates.Items[1].RateBps)
}

func (s *TaxCatalogServiceSuite) TestCreateTaxRateOnZeroKind() {
	zero := s.createCode("ZERO", types.TaxKindZero)
	exempt := s.createCode("EXEMPT", types.TaxKindExempt)

	for _, code := range []*dto.TaxCodeResponse{zero, exempt} {
		_, err := s.service.CreateTaxRate(s.GetContext(), dto.CreateTaxRateRequest{
			TaxCodeID:     code.ID,
			RateBps:       100,
			EffectiveFrom: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		s.Error(err)
		s.True(ierr.IsValidation(err))
	}
}

func (s *TaxCatalogServiceSuite) TestCreateTaxRateUnknownCode() {
	_, err := s.service.CreateTaxRate(s.GetContext(), dto.CreateTaxRateRequest{
		TaxCodeID:     "txcode_missing",
		RateBps:       1900,
		EffectiveFrom: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *TaxCatalogServiceSuite) TestCreateTaxRateNegativeBps() {
	code := s.createCode("STANDARD", types.TaxKindStandard)

	_, err := s.service.CreateTaxRate(s.GetContext(), dto.CreateTaxRateRequest{
		TaxCodeID:     code.ID,
		RateBps:       -100,
		EffectiveFrom: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
