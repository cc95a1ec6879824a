package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/taxmill/taxmill/internal/api/dto"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/jurisdiction"
	"github.com/taxmill/taxmill/internal/testutil"
	"github.com/taxmill/taxmill/internal/types"
)

type VatPeriodServiceSuite struct {
	testutil.BaseServiceTestSuite
	service VatPeriodService
	params  ServiceParams
	profile *taxprofile.TaxProfile
}

func TestVatPeriodService(t *testing.T) {
	suite.Run(t, new(VatPeriodServiceSuite))
}

func (s *VatPeriodServiceSuite) SetupTest() {
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
	s.service = NewVatPeriodService(s.params)

	s.profile = &taxprofile.TaxProfile{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_PROFILE),
		Country:         "DE",
		Regime:          types.VatRegimeRegular,
		VatID:           "DE123456789",
		Currency:        "EUR",
		FilingFrequency: types.FilingFrequencyMonthly,
		EffectiveFrom:   time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.params.TaxProfileRepo.Create(s.GetContext(), s.profile))
}

func (s *VatPeriodServiceSuite) freezeSnapshot(sourceType types.SourceType, sourceID string, date time.Time, net, tax int64) {
	ctx := s.GetContext()
	snapshot := &taxsnapshot.TaxSnapshot{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_SNAPSHOT),
		SourceType:   sourceType,
		SourceID:     sourceID,
		Jurisdiction: "DE",
		Regime:       types.VatRegimeRegular,
		RoundingMode: taxsnapshot.RoundingModeHalfUp,
		Currency:     "EUR",
		CalculatedAt: date,
		Breakdown: &taxsnapshot.TaxBreakdown{
			SubtotalAmountCents: net,
			TaxTotalAmountCents: tax,
			TotalAmountCents:    net + tax,
			Lines: []*taxsnapshot.TaxLineResult{
				{
					LineID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE_ITEM),
					Kind:             types.TaxKindStandard,
					RateBps:          1900,
					NetAmountCents:   net,
					TaxAmountCents:   tax,
					GrossAmountCents: net + tax,
				},
			},
			AppliedAt: date,
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.params.TaxSnapshotRepo.Create(ctx, snapshot))
}

func (s *VatPeriodServiceSuite) TestListMonthlyPeriods() {
	resp, err := s.service.ListPeriods(s.GetContext(), 2026)
	s.NoError(err)

	s.Equal(2026, resp.Year)
	s.Equal(types.FilingFrequencyMonthly, resp.Frequency)
	s.Len(resp.Periods, 12)

	january := resp.Periods[0]
	s.Equal("2026-01", january.PeriodKey)
	s.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), january.From)
	s.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), january.To)
	s.Equal(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), january.DueDate)
	s.Equal("January 2026", january.Label)
	s.Nil(january.Filing)

	december := resp.Periods[11]
	s.Equal("2026-12", december.PeriodKey)
	s.Equal(time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC), december.DueDate)
}

func (s *VatPeriodServiceSuite) TestListQuarterlyPeriods() {
	s.profile.FilingFrequency = types.FilingFrequencyQuarterly
	s.NoError(s.params.TaxProfileRepo.Update(s.GetContext(), s.profile))

	resp, err := s.service.ListPeriods(s.GetContext(), 2026)
	s.NoError(err)

	s.Equal(types.FilingFrequencyQuarterly, resp.Frequency)
	s.Len(resp.Periods, 4)

	q1 := resp.Periods[0]
	s.Equal("2026-Q1", q1.PeriodKey)
	s.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), q1.From)
	s.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), q1.To)
	s.Equal(time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), q1.DueDate)
	s.Equal("Q1 2026", q1.Label)

	q4 := resp.Periods[3]
	s.Equal("2026-Q4", q4.PeriodKey)
	s.Equal(time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC), q4.DueDate)
}

func (s *VatPeriodServiceSuite) TestListPeriodsAttachesFilings() {
	filingService := NewTaxFilingService(s.params)
	created, err := filingService.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-02",
	})
	s.NoError(err)

	resp, err := s.service.ListPeriods(s.GetContext(), 2026)
	s.NoError(err)

	s.Nil(resp.Periods[0].Filing)
	s.NotNil(resp.Periods[1].Filing)
	s.Equal(created.ID, resp.Periods[1].Filing.ID)
	s.Equal(types.FilingStatusOpen, resp.Periods[1].Filing.FilingStatus)
}

func (s *VatPeriodServiceSuite) TestListPeriodsNoProfile() {
	_, err := s.service.ListPeriods(s.GetContext(), 2018)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *VatPeriodServiceSuite) TestListPeriodsInvalidYear() {
	_, err := s.service.ListPeriods(s.GetContext(), 0)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *VatPeriodServiceSuite) TestAggregatePeriod() {
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 10000, 1900)
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-2",
		time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC), 20000, 3800)
	s.freezeSnapshot(types.SourceTypeExpense, "exp-1",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 5000, 950)
	// outside the period
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-3",
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 7000, 1330)

	resp, err := s.service.AggregatePeriod(s.GetContext(), "2026-01")
	s.NoError(err)

	s.Equal("2026-01", resp.PeriodKey)
	s.Equal(int64(30000), resp.SalesNetCents)
	s.Equal(int64(5700), resp.SalesVatCents)
	s.Equal(int64(5000), resp.PurchaseNetCents)
	s.Equal(int64(950), resp.PurchaseVatCents)
	s.Equal(int64(4750), resp.TaxDueCents)

	s.Len(resp.Rows, 3)
	s.Equal("inv-1", resp.Rows[0].SourceID)
	s.Equal("exp-1", resp.Rows[1].SourceID)
	s.Equal("inv-2", resp.Rows[2].SourceID)
	s.Equal(int64(11900), resp.Rows[0].TotalCents)
}

func (s *VatPeriodServiceSuite) TestAggregatePeriodRefundableSurplus() {
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC), 1000, 190)
	s.freezeSnapshot(types.SourceTypeExpense, "exp-1",
		time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), 50000, 9500)

	resp, err := s.service.AggregatePeriod(s.GetContext(), "2026-Q2")
	s.NoError(err)

	// more input than output VAT: the balance is a refund claim
	s.Equal(int64(190-9500), resp.TaxDueCents)
}

func (s *VatPeriodServiceSuite) TestAggregatePeriodEmpty() {
	resp, err := s.service.AggregatePeriod(s.GetContext(), "2026-06")
	s.NoError(err)

	s.Equal(int64(0), resp.TaxDueCents)
	s.Empty(resp.Rows)
}

func (s *VatPeriodServiceSuite) TestAggregatePeriodInvalidKey() {
	_, err := s.service.AggregatePeriod(s.GetContext(), "2026-13")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
