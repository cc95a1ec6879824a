package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"github.com/taxmill/taxmill/internal/api/dto"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/jurisdiction"
	"github.com/taxmill/taxmill/internal/testutil"
	"github.com/taxmill/taxmill/internal/types"
)

type TaxFilingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service TaxFilingService
	params  ServiceParams
	profile *taxprofile.TaxProfile
}

func TestTaxFilingService(t *testing.T) {
	suite.Run(t, new(TaxFilingServiceSuite))
}

func (s *TaxFilingServiceSuite) SetupTest() {
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
	s.service = NewTaxFilingService(s.params)

	s.profile = s.createProfile(types.VatRegimeRegular, "DE123456789", types.FilingFrequencyMonthly)
}

func (s *TaxFilingServiceSuite) createProfile(regime types.VatRegime, vatID string, frequency types.FilingFrequency) *taxprofile.TaxProfile {
	ctx := s.GetContext()
	profile := &taxprofile.TaxProfile{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_PROFILE),
		Country:         "DE",
		Regime:          regime,
		VatID:           vatID,
		Currency:        "EUR",
		FilingFrequency: frequency,
		EffectiveFrom:   time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.params.TaxProfileRepo.Create(ctx, profile))
	return profile
}

// freezeSnapshot seeds a single-line snapshot the way the calculation and
// freeze services would produce it
func (s *TaxFilingServiceSuite) freezeSnapshot(sourceType types.SourceType, sourceID string, date time.Time, net, tax int64, kind types.TaxKind) *taxsnapshot.TaxSnapshot {
	ctx := s.GetContext()

	line := &taxsnapshot.TaxLineResult{
		LineID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE_ITEM),
		Kind:             kind,
		RateBps:          1900,
		NetAmountCents:   net,
		TaxAmountCents:   tax,
		GrossAmountCents: net + tax,
	}
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
			Lines:               []*taxsnapshot.TaxLineResult{line},
			TotalsByKind: map[types.TaxKind]*taxsnapshot.KindTotal{
				kind: {
					Kind:             kind,
					RateBps:          line.RateBps,
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
	return snapshot
}

func (s *TaxFilingServiceSuite) TestCreateFilingAggregatesPeriod() {
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 10000, 1900, types.TaxKindStandard)
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-2",
		time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), 5000, 950, types.TaxKindStandard)
	s.freezeSnapshot(types.SourceTypeExpense, "exp-1",
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), 4000, 760, types.TaxKindStandard)
	// the period interval is half-open: February 1 belongs to the next period
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-3",
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 99999, 19000, types.TaxKindStandard)

	resp, err := s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-01",
	})
	s.NoError(err)

	s.Equal(types.FilingStatusOpen, resp.FilingStatus)
	s.Equal(int64(15000), resp.SalesNetCents)
	s.Equal(int64(2850), resp.SalesVatCents)
	s.Equal(int64(4000), resp.PurchaseNetCents)
	s.Equal(int64(760), resp.PurchaseVatCents)
	s.Equal(int64(2090), resp.TaxDueCents)
	s.Equal("EUR", resp.Currency)
	s.Equal(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), resp.DueDate)
	s.Empty(resp.Issues)
	s.True(resp.Capabilities.CanSubmit)
	s.False(resp.Capabilities.CanMarkPaid)
	s.NotEmpty(resp.FilingNumber)
}

func (s *TaxFilingServiceSuite) TestCreateFilingDuplicatePeriod() {
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 10000, 1900, types.TaxKindStandard)

	req := dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-01",
	}

	_, err := s.service.CreateFiling(s.GetContext(), req)
	s.NoError(err)

	_, err = s.service.CreateFiling(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *TaxFilingServiceSuite) TestCreateFilingEmptyPeriodWarning() {
	resp, err := s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-03",
	})
	s.NoError(err)

	s.Len(resp.Issues, 1)
	s.Equal(types.IssueTypeEmptyPeriod, resp.Issues[0].Type)
	s.Equal(types.IssueSeverityWarning, resp.Issues[0].Severity)
	// warnings do not gate submission
	s.True(resp.Capabilities.CanSubmit)
	s.Equal(int64(0), resp.TaxDueCents)
}

func (s *TaxFilingServiceSuite) TestCreateFilingPeriodShapeMismatch() {
	_, err := s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-Q1",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeIncomeTax,
		PeriodKey:  "2026-01",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TaxFilingServiceSuite) TestCreateFilingYearMismatch() {
	_, err := s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		Year:       2025,
		PeriodKey:  "2026-01",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TaxFilingServiceSuite) TestCreateIncomeTaxFiling() {
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), 10000, 1900, types.TaxKindStandard)

	resp, err := s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeIncomeTax,
		PeriodKey:  "2026",
	})
	s.NoError(err)

	s.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), resp.PeriodStart)
	s.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), resp.PeriodEnd)
	// annual returns are due July 31 of the following year
	s.Equal(time.Date(2027, 7, 31, 0, 0, 0, 0, time.UTC), resp.DueDate)
	s.Equal(int64(10000), resp.SalesNetCents)
}

func (s *TaxFilingServiceSuite) TestSubmitFiling() {
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 10000, 1900, types.TaxKindStandard)

	created, err := s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-01",
	})
	s.NoError(err)

	submittedAt := time.Date(2026, 2, 5, 9, 30, 0, 0, time.UTC)
	resp, err := s.service.SubmitFiling(s.GetContext(), created.ID, dto.SubmitTaxFilingRequest{
		Method:       "ELSTER",
		SubmissionID: "elster-42",
		SubmittedAt:  lo.ToPtr(submittedAt),
	})
	s.NoError(err)

	s.Equal(types.FilingStatusSubmitted, resp.FilingStatus)
	s.Equal(submittedAt, *resp.SubmittedAt)
	s.Equal("ELSTER", resp.SubmissionMethod)
	s.Equal("elster-42", resp.SubmissionID)
	s.False(resp.Capabilities.CanSubmit)
	s.True(resp.Capabilities.CanMarkPaid)

	// submitting twice is not a legal transition
	_, err = s.service.SubmitFiling(s.GetContext(), created.ID, dto.SubmitTaxFilingRequest{Method: "ELSTER"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *TaxFilingServiceSuite) TestSubmitBlockedByMissingVatID() {
	ctx := s.GetContext()

	s.profile.VatID = ""
	s.NoError(s.params.TaxProfileRepo.Update(ctx, s.profile))

	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 10000, 1900, types.TaxKindStandard)

	created, err := s.service.CreateFiling(ctx, dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-01",
	})
	s.NoError(err)
	s.Len(created.Issues, 1)
	s.Equal(types.IssueTypeMissingVatID, created.Issues[0].Type)
	s.False(created.Capabilities.CanSubmit)

	_, err = s.service.SubmitFiling(ctx, created.ID, dto.SubmitTaxFilingRequest{Method: "ELSTER"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// fixing the profile unblocks: submission re-evaluates readiness
	s.profile.VatID = "DE123456789"
	s.NoError(s.params.TaxProfileRepo.Update(ctx, s.profile))

	resp, err := s.service.SubmitFiling(ctx, created.ID, dto.SubmitTaxFilingRequest{Method: "ELSTER"})
	s.NoError(err)
	s.Equal(types.FilingStatusSubmitted, resp.FilingStatus)
	s.Empty(resp.Issues)
}

func (s *TaxFilingServiceSuite) TestSubmitBlockedByUncategorizedExpenses() {
	ctx := s.GetContext()

	// an expense frozen before categorization has lines without a tax kind
	s.freezeSnapshot(types.SourceTypeExpense, "exp-1",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 4000, 0, "")

	created, err := s.service.CreateFiling(ctx, dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-01",
	})
	s.NoError(err)
	s.Len(created.Issues, 1)
	s.Equal(types.IssueTypeUncategorizedExpenses, created.Issues[0].Type)
	s.Equal(types.IssueSeverityBlocker, created.Issues[0].Severity)

	_, err = s.service.SubmitFiling(ctx, created.ID, dto.SubmitTaxFilingRequest{Method: "ELSTER"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *TaxFilingServiceSuite) TestMarkFilingPaid() {
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 10000, 1900, types.TaxKindStandard)

	created, err := s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-01",
	})
	s.NoError(err)

	// an OPEN filing cannot be settled
	_, err = s.service.MarkFilingPaid(s.GetContext(), created.ID, dto.MarkFilingPaidRequest{Method: "SEPA"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.SubmitFiling(s.GetContext(), created.ID, dto.SubmitTaxFilingRequest{Method: "ELSTER"})
	s.NoError(err)

	resp, err := s.service.MarkFilingPaid(s.GetContext(), created.ID, dto.MarkFilingPaidRequest{Method: "SEPA"})
	s.NoError(err)

	s.Equal(types.FilingStatusPaid, resp.FilingStatus)
	s.NotNil(resp.PaidAt)
	s.Equal("SEPA", resp.PaymentMethod)
	// the payment amount defaults to the computed liability
	s.Equal(int64(1900), *resp.PaymentAmountCents)
	s.False(resp.Capabilities.CanMarkPaid)

	_, err = s.service.MarkFilingPaid(s.GetContext(), created.ID, dto.MarkFilingPaidRequest{Method: "SEPA"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *TaxFilingServiceSuite) TestListFilings() {
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 10000, 1900, types.TaxKindStandard)

	for _, key := range []string{"2026-01", "2026-02"} {
		_, err := s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
			FilingType: types.FilingTypeVat,
			PeriodKey:  key,
		})
		s.NoError(err)
	}

	resp, err := s.service.ListFilings(s.GetContext(), &types.TaxFilingFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		FilingType:  types.FilingTypeVat,
		Year:        2026,
	})
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)
	// newest period first
	s.Equal("2026-02", resp.Items[0].PeriodKey)

	resp, err = s.service.ListFilings(s.GetContext(), &types.TaxFilingFilter{
		QueryFilter: types.NewDefaultQueryFilter(),
		Statuses:    []types.FilingStatus{types.FilingStatusSubmitted},
	})
	s.NoError(err)
	s.Empty(resp.Items)
}

func (s *TaxFilingServiceSuite) TestListFilingItems() {
	s.freezeSnapshot(types.SourceTypeInvoice, "inv-1",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 10000, 1900, types.TaxKindStandard)
	s.freezeSnapshot(types.SourceTypeExpense, "exp-1",
		time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), 4000, 760, types.TaxKindStandard)
	s.freezeSnapshot(types.SourceTypeExpense, "exp-2",
		time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), 2000, 380, types.TaxKindStandard)

	created, err := s.service.CreateFiling(s.GetContext(), dto.CreateTaxFilingRequest{
		FilingType: types.FilingTypeVat,
		PeriodKey:  "2026-01",
	})
	s.NoError(err)

	resp, err := s.service.ListFilingItems(s.GetContext(), created.ID, nil)
	s.NoError(err)
	s.Len(resp.Items, 3)
	// rows come back in document-date order
	s.Equal("inv-1", resp.Items[0].SourceID)
	s.Equal("exp-2", resp.Items[2].SourceID)

	resp, err = s.service.ListFilingItems(s.GetContext(), created.ID, &dto.FilingLineItemsFilter{
		SourceType: types.SourceTypeExpense,
	})
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(int64(760), resp.Items[0].VatCents)

	resp, err = s.service.ListFilingItems(s.GetContext(), created.ID, &dto.FilingLineItemsFilter{
		Page:     2,
		PageSize: 2,
	})
	s.NoError(err)
	s.Len(resp.Items, 1)
	s.Equal(3, resp.Pagination.Total)
}
