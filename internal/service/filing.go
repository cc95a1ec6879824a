package service

import (
	"context"
	"time"

	"github.com/taxmill/taxmill/internal/api/dto"
	"github.com/taxmill/taxmill/internal/domain/taxfiling"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// incomeTaxDueMonth/Day: annual income tax returns are due July 31 of
// the following year (§149 AO)
const (
	incomeTaxDueMonth = time.July
	incomeTaxDueDay   = 31
)

// TaxFilingService manages the filing lifecycle: creation with period
// aggregation and readiness checks, submission and settlement.
type TaxFilingService interface {
	CreateFiling(ctx context.Context, req dto.CreateTaxFilingRequest) (*dto.TaxFilingResponse, error)
	GetFiling(ctx context.Context, id string) (*dto.TaxFilingResponse, error)
	ListFilings(ctx context.Context, filter *types.TaxFilingFilter) (*dto.ListTaxFilingsResponse, error)
	SubmitFiling(ctx context.Context, id string, req dto.SubmitTaxFilingRequest) (*dto.TaxFilingResponse, error)
	MarkFilingPaid(ctx context.Context, id string, req dto.MarkFilingPaidRequest) (*dto.TaxFilingResponse, error)
	ListFilingItems(ctx context.Context, id string, filter *dto.FilingLineItemsFilter) (*dto.ListFilingItemsResponse, error)
}

type taxFilingService struct {
	ServiceParams
}

func NewTaxFilingService(params ServiceParams) TaxFilingService {
	return &taxFilingService{ServiceParams: params}
}

func (s *taxFilingService) CreateFiling(ctx context.Context, req dto.CreateTaxFilingRequest) (*dto.TaxFilingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start, end, err := types.ParsePeriodKey(req.PeriodKey)
	if err != nil {
		return nil, err
	}

	var filing *taxfiling.TaxFiling

	// aggregation and insert share a transaction; the unique period index
	// settles concurrent creation races
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		profileService := NewTaxProfileService(s.ServiceParams)
		profile, err := profileService.ResolveActiveProfile(ctx, "", end.Add(-time.Nanosecond))
		if err != nil {
			return err
		}

		if err := validatePeriodShape(req.FilingType, req.PeriodKey, profile); err != nil {
			return err
		}

		aggregate, err := NewVatPeriodService(s.ServiceParams).AggregatePeriod(ctx, req.PeriodKey)
		if err != nil {
			return err
		}

		dueDate, err := s.filingDueDate(req.FilingType, profile.Country, end)
		if err != nil {
			return err
		}

		filing = &taxfiling.TaxFiling{
			ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_FILING),
			FilingNumber:     types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_FILING),
			FilingType:       req.FilingType,
			PeriodKey:        req.PeriodKey,
			PeriodStart:      start,
			PeriodEnd:        end,
			DueDate:          dueDate,
			Currency:         profile.Currency,
			FilingStatus:     types.FilingStatusOpen,
			SalesNetCents:    aggregate.SalesNetCents,
			SalesVatCents:    aggregate.SalesVatCents,
			PurchaseNetCents: aggregate.PurchaseNetCents,
			PurchaseVatCents: aggregate.PurchaseVatCents,
			TaxDueCents:      aggregate.TaxDueCents,
			BaseModel:        types.GetDefaultBaseModel(ctx),
		}
		filing.Issues = s.evaluateIssues(ctx, filing, profile)

		return s.TaxFilingRepo.Create(ctx, filing)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created tax filing",
		"filing_id", filing.ID,
		"filing_type", filing.FilingType,
		"period_key", filing.PeriodKey,
		"tax_due_cents", filing.TaxDueCents)

	return dto.NewTaxFilingResponse(filing), nil
}

// validatePeriodShape checks that the period key granularity matches the
// filing type and the profile's statutory frequency
func validatePeriodShape(filingType types.FilingType, periodKey string, profile *taxprofile.TaxProfile) error {
	annual := len(periodKey) == 4
	quarterly := len(periodKey) == 7 && periodKey[5] == 'Q'
	monthly := len(periodKey) == 7 && !quarterly

	switch filingType {
	case types.FilingTypeIncomeTax:
		if !annual {
			return ierr.NewError("income tax filings cover a full year").
				WithHintf("Period key %s must look like YYYY for an income tax filing", periodKey).
				Mark(ierr.ErrValidation)
		}
	case types.FilingTypeVat:
		if profile.FilingFrequency == types.FilingFrequencyMonthly && !monthly {
			return ierr.NewError("period key does not match filing frequency").
				WithHintf("Profile files monthly; period key %s must look like YYYY-MM", periodKey).
				Mark(ierr.ErrValidation)
		}
		if profile.FilingFrequency == types.FilingFrequencyQuarterly && !quarterly {
			return ierr.NewError("period key does not match filing frequency").
				WithHintf("Profile files quarterly; period key %s must look like YYYY-Qn", periodKey).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

func (s *taxFilingService) filingDueDate(filingType types.FilingType, country string, periodEnd time.Time) (time.Time, error) {
	if filingType == types.FilingTypeIncomeTax {
		return time.Date(periodEnd.Year(), incomeTaxDueMonth, incomeTaxDueDay, 0, 0, 0, 0, time.UTC), nil
	}

	pack, err := s.Jurisdictions.GetPack(country)
	if err != nil {
		return time.Time{}, err
	}
	return pack.FilingDueDate(periodEnd), nil
}

// evaluateIssues runs the readiness checks for a filing. Blockers gate
// submission, warnings are informational.
func (s *taxFilingService) evaluateIssues(ctx context.Context, filing *taxfiling.TaxFiling, profile *taxprofile.TaxProfile) []*taxfiling.Issue {
	issues := []*taxfiling.Issue{}

	newIssue := func(issueType string, severity types.IssueSeverity, title string) *taxfiling.Issue {
		return &taxfiling.Issue{
			ID:       types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ISSUE),
			Type:     issueType,
			Severity: severity,
			Title:    title,
		}
	}

	if filing.FilingType == types.FilingTypeVat &&
		profile.Regime == types.VatRegimeRegular && profile.VatID == "" {
		issues = append(issues, newIssue(types.IssueTypeMissingVatID,
			types.IssueSeverityBlocker, "The tax profile has no VAT ID"))
	}

	snapshots, err := s.TaxSnapshotRepo.List(ctx, &types.TaxSnapshotFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		TimeRangeFilter: &types.TimeRangeFilter{
			StartTime: &filing.PeriodStart,
			EndTime:   &filing.PeriodEnd,
		},
	})
	if err != nil {
		s.Logger.Errorw("failed to list snapshots for issue evaluation",
			"filing_id", filing.ID, "error", err)
		return issues
	}

	if len(snapshots) == 0 {
		issues = append(issues, newIssue(types.IssueTypeEmptyPeriod,
			types.IssueSeverityWarning, "No documents fall into this period"))
		return issues
	}

	// expense snapshots frozen before categorization carry lines without a
	// tax kind
	for _, snapshot := range snapshots {
		if snapshot.SourceType != types.SourceTypeExpense {
			continue
		}
		for _, line := range snapshot.Breakdown.Lines {
			if line.Kind == "" {
				issues = append(issues, newIssue(types.IssueTypeUncategorizedExpenses,
					types.IssueSeverityBlocker, "The period contains uncategorized expenses"))
				return issues
			}
		}
	}

	return issues
}

func (s *taxFilingService) GetFiling(ctx context.Context, id string) (*dto.TaxFilingResponse, error) {
	if id == "" {
		return nil, ierr.NewError("tax_filing_id is required").
			WithHint("Tax filing ID is required").
			Mark(ierr.ErrValidation)
	}

	filing, err := s.TaxFilingRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewTaxFilingResponse(filing), nil
}

func (s *taxFilingService) ListFilings(ctx context.Context, filter *types.TaxFilingFilter) (*dto.ListTaxFilingsResponse, error) {
	if filter == nil {
		filter = types.NewDefaultTaxFilingFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	filings, err := s.TaxFilingRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.TaxFilingRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TaxFilingResponse, len(filings))
	for i, f := range filings {
		items[i] = dto.NewTaxFilingResponse(f)
	}

	pagination := types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset())

	return &dto.ListTaxFilingsResponse{
		Items:      items,
		Pagination: &pagination,
	}, nil
}

// SubmitFiling hands an OPEN filing to the authority. Readiness is
// re-evaluated first so issues fixed since creation (a VAT ID added to
// the profile, expenses categorized) no longer block.
func (s *taxFilingService) SubmitFiling(ctx context.Context, id string, req dto.SubmitTaxFilingRequest) (*dto.TaxFilingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var filing *taxfiling.TaxFiling

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		filing, err = s.TaxFilingRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if filing.FilingStatus == types.FilingStatusOpen {
			profileService := NewTaxProfileService(s.ServiceParams)
			profile, err := profileService.ResolveActiveProfile(ctx, "", filing.PeriodEnd.Add(-time.Nanosecond))
			if err != nil {
				return err
			}
			filing.Issues = s.evaluateIssues(ctx, filing, profile)
		}

		if filing.HasBlockers() {
			return ierr.NewError("filing submission is blocked").
				WithHint("The filing has blocking issues that must be resolved first").
				WithReportableDetails(map[string]any{
					"filing_id": filing.ID,
					"issues":    filing.Issues,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if err := filing.TransitionTo(types.FilingStatusSubmitted); err != nil {
			return err
		}

		submittedAt := time.Now().UTC()
		if req.SubmittedAt != nil {
			submittedAt = req.SubmittedAt.UTC()
		}
		filing.SubmittedAt = &submittedAt
		filing.SubmissionMethod = req.Method
		filing.SubmissionID = req.SubmissionID

		return s.TaxFilingRepo.Update(ctx, filing)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("submitted tax filing",
		"filing_id", filing.ID,
		"period_key", filing.PeriodKey,
		"method", req.Method)

	return dto.NewTaxFilingResponse(filing), nil
}

func (s *taxFilingService) MarkFilingPaid(ctx context.Context, id string, req dto.MarkFilingPaidRequest) (*dto.TaxFilingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var filing *taxfiling.TaxFiling

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		filing, err = s.TaxFilingRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if err := filing.TransitionTo(types.FilingStatusPaid); err != nil {
			return err
		}

		paidAt := time.Now().UTC()
		if req.PaidAt != nil {
			paidAt = req.PaidAt.UTC()
		}
		amount := req.AmountCents
		if amount == 0 {
			amount = filing.TaxDueCents
		}
		filing.PaidAt = &paidAt
		filing.PaymentMethod = req.Method
		filing.PaymentAmountCents = &amount

		return s.TaxFilingRepo.Update(ctx, filing)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("marked tax filing paid",
		"filing_id", filing.ID,
		"period_key", filing.PeriodKey,
		"amount_cents", *filing.PaymentAmountCents)

	return dto.NewTaxFilingResponse(filing), nil
}

// ListFilingItems returns the snapshot rows backing a filing's totals
func (s *taxFilingService) ListFilingItems(ctx context.Context, id string, filter *dto.FilingLineItemsFilter) (*dto.ListFilingItemsResponse, error) {
	filing, err := s.TaxFilingRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if filter == nil {
		filter = &dto.FilingLineItemsFilter{}
	}

	snapshotFilter := &types.TaxSnapshotFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		TimeRangeFilter: &types.TimeRangeFilter{
			StartTime: &filing.PeriodStart,
			EndTime:   &filing.PeriodEnd,
		},
	}

	if filter.SourceType != "" {
		if err := filter.SourceType.Validate(); err != nil {
			return nil, err
		}
		snapshotFilter.SourceTypes = []types.SourceType{filter.SourceType}
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		snapshotFilter.QueryFilter = &types.QueryFilter{}
		limit := filter.PageSize
		offset := (page - 1) * filter.PageSize
		snapshotFilter.Limit = &limit
		snapshotFilter.Offset = &offset
	}

	snapshots, err := s.TaxSnapshotRepo.List(ctx, snapshotFilter)
	if err != nil {
		return nil, err
	}

	count, err := s.TaxSnapshotRepo.Count(ctx, snapshotFilter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.VatPeriodAggregateRow, len(snapshots))
	for i, snapshot := range snapshots {
		items[i] = &dto.VatPeriodAggregateRow{
			SnapshotID:   snapshot.ID,
			SourceType:   snapshot.SourceType,
			SourceID:     snapshot.SourceID,
			DocumentDate: snapshot.CalculatedAt,
			NetCents:     snapshot.Breakdown.SubtotalAmountCents,
			VatCents:     snapshot.Breakdown.TaxTotalAmountCents,
			TotalCents:   snapshot.Breakdown.TotalAmountCents,
		}
	}

	pagination := types.NewPaginationResponse(count, snapshotFilter.GetLimit(), snapshotFilter.GetOffset())

	return &dto.ListFilingItemsResponse{
		Items:      items,
		Pagination: &pagination,
	}, nil
}
