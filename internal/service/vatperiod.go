package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/taxmill/taxmill/internal/api/dto"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// VatPeriodService derives the statutory reporting periods of a calendar
// year from the active tax profile and aggregates frozen snapshots into
// period totals. Periods are computed, never stored.
type VatPeriodService interface {
	ListPeriods(ctx context.Context, year int) (*dto.VatPeriodsResponse, error)
	AggregatePeriod(ctx context.Context, periodKey string) (*dto.VatPeriodAggregateResponse, error)
}

type vatPeriodService struct {
	ServiceParams
}

func NewVatPeriodService(params ServiceParams) VatPeriodService {
	return &vatPeriodService{ServiceParams: params}
}

func (s *vatPeriodService) ListPeriods(ctx context.Context, year int) (*dto.VatPeriodsResponse, error) {
	if year < 1 {
		return nil, ierr.NewError("year is required").
			WithHint("A valid calendar year is required").
			Mark(ierr.ErrValidation)
	}

	// the profile effective at the end of the year decides the frequency
	yearEnd := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	profileService := NewTaxProfileService(s.ServiceParams)
	profile, err := profileService.ResolveActiveProfile(ctx, "", yearEnd)
	if err != nil {
		return nil, err
	}

	pack, err := s.Jurisdictions.GetPack(profile.Country)
	if err != nil {
		return nil, err
	}

	periods := make([]*dto.VatPeriodResponse, 0, profile.FilingFrequency.PeriodsPerYear())

	if profile.FilingFrequency == types.FilingFrequencyMonthly {
		for month := time.January; month <= time.December; month++ {
			key := types.MonthPeriodKey(year, month)
			start, end, err := types.ParsePeriodKey(key)
			if err != nil {
				return nil, err
			}
			periods = append(periods, &dto.VatPeriodResponse{
				PeriodKey: key,
				From:      start,
				To:        end,
				DueDate:   pack.FilingDueDate(end),
				Label:     fmt.Sprintf("%s %d", month, year),
			})
		}
	} else {
		for quarter := 1; quarter <= 4; quarter++ {
			key := types.QuarterPeriodKey(year, quarter)
			start, end, err := types.ParsePeriodKey(key)
			if err != nil {
				return nil, err
			}
			periods = append(periods, &dto.VatPeriodResponse{
				PeriodKey: key,
				From:      start,
				To:        end,
				DueDate:   pack.FilingDueDate(end),
				Label:     fmt.Sprintf("Q%d %d", quarter, year),
			})
		}
	}

	// attach already-created filings so clients can render period state
	for _, period := range periods {
		filing, err := s.TaxFilingRepo.GetByPeriod(ctx, types.FilingTypeVat, period.PeriodKey)
		if err != nil {
			if ierr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		period.Filing = dto.NewTaxFilingResponse(filing)
	}

	return &dto.VatPeriodsResponse{
		Year:      year,
		Frequency: profile.FilingFrequency,
		Periods:   periods,
	}, nil
}

func (s *vatPeriodService) AggregatePeriod(ctx context.Context, periodKey string) (*dto.VatPeriodAggregateResponse, error) {
	start, end, err := types.ParsePeriodKey(periodKey)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.TaxSnapshotRepo.List(ctx, &types.TaxSnapshotFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		TimeRangeFilter: &types.TimeRangeFilter{
			StartTime: lo.ToPtr(start),
			EndTime:   lo.ToPtr(end),
		},
	})
	if err != nil {
		return nil, err
	}

	response := &dto.VatPeriodAggregateResponse{
		PeriodKey: periodKey,
		Rows:      make([]*dto.VatPeriodAggregateRow, 0, len(snapshots)),
	}

	for _, snapshot := range snapshots {
		row := &dto.VatPeriodAggregateRow{
			SnapshotID:   snapshot.ID,
			SourceType:   snapshot.SourceType,
			SourceID:     snapshot.SourceID,
			DocumentDate: snapshot.CalculatedAt,
			NetCents:     snapshot.Breakdown.SubtotalAmountCents,
			VatCents:     snapshot.Breakdown.TaxTotalAmountCents,
			TotalCents:   snapshot.Breakdown.TotalAmountCents,
		}
		response.Rows = append(response.Rows, row)

		switch snapshot.SourceType {
		case types.SourceTypeInvoice:
			response.SalesNetCents += row.NetCents
			response.SalesVatCents += row.VatCents
		case types.SourceTypeExpense:
			response.PurchaseNetCents += row.NetCents
			response.PurchaseVatCents += row.VatCents
		}
	}

	// negative tax due means a refundable surplus of input VAT
	response.TaxDueCents = response.SalesVatCents - response.PurchaseVatCents

	return response, nil
}
