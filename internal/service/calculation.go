package service

import (
	"context"

	"github.com/taxmill/taxmill/internal/api/dto"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	"github.com/taxmill/taxmill/internal/jurisdiction"
	"github.com/taxmill/taxmill/internal/types"
)

// TaxCalculationService turns a document's normalized lines into a tax
// breakdown under the rules in effect on the document date. Calculation
// is pure: it never persists anything, freezing is a separate concern.
type TaxCalculationService interface {
	Calculate(ctx context.Context, req dto.CalculateTaxRequest) (*dto.TaxBreakdownResponse, error)
}

type taxCalculationService struct {
	ServiceParams
}

func NewTaxCalculationService(params ServiceParams) TaxCalculationService {
	return &taxCalculationService{ServiceParams: params}
}

func (s *taxCalculationService) Calculate(ctx context.Context, req dto.CalculateTaxRequest) (*dto.TaxBreakdownResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var response *dto.TaxBreakdownResponse

	// rule resolution and line math run in one transaction so a
	// concurrent rate change cannot split a document across rule versions
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		profileService := NewTaxProfileService(s.ServiceParams)
		profile, err := profileService.ResolveActiveProfile(ctx, req.Jurisdiction, req.DocumentDate)
		if err != nil {
			return err
		}

		pack, err := s.Jurisdictions.GetPack(profile.Country)
		if err != nil {
			return err
		}

		breakdown, err := s.buildBreakdown(ctx, pack, profile, req)
		if err != nil {
			return err
		}

		response = &dto.TaxBreakdownResponse{
			TaxBreakdown: breakdown,
			Jurisdiction: profile.Country,
			Regime:       profile.Regime.String(),
			Currency:     req.Currency,
			RoundingMode: taxsnapshot.RoundingModeHalfUp,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (s *taxCalculationService) buildBreakdown(
	ctx context.Context,
	pack jurisdiction.Pack,
	profile *taxprofile.TaxProfile,
	req dto.CalculateTaxRequest,
) (*taxsnapshot.TaxBreakdown, error) {
	smallBusiness := profile.Regime == types.VatRegimeSmallBusiness

	breakdown := &taxsnapshot.TaxBreakdown{
		Lines:        make([]*taxsnapshot.TaxLineResult, 0, len(req.Lines)),
		TotalsByKind: make(map[types.TaxKind]*taxsnapshot.KindTotal),
		Flags: taxsnapshot.BreakdownFlags{
			IsSmallBusinessNoVatCharged: smallBusiness,
		},
		AppliedAt: req.DocumentDate.UTC(),
	}

	for _, input := range req.Lines {
		resolution, err := s.resolveLine(ctx, pack, smallBusiness, input.TaxCodeID, req)
		if err != nil {
			return nil, err
		}

		lineID := input.ID
		if lineID == "" {
			lineID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LINE_ITEM)
		}

		// tax is rounded half-up per line; totals are sums of the rounded
		// line amounts, never re-rounded
		tax := types.ApplyBpsToCents(input.NetAmountCents, resolution.RateBps)

		line := &taxsnapshot.TaxLineResult{
			LineID:           lineID,
			Kind:             resolution.Kind,
			RateBps:          resolution.RateBps,
			NetAmountCents:   input.NetAmountCents,
			TaxAmountCents:   tax,
			GrossAmountCents: input.NetAmountCents + tax,
		}

		breakdown.Lines = append(breakdown.Lines, line)
		breakdown.SubtotalAmountCents += line.NetAmountCents
		breakdown.TaxTotalAmountCents += line.TaxAmountCents

		total, ok := breakdown.TotalsByKind[line.Kind]
		if !ok {
			// the kind total's rate is display-only, taken from the kind's
			// first line
			total = &taxsnapshot.KindTotal{Kind: line.Kind, RateBps: line.RateBps}
			breakdown.TotalsByKind[line.Kind] = total
		}
		total.NetAmountCents += line.NetAmountCents
		total.TaxAmountCents += line.TaxAmountCents
		total.GrossAmountCents += line.GrossAmountCents
	}

	breakdown.TotalAmountCents = breakdown.SubtotalAmountCents + breakdown.TaxTotalAmountCents

	return breakdown, nil
}

// resolveLine resolves one line's tax treatment. A small-business
// profile overrides the pack: no VAT is charged regardless of the tax
// code on the line.
func (s *taxCalculationService) resolveLine(
	ctx context.Context,
	pack jurisdiction.Pack,
	smallBusiness bool,
	taxCodeID string,
	req dto.CalculateTaxRequest,
) (*jurisdiction.LineResolution, error) {
	if smallBusiness {
		return &jurisdiction.LineResolution{
			TaxCodeID: taxCodeID,
			Kind:      types.TaxKindExempt,
			RateBps:   0,
		}, nil
	}

	return pack.ResolveLine(ctx, taxCodeID, req.DocumentDate)
}
