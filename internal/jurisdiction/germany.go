package jurisdiction

import (
	"context"
	"time"

	"github.com/taxmill/taxmill/internal/domain/taxcode"
	"github.com/taxmill/taxmill/internal/domain/taxrate"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

const (
	CountryGermany = "DE"

	// GermanDefaultStandardCode is resolved for lines without an explicit
	// tax code
	GermanDefaultStandardCode = "STANDARD"

	// germanFilingDueDay: advance VAT returns are due on the 10th day of
	// the month following the period (§18 UStG)
	germanFilingDueDay = 10
)

// GermanPack resolves German VAT treatment from the tenant's tax code
// catalog and time-versioned rates.
type GermanPack struct {
	taxCodeRepo taxcode.Repository
	taxRateRepo taxrate.Repository
}

func NewGermanPack(taxCodeRepo taxcode.Repository, taxRateRepo taxrate.Repository) *GermanPack {
	return &GermanPack{
		taxCodeRepo: taxCodeRepo,
		taxRateRepo: taxRateRepo,
	}
}

func (p *GermanPack) Country() string {
	return CountryGermany
}

func (p *GermanPack) ResolveLine(ctx context.Context, taxCodeID string, at time.Time) (*LineResolution, error) {
	var code *taxcode.TaxCode
	var err error

	if taxCodeID == "" {
		code, err = p.taxCodeRepo.GetByCode(ctx, GermanDefaultStandardCode)
	} else {
		code, err = p.taxCodeRepo.Get(ctx, taxCodeID)
	}
	if err != nil {
		return nil, err
	}

	if !code.IsActive {
		return nil, ierr.NewError("tax code is not active").
			WithHintf("Tax code %s is inactive and cannot be applied", code.Code).
			WithReportableDetails(map[string]any{
				"tax_code_id": code.ID,
				"code":        code.Code,
			}).
			Mark(ierr.ErrValidation)
	}

	// Zero-rated and exempt treatments carry no rate entries
	if code.Kind == types.TaxKindZero || code.Kind == types.TaxKindExempt {
		return &LineResolution{
			TaxCodeID: code.ID,
			Code:      code.Code,
			Kind:      code.Kind,
			RateBps:   0,
		}, nil
	}

	rate, err := p.taxRateRepo.GetEffectiveAt(ctx, code.ID, at)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("no tax rate effective at date").
				WithHintf("Tax code %s has no rate effective at %s", code.Code, at.Format(time.RFC3339)).
				WithReportableDetails(map[string]any{
					"tax_code_id": code.ID,
					"code":        code.Code,
					"at":          at.Format(time.RFC3339),
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}

	return &LineResolution{
		TaxCodeID: code.ID,
		Code:      code.Code,
		Kind:      code.Kind,
		RateBps:   rate.RateBps,
	}, nil
}

func (p *GermanPack) FilingDueDate(periodEnd time.Time) time.Time {
	// periodEnd is exclusive, i.e. already the first day of the following
	// month, so the due date lands in that month
	return time.Date(periodEnd.Year(), periodEnd.Month(), germanFilingDueDay, 0, 0, 0, 0, time.UTC)
}
