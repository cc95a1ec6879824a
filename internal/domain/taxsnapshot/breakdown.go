package taxsnapshot

import (
	"time"

	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// TaxLineResult is the resolved tax computation for one input line.
// Each line carries its own rate; two lines of the same kind may in theory
// carry different rates when a calculation straddles a rate-change boundary.
type TaxLineResult struct {
	LineID           string        `json:"line_id"`
	Kind             types.TaxKind `json:"kind"`
	RateBps          int64         `json:"rate_bps"`
	NetAmountCents   int64         `json:"net_amount_cents"`
	TaxAmountCents   int64         `json:"tax_amount_cents"`
	GrossAmountCents int64         `json:"gross_amount_cents"`
}

// KindTotal aggregates line results per tax kind. RateBps is the rate of
// the first line in the kind and is display-only; the per-line rate is
// authoritative.
type KindTotal struct {
	Kind             types.TaxKind `json:"kind"`
	RateBps          int64         `json:"rate_bps"`
	NetAmountCents   int64         `json:"net_amount_cents"`
	TaxAmountCents   int64         `json:"tax_amount_cents"`
	GrossAmountCents int64         `json:"gross_amount_cents"`
}

// BreakdownFlags carries calculation-level markers
type BreakdownFlags struct {
	// IsSmallBusinessNoVatCharged is set when the resolved profile's regime
	// is a no-VAT small-business scheme and every line resolved to rate 0
	IsSmallBusinessNoVatCharged bool `json:"is_small_business_no_vat_charged"`
}

// TaxBreakdown is the output of a tax calculation and the payload frozen
// into a snapshot. All amounts are integer minor-unit cents in one currency.
type TaxBreakdown struct {
	SubtotalAmountCents int64                            `json:"subtotal_amount_cents"`
	TaxTotalAmountCents int64                            `json:"tax_total_amount_cents"`
	TotalAmountCents    int64                            `json:"total_amount_cents"`
	Lines               []*TaxLineResult                 `json:"lines"`
	TotalsByKind        map[types.TaxKind]*KindTotal     `json:"totals_by_kind"`
	Flags               BreakdownFlags                   `json:"flags"`
	AppliedAt           time.Time                        `json:"applied_at"`
}

// Validate checks the breakdown's sum invariants:
// total = subtotal + taxTotal, taxTotal = sum of line taxes, and each
// kind total equals the sum of its lines.
func (b *TaxBreakdown) Validate() error {
	var subtotal, taxTotal int64
	taxByKind := make(map[types.TaxKind]int64)

	for _, line := range b.Lines {
		if line.GrossAmountCents != line.NetAmountCents+line.TaxAmountCents {
			return ierr.NewError("line gross amount does not equal net plus tax").
				WithHint("Tax breakdown is internally inconsistent").
				WithReportableDetails(map[string]any{
					"line_id": line.LineID,
				}).
				Mark(ierr.ErrValidation)
		}
		subtotal += line.NetAmountCents
		taxTotal += line.TaxAmountCents
		taxByKind[line.Kind] += line.TaxAmountCents
	}

	if b.SubtotalAmountCents != subtotal || b.TaxTotalAmountCents != taxTotal {
		return ierr.NewError("breakdown totals do not match line sums").
			WithHint("Tax breakdown is internally inconsistent").
			Mark(ierr.ErrValidation)
	}

	if b.TotalAmountCents != b.SubtotalAmountCents+b.TaxTotalAmountCents {
		return ierr.NewError("total amount does not equal subtotal plus tax total").
			WithHint("Tax breakdown is internally inconsistent").
			Mark(ierr.ErrValidation)
	}

	for kind, total := range b.TotalsByKind {
		if total.TaxAmountCents != taxByKind[kind] {
			return ierr.NewError("kind total does not match line sums").
				WithHint("Tax breakdown is internally inconsistent").
				WithReportableDetails(map[string]any{
					"kind": kind.String(),
				}).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}
