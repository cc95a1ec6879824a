package dto

import (
	"time"

	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	ierr "github.com/taxmill/taxmill/internal/errors"
)

// TaxLineInput is one normalized line of a commercial document. Net
// amounts are precomputed integer cents; qty is informational and does
// not affect the tax math.
type TaxLineInput struct {
	// id identifies the line within the document; generated when empty
	ID string `json:"id,omitempty"`

	// description is an optional human-readable line label
	Description string `json:"description,omitempty"`

	// qty is the line quantity (informational)
	Qty int64 `json:"qty,omitempty"`

	// net_amount_cents is the line's net amount in integer minor units
	NetAmountCents int64 `json:"net_amount_cents"`

	// tax_code_id selects the tax code; the jurisdiction's STANDARD code
	// is used when absent
	TaxCodeID string `json:"tax_code_id,omitempty"`
}

// CalculateTaxRequest asks the engine for a tax breakdown of a document's
// lines under the rules in effect on the document date.
type CalculateTaxRequest struct {
	// jurisdiction is an ISO country code; defaults to the resolved
	// profile's country when empty
	Jurisdiction string `json:"jurisdiction,omitempty"`

	// document_date is the instant the rules are resolved at
	DocumentDate time.Time `json:"document_date" binding:"required"`

	// currency of all line amounts (no conversion is performed)
	Currency string `json:"currency" binding:"required"`

	Lines []TaxLineInput `json:"lines" binding:"required"`
}

func (r CalculateTaxRequest) Validate() error {
	if r.DocumentDate.IsZero() {
		return ierr.NewError("document_date is required").
			WithHint("Document date is required").
			Mark(ierr.ErrValidation)
	}

	if r.Currency == "" {
		return ierr.NewError("currency is required").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}

	if len(r.Lines) == 0 {
		return ierr.NewError("at least one line is required").
			WithHint("At least one line is required").
			Mark(ierr.ErrValidation)
	}

	for i, line := range r.Lines {
		if line.Qty < 0 {
			return ierr.NewError("line qty cannot be negative").
				WithHint("Line quantity cannot be negative").
				WithReportableDetails(map[string]any{
					"line_index": i,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// TaxBreakdownResponse carries a calculation result plus the resolution
// context it was produced under.
type TaxBreakdownResponse struct {
	*taxsnapshot.TaxBreakdown `json:",inline"`

	Jurisdiction string `json:"jurisdiction"`
	Regime       string `json:"regime"`
	Currency     string `json:"currency"`
	RoundingMode string `json:"rounding_mode"`
}
