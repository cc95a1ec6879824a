package taxfiling

import (
	"time"

	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// Issue is a filing-readiness problem found by blocker evaluation.
// Blocker-severity issues prevent submission; warnings do not.
type Issue struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Severity types.IssueSeverity `json:"severity"`
	Title    string              `json:"title"`
}

// TaxFiling is the statutory submission record for one reporting period,
// progressing OPEN -> SUBMITTED -> PAID. At most one filing may exist per
// (tenant, filing_type, period_key); the store enforces this atomically.
type TaxFiling struct {
	ID           string             `db:"id" json:"id"`
	FilingNumber string             `db:"filing_number" json:"filing_number"`
	FilingType   types.FilingType   `db:"filing_type" json:"filing_type"`
	PeriodKey    string             `db:"period_key" json:"period_key"`
	PeriodStart  time.Time          `db:"period_start" json:"period_start"`
	PeriodEnd    time.Time          `db:"period_end" json:"period_end"`
	DueDate      time.Time          `db:"due_date" json:"due_date"`
	Currency     string             `db:"currency" json:"currency"`
	FilingStatus types.FilingStatus `db:"filing_status" json:"filing_status"`

	// Aggregated totals at creation time, integer cents
	SalesNetCents     int64 `db:"sales_net_cents" json:"sales_net_cents"`
	SalesVatCents     int64 `db:"sales_vat_cents" json:"sales_vat_cents"`
	PurchaseNetCents  int64 `db:"purchase_net_cents" json:"purchase_net_cents"`
	PurchaseVatCents  int64 `db:"purchase_vat_cents" json:"purchase_vat_cents"`
	TaxDueCents       int64 `db:"tax_due_cents" json:"tax_due_cents"`

	// Submission metadata, set on OPEN -> SUBMITTED
	SubmittedAt      *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	SubmissionMethod string     `db:"submission_method" json:"submission_method,omitempty"`
	SubmissionID     string     `db:"submission_id" json:"submission_id,omitempty"`

	// Payment metadata, set on SUBMITTED -> PAID
	PaidAt             *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	PaymentMethod      string     `db:"payment_method" json:"payment_method,omitempty"`
	PaymentAmountCents *int64     `db:"payment_amount_cents" json:"payment_amount_cents,omitempty"`

	// Issues from the last blocker evaluation, persisted alongside the filing
	Issues []*Issue `db:"issues" json:"issues"`

	types.BaseModel
}

// HasBlockers reports whether any stored issue has blocker severity
func (f *TaxFiling) HasBlockers() bool {
	for _, issue := range f.Issues {
		if issue.Severity == types.IssueSeverityBlocker {
			return true
		}
	}
	return false
}

// Capabilities lists the lifecycle operations currently legal on the filing
type Capabilities struct {
	CanSubmit   bool `json:"can_submit"`
	CanMarkPaid bool `json:"can_mark_paid"`
}

func (f *TaxFiling) Capabilities() Capabilities {
	return Capabilities{
		CanSubmit:   f.FilingStatus == types.FilingStatusOpen && !f.HasBlockers(),
		CanMarkPaid: f.FilingStatus == types.FilingStatusSubmitted,
	}
}

// TransitionTo moves the filing to target, failing with an
// invalid-operation error when the transition is not legal from the
// current status.
func (f *TaxFiling) TransitionTo(target types.FilingStatus) error {
	if !f.FilingStatus.CanTransitionTo(target) {
		return ierr.NewError("invalid filing state transition").
			WithHintf("Filing cannot move from %s to %s", f.FilingStatus, target).
			WithReportableDetails(map[string]any{
				"filing_id":      f.ID,
				"current_status": f.FilingStatus.String(),
				"target_status":  target.String(),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	f.FilingStatus = target
	return nil
}
