package dto

import (
	"time"

	"github.com/taxmill/taxmill/internal/types"
)

// VatPeriodResponse is one statutory reporting period of a calendar year.
// Periods are derived, not stored; From is inclusive and To exclusive.
type VatPeriodResponse struct {
	PeriodKey string    `json:"period_key"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	DueDate   time.Time `json:"due_date"`
	Label     string    `json:"label"`

	// Filing is the filing already created for this period, if any
	Filing *TaxFilingResponse `json:"filing,omitempty"`
}

// VatPeriodsResponse lists the derived periods for a year
type VatPeriodsResponse struct {
	Year      int                   `json:"year"`
	Frequency types.FilingFrequency `json:"frequency"`
	Periods   []*VatPeriodResponse  `json:"periods"`
}

// VatPeriodAggregateRow is one snapshot's contribution to a period
type VatPeriodAggregateRow struct {
	SnapshotID   string           `json:"snapshot_id"`
	SourceType   types.SourceType `json:"source_type"`
	SourceID     string           `json:"source_id"`
	DocumentDate time.Time        `json:"document_date"`
	NetCents     int64            `json:"net_cents"`
	VatCents     int64            `json:"vat_cents"`
	TotalCents   int64            `json:"total_cents"`
}

// VatPeriodAggregateResponse sums the snapshots of one period.
// Invoices contribute sales (output) VAT, expenses purchase (input) VAT;
// tax_due_cents = sales_vat - purchase_vat and may be negative
// (refundable).
type VatPeriodAggregateResponse struct {
	PeriodKey        string                   `json:"period_key"`
	SalesNetCents    int64                    `json:"sales_net_cents"`
	SalesVatCents    int64                    `json:"sales_vat_cents"`
	PurchaseNetCents int64                    `json:"purchase_net_cents"`
	PurchaseVatCents int64                    `json:"purchase_vat_cents"`
	TaxDueCents      int64                    `json:"tax_due_cents"`
	Rows             []*VatPeriodAggregateRow `json:"rows"`
}
