package taxrate

import (
	"time"

	"github.com/taxmill/taxmill/internal/types"
)

// TaxRate is a time-ranged basis-point rate for a tax code. Rates are
// integers (1900 = 19.00%); no floating point is involved anywhere.
// For a given tax code, validity intervals must not overlap.
type TaxRate struct {
	ID            string     `db:"id" json:"id"`
	TaxCodeID     string     `db:"tax_code_id" json:"tax_code_id"`
	RateBps       int64      `db:"rate_bps" json:"rate_bps"`
	EffectiveFrom time.Time  `db:"effective_from" json:"effective_from"`
	EffectiveTo   *time.Time `db:"effective_to" json:"effective_to,omitempty"`
	types.BaseModel
}

// IsEffectiveAt reports whether [effective_from, effective_to) contains at
func (r *TaxRate) IsEffectiveAt(at time.Time) bool {
	if at.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && !at.Before(*r.EffectiveTo) {
		return false
	}
	return true
}

// Overlaps reports whether two validity intervals intersect
func (r *TaxRate) Overlaps(other *TaxRate) bool {
	if r.EffectiveTo != nil && !other.EffectiveFrom.Before(*r.EffectiveTo) {
		return false
	}
	if other.EffectiveTo != nil && !r.EffectiveFrom.Before(*other.EffectiveTo) {
		return false
	}
	return true
}
