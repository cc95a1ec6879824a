package taxprofile

import (
	"time"

	"github.com/taxmill/taxmill/internal/types"
)

// TaxProfile is a tenant's time-ranged tax regime configuration for one
// jurisdiction. At most one profile may be effective for a tenant+country
// at any instant; validity intervals must not overlap.
type TaxProfile struct {
	ID              string                `db:"id" json:"id"`
	Country         string                `db:"country" json:"country"`
	Regime          types.VatRegime       `db:"regime" json:"regime"`
	VatID           string                `db:"vat_id" json:"vat_id,omitempty"`
	Currency        string                `db:"currency" json:"currency"`
	FilingFrequency types.FilingFrequency `db:"filing_frequency" json:"filing_frequency"`
	EffectiveFrom   time.Time             `db:"effective_from" json:"effective_from"`
	EffectiveTo     *time.Time            `db:"effective_to" json:"effective_to,omitempty"`
	types.BaseModel
}

// IsEffectiveAt reports whether the profile's validity interval
// [effective_from, effective_to) contains at. A nil effective_to means
// the profile is still active.
func (p *TaxProfile) IsEffectiveAt(at time.Time) bool {
	if at.Before(p.EffectiveFrom) {
		return false
	}
	if p.EffectiveTo != nil && !at.Before(*p.EffectiveTo) {
		return false
	}
	return true
}

// Overlaps reports whether two validity intervals intersect
func (p *TaxProfile) Overlaps(other *TaxProfile) bool {
	if p.EffectiveTo != nil && !other.EffectiveFrom.Before(*p.EffectiveTo) {
		return false
	}
	if other.EffectiveTo != nil && !p.EffectiveFrom.Before(*other.EffectiveTo) {
		return false
	}
	return true
}
