package taxsnapshot

import (
	"time"

	"github.com/taxmill/taxmill/internal/types"
)

// RoundingModeHalfUp is the only rounding mode the engine applies; it is
// recorded on every snapshot so historical breakdowns stay auditable even
// if the engine ever learns other modes.
const RoundingModeHalfUp = "HALF_UP"

// TaxSnapshot is the immutable record of a calculation result attached
// permanently to a source document. It is written exactly once when the
// document transitions to a tax-relevant state and never recalculated:
// later rate changes must not alter historical filings.
type TaxSnapshot struct {
	ID           string           `db:"id" json:"id"`
	SourceType   types.SourceType `db:"source_type" json:"source_type"`
	SourceID     string           `db:"source_id" json:"source_id"`
	Jurisdiction string           `db:"jurisdiction" json:"jurisdiction"`
	Regime       types.VatRegime  `db:"regime" json:"regime"`
	RoundingMode string           `db:"rounding_mode" json:"rounding_mode"`
	Currency     string           `db:"currency" json:"currency"`
	// CalculatedAt is the source document date; period aggregation buckets
	// snapshots by this timestamp.
	CalculatedAt time.Time     `db:"calculated_at" json:"calculated_at"`
	Breakdown    *TaxBreakdown `db:"breakdown" json:"breakdown"`
	types.BaseModel
}
