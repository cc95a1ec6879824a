package taxfiling

import (
	"context"

	"github.com/taxmill/taxmill/internal/types"
)

// Repository defines operations for managing tax filings.
// Create must enforce the (tenant, filing_type, period_key) uniqueness
// atomically (a unique constraint, not check-then-insert) so concurrent
// creators race to exactly one OPEN filing and everyone else observes an
// already-exists conflict.
type Repository interface {
	Create(ctx context.Context, filing *TaxFiling) error
	Get(ctx context.Context, id string) (*TaxFiling, error)
	GetByPeriod(ctx context.Context, filingType types.FilingType, periodKey string) (*TaxFiling, error)
	List(ctx context.Context, filter *types.TaxFilingFilter) ([]*TaxFiling, error)
	Count(ctx context.Context, filter *types.TaxFilingFilter) (int, error)
	Update(ctx context.Context, filing *TaxFiling) error
}
