package taxprofile

import (
	"context"
	"time"

	"github.com/taxmill/taxmill/internal/types"
)

// Repository defines operations for managing tax profiles
type Repository interface {
	Create(ctx context.Context, profile *TaxProfile) error
	Get(ctx context.Context, id string) (*TaxProfile, error)
	List(ctx context.Context, filter *types.TaxProfileFilter) ([]*TaxProfile, error)
	Count(ctx context.Context, filter *types.TaxProfileFilter) (int, error)
	Update(ctx context.Context, profile *TaxProfile) error
	Delete(ctx context.Context, profile *TaxProfile) error

	// ListEffectiveAt returns the tenant's profiles whose validity interval
	// contains at. An empty country matches all configured countries.
	ListEffectiveAt(ctx context.Context, country string, at time.Time) ([]*TaxProfile, error)
}
