package taxcode

import (
	"context"

	"github.com/taxmill/taxmill/internal/types"
)

// Repository defines operations for managing tax codes
type Repository interface {
	Create(ctx context.Context, code *TaxCode) error
	Get(ctx context.Context, id string) (*TaxCode, error)
	GetByCode(ctx context.Context, code string) (*TaxCode, error)
	List(ctx context.Context, filter *types.TaxCodeFilter) ([]*TaxCode, error)
	Count(ctx context.Context, filter *types.TaxCodeFilter) (int, error)
	Update(ctx context.Context, code *TaxCode) error
	Delete(ctx context.Context, code *TaxCode) error
}
