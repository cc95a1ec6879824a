package taxrate

import (
	"context"
	"time"
)

// Repository defines operations for managing tax rates
type Repository interface {
	Create(ctx context.Context, rate *TaxRate) error
	Get(ctx context.Context, id string) (*TaxRate, error)
	ListByTaxCode(ctx context.Context, taxCodeID string) ([]*TaxRate, error)
	Update(ctx context.Context, rate *TaxRate) error
	Delete(ctx context.Context, rate *TaxRate) error

	// GetEffectiveAt returns the unique rate for the tax code whose validity
	// interval contains at, or a not-found error when no rate is effective.
	GetEffectiveAt(ctx context.Context, taxCodeID string, at time.Time) (*TaxRate, error)
}
