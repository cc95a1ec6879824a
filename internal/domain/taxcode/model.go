package taxcode

import (
	"github.com/taxmill/taxmill/internal/types"
)

// TaxCode is a tenant-scoped catalog entry categorizing tax treatment.
// Codes have stable identity; time-versioned rates reference them.
type TaxCode struct {
	ID          string        `db:"id" json:"id"`
	Code        string        `db:"code" json:"code"`
	Kind        types.TaxKind `db:"kind" json:"kind"`
	Label       string        `db:"label" json:"label"`
	Description string        `db:"description" json:"description,omitempty"`
	IsActive    bool          `db:"is_active" json:"is_active"`
	types.BaseModel
}
