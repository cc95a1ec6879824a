package jurisdiction

import (
	"context"
	"time"

	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

// LineResolution is the tax treatment a pack resolved for one line at a
// point in time.
type LineResolution struct {
	TaxCodeID string
	Code      string
	Kind      types.TaxKind
	RateBps   int64
}

// Pack encapsulates one country's tax-code and tax-rate rules. Packs are
// pure strategy objects with no shared mutable state; the tenant scope
// comes from the context.
type Pack interface {
	// Country returns the ISO 3166-1 alpha-2 country code the pack serves
	Country() string

	// ResolveLine resolves the tax kind and effective basis-point rate for
	// a line at the given date. An empty taxCodeID resolves the pack's
	// default STANDARD code.
	ResolveLine(ctx context.Context, taxCodeID string, at time.Time) (*LineResolution, error)

	// FilingDueDate returns the statutory due date for a period ending at
	// periodEnd (exclusive, i.e. the first instant after the period).
	FilingDueDate(periodEnd time.Time) time.Time
}

// Registry maps country codes to pack instances
type Registry struct {
	packs map[string]Pack
}

// NewRegistry builds a registry from the given packs
func NewRegistry(packs ...Pack) *Registry {
	r := &Registry{packs: make(map[string]Pack)}
	for _, p := range packs {
		r.packs[p.Country()] = p
	}
	return r
}

// GetPack returns the pack for a country, failing when the jurisdiction
// is not supported.
func (r *Registry) GetPack(country string) (Pack, error) {
	pack, ok := r.packs[country]
	if !ok {
		return nil, ierr.NewError("jurisdiction not supported").
			WithHintf("No tax rules are available for country %q", country).
			WithReportableDetails(map[string]any{
				"country": country,
			}).
			Mark(ierr.ErrValidation)
	}
	return pack, nil
}

// Countries lists the supported country codes
func (r *Registry) Countries() []string {
	countries := make([]string, 0, len(r.packs))
	for c := range r.packs {
		countries = append(countries, c)
	}
	return countries
}
