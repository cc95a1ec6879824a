package taxrate

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsEffectiveAt(t *testing.T) {
	bounded := &TaxRate{
		EffectiveFrom: date(2020, 7, 1),
		EffectiveTo:   lo.ToPtr(date(2021, 1, 1)),
	}

	assert.False(t, bounded.IsEffectiveAt(date(2020, 6, 30)))
	// effective_from is inclusive
	assert.True(t, bounded.IsEffectiveAt(date(2020, 7, 1)))
	assert.True(t, bounded.IsEffectiveAt(date(2020, 12, 31)))
	// effective_to is exclusive
	assert.False(t, bounded.IsEffectiveAt(date(2021, 1, 1)))

	open := &TaxRate{EffectiveFrom: date(2021, 1, 1)}
	assert.True(t, open.IsEffectiveAt(date(2021, 1, 1)))
	assert.True(t, open.IsEffectiveAt(date(2099, 1, 1)))
}

func TestOverlaps(t *testing.T) {
	first := &TaxRate{
		EffectiveFrom: date(2020, 7, 1),
		EffectiveTo:   lo.ToPtr(date(2021, 1, 1)),
	}

	// adjacent ranges share a boundary instant but not an interval
	successor := &TaxRate{EffectiveFrom: date(2021, 1, 1)}
	assert.False(t, first.Overlaps(successor))
	assert.False(t, successor.Overlaps(first))

	// an open-ended range overlaps everything after its start
	within := &TaxRate{
		EffectiveFrom: date(2022, 1, 1),
		EffectiveTo:   lo.ToPtr(date(2023, 1, 1)),
	}
	assert.True(t, successor.Overlaps(within))
	assert.True(t, within.Overlaps(successor))

	// partial intersection
	straddling := &TaxRate{
		EffectiveFrom: date(2020, 10, 1),
		EffectiveTo:   lo.ToPtr(date(2021, 4, 1)),
	}
	assert.True(t, first.Overlaps(straddling))

	// disjoint bounded ranges
	earlier := &TaxRate{
		EffectiveFrom: date(2019, 1, 1),
		EffectiveTo:   lo.ToPtr(date(2020, 7, 1)),
	}
	assert.False(t, first.Overlaps(earlier))
}
