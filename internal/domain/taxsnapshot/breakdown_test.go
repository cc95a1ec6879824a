package taxsnapshot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxmill/taxmill/internal/types"
)

func validBreakdown() *TaxBreakdown {
	return &TaxBreakdown{
		SubtotalAmountCents: 12000,
		TaxTotalAmountCents: 2040,
		TotalAmountCents:    14040,
		Lines: []*TaxLineResult{
			{
				LineID:           "line-1",
				Kind:             types.TaxKindStandard,
				RateBps:          1900,
				NetAmountCents:   10000,
				TaxAmountCents:   1900,
				GrossAmountCents: 11900,
			},
			{
				LineID:           "line-2",
				Kind:             types.TaxKindReduced,
				RateBps:          700,
				NetAmountCents:   2000,
				TaxAmountCents:   140,
				GrossAmountCents: 2140,
			},
		},
		TotalsByKind: map[types.TaxKind]*KindTotal{
			types.TaxKindStandard: {
				Kind:             types.TaxKindStandard,
				RateBps:          1900,
				NetAmountCents:   10000,
				TaxAmountCents:   1900,
				GrossAmountCents: 11900,
			},
			types.TaxKindReduced: {
				Kind:             types.TaxKindReduced,
				RateBps:          700,
				NetAmountCents:   2000,
				TaxAmountCents:   140,
				GrossAmountCents: 2140,
			},
		},
		AppliedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestBreakdownValidate(t *testing.T) {
	assert.NoError(t, validBreakdown().Validate())
}

func TestBreakdownValidateLineGrossMismatch(t *testing.T) {
	b := validBreakdown()
	b.Lines[0].GrossAmountCents = 11901
	assert.Error(t, b.Validate())
}

func TestBreakdownValidateSubtotalMismatch(t *testing.T) {
	b := validBreakdown()
	b.SubtotalAmountCents = 11999
	assert.Error(t, b.Validate())
}

func TestBreakdownValidateTotalMismatch(t *testing.T) {
	b := validBreakdown()
	b.TotalAmountCents = 14041
	assert.Error(t, b.Validate())
}

func TestBreakdownValidateKindTotalMismatch(t *testing.T) {
	b := validBreakdown()
	b.TotalsByKind[types.TaxKindStandard].TaxAmountCents = 1899
	assert.Error(t, b.Validate())
}

func TestBreakdownValidateEmpty(t *testing.T) {
	b := &TaxBreakdown{}
	assert.NoError(t, b.Validate())
}

// Snapshots persist breakdowns as JSON; loading one back must reproduce
// every field exactly and still satisfy the sum invariants.
func TestBreakdownJSONRoundTrip(t *testing.T) {
	original := validBreakdown()
	original.Flags.IsSmallBusinessNoVatCharged = true

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored TaxBreakdown
	require.NoError(t, json.Unmarshal(data, &restored))

	require.Equal(t, original, &restored)
	assert.NoError(t, restored.Validate())
}
