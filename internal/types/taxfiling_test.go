package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilingStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    FilingStatus
		to      FilingStatus
		allowed bool
	}{
		{FilingStatusOpen, FilingStatusSubmitted, true},
		{FilingStatusSubmitted, FilingStatusPaid, true},
		{FilingStatusOpen, FilingStatusPaid, false},
		{FilingStatusSubmitted, FilingStatusOpen, false},
		{FilingStatusPaid, FilingStatusOpen, false},
		{FilingStatusPaid, FilingStatusSubmitted, false},
		{FilingStatusOpen, FilingStatusOpen, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestFilingTypeValidate(t *testing.T) {
	assert.NoError(t, FilingTypeVat.Validate())
	assert.NoError(t, FilingTypeIncomeTax.Validate())
	assert.Error(t, FilingType("payroll").Validate())
	assert.Error(t, FilingType("").Validate())
}

func TestFilingStatusValidate(t *testing.T) {
	assert.NoError(t, FilingStatusOpen.Validate())
	assert.NoError(t, FilingStatusSubmitted.Validate())
	assert.NoError(t, FilingStatusPaid.Validate())
	assert.Error(t, FilingStatus("DRAFT").Validate())
}
