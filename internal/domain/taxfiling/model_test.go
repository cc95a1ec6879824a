package taxfiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/types"
)

func TestTransitionTo(t *testing.T) {
	filing := &TaxFiling{FilingStatus: types.FilingStatusOpen}

	assert.NoError(t, filing.TransitionTo(types.FilingStatusSubmitted))
	assert.Equal(t, types.FilingStatusSubmitted, filing.FilingStatus)

	assert.NoError(t, filing.TransitionTo(types.FilingStatusPaid))
	assert.Equal(t, types.FilingStatusPaid, filing.FilingStatus)
}

func TestTransitionToIllegal(t *testing.T) {
	filing := &TaxFiling{FilingStatus: types.FilingStatusOpen}

	err := filing.TransitionTo(types.FilingStatusPaid)
	assert.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))
	// the filing stays where it was
	assert.Equal(t, types.FilingStatusOpen, filing.FilingStatus)

	filing.FilingStatus = types.FilingStatusPaid
	err = filing.TransitionTo(types.FilingStatusSubmitted)
	assert.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))
}

func TestHasBlockers(t *testing.T) {
	filing := &TaxFiling{}
	assert.False(t, filing.HasBlockers())

	filing.Issues = []*Issue{
		{Type: types.IssueTypeEmptyPeriod, Severity: types.IssueSeverityWarning},
	}
	assert.False(t, filing.HasBlockers())

	filing.Issues = append(filing.Issues,
		&Issue{Type: types.IssueTypeMissingVatID, Severity: types.IssueSeverityBlocker})
	assert.True(t, filing.HasBlockers())
}

func TestCapabilities(t *testing.T) {
	filing := &TaxFiling{FilingStatus: types.FilingStatusOpen}
	caps := filing.Capabilities()
	assert.True(t, caps.CanSubmit)
	assert.False(t, caps.CanMarkPaid)

	// blockers suspend submission while the filing stays OPEN
	filing.Issues = []*Issue{
		{Type: types.IssueTypeMissingVatID, Severity: types.IssueSeverityBlocker},
	}
	assert.False(t, filing.Capabilities().CanSubmit)

	filing.Issues = nil
	filing.FilingStatus = types.FilingStatusSubmitted
	caps = filing.Capabilities()
	assert.False(t, caps.CanSubmit)
	assert.True(t, caps.CanMarkPaid)

	filing.FilingStatus = types.FilingStatusPaid
	caps = filing.Capabilities()
	assert.False(t, caps.CanSubmit)
	assert.False(t, caps.CanMarkPaid)
}
