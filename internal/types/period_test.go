package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriodKey(t *testing.T) {
	tests := []struct {
		key   string
		start time.Time
		end   time.Time
	}{
		{
			key:   "2026-01",
			start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			key:   "2026-12",
			start: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			key:   "2026-Q1",
			start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			key:   "2026-Q4",
			start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			key:   "2026",
			start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			start, end, err := ParsePeriodKey(tt.key)
			assert.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestParsePeriodKeyInvalid(t *testing.T) {
	keys := []string{
		"",
		"2026-13",
		"2026-00",
		"2026-Q5",
		"2026-Q0",
		"26-01",
		"2026-1",
		"2026/01",
		"garbage",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			_, _, err := ParsePeriodKey(key)
			assert.Error(t, err)
		})
	}
}

func TestPeriodKeyBuilders(t *testing.T) {
	assert.Equal(t, "2026-01", MonthPeriodKey(2026, time.January))
	assert.Equal(t, "2026-11", MonthPeriodKey(2026, time.November))
	assert.Equal(t, "2026-Q3", QuarterPeriodKey(2026, 3))
	assert.Equal(t, "2026", YearPeriodKey(2026))
}

func TestPeriodYear(t *testing.T) {
	year, err := PeriodYear("2026-Q2")
	assert.NoError(t, err)
	assert.Equal(t, 2026, year)

	_, err = PeriodYear("bogus")
	assert.Error(t, err)
}
