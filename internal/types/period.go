package types

import (
	"fmt"
	"time"

	ierr "github.com/taxmill/taxmill/internal/errors"
)

// Period keys identify statutory reporting periods:
// "YYYY-MM" for monthly, "YYYY-Qn" for quarterly, "YYYY" for annual.

// MonthPeriodKey returns the period key for a calendar month, e.g. "2026-01"
func MonthPeriodKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// QuarterPeriodKey returns the period key for a calendar quarter, e.g. "2026-Q1"
func QuarterPeriodKey(year, quarter int) string {
	return fmt.Sprintf("%04d-Q%d", year, quarter)
}

// YearPeriodKey returns the period key for a full calendar year, e.g. "2026"
func YearPeriodKey(year int) string {
	return fmt.Sprintf("%04d", year)
}

// ParsePeriodKey resolves a period key into its half-open UTC interval
// [start, end). Bucketing a document into a period means
// start <= documentDate < end.
func ParsePeriodKey(key string) (start, end time.Time, err error) {
	var year int
	invalid := func() (time.Time, time.Time, error) {
		return time.Time{}, time.Time{}, ierr.NewError("invalid period key").
			WithHintf("Period key %q must look like YYYY, YYYY-MM or YYYY-Qn", key).
			Mark(ierr.ErrValidation)
	}

	switch len(key) {
	case 4: // YYYY
		if _, err := fmt.Sscanf(key, "%4d", &year); err != nil || year < 1 {
			return invalid()
		}
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), nil

	case 7:
		if key[5] == 'Q' { // YYYY-Qn
			var quarter int
			if _, err := fmt.Sscanf(key, "%4d-Q%1d", &year, &quarter); err != nil {
				return invalid()
			}
			if year < 1 || quarter < 1 || quarter > 4 {
				return invalid()
			}
			start = time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
			return start, start.AddDate(0, 3, 0), nil
		}

		// YYYY-MM
		var month int
		if _, err := fmt.Sscanf(key, "%4d-%2d", &year, &month); err != nil {
			return invalid()
		}
		if year < 1 || month < 1 || month > 12 {
			return invalid()
		}
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil

	default:
		return invalid()
	}
}

// PeriodYear extracts the calendar year from a period key
func PeriodYear(key string) (int, error) {
	start, _, err := ParsePeriodKey(key)
	if err != nil {
		return 0, err
	}
	return start.Year(), nil
}
