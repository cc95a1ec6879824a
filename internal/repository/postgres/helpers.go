package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// pq error code for unique_violation
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint
// violation. Uniqueness invariants (one filing per period, one snapshot
// per source document) rely on this instead of check-then-insert.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}

// isNoRows reports whether err is sql.ErrNoRows
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
