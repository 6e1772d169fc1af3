package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres class 23 integrity violation codes
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation, used to translate duplicate inserts into domain conflicts
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
