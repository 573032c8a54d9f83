package db

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation raised through lib/pq.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
}

// IsCheckViolation reports whether err is a Postgres CHECK constraint failure.
func IsCheckViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.CheckViolation
}
