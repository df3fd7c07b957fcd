package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no document matches the given id.
var ErrNotFound = errors.New("not found")

// DuplicateError is returned when a write violates a unique key.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("duplicate %s", e.Field)
	}
	return fmt.Sprintf("duplicate %s %q", e.Field, e.Value)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
