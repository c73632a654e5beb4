package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrDuplicate signals a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenceMissing signals a foreign key violation.
	ErrReferenceMissing = errors.New("referenced record missing")
	// ErrStale signals that a conditional update matched no row because the row changed.
	ErrStale = errors.New("record changed concurrently")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch string(pqErr.Code) {
	case pqUniqueViolation:
		return ErrDuplicate
	case pqForeignKeyViolation:
		return ErrReferenceMissing
	}
	return nil
}
