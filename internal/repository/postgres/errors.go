package postgres

import (
	"errors"
	"fmt"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	sqlStateForeignKeyViolation = "23503"
	sqlStateUniqueViolation     = "23505"
)

// sqlState extracts the SQLSTATE from a lib/pq or pgx error.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// translateWriteError maps constraint violations on ledger writes to domain
// errors. Every other error is returned unchanged.
func translateWriteError(err error) error {
	switch sqlState(err) {
	case sqlStateForeignKeyViolation:
		return fmt.Errorf("%w: %v", domain.ErrSupplierNotFound, err)
	case sqlStateUniqueViolation:
		return fmt.Errorf("%w: %v", domain.ErrDuplicateEvent, err)
	default:
		return err
	}
}
