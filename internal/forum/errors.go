package forum

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrUnauthorized      = errors.New("authentication required")
	ErrNotFound          = errors.New("not found")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrValidation        = errors.New("validation failed")
)

func txFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
}

// IsContention reports whether err was caused by concurrent writers rather
// than a broken request or backend. Such failures are safe to retry.
func IsContention(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03", // lock_not_available
			"23505": // unique_violation
			return true
		}
		return false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}
