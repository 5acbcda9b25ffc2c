package store

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/i474232898/weather-favorites/internal/common"
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is an integrity error raised by a
// UNIQUE or PRIMARY KEY constraint, whichever driver produced it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		default:
			return false
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return common.HasAnyFold(err.Error(), "unique constraint failed", "duplicate key value")
}
