// Package sqlite provides SQLite-backed implementations of the account,
// session and balance history stores.
package sqlite

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"barrierbet/domain/interfaces"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	_ interfaces.UserRepository           = (*UserStore)(nil)
	_ interfaces.GameSessionRepository    = (*GameSessionStore)(nil)
	_ interfaces.BalanceHistoryRepository = (*BalanceHistoryStore)(nil)
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nullableUUID(value *uuid.UUID) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.String(), Valid: true}
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
