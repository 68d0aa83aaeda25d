package repository

import (
	"context"
	"errors"

	"barrierbet/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is the subset of pgx shared by pools, connections and transactions
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

var (
	_ interfaces.UserRepository           = (*UserRepository)(nil)
	_ interfaces.GameSessionRepository    = (*GameSessionRepository)(nil)
	_ interfaces.BalanceHistoryRepository = (*BalanceHistoryRepository)(nil)
)
