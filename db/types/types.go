package types

import (
	"context"
	"database/sql"
	"time"

	"go.hackfix.me/changelock/dialect"
)

// Querier exposes only methods for running SQL queries, and some helper functions.
type Querier interface {
	Dialect() dialect.Dialect
	TimeNow() time.Time
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
