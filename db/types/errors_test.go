package types

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteErr returns the error of a statement run on a new in-memory SQLite
// database.
func sqliteErr(t *testing.T, stmts ...string) error {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	for _, stmt := range stmts {
		if _, err = db.ExecContext(t.Context(), stmt); err != nil {
			return err
		}
	}

	return nil
}

func TestErr(t *testing.T) {
	t.Parallel()

	const create = `CREATE TABLE lock (ID INTEGER NOT NULL, LOCKED BOOLEAN NOT NULL, PRIMARY KEY (ID))`
	const seed = `INSERT INTO lock (ID, LOCKED) VALUES (1, 0)`

	tests := []struct {
		name   string
		err    func(t *testing.T) error
		expDup bool
	}{
		{name: "ok/nil", err: func(*testing.T) error { return nil }},
		{
			name:   "ok/sqlite_primary_key",
			err:    func(t *testing.T) error { return sqliteErr(t, create, seed, seed) },
			expDup: true,
		},
		{
			name: "ok/sqlite_unique",
			err: func(t *testing.T) error {
				return sqliteErr(t, `CREATE TABLE lock (ID INTEGER, NAME TEXT UNIQUE)`,
					`INSERT INTO lock VALUES (1, 'a')`, `INSERT INTO lock VALUES (2, 'a')`)
			},
			expDup: true,
		},
		{
			name:   "ok/mysql_dup_entry",
			err:    func(*testing.T) error { return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1'"} },
			expDup: true,
		},
		{
			name:   "ok/pg_unique_violation",
			err:    func(*testing.T) error { return &pgconn.PgError{Code: "23505"} },
			expDup: true,
		},
		{
			name: "ok/sqlite_other",
			err:  func(t *testing.T) error { return sqliteErr(t, `SELECT * FROM missing`) },
		},
		{
			name: "ok/mysql_other",
			err:  func(*testing.T) error { return &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"} },
		},
		{
			name: "ok/pg_other",
			err:  func(*testing.T) error { return &pgconn.PgError{Code: "42P01"} },
		},
		{name: "ok/other", err: func(*testing.T) error { return errors.New("connection refused") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cause := tt.err(t)
			err := Err("lock", "ID 1", cause)

			if !tt.expDup {
				assert.Equal(t, cause, err)
				return
			}

			var dupErr *DuplicateError
			require.ErrorAs(t, err, &dupErr)
			assert.EqualError(t, err, "lock with ID 1 already exists")
		})
	}
}
