package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/jackc/pgx/v5/stdlib"

	"go.hackfix.me/changelock/db/types"
	"go.hackfix.me/changelock/dialect"
	"go.hackfix.me/changelock/lock"
	"go.hackfix.me/changelock/sqlgen"
)

// DB wraps sql.DB with the dialect of the target backend.
type DB struct {
	*sql.DB
	dialect dialect.Dialect
	timeNow func() time.Time
}

var _ types.Querier = (*DB)(nil)

// Open creates and configures a new database connection for the backend of
// dialect d.
func Open(ctx context.Context, d dialect.Dialect, dsn string, timeNow func() time.Time) (*DB, error) {
	driver := d.DriverName()
	if driver == "" {
		return nil, fmt.Errorf("no database driver available for backend '%s'", d.Name())
	}
	if dsn == "" {
		return nil, errors.New("database DSN is required")
	}

	connDSN := dsn
	if driver == "mysql" {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed parsing MySQL DSN: %w", err)
		}
		// Report matched instead of changed rows, so that unlocking an already
		// unlocked row isn't mistaken for a missing row.
		cfg.ClientFoundRows = true
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		connDSN = cfg.FormatDSN()
	}

	sqlDB, err := sql.Open(driver, connDSN)
	if err != nil {
		return nil, fmt.Errorf("failed opening %s database: %w", d.Name(), err)
	}

	if driver == "sqlite" && (strings.Contains(dsn, "mode=memory") || strings.Contains(dsn, ":memory:")) {
		// In-memory databases only live as long as one of their connections, and
		// shared cache connections fail with 'table is locked' on concurrent
		// writes. See https://github.com/mattn/go-sqlite3#faq
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}

	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed connecting to %s database: %w", d.Name(), err)
	}

	return &DB{DB: sqlDB, dialect: d, timeNow: timeNow}, nil
}

// Init creates the lock table if it doesn't exist, and inserts the unlocked
// lock row if it's missing. It's safe to call on an initialized database.
func (d *DB) Init(ctx context.Context, table lock.Table, logger *slog.Logger) error {
	if table.Name == "" {
		table.Name = lock.DefaultTableName
	}
	dblogger := logger.With("backend", d.dialect.Name(), "lock.table", table.String())
	dblogger.Debug("initializing lock table")

	count, err := d.countRows(ctx, table)
	if err != nil {
		dblogger.Debug("lock table not found, creating it", "error", err)
		if err = d.exec(ctx, lock.CreateTableOp(table)); err != nil {
			// Another process may have created the table in the meantime.
			var cerr error
			if count, cerr = d.countRows(ctx, table); cerr != nil {
				return fmt.Errorf("failed creating lock table %s: %w", table, err)
			}
		}
	}

	if count > 1 {
		return types.IntegrityError{
			Msg: fmt.Sprintf("lock table %s has %d rows with ID %d", table, count, lock.RowID),
		}
	}

	if count == 0 {
		err = types.Err("lock", fmt.Sprintf("ID %d", lock.RowID), d.exec(ctx, lock.SeedOp(table)))
		var dupErr *types.DuplicateError
		switch {
		case errors.As(err, &dupErr):
			dblogger.Debug("lock row was inserted concurrently")
		case err != nil:
			return err
		default:
			dblogger.Info("lock table initialized")
			return nil
		}
	}

	dblogger.Info("lock table already initialized")

	return nil
}

// Dialect returns the dialect of the database backend.
func (d *DB) Dialect() dialect.Dialect {
	return d.dialect
}

// TimeNow returns the current system time.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}

func (d *DB) countRows(ctx context.Context, table lock.Table) (int, error) {
	schema := d.dialect.SchemaName(table.Schema)
	countQ := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = %d",
		d.dialect.EscapeTableName(schema, table.Name),
		d.dialect.EscapeColumnName(schema, table.Name, lock.ColID), lock.RowID)

	var count int
	if err := d.QueryRowContext(ctx, countQ).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed scanning %s count query: %w", table, err)
	}

	return count, nil
}

func (d *DB) exec(ctx context.Context, stmt sqlgen.Statement) error {
	query, args, err := sqlgen.Bind(stmt, d.dialect)
	if err != nil {
		return err
	}
	_, err = d.ExecContext(ctx, query, args...)
	return err
}
