package dialect

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Dialect translates the backend-specific parts of the lock statements:
// identifiers, boolean and timestamp literals, bind parameters and the column
// types used when bootstrapping the lock table.
type Dialect interface {
	// Name is the canonical backend name, e.g. "postgres".
	Name() string
	// DriverName is the database/sql driver used for live execution. It's empty
	// if the backend can only be rendered to SQL text.
	DriverName() string

	EscapeColumnName(schema, table, column string) string
	EscapeTableName(schema, table string) string
	// SchemaName returns the schema that owns the lock table, or an empty string
	// if the backend has no schemas.
	SchemaName(configured string) string

	FalseLiteral() string
	TrueLiteral() string
	DateTimeLiteral(t time.Time) string
	StringLiteral(s string) string
	Placeholder(n int) string

	BoolType() string
	DateTimeType() string
	IntType() string
	StringType(n int) string
}

// UnsupportedError is returned when no Dialect exists for a backend name.
type UnsupportedError struct {
	Name string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported database backend '%s'", e.Name)
}

// ForName returns the Dialect for the named backend. Common driver names and
// aliases are accepted.
func ForName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	case "postgres", "postgresql", "pgx":
		return Postgres{}, nil
	case "mysql":
		return MySQL{}, nil
	case "mariadb":
		return MySQL{mariaDB: true}, nil
	case "mssql", "sqlserver":
		return MSSQL{}, nil
	case "oracle":
		return Oracle{}, nil
	case "db2":
		return DB2{}, nil
	case "h2":
		return H2{}, nil
	case "hsqldb":
		return HSQLDB{}, nil
	case "derby":
		return Derby{}, nil
	case "informix":
		return Informix{}, nil
	}

	return nil, UnsupportedError{Name: name}
}

// Names returns the canonical names of all supported backends.
func Names() []string {
	names := []string{
		"db2", "derby", "h2", "hsqldb", "informix", "mariadb", "mssql",
		"mysql", "oracle", "postgres", "sqlite",
	}
	slices.Sort(names)
	return names
}

const dateTimeLayout = "2006-01-02 15:04:05.000"

var plainIdentRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Words that need quoting on every backend.
var commonReserved = []string{
	"ALL", "AND", "AS", "BY", "CHECK", "COLUMN", "CREATE", "DATE", "DEFAULT",
	"DELETE", "DISTINCT", "FROM", "GROUP", "HAVING", "IN", "INSERT", "INTO",
	"IS", "KEY", "NOT", "NULL", "OR", "ORDER", "PRIMARY", "SELECT", "SET",
	"TABLE", "TIMESTAMP", "TO", "UNION", "UPDATE", "USER", "VALUES", "WHERE",
}

// quoter escapes identifiers for a single backend.
type quoter struct {
	open, close string
	reserved    []string
}

func (q quoter) quote(ident string) string {
	if ident == "" {
		return ""
	}
	upper := strings.ToUpper(ident)
	if plainIdentRx.MatchString(ident) &&
		!slices.Contains(commonReserved, upper) &&
		!slices.Contains(q.reserved, upper) {
		return ident
	}

	escaped := strings.ReplaceAll(ident, q.close, q.close+q.close)
	return q.open + escaped + q.close
}

func (q quoter) table(schema, table string) string {
	if schema == "" {
		return q.quote(table)
	}
	return q.quote(schema) + "." + q.quote(table)
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func qmark(int) string { return "?" }
