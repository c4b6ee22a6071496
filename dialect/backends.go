package dialect

import (
	"fmt"
	"strings"
	"time"
)

var ansiQuoter = quoter{open: `"`, close: `"`}

// SQLite is the dialect for SQLite, which has no schemas and stores booleans
// as integers.
type SQLite struct{}

var _ Dialect = SQLite{}

func (SQLite) Name() string { return "sqlite" }
func (SQLite) DriverName() string { return "sqlite" }

func (SQLite) EscapeColumnName(_, _, column string) string { return ansiQuoter.quote(column) }

// EscapeTableName ignores the schema, since SQLite doesn't support them.
func (SQLite) EscapeTableName(_, table string) string { return ansiQuoter.quote(table) }
func (SQLite) SchemaName(string) string { return "" }

func (SQLite) FalseLiteral() string { return "0" }
func (SQLite) TrueLiteral() string { return "1" }

func (SQLite) DateTimeLiteral(t time.Time) string {
	return quoteString(t.UTC().Format(dateTimeLayout))
}
func (SQLite) StringLiteral(s string) string { return quoteString(s) }
func (SQLite) Placeholder(n int) string { return qmark(n) }

func (SQLite) BoolType() string { return "BOOLEAN" }
func (SQLite) DateTimeType() string { return "TIMESTAMP" }
func (SQLite) IntType() string { return "INTEGER" }
func (SQLite) StringType(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) }

// Postgres is the dialect for PostgreSQL.
type Postgres struct{}

var _ Dialect = Postgres{}

var pgQuoter = quoter{open: `"`, close: `"`, reserved: []string{"ANALYSE", "ANALYZE", "LIMIT", "OFFSET", "WINDOW"}}

func (Postgres) Name() string { return "postgres" }
func (Postgres) DriverName() string { return "pgx" }

func (Postgres) EscapeColumnName(_, _, column string) string { return pgQuoter.quote(column) }
func (Postgres) EscapeTableName(schema, table string) string { return pgQuoter.table(schema, table) }
func (Postgres) SchemaName(configured string) string { return configured }

func (Postgres) FalseLiteral() string { return "FALSE" }
func (Postgres) TrueLiteral() string { return "TRUE" }

func (Postgres) DateTimeLiteral(t time.Time) string {
	return quoteString(t.UTC().Format(dateTimeLayout))
}
func (Postgres) StringLiteral(s string) string { return quoteString(s) }
func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (Postgres) BoolType() string { return "BOOLEAN" }
func (Postgres) DateTimeType() string { return "TIMESTAMP" }
func (Postgres) IntType() string { return "INTEGER" }
func (Postgres) StringType(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) }

// MySQL is the dialect for MySQL and MariaDB. Booleans are TINYINT(1) columns.
type MySQL struct {
	mariaDB bool
}

var _ Dialect = MySQL{}

var mysqlQuoter = quoter{open: "`", close: "`", reserved: []string{"LIMIT", "LOCK", "RANGE", "READ", "WRITE"}}

func (m MySQL) Name() string {
	if m.mariaDB {
		return "mariadb"
	}
	return "mysql"
}
func (MySQL) DriverName() string { return "mysql" }

func (MySQL) EscapeColumnName(_, _, column string) string { return mysqlQuoter.quote(column) }
func (MySQL) EscapeTableName(schema, table string) string { return mysqlQuoter.table(schema, table) }
func (MySQL) SchemaName(configured string) string { return configured }

func (MySQL) FalseLiteral() string { return "0" }
func (MySQL) TrueLiteral() string { return "1" }

func (MySQL) DateTimeLiteral(t time.Time) string {
	return quoteString(t.UTC().Format(dateTimeLayout))
}

// StringLiteral also escapes backslashes, which MySQL treats as escape
// characters inside string literals by default.
func (MySQL) StringLiteral(s string) string {
	return quoteString(strings.ReplaceAll(s, `\`, `\\`))
}
func (MySQL) Placeholder(n int) string { return qmark(n) }

func (MySQL) BoolType() string { return "TINYINT(1)" }
func (MySQL) DateTimeType() string { return "DATETIME(3)" }
func (MySQL) IntType() string { return "INT" }
func (MySQL) StringType(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) }

// MSSQL is the dialect for Microsoft SQL Server.
type MSSQL struct{}

var _ Dialect = MSSQL{}

var mssqlQuoter = quoter{open: "[", close: "]", reserved: []string{"FILE", "OPEN", "TOP"}}

func (MSSQL) Name() string { return "mssql" }
func (MSSQL) DriverName() string { return "" }

func (MSSQL) EscapeColumnName(_, _, column string) string { return mssqlQuoter.quote(column) }
func (MSSQL) EscapeTableName(schema, table string) string { return mssqlQuoter.table(schema, table) }

// SchemaName defaults to dbo.
func (MSSQL) SchemaName(configured string) string {
	if configured == "" {
		return "dbo"
	}
	return configured
}

func (MSSQL) FalseLiteral() string { return "0" }
func (MSSQL) TrueLiteral() string { return "1" }

func (MSSQL) DateTimeLiteral(t time.Time) string {
	return quoteString(t.UTC().Format("2006-01-02T15:04:05.000"))
}
func (MSSQL) StringLiteral(s string) string { return "N" + quoteString(s) }
func (MSSQL) Placeholder(n int) string { return fmt.Sprintf("@p%d", n) }

func (MSSQL) BoolType() string { return "BIT" }
func (MSSQL) DateTimeType() string { return "DATETIME2(3)" }
func (MSSQL) IntType() string { return "INT" }
func (MSSQL) StringType(n int) string { return fmt.Sprintf("NVARCHAR(%d)", n) }

// Oracle is the dialect for Oracle Database. Booleans are NUMBER(1) columns.
type Oracle struct{}

var _ Dialect = Oracle{}

var oracleQuoter = quoter{open: `"`, close: `"`, reserved: []string{"LEVEL", "NUMBER", "ROWID", "SIZE", "UID"}}

func (Oracle) Name() string { return "oracle" }
func (Oracle) DriverName() string { return "" }

func (Oracle) EscapeColumnName(_, _, column string) string { return oracleQuoter.quote(column) }
func (Oracle) EscapeTableName(schema, table string) string { return oracleQuoter.table(schema, table) }
func (Oracle) SchemaName(configured string) string { return configured }

func (Oracle) FalseLiteral() string { return "0" }
func (Oracle) TrueLiteral() string { return "1" }

func (Oracle) DateTimeLiteral(t time.Time) string {
	return fmt.Sprintf("TO_TIMESTAMP(%s, 'YYYY-MM-DD HH24:MI:SS.FF')",
		quoteString(t.UTC().Format(dateTimeLayout)))
}
func (Oracle) StringLiteral(s string) string { return quoteString(s) }
func (Oracle) Placeholder(n int) string { return fmt.Sprintf(":%d", n) }

func (Oracle) BoolType() string { return "NUMBER(1)" }
func (Oracle) DateTimeType() string { return "TIMESTAMP" }
func (Oracle) IntType() string { return "NUMBER(10)" }
func (Oracle) StringType(n int) string { return fmt.Sprintf("VARCHAR2(%d)", n) }

// DB2 is the dialect for IBM Db2.
type DB2 struct{}

var _ Dialect = DB2{}

func (DB2) Name() string { return "db2" }
func (DB2) DriverName() string { return "" }

func (DB2) EscapeColumnName(_, _, column string) string { return ansiQuoter.quote(column) }
func (DB2) EscapeTableName(schema, table string) string { return ansiQuoter.table(schema, table) }
func (DB2) SchemaName(configured string) string { return configured }

func (DB2) FalseLiteral() string { return "0" }
func (DB2) TrueLiteral() string { return "1" }

func (DB2) DateTimeLiteral(t time.Time) string {
	return fmt.Sprintf("TIMESTAMP(%s)", quoteString(t.UTC().Format(dateTimeLayout)))
}
func (DB2) StringLiteral(s string) string { return quoteString(s) }
func (DB2) Placeholder(n int) string { return qmark(n) }

func (DB2) BoolType() string { return "SMALLINT" }
func (DB2) DateTimeType() string { return "TIMESTAMP" }
func (DB2) IntType() string { return "INTEGER" }
func (DB2) StringType(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) }

// H2 is the dialect for the H2 database engine.
type H2 struct{}

var _ Dialect = H2{}

func (H2) Name() string { return "h2" }
func (H2) DriverName() string { return "" }

func (H2) EscapeColumnName(_, _, column string) string { return ansiQuoter.quote(column) }
func (H2) EscapeTableName(schema, table string) string { return ansiQuoter.table(schema, table) }
func (H2) SchemaName(configured string) string { return configured }

func (H2) FalseLiteral() string { return "FALSE" }
func (H2) TrueLiteral() string { return "TRUE" }

func (H2) DateTimeLiteral(t time.Time) string {
	return quoteString(t.UTC().Format(dateTimeLayout))
}
func (H2) StringLiteral(s string) string { return quoteString(s) }
func (H2) Placeholder(n int) string { return qmark(n) }

func (H2) BoolType() string { return "BOOLEAN" }
func (H2) DateTimeType() string { return "TIMESTAMP" }
func (H2) IntType() string { return "INT" }
func (H2) StringType(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) }

// HSQLDB is the dialect for HyperSQL.
type HSQLDB struct{}

var _ Dialect = HSQLDB{}

func (HSQLDB) Name() string { return "hsqldb" }
func (HSQLDB) DriverName() string { return "" }

func (HSQLDB) EscapeColumnName(_, _, column string) string { return ansiQuoter.quote(column) }
func (HSQLDB) EscapeTableName(schema, table string) string { return ansiQuoter.table(schema, table) }

// SchemaName defaults to PUBLIC.
func (HSQLDB) SchemaName(configured string) string {
	if configured == "" {
		return "PUBLIC"
	}
	return configured
}

func (HSQLDB) FalseLiteral() string { return "FALSE" }
func (HSQLDB) TrueLiteral() string { return "TRUE" }

func (HSQLDB) DateTimeLiteral(t time.Time) string {
	return fmt.Sprintf("TIMESTAMP %s", quoteString(t.UTC().Format(dateTimeLayout)))
}
func (HSQLDB) StringLiteral(s string) string { return quoteString(s) }
func (HSQLDB) Placeholder(n int) string { return qmark(n) }

func (HSQLDB) BoolType() string { return "BOOLEAN" }
func (HSQLDB) DateTimeType() string { return "TIMESTAMP" }
func (HSQLDB) IntType() string { return "INT" }
func (HSQLDB) StringType(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) }

// Derby is the dialect for Apache Derby.
type Derby struct{}

var _ Dialect = Derby{}

func (Derby) Name() string { return "derby" }
func (Derby) DriverName() string { return "" }

func (Derby) EscapeColumnName(_, _, column string) string { return ansiQuoter.quote(column) }
func (Derby) EscapeTableName(schema, table string) string { return ansiQuoter.table(schema, table) }
func (Derby) SchemaName(configured string) string { return configured }

func (Derby) FalseLiteral() string { return "FALSE" }
func (Derby) TrueLiteral() string { return "TRUE" }

func (Derby) DateTimeLiteral(t time.Time) string {
	return fmt.Sprintf("TIMESTAMP(%s)", quoteString(t.UTC().Format(dateTimeLayout)))
}
func (Derby) StringLiteral(s string) string { return quoteString(s) }
func (Derby) Placeholder(n int) string { return qmark(n) }

func (Derby) BoolType() string { return "BOOLEAN" }
func (Derby) DateTimeType() string { return "TIMESTAMP" }
func (Derby) IntType() string { return "INTEGER" }
func (Derby) StringType(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) }

// Informix is the dialect for IBM Informix, which uses 't' and 'f' as boolean
// literals.
type Informix struct{}

var _ Dialect = Informix{}

func (Informix) Name() string { return "informix" }
func (Informix) DriverName() string { return "" }

func (Informix) EscapeColumnName(_, _, column string) string { return ansiQuoter.quote(column) }
func (Informix) EscapeTableName(schema, table string) string { return ansiQuoter.table(schema, table) }
func (Informix) SchemaName(configured string) string { return configured }

func (Informix) FalseLiteral() string { return "'f'" }
func (Informix) TrueLiteral() string { return "'t'" }

func (Informix) DateTimeLiteral(t time.Time) string {
	return fmt.Sprintf("DATETIME (%s) YEAR TO FRACTION(3)", t.UTC().Format(dateTimeLayout))
}
func (Informix) StringLiteral(s string) string { return quoteString(s) }
func (Informix) Placeholder(n int) string { return qmark(n) }

func (Informix) BoolType() string { return "BOOLEAN" }
func (Informix) DateTimeType() string { return "DATETIME YEAR TO FRACTION(3)" }
func (Informix) IntType() string { return "INTEGER" }
func (Informix) StringType(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) }
