// Package sqlgen renders abstract statements into backend-specific SQL.
//
// Render produces literal SQL text and is deterministic: the same statement and
// dialect always produce byte-identical output, since timestamps and host
// identities are part of the statement instead of being computed here. Bind
// produces the same statement with string and timestamp values passed as bind
// parameters, for execution over database/sql.
package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	"go.hackfix.me/changelock/dialect"
)

// Statement is an abstract SQL statement.
type Statement interface {
	build(b *builder) error
}

var (
	// ErrNoTable is returned when a statement doesn't name a table.
	ErrNoTable = errors.New("statement has no table")
	// ErrNoColumns is returned when a statement has nothing to set, select or
	// insert.
	ErrNoColumns = errors.New("statement has no columns")
	// ErrNoPredicate is returned for UPDATE statements without a WHERE clause.
	ErrNoPredicate = errors.New("update statement has no predicate")
)

// Render returns the SQL text of s for dialect d. Each element of the returned
// slice is a separate statement.
func Render(s Statement, d dialect.Dialect) ([]string, error) {
	b := &builder{d: d}
	if err := s.build(b); err != nil {
		return nil, err
	}
	return []string{b.sb.String()}, nil
}

// Bind returns the SQL text of s for dialect d with string and timestamp
// values replaced by bind parameters, and the corresponding arguments.
func Bind(s Statement, d dialect.Dialect) (string, []any, error) {
	b := &builder{d: d, bind: true}
	if err := s.build(b); err != nil {
		return "", nil, err
	}
	return b.sb.String(), b.args, nil
}

// Op is a comparison operator.
type Op string

// Supported comparison operators.
const (
	OpEq Op = "="
	OpLt Op = "<"
)

// Assignment sets a column to a value.
type Assignment struct {
	Column string
	Value  Value
}

// Predicate compares a column with a value. Predicates are joined with AND.
type Predicate struct {
	Column string
	Op     Op
	Value  Value
}

// Eq returns an equality predicate.
func Eq(column string, v Value) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: v}
}

// Lt returns a less-than predicate.
func Lt(column string, v Value) Predicate {
	return Predicate{Column: column, Op: OpLt, Value: v}
}

// Update is a conditional UPDATE statement.
type Update struct {
	Schema string
	Table  string
	Set    []Assignment
	Where  []Predicate
}

func (u Update) build(b *builder) error {
	if u.Table == "" {
		return ErrNoTable
	}
	if len(u.Set) == 0 {
		return ErrNoColumns
	}
	if len(u.Where) == 0 {
		return ErrNoPredicate
	}

	schema := b.d.SchemaName(u.Schema)
	b.sb.WriteString("UPDATE ")
	b.sb.WriteString(b.d.EscapeTableName(schema, u.Table))
	b.sb.WriteString(" SET ")
	for i, a := range u.Set {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.sb.WriteString(b.d.EscapeColumnName(schema, u.Table, a.Column))
		b.sb.WriteString(" = ")
		b.value(a.Value)
	}

	return b.where(schema, u.Table, u.Where)
}

// Select is a SELECT statement over a single table.
type Select struct {
	Schema  string
	Table   string
	Columns []string
	Where   []Predicate
}

func (s Select) build(b *builder) error {
	if s.Table == "" {
		return ErrNoTable
	}
	if len(s.Columns) == 0 {
		return ErrNoColumns
	}

	schema := b.d.SchemaName(s.Schema)
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = b.d.EscapeColumnName(schema, s.Table, c)
	}
	fmt.Fprintf(&b.sb, "SELECT %s FROM %s",
		strings.Join(cols, ", "), b.d.EscapeTableName(schema, s.Table))

	return b.where(schema, s.Table, s.Where)
}

// Insert is a single row INSERT statement.
type Insert struct {
	Schema string
	Table  string
	Values []Assignment
}

func (ins Insert) build(b *builder) error {
	if ins.Table == "" {
		return ErrNoTable
	}
	if len(ins.Values) == 0 {
		return ErrNoColumns
	}

	schema := b.d.SchemaName(ins.Schema)
	cols := make([]string, len(ins.Values))
	for i, a := range ins.Values {
		cols[i] = b.d.EscapeColumnName(schema, ins.Table, a.Column)
	}
	fmt.Fprintf(&b.sb, "INSERT INTO %s (%s) VALUES (",
		b.d.EscapeTableName(schema, ins.Table), strings.Join(cols, ", "))
	for i, a := range ins.Values {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.value(a.Value)
	}
	b.sb.WriteString(")")

	return nil
}

// ColumnType is the abstract type of a column.
type ColumnType uint8

// Supported column types.
const (
	TypeInt ColumnType = iota
	TypeBool
	TypeDateTime
	TypeString
)

// ColumnDef defines a column of a CreateTable statement.
type ColumnDef struct {
	Name    string
	Type    ColumnType
	Size    int // only for TypeString
	NotNull bool
}

// CreateTable is a CREATE TABLE statement.
type CreateTable struct {
	Schema     string
	Table      string
	Columns    []ColumnDef
	PrimaryKey []string
}

func (ct CreateTable) build(b *builder) error {
	if ct.Table == "" {
		return ErrNoTable
	}
	if len(ct.Columns) == 0 {
		return ErrNoColumns
	}

	schema := b.d.SchemaName(ct.Schema)
	defs := make([]string, 0, len(ct.Columns)+1)
	for _, c := range ct.Columns {
		var typ string
		switch c.Type {
		case TypeInt:
			typ = b.d.IntType()
		case TypeBool:
			typ = b.d.BoolType()
		case TypeDateTime:
			typ = b.d.DateTimeType()
		case TypeString:
			typ = b.d.StringType(c.Size)
		default:
			return fmt.Errorf("unknown type of column '%s': %d", c.Name, c.Type)
		}
		def := b.d.EscapeColumnName(schema, ct.Table, c.Name) + " " + typ
		if c.NotNull {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	if len(ct.PrimaryKey) > 0 {
		pk := make([]string, len(ct.PrimaryKey))
		for i, c := range ct.PrimaryKey {
			pk[i] = b.d.EscapeColumnName(schema, ct.Table, c)
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)",
			b.d.EscapeColumnName(schema, ct.Table, "PK_"+ct.Table), strings.Join(pk, ", ")))
	}

	fmt.Fprintf(&b.sb, "CREATE TABLE %s (%s)",
		b.d.EscapeTableName(schema, ct.Table), strings.Join(defs, ", "))

	return nil
}

type builder struct {
	d    dialect.Dialect
	bind bool
	args []any
	sb   strings.Builder
}

func (b *builder) value(v Value) {
	if b.bind {
		if arg, ok := v.arg(); ok {
			b.args = append(b.args, arg)
			b.sb.WriteString(b.d.Placeholder(len(b.args)))
			return
		}
	}
	b.sb.WriteString(v.literal(b.d))
}

func (b *builder) where(schema, table string, preds []Predicate) error {
	for i, p := range preds {
		if i == 0 {
			b.sb.WriteString(" WHERE ")
		} else {
			b.sb.WriteString(" AND ")
		}
		col := b.d.EscapeColumnName(schema, table, p.Column)
		if p.Value.IsNull() {
			if p.Op != OpEq {
				return fmt.Errorf("invalid NULL comparison on column '%s'", p.Column)
			}
			b.sb.WriteString(col + " IS NULL")
			continue
		}
		b.sb.WriteString(col + " " + string(p.Op) + " ")
		b.value(p.Value)
	}

	return nil
}
