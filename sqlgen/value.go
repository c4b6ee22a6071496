package sqlgen

import (
	"strconv"
	"time"

	"go.hackfix.me/changelock/dialect"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindBool
	kindInt
	kindString
	kindTime
)

// Value is a typed SQL value. Booleans, integers and NULL are always rendered
// as literals; strings and timestamps become bind parameters when a statement
// is bound instead of rendered.
type Value struct {
	kind valueKind
	b    bool
	i    int64
	s    string
	t    time.Time
}

// Null returns the SQL NULL value.
func Null() Value { return Value{kind: kindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: kindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: kindInt, i: i} }

// String returns a string value.
func String(s string) Value { return Value{kind: kindString, s: s} }

// Time returns a timestamp value. It's rendered in UTC.
func Time(t time.Time) Value { return Value{kind: kindTime, t: t} }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == kindNull }

func (v Value) literal(d dialect.Dialect) string {
	switch v.kind {
	case kindBool:
		if v.b {
			return d.TrueLiteral()
		}
		return d.FalseLiteral()
	case kindInt:
		return strconv.FormatInt(v.i, 10)
	case kindString:
		return d.StringLiteral(v.s)
	case kindTime:
		return d.DateTimeLiteral(v.t)
	default:
		return "NULL"
	}
}

// arg returns the bind argument for v, and false if v must stay a literal.
func (v Value) arg() (any, bool) {
	switch v.kind {
	case kindString:
		return v.s, true
	case kindTime:
		return v.t.UTC(), true
	default:
		return nil, false
	}
}
