package lock

import (
	"time"
	"unicode/utf8"

	"go.hackfix.me/changelock/host"
	"go.hackfix.me/changelock/sqlgen"
)

// AcquireOp returns the conditional update that transitions the lock row from
// unlocked to locked by id at the given time. The update affects exactly one
// row if the lock was acquired, and zero rows if it's held by someone else.
func AcquireOp(t Table, id host.Identity, at time.Time) sqlgen.Update {
	return sqlgen.Update{
		Schema: t.Schema,
		Table:  t.Name,
		Set: []sqlgen.Assignment{
			{Column: ColLocked, Value: sqlgen.Bool(true)},
			{Column: ColLockGranted, Value: sqlgen.Time(at)},
			{Column: ColLockedBy, Value: sqlgen.String(lockedBy(id))},
		},
		Where: []sqlgen.Predicate{
			sqlgen.Eq(ColID, sqlgen.Int(RowID)),
			sqlgen.Eq(ColLocked, sqlgen.Bool(false)),
		},
	}
}

// ReleaseOp returns the update that unlocks the lock row, but only if it's held
// by id.
func ReleaseOp(t Table, id host.Identity) sqlgen.Update {
	return unlockOp(t,
		sqlgen.Eq(ColLocked, sqlgen.Bool(true)),
		sqlgen.Eq(ColLockedBy, sqlgen.String(lockedBy(id))),
	)
}

// ForceReleaseOp returns the update that unlocks the lock row regardless of
// who holds it.
func ForceReleaseOp(t Table) sqlgen.Update {
	return unlockOp(t)
}

// ExpireOp returns the update that unlocks the lock row if it was granted
// before cutoff.
func ExpireOp(t Table, cutoff time.Time) sqlgen.Update {
	return unlockOp(t,
		sqlgen.Eq(ColLocked, sqlgen.Bool(true)),
		sqlgen.Lt(ColLockGranted, sqlgen.Time(cutoff)),
	)
}

// SelectOp returns the query that reads the lock row.
func SelectOp(t Table) sqlgen.Select {
	return sqlgen.Select{
		Schema:  t.Schema,
		Table:   t.Name,
		Columns: []string{ColID, ColLocked, ColLockGranted, ColLockedBy},
		Where:   []sqlgen.Predicate{sqlgen.Eq(ColID, sqlgen.Int(RowID))},
	}
}

// CreateTableOp returns the statement that creates the lock table.
func CreateTableOp(t Table) sqlgen.CreateTable {
	return sqlgen.CreateTable{
		Schema: t.Schema,
		Table:  t.Name,
		Columns: []sqlgen.ColumnDef{
			{Name: ColID, Type: sqlgen.TypeInt, NotNull: true},
			{Name: ColLocked, Type: sqlgen.TypeBool, NotNull: true},
			{Name: ColLockGranted, Type: sqlgen.TypeDateTime},
			{Name: ColLockedBy, Type: sqlgen.TypeString, Size: lockedByMaxLen},
		},
		PrimaryKey: []string{ColID},
	}
}

// SeedOp returns the statement that inserts the unlocked lock row.
func SeedOp(t Table) sqlgen.Insert {
	return sqlgen.Insert{
		Schema: t.Schema,
		Table:  t.Name,
		Values: []sqlgen.Assignment{
			{Column: ColID, Value: sqlgen.Int(RowID)},
			{Column: ColLocked, Value: sqlgen.Bool(false)},
		},
	}
}

func unlockOp(t Table, preds ...sqlgen.Predicate) sqlgen.Update {
	return sqlgen.Update{
		Schema: t.Schema,
		Table:  t.Name,
		Set: []sqlgen.Assignment{
			{Column: ColLocked, Value: sqlgen.Bool(false)},
			{Column: ColLockGranted, Value: sqlgen.Null()},
			{Column: ColLockedBy, Value: sqlgen.Null()},
		},
		Where: append([]sqlgen.Predicate{sqlgen.Eq(ColID, sqlgen.Int(RowID))}, preds...),
	}
}

// lockedBy returns the LOCKEDBY value of id, truncated to at most
// lockedByMaxLen bytes on a rune boundary.
func lockedBy(id host.Identity) string {
	s := id.String()
	if len(s) <= lockedByMaxLen {
		return s
	}
	n := lockedByMaxLen
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
