package lock

import (
	"database/sql"
	"time"
)

// DefaultTableName is the conventional name of the lock table.
const DefaultTableName = "DATABASECHANGELOGLOCK"

// Columns of the lock table. The names must match exactly for interoperability
// with existing lock tables.
const (
	ColID          = "ID"
	ColLocked      = "LOCKED"
	ColLockGranted = "LOCKGRANTED"
	ColLockedBy    = "LOCKEDBY"
)

// RowID is the ID of the single lock row.
const RowID = 1

// lockedByMaxLen is the size of the LOCKEDBY column.
const lockedByMaxLen = 255

// Table identifies the lock table.
type Table struct {
	Schema string
	Name   string
}

// DefaultTable returns the lock table with the conventional name in the
// default schema.
func DefaultTable() Table {
	return Table{Name: DefaultTableName}
}

func (t Table) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Row is the single row of the lock table. Locked is the only source of truth
// for lock ownership.
type Row struct {
	ID          int64
	Locked      bool
	LockGranted sql.Null[time.Time]
	LockedBy    sql.Null[string]
}
