package lock

import (
	"fmt"
	"time"
)

// LockedError is returned when the lock couldn't be acquired because another
// process holds it.
type LockedError struct {
	LockedBy string
	Granted  time.Time
	Err      error
}

func (e LockedError) Error() string {
	if e.LockedBy == "" {
		return "database is locked"
	}
	if e.Granted.IsZero() {
		return fmt.Sprintf("database is locked by %s", e.LockedBy)
	}
	return fmt.Sprintf("database is locked by %s since %s",
		e.LockedBy, e.Granted.UTC().Format(time.RFC3339))
}

// Unwrap returns the underlying error for error unwrapping.
func (e LockedError) Unwrap() error {
	return e.Err
}

// NotHeldError is returned when releasing a lock that isn't held by this
// process.
type NotHeldError struct {
	Table    string
	LockedBy string
}

func (e NotHeldError) Error() string {
	return fmt.Sprintf("lock on %s is not held by %s", e.Table, e.LockedBy)
}
