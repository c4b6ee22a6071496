package cli

import (
	"errors"
	"strconv"

	actx "go.hackfix.me/changelock/app/context"
	aerrors "go.hackfix.me/changelock/app/errors"
	"go.hackfix.me/changelock/db/types"
)

// The Status command prints the lock row.
type Status struct{}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context) error {
	svc, closeDB, err := newAdminService(appCtx)
	if err != nil {
		return err
	}
	defer closeDB()

	row, err := svc.Status(appCtx.Ctx)
	if err != nil {
		hint := ""
		if errors.As(err, &types.NoResultError{}) || errors.As(err, &types.ScanError{}) {
			hint = "initialize the lock table with 'changelock init'"
		}
		return aerrors.NewRuntimeError("failed reading lock status", err, hint)
	}

	var granted, lockedBy string
	if row.LockGranted.Valid {
		granted = formatTime(row.LockGranted.V)
	}
	if row.LockedBy.Valid {
		lockedBy = row.LockedBy.V
	}

	header := []string{"ID", "Locked", "Lock Granted", "Locked By"}
	data := [][]string{{
		strconv.FormatInt(row.ID, 10), strconv.FormatBool(row.Locked), granted, lockedBy,
	}}
	if err = renderTable(header, data, appCtx.Stdout); err != nil {
		return aerrors.NewRuntimeError("failed rendering lock status", err, "")
	}

	return nil
}
