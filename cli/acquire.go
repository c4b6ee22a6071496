package cli

import (
	"errors"

	actx "go.hackfix.me/changelock/app/context"
	aerrors "go.hackfix.me/changelock/app/errors"
	"go.hackfix.me/changelock/lock"
)

// The Acquire command acquires the lock for this host. The lock stays held
// after the command exits, until it's released with the release command.
type Acquire struct {
	Wait bool `kong:"help='Wait for the lock if it is held by someone else.'"`

	LockOptions `kong:"embed"`
}

// Run the acquire command.
func (c *Acquire) Run(appCtx *actx.Context) error {
	opts := c.serviceOptions(appCtx)
	if !c.Wait {
		opts = append(opts, lock.WithWaitTimeout(0))
	}

	svc, closeDB, err := newService(appCtx, opts...)
	if err != nil {
		return err
	}
	defer closeDB()

	if err = svc.Acquire(appCtx.Ctx); err != nil {
		return acquireError(err)
	}

	return nil
}

func acquireError(err error) error {
	var lerr lock.LockedError
	if errors.As(err, &lerr) {
		fields := []any{}
		if lerr.LockedBy != "" {
			fields = append(fields, "lock.holder", lerr.LockedBy)
		}
		return aerrors.NewRuntimeError("failed acquiring lock", err, forceReleaseHint, fields...)
	}

	return aerrors.NewRuntimeError("failed acquiring lock", err, "")
}
