package cli

import (
	actx "go.hackfix.me/changelock/app/context"
	aerrors "go.hackfix.me/changelock/app/errors"
)

// The Release command releases the lock if it's held by this host.
type Release struct{}

// Run the release command.
func (c *Release) Run(appCtx *actx.Context) error {
	svc, closeDB, err := newService(appCtx)
	if err != nil {
		return err
	}
	defer closeDB()

	// The lock was acquired by an earlier process.
	if _, err = svc.Adopt(appCtx.Ctx); err != nil {
		return aerrors.NewRuntimeError("failed reading lock status", err, "")
	}

	if err = svc.Release(appCtx.Ctx); err != nil {
		return aerrors.NewRuntimeError("failed releasing lock", err, "")
	}

	return nil
}

// The ForceRelease command releases the lock regardless of who holds it.
type ForceRelease struct{}

// Run the force-release command.
func (c *ForceRelease) Run(appCtx *actx.Context) error {
	svc, closeDB, err := newAdminService(appCtx)
	if err != nil {
		return err
	}
	defer closeDB()

	if err = svc.ForceRelease(appCtx.Ctx); err != nil {
		return aerrors.NewRuntimeError("failed force releasing lock", err, "")
	}

	return nil
}
