package cli

import (
	"context"
	"errors"
	"os/exec"

	actx "go.hackfix.me/changelock/app/context"
	aerrors "go.hackfix.me/changelock/app/errors"
)

// LockedByEnvVar is set to the lock holder in the environment of commands run
// with the run command.
const LockedByEnvVar = "CHANGELOCK_LOCKED_BY"

// The Run command acquires the lock, waiting for it if necessary, runs a
// command and releases the lock once the command exits.
type Run struct {
	Command []string `kong:"arg,passthrough,help='Command to run, and its arguments.'"`

	LockOptions `kong:"embed"`
}

// Run the run command.
func (c *Run) Run(appCtx *actx.Context) error {
	args := c.Command
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		return errors.New("no command to run")
	}

	svc, closeDB, err := newService(appCtx, c.serviceOptions(appCtx)...)
	if err != nil {
		return err
	}
	defer closeDB()

	var started bool
	err = svc.WithLock(appCtx.Ctx, func(ctx context.Context) error {
		if appCtx.Env != nil {
			if err := appCtx.Env.Set(LockedByEnvVar, svc.Identity().String()); err != nil {
				return err
			}
		}

		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Stdin = appCtx.Stdin
		cmd.Stdout = appCtx.Stdout
		cmd.Stderr = appCtx.Stderr

		appCtx.Logger.Debug("running command", "command", cmd.String())
		started = true

		return cmd.Run()
	})
	if err != nil {
		if !started {
			return acquireError(err)
		}
		fields := []any{"command", args[0]}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fields = append(fields, "exit_code", exitErr.ExitCode())
		}
		return aerrors.NewRuntimeError("failed running command", err, "", fields...)
	}

	return nil
}
