package cli

import (
	"time"

	actx "go.hackfix.me/changelock/app/context"
	aerrors "go.hackfix.me/changelock/app/errors"
	"go.hackfix.me/changelock/db"
	"go.hackfix.me/changelock/dialect"
	"go.hackfix.me/changelock/host"
	"go.hackfix.me/changelock/lock"
)

// LockOptions are the flags of commands that wait for the lock. They override
// the lock configuration.
type LockOptions struct {
	WaitTimeout  Duration `kong:"help='How long to wait for a lock held by someone else, e.g. 30s or 1h.'"`
	PollInterval Duration `kong:"help='How often to retry while waiting for the lock.'"`
	StaleAfter   Duration `kong:"help='Release locks granted longer than this ago. 0 disables it.'"`
}

func (o LockOptions) serviceOptions(appCtx *actx.Context) []lock.Option {
	cfg := appCtx.Config.Lock
	opts := []lock.Option{lock.WithLogger(appCtx.Logger)}

	if wt := o.WaitTimeout.Or(cfg.WaitTimeout); wt.Valid {
		opts = append(opts, lock.WithWaitTimeout(wt.V))
	}
	if pi := o.PollInterval.Or(cfg.PollInterval); pi.Valid {
		opts = append(opts, lock.WithPollInterval(pi.V))
	}
	if sa := o.StaleAfter.Or(cfg.StaleAfter); sa.Valid {
		opts = append(opts, lock.WithStaleAfter(sa.V))
	}

	return opts
}

func lockTable(appCtx *actx.Context) lock.Table {
	dbCfg := appCtx.Config.Database
	return lock.Table{Schema: dbCfg.Schema.V, Name: dbCfg.Table.V}
}

func configDialect(appCtx *actx.Context) (dialect.Dialect, error) {
	backend := appCtx.Config.Database.Backend
	if !backend.Valid {
		return nil, aerrors.NewRuntimeError("no database backend configured", nil,
			"set it with --backend, CHANGELOCK_BACKEND or in the configuration file")
	}

	//nolint:wrapcheck // The error is descriptive enough.
	return dialect.ForName(backend.V)
}

// openDB returns the database connection of the application context, or opens
// a new one from the configuration. The returned function closes connections
// opened here.
func openDB(appCtx *actx.Context) (*db.DB, func(), error) {
	if appCtx.DB != nil {
		return appCtx.DB, func() {}, nil
	}

	d, err := configDialect(appCtx)
	if err != nil {
		return nil, nil, err
	}

	dsn := appCtx.Config.Database.DSN
	if !dsn.Valid {
		return nil, nil, aerrors.NewRuntimeError("no database DSN configured", nil,
			"set it with --dsn, CHANGELOCK_DSN or in the configuration file")
	}

	dbConn, err := db.Open(appCtx.Ctx, d, dsn.V, appCtx.TimeNow)
	if err != nil {
		return nil, nil, aerrors.NewRuntimeError("failed opening database", err, "",
			"backend", d.Name())
	}

	return dbConn, func() { _ = dbConn.Close() }, nil
}

// identity returns the identity this host acquires the lock as.
func identity(appCtx *actx.Context) (host.Identity, error) {
	if appCtx.Resolver == nil {
		runtimeName := host.DefaultRuntimeName()
		if rn := appCtx.Config.Lock.RuntimeName; rn.Valid {
			runtimeName = rn.V
		}
		appCtx.Resolver = host.Cached(host.NewResolver(runtimeName))
	}

	id, err := appCtx.Resolver.Resolve(appCtx.Ctx)
	if err != nil {
		return host.Identity{}, aerrors.NewRuntimeError("failed determining host identity", err, "")
	}

	return id, nil
}

// newService opens the database and returns a lock service for this host.
func newService(appCtx *actx.Context, opts ...lock.Option) (*lock.Service, func(), error) {
	id, err := identity(appCtx)
	if err != nil {
		return nil, nil, err
	}

	return serviceFor(appCtx, id, opts...)
}

// newAdminService opens the database and returns a lock service without a host
// identity. It can only read and force release the lock, so it works on hosts
// whose identity can't be determined.
func newAdminService(appCtx *actx.Context) (*lock.Service, func(), error) {
	return serviceFor(appCtx, host.Identity{})
}

func serviceFor(appCtx *actx.Context, id host.Identity, opts ...lock.Option) (*lock.Service, func(), error) {
	dbConn, closeDB, err := openDB(appCtx)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]lock.Option{lock.WithLogger(appCtx.Logger)}, opts...)
	svc, err := lock.NewService(dbConn, lockTable(appCtx), id, opts...)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	return svc, closeDB, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

const forceReleaseHint = "if the lock holder isn't running anymore, " +
	"release the lock with 'changelock force-release'"
