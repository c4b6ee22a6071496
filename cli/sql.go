package cli

import (
	"fmt"
	"time"

	actx "go.hackfix.me/changelock/app/context"
	aerrors "go.hackfix.me/changelock/app/errors"
	"go.hackfix.me/changelock/host"
	"go.hackfix.me/changelock/lock"
	"go.hackfix.me/changelock/sqlgen"
)

// The SQL command prints the statements of a lock operation for the configured
// backend, with all values rendered as literals. It doesn't connect to the
// database, so it can be used to lock databases that changelock has no driver
// for.
type SQL struct {
	Operation string    `kong:"arg,enum='init,acquire,release,force-release,status',help='Lock operation: ${enum}.'"`
	Hostname  string    `kong:"help='Hostname of the lock holder. Defaults to the identity of this host.'"`
	Address   string    `kong:"help='Address of the lock holder. Defaults to the identity of this host.'"`
	At        time.Time `kong:"help='Time the lock is granted at, in RFC 3339 format. Defaults to the current time.'"`
}

// Run the sql command.
func (c *SQL) Run(appCtx *actx.Context) error {
	d, err := configDialect(appCtx)
	if err != nil {
		return err
	}

	table := lockTable(appCtx)
	var stmts []sqlgen.Statement
	switch c.Operation {
	case "init":
		stmts = []sqlgen.Statement{lock.CreateTableOp(table), lock.SeedOp(table)}
	case "acquire":
		id, err := c.identity(appCtx)
		if err != nil {
			return err
		}
		at := c.At
		if at.IsZero() {
			at = appCtx.TimeNow()
		}
		stmts = []sqlgen.Statement{lock.AcquireOp(table, id, at.UTC().Truncate(time.Millisecond))}
	case "release":
		id, err := c.identity(appCtx)
		if err != nil {
			return err
		}
		stmts = []sqlgen.Statement{lock.ReleaseOp(table, id)}
	case "force-release":
		stmts = []sqlgen.Statement{lock.ForceReleaseOp(table)}
	case "status":
		stmts = []sqlgen.Statement{lock.SelectOp(table)}
	}

	for _, stmt := range stmts {
		sqls, err := sqlgen.Render(stmt, d)
		if err != nil {
			return aerrors.NewRuntimeError("failed rendering SQL", err, "",
				"operation", c.Operation, "backend", d.Name())
		}
		for _, s := range sqls {
			fmt.Fprintf(appCtx.Stdout, "%s;\n", s)
		}
	}

	return nil
}

func (c *SQL) identity(appCtx *actx.Context) (host.Identity, error) {
	if c.Hostname != "" && c.Address != "" {
		return host.Identity{Hostname: c.Hostname, Address: c.Address}, nil
	}

	id, err := identity(appCtx)
	if err != nil {
		return host.Identity{}, err
	}
	if c.Hostname != "" {
		id.Hostname = c.Hostname
	}
	if c.Address != "" {
		id.Address = c.Address
	}

	return id, nil
}
