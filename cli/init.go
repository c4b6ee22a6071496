package cli

import (
	actx "go.hackfix.me/changelock/app/context"
	aerrors "go.hackfix.me/changelock/app/errors"
)

// The Init command creates the lock table and inserts the unlocked lock row if
// they don't exist. It's safe to run it on an initialized database.
type Init struct {
	SaveConfig bool `kong:"help='Save the database and lock settings to the configuration file.'"`
}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	dbConn, closeDB, err := openDB(appCtx)
	if err != nil {
		return err
	}
	defer closeDB()

	table := lockTable(appCtx)
	if err = dbConn.Init(appCtx.Ctx, table, appCtx.Logger); err != nil {
		return aerrors.NewRuntimeError("failed initializing lock table", err, "",
			"lock.table", table.String())
	}

	if !c.SaveConfig {
		return nil
	}

	if err = appCtx.Config.Save(); err != nil {
		return aerrors.NewRuntimeError("failed saving configuration", err, "",
			"config_file", appCtx.Config.Path())
	}
	appCtx.Logger.Info("saved configuration", "config_file", appCtx.Config.Path())

	return nil
}
