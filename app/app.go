package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/changelock/app/config"
	actx "go.hackfix.me/changelock/app/context"
	"go.hackfix.me/changelock/cli"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	// config set with the WithConfig option, used instead of loading the
	// configuration file.
	config *config.Config
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application. configFilePath is the default path of
// the configuration file, which can be changed with the --config-file flag.
func New(name, configFilePath string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		TimeNow: time.Now,
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(configFilePath, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if err := app.loadConfig(); err != nil {
		return err
	}

	app.ctx.Logger.Debug("running command",
		"command", app.cli.Command(), "config_file", app.ctx.Config.Path())

	return app.cli.Execute(app.ctx)
}

func (app *App) loadConfig() error {
	var cfg *config.Config
	if app.config != nil {
		// Flags of previous runs must not leak into this one.
		c := *app.config
		cfg = &c
	} else {
		cfg = config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
		if err := cfg.Load(); err != nil {
			return err
		}
	}

	cfg.SetDefaults()
	if err := app.cli.ApplyConfig(cfg); err != nil {
		return err
	}
	app.ctx.Config = cfg

	return nil
}
