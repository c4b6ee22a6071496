package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"go.hackfix.me/changelock/app/config"
	actx "go.hackfix.me/changelock/app/context"
	"go.hackfix.me/changelock/dialect"
)

// CLI is the command line interface of changelock.
type CLI struct {
	Init         Init         `kong:"cmd,help='Create the lock table and its unlocked lock row.'"`
	Status       Status       `kong:"cmd,help='Show the state of the lock.'"`
	Acquire      Acquire      `kong:"cmd,help='Acquire the lock for this host.'"`
	Release      Release      `kong:"cmd,help='Release the lock held by this host.'"`
	ForceRelease ForceRelease `kong:"cmd,help='Release the lock regardless of who holds it.'"`
	SQL          SQL          `kong:"cmd,name='sql',help='Print the SQL of a lock operation without connecting to a database.'"`
	Run          Run          `kong:"cmd,help='Run a command while holding the lock.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: I'm deliberately not using kong.ConfigFlag or its support for reading
	// values from configuration files, since I want to manage configuration
	// independently from the CLI.
	ConfigFile  string           `kong:"default='${configFile}',help='Path to the changelock configuration file.'"`
	Backend     string           `kong:"help='Database backend. One of: ${backends}.'"`
	DSN         string           `kong:"name='dsn',help='Data source name of the database.'"`
	Schema      string           `kong:"help='Schema that owns the lock table.'"`
	Table       string           `kong:"help='Name of the lock table.'"`
	RuntimeName string           `kong:"help='Runtime name used to choose how the host identity is determined.'"`
	Version     kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(configFilePath, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("changelock"),
		kong.Description("Manage the change-log lock of a database."),
		kong.UsageOnError(),
		kong.DefaultEnvars("CHANGELOCK"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile": configFilePath,
			"backends":   strings.Join(dialect.Names(), ", "),
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx)
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// ApplyConfig overrides configuration values with the values of global flags
// and environment variables, so that they take precedence over the
// configuration file.
func (c *CLI) ApplyConfig(cfg *config.Config) error {
	if c.Backend != "" {
		d, err := dialect.ForName(c.Backend)
		if err != nil {
			return err
		}
		cfg.Database.Backend.V, cfg.Database.Backend.Valid = d.Name(), true
	}
	setString(&cfg.Database.DSN.V, &cfg.Database.DSN.Valid, c.DSN)
	setString(&cfg.Database.Schema.V, &cfg.Database.Schema.Valid, c.Schema)
	setString(&cfg.Database.Table.V, &cfg.Database.Table.Valid, c.Table)
	setString(&cfg.Lock.RuntimeName.V, &cfg.Lock.RuntimeName.Valid, c.RuntimeName)

	return nil
}

func setString(v *string, valid *bool, s string) {
	if s == "" {
		return
	}
	*v, *valid = s, true
}
