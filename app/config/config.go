package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/changelock/dialect"
	"go.hackfix.me/changelock/lock"
	"go.hackfix.me/changelock/xtime"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Database Database
	Lock     Lock

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	// The DSN may contain credentials.
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o600); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Database defines the connection to the database that holds the lock table.
type Database struct {
	// Backend is the name of the database backend, e.g. "postgres" or "sqlite".
	Backend sql.Null[string] `json:"backend"`
	// DSN is the driver-specific data source name.
	DSN sql.Null[string] `json:"dsn"`
	// Schema owns the lock table. It's ignored by backends without schemas.
	Schema sql.Null[string] `json:"schema"`
	// Table is the name of the lock table.
	Table sql.Null[string] `json:"table"`
}

// Lock defines how the lock is acquired.
type Lock struct {
	// WaitTimeout is how long to wait for a lock held by someone else.
	// It serializes from/to xtime duration strings, e.g. "5m" or "1d".
	WaitTimeout sql.Null[time.Duration] `json:"wait_timeout"`
	// PollInterval is how often the lock is retried while waiting.
	// It serializes from/to xtime duration strings, e.g. "5m" or "1d". Minimum value: 1 second.
	PollInterval sql.Null[time.Duration] `json:"poll_interval"`
	// StaleAfter is the age after which a held lock is released by processes
	// waiting for it. Zero disables stale lock detection.
	StaleAfter sql.Null[time.Duration] `json:"stale_after"`
	// RuntimeName overrides the runtime name used to choose how the host
	// identity is determined.
	RuntimeName sql.Null[string] `json:"runtime_name"`
}

type cfgWrapper struct {
	Database dbCfgWrapper   `json:"database"`
	Lock     lockCfgWrapper `json:"lock"`
}
type dbCfgWrapper struct {
	Backend string `json:"backend,omitempty"`
	DSN     string `json:"dsn,omitempty"`
	Schema  string `json:"schema,omitempty"`
	Table   string `json:"table,omitempty"`
}
type lockCfgWrapper struct {
	WaitTimeout  string `json:"wait_timeout,omitempty"`
	PollInterval string `json:"poll_interval,omitempty"`
	StaleAfter   string `json:"stale_after,omitempty"`
	RuntimeName  string `json:"runtime_name,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Database.Backend.Valid {
		w.Database.Backend = c.Database.Backend.V
	}
	if c.Database.DSN.Valid {
		w.Database.DSN = c.Database.DSN.V
	}
	if c.Database.Schema.Valid {
		w.Database.Schema = c.Database.Schema.V
	}
	if c.Database.Table.Valid {
		w.Database.Table = c.Database.Table.V
	}

	if c.Lock.WaitTimeout.Valid {
		w.Lock.WaitTimeout = xtime.FormatDuration(c.Lock.WaitTimeout.V, time.Second)
	}
	if c.Lock.PollInterval.Valid {
		w.Lock.PollInterval = xtime.FormatDuration(c.Lock.PollInterval.V, time.Second)
	}
	if c.Lock.StaleAfter.Valid {
		w.Lock.StaleAfter = xtime.FormatDuration(c.Lock.StaleAfter.V, time.Second)
	}
	if c.Lock.RuntimeName.Valid {
		w.Lock.RuntimeName = c.Lock.RuntimeName.V
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Database.Backend != "" {
		d, err := dialect.ForName(w.Database.Backend)
		if err != nil {
			return err
		}
		c.Database.Backend = sql.Null[string]{V: d.Name(), Valid: true}
	}
	if w.Database.DSN != "" {
		c.Database.DSN = sql.Null[string]{V: w.Database.DSN, Valid: true}
	}
	if w.Database.Schema != "" {
		c.Database.Schema = sql.Null[string]{V: w.Database.Schema, Valid: true}
	}
	if w.Database.Table != "" {
		c.Database.Table = sql.Null[string]{V: w.Database.Table, Valid: true}
	}

	if w.Lock.WaitTimeout != "" {
		dur, err := xtime.ParseDuration(w.Lock.WaitTimeout)
		if err != nil {
			return fmt.Errorf("failed parsing lock wait timeout: %w", err)
		}
		c.Lock.WaitTimeout = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Lock.PollInterval != "" {
		dur, err := xtime.ParseDuration(w.Lock.PollInterval)
		if err != nil {
			return fmt.Errorf("failed parsing lock poll interval: %w", err)
		}
		if dur < time.Second {
			return fmt.Errorf("lock poll interval must be at least 1s, got %s", dur)
		}
		c.Lock.PollInterval = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Lock.StaleAfter != "" {
		dur, err := xtime.ParseDuration(w.Lock.StaleAfter)
		if err != nil {
			return fmt.Errorf("failed parsing stale lock age: %w", err)
		}
		c.Lock.StaleAfter = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Lock.RuntimeName != "" {
		c.Lock.RuntimeName = sql.Null[string]{V: w.Lock.RuntimeName, Valid: true}
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Database.Table.Valid {
		c.Database.Table = sql.Null[string]{V: lock.DefaultTableName, Valid: true}
	}
	if !c.Lock.WaitTimeout.Valid {
		c.Lock.WaitTimeout = sql.Null[time.Duration]{V: lock.DefaultWaitTimeout, Valid: true}
	}
	if !c.Lock.PollInterval.Valid {
		c.Lock.PollInterval = sql.Null[time.Duration]{V: lock.DefaultPollInterval, Valid: true}
	}
}
