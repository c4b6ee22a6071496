package config

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		json   string
		exp    Config
		expErr string
	}{
		{name: "ok/missing_file"},
		{name: "ok/empty", json: "{}"},
		{
			name: "ok/full",
			json: `{
				"database": {"backend": "pgx", "dsn": "postgres://localhost/app", "schema": "ops", "table": "LOCKS"},
				"lock": {"wait_timeout": "2m", "poll_interval": "5s", "stale_after": "1d", "runtime_name": "android"}
			}`,
			exp: Config{
				Database: Database{
					Backend: sql.Null[string]{V: "postgres", Valid: true},
					DSN:     sql.Null[string]{V: "postgres://localhost/app", Valid: true},
					Schema:  sql.Null[string]{V: "ops", Valid: true},
					Table:   sql.Null[string]{V: "LOCKS", Valid: true},
				},
				Lock: Lock{
					WaitTimeout:  sql.Null[time.Duration]{V: 2 * time.Minute, Valid: true},
					PollInterval: sql.Null[time.Duration]{V: 5 * time.Second, Valid: true},
					StaleAfter:   sql.Null[time.Duration]{V: 24 * time.Hour, Valid: true},
					RuntimeName:  sql.Null[string]{V: "android", Valid: true},
				},
			},
		},
		{
			name:   "err/unknown_backend",
			json:   `{"database": {"backend": "dbase"}}`,
			expErr: "failed parsing configuration file: unsupported database backend 'dbase'",
		},
		{
			name:   "err/invalid_duration",
			json:   `{"lock": {"wait_timeout": "soon"}}`,
			expErr: "failed parsing configuration file: failed parsing lock wait timeout: invalid duration 'soon'",
		},
		{
			name:   "err/invalid_json",
			json:   `{"lock": `,
			expErr: "failed parsing configuration file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := memoryfs.New()
			if tt.json != "" {
				require.NoError(t, vfs.WriteFile(fs, "/config.json", []byte(tt.json), 0o644))
			}

			cfg := NewConfig(fs, "/config.json")
			err := cfg.Load()
			if tt.expErr != "" {
				assert.ErrorContains(t, err, tt.expErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.exp.Database, cfg.Database)
			assert.Equal(t, tt.exp.Lock, cfg.Lock)
		})
	}
}

func TestConfigSaveLoad(t *testing.T) {
	t.Parallel()

	fs := memoryfs.New()
	cfg := NewConfig(fs, "/etc/changelock/config.json")
	cfg.Database.Backend = sql.Null[string]{V: "sqlite", Valid: true}
	cfg.Database.DSN = sql.Null[string]{V: "file:/var/lib/app.db", Valid: true}
	cfg.Lock.StaleAfter = sql.Null[time.Duration]{V: 90 * time.Minute, Valid: true}
	cfg.SetDefaults()
	require.NoError(t, cfg.Save())

	data, err := vfs.ReadFile(fs, cfg.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"database": {"backend": "sqlite", "dsn": "file:/var/lib/app.db", "table": "DATABASECHANGELOGLOCK"},
		"lock": {"wait_timeout": "5m", "poll_interval": "10s", "stale_after": "1h30m"}
	}`, string(data))

	loaded := NewConfig(fs, cfg.Path())
	require.NoError(t, loaded.Load())
	assert.Equal(t, cfg.Database, loaded.Database)
	assert.Equal(t, cfg.Lock, loaded.Lock)
}
