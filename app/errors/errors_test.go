package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWith(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	base := NewWithCause("failed opening database", cause, "backend", "postgres")

	merged := With(base, "backend", "mysql", "lock.table", "DATABASECHANGELOGLOCK")
	assert.Equal(t, "failed opening database", merged.Error())
	assert.Equal(t, map[string]any{"backend": "mysql", "lock.table": "DATABASECHANGELOGLOCK"}, merged.Metadata())
	assert.ErrorIs(t, merged, cause)

	// The original error isn't modified.
	assert.Equal(t, map[string]any{"backend": "postgres"}, base.Metadata())

	other := errors.New("timeout")
	replaced := WithCause(merged, other)
	assert.Equal(t, other, replaced.Cause())
	assert.NotErrorIs(t, replaced, cause)

	assert.Panics(t, func() { _ = NewWith("odd", "key") })
	assert.Panics(t, func() { _ = NewWith("bad key", 1, "value") })
}

func TestRuntimeError(t *testing.T) {
	t.Parallel()

	cause := errors.New("no such table: DATABASECHANGELOGLOCK")
	err := NewRuntimeError("failed reading lock status", cause, "run 'changelock init' first")

	assert.EqualError(t, err, "failed reading lock status: no such table: DATABASECHANGELOGLOCK")
	assert.ErrorIs(t, err, cause)

	var serr *StructuredError
	require.ErrorAs(t, err, &serr)

	var buf bytes.Buffer
	printHint(&buf, fmt.Errorf("wrapped: %w", err))
	assert.Equal(t, "hint: run 'changelock init' first\n", buf.String())

	buf.Reset()
	printHint(&buf, cause)
	assert.Empty(t, buf.String())
}

func TestLog(t *testing.T) {
	// Not parallel, since it replaces the default logger.
	var buf bytes.Buffer
	defLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})))
	t.Cleanup(func() { slog.SetDefault(defLogger) })

	err := NewRuntimeError("failed acquiring lock", errors.New("database is locked"), "",
		"lock.holder", "worker-1 (10.0.0.5)", "backend", "sqlite")
	Log(err)
	assert.Equal(t,
		`level=ERROR msg="failed acquiring lock" cause="database is locked" `+
			`backend=sqlite lock.holder="worker-1 (10.0.0.5)"`+"\n", buf.String())

	buf.Reset()
	Log(errors.New("plain"))
	assert.Equal(t, "level=ERROR msg=plain\n", buf.String())
}
