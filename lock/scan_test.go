package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    any
		exp    bool
		expErr string
	}{
		{name: "ok/nil", src: nil, exp: false},
		{name: "ok/bool", src: true, exp: true},
		{name: "ok/int", src: int64(1), exp: true},
		{name: "ok/int_zero", src: int64(0), exp: false},
		{name: "ok/bit", src: []byte{1}, exp: true},
		{name: "ok/bytes_text", src: []byte("t"), exp: true},
		{name: "ok/informix_false", src: "f", exp: false},
		{name: "ok/text_true", src: " TRUE ", exp: true},
		{name: "err/text", src: "maybe", expErr: "invalid boolean value 'maybe'"},
		{name: "err/type", src: 1.5, expErr: "unsupported boolean type float64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var f flag
			err := f.Scan(tt.src)
			if tt.expErr != "" {
				assert.EqualError(t, err, tt.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, bool(f))
		})
	}
}

func TestTimestampScan(t *testing.T) {
	t.Parallel()

	exp := time.Date(2026, 10, 18, 9, 15, 0, 250_000_000, time.UTC)

	tests := []struct {
		name     string
		src      any
		expValid bool
		exp      time.Time
		expErr   string
	}{
		{name: "ok/nil"},
		{name: "ok/time", src: exp.In(time.FixedZone("X", 7200)), expValid: true, exp: exp},
		{name: "ok/text", src: "2026-10-18 09:15:00.250", expValid: true, exp: exp},
		{name: "ok/text_offset", src: "2026-10-18T11:15:00.25+02:00", expValid: true, exp: exp},
		{name: "ok/go_string", src: []byte("2026-10-18 09:15:00.25 +0000 UTC"), expValid: true, exp: exp},
		{name: "ok/unix", src: int64(1_700_000_000), expValid: true, exp: time.Unix(1_700_000_000, 0).UTC()},
		{name: "err/text", src: "yesterday", expErr: "invalid timestamp value 'yesterday'"},
		{name: "err/type", src: true, expErr: "unsupported timestamp type bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ts timestamp
			err := ts.Scan(tt.src)
			if tt.expErr != "" {
				assert.EqualError(t, err, tt.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expValid, ts.valid)
			assert.True(t, tt.exp.Equal(ts.t), ts.t)
		})
	}
}
