package cli

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"go.hackfix.me/changelock/xtime"
)

// Duration is an optional flag value that accepts the units of
// xtime.ParseDuration, e.g. "30s", "5m" or "1d".
type Duration struct {
	sql.Null[time.Duration]
}

var _ kong.MapperValue = (*Duration)(nil)

// Decode implements the kong.MapperValue interface.
func (d *Duration) Decode(kctx *kong.DecodeContext) error {
	var value string
	err := kctx.Scan.PopValueInto("duration", &value)
	if err != nil {
		return err
	}

	dur, err := xtime.ParseDuration(value)
	if err != nil {
		return err
	}
	if dur < 0 {
		return fmt.Errorf("duration must not be negative: %s", value)
	}

	d.V, d.Valid = dur, true

	return nil
}

// Or returns the flag value if it was set, otherwise fallback.
func (d Duration) Or(fallback sql.Null[time.Duration]) sql.Null[time.Duration] {
	if d.Valid {
		return d.Null
	}
	return fallback
}
