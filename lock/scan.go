package lock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Backends store the LOCKED flag as native booleans, integers, bits or
// characters, so it's scanned leniently.
type flag bool

func (f *flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case bool:
		*f = flag(v)
	case int64:
		*f = v != 0
	case []byte:
		if len(v) == 1 && v[0] <= 1 {
			// BIT(1) columns
			*f = v[0] == 1
			return nil
		}
		return f.Scan(string(v))
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			*f = true
		case "0", "f", "false", "n", "no", "":
			*f = false
		default:
			return fmt.Errorf("invalid boolean value '%s'", v)
		}
	default:
		return fmt.Errorf("unsupported boolean type %T", src)
	}

	return nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// timestamp scans LOCKGRANTED values, which some drivers return as text.
type timestamp struct {
	t     time.Time
	valid bool
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts = timestamp{}
		return nil
	case time.Time:
		*ts = timestamp{t: v.UTC(), valid: true}
		return nil
	case int64:
		*ts = timestamp{t: time.Unix(v, 0).UTC(), valid: true}
		return nil
	case []byte:
		return ts.Scan(string(v))
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				*ts = timestamp{t: t.UTC(), valid: true}
				return nil
			}
		}
		if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
			*ts = timestamp{t: time.Unix(unix, 0).UTC(), valid: true}
			return nil
		}
		return fmt.Errorf("invalid timestamp value '%s'", v)
	}

	return fmt.Errorf("unsupported timestamp type %T", src)
}
