package xtime

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// Units that time.ParseDuration doesn't support. Months and years are
// approximations.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

var (
	durationPartRx = regexp.MustCompile(`(\d*\.\d+|\d+)([^\d.]*)`)
	longUnits      = map[string]time.Duration{
		"d": Day, "D": Day,
		"w": Week, "W": Week,
		"M": Month,
		"y": Year, "Y": Year,
	}
)

// ParseDuration parses a duration string that may contain day, week, month and
// year units in addition to the ones supported by time.ParseDuration.
// Examples: "10d", "-1.5w", "3Y4M5d" or "1d12h30m".
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return 0, fmt.Errorf("invalid duration '%s'", orig)
	}

	parts := durationPartRx.FindAllStringSubmatch(s, -1)
	if len(parts) == 0 || strings.Join(flatten(parts), "") != s {
		return 0, fmt.Errorf("invalid duration '%s'", orig)
	}

	var sum time.Duration
	for _, p := range parts {
		num, unit := p[1], p[2]
		if unit == "" {
			if num != "0" {
				return 0, fmt.Errorf("missing unit in duration '%s'", orig)
			}
			continue
		}

		if lu, ok := longUnits[unit]; ok {
			hours, err := time.ParseDuration(num + "h")
			if err != nil {
				return 0, err
			}
			f := float64(lu) * hours.Hours()
			if f >= math.MaxInt64 || sum > math.MaxInt64-time.Duration(f) {
				return 0, fmt.Errorf("duration '%s' is out of range", orig)
			}
			sum += time.Duration(f)
			continue
		}

		dur, err := time.ParseDuration(num + unit)
		if err != nil {
			return 0, err
		}
		if sum > math.MaxInt64-dur {
			return 0, fmt.Errorf("duration '%s' is out of range", orig)
		}
		sum += dur
	}

	if neg {
		sum = -sum
	}

	return sum, nil
}

func flatten(parts [][]string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p[0]
	}
	return out
}

// FormatDuration formats a duration using the units accepted by ParseDuration,
// e.g. "10d", "-1w2d" or "1d12h30m". The round parameter is the smallest unit
// included in the output.
func FormatDuration(d time.Duration, round time.Duration) string {
	if round > 0 {
		d = d.Round(round)
	}
	if d == 0 {
		return "0s"
	}

	neg := d < 0
	if neg {
		d = -d
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}

	for _, u := range []struct {
		suffix string
		dur    time.Duration
	}{
		{"Y", Year}, {"M", Month}, {"w", Week}, {"d", Day},
		{"h", time.Hour}, {"m", time.Minute}, {"s", time.Second},
		{"ms", time.Millisecond}, {"µs", time.Microsecond}, {"ns", time.Nanosecond},
	} {
		if u.dur < round {
			break
		}
		if n := d / u.dur; n > 0 {
			fmt.Fprintf(&sb, "%d%s", n, u.suffix)
			d %= u.dur
		}
	}

	return sb.String()
}
