package xtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		exp    time.Duration
		expErr string
	}{
		{in: "10s", exp: 10 * time.Second},
		{in: "5m", exp: 5 * time.Minute},
		{in: "1d12h30m", exp: Day + 12*time.Hour + 30*time.Minute},
		{in: "-1.5w", exp: -(Week + Week/2)},
		{in: "3Y4M5d", exp: 3*Year + 4*Month + 5*Day},
		{in: "250ms", exp: 250 * time.Millisecond},
		{in: "0", exp: 0},
		{in: "", expErr: "invalid duration ''"},
		{in: "soon", expErr: "invalid duration 'soon'"},
		{in: "x1d", expErr: "invalid duration 'x1d'"},
		{in: "10", expErr: "missing unit in duration '10'"},
		{in: "1q", expErr: `time: unknown unit "q" in duration "1q"`},
		{in: "292y", exp: 292 * Year},
		{in: "300y", expErr: "duration '300y' is out of range"},
		{in: "-300y", expErr: "duration '-300y' is out of range"},
		{in: "200y200y", expErr: "duration '200y200y' is out of range"},
		{in: "290y1000000h", expErr: "duration '290y1000000h' is out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			dur, err := ParseDuration(tt.in)
			if tt.expErr != "" {
				assert.EqualError(t, err, tt.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, dur)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dur   time.Duration
		round time.Duration
		exp   string
	}{
		{dur: 0, round: time.Second, exp: "0s"},
		{dur: 10 * time.Second, round: time.Second, exp: "10s"},
		{dur: 90 * time.Minute, round: time.Second, exp: "1h30m"},
		{dur: 9*Day + 2*time.Hour, round: time.Hour, exp: "1w2d2h"},
		{dur: -(Week + 2*Day), round: Day, exp: "-1w2d"},
		{dur: 1500 * time.Millisecond, round: 0, exp: "1s500ms"},
		{dur: 20 * time.Minute, round: time.Hour, exp: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.exp, func(t *testing.T) {
			t.Parallel()

			s := FormatDuration(tt.dur, tt.round)
			assert.Equal(t, tt.exp, s)

			back, err := ParseDuration(s)
			require.NoError(t, err)
			assert.Equal(t, tt.dur.Round(max(tt.round, 1)), back)
		})
	}
}
