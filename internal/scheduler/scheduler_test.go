package scheduler

import (
	"io"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flumphworks/flumphbot/internal/config"
)

func TestReload_BeforeStart(t *testing.T) {
	r := New(io.Discard, nil, nil, config.SchedulerConfig{})

	// A settings change may arrive before the runner starts; Reload must be
	// a no-op then, since Start reads the stored settings itself.
	require.NoError(t, r.Reload())
	assert.Nil(t, r.cron)
}

func TestWeeklySpec(t *testing.T) {
	assert.Equal(t, "0 9 * * MON", weeklySpec("Monday", 9, 0))
	assert.Equal(t, "30 18 * * SAT", weeklySpec("saturday", 18, 30))
	// Unknown day falls back to Monday.
	assert.Equal(t, "0 9 * * MON", weeklySpec("Someday", 9, 0))

	// Every spec we build must be parseable by the cron library.
	parser := cron.ParseStandard
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		_, err := parser(weeklySpec(day, 8, 0))
		require.NoError(t, err, day)
	}
}

func TestEverySpec(t *testing.T) {
	assert.Equal(t, "@every 15m0s", everySpec(15*time.Minute))

	_, err := cron.ParseStandard(everySpec(5 * time.Minute))
	require.NoError(t, err)
}

func TestParsePollTime(t *testing.T) {
	tests := []struct {
		in           string
		hour, minute int
	}{
		{"09:00", 9, 0},
		{"18:30", 18, 30},
		{"0:05", 0, 5},
		{"", 9, 0},
		{"noon", 9, 0},
		{"25:00", 9, 0},
		{"12:75", 9, 0},
	}
	for _, tt := range tests {
		hour, minute := parsePollTime(tt.in)
		assert.Equal(t, tt.hour, hour, tt.in)
		assert.Equal(t, tt.minute, minute, tt.in)
	}
}
