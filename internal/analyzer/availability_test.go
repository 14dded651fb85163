package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flumphworks/flumphbot/internal"
)

func TestFindAvailableDates_NoEvents(t *testing.T) {
	a := newTestAnalyzer()
	start := time.Date(2026, time.August, 10, 15, 30, 0, 0, time.UTC)

	slots := a.FindAvailableDates(nil, start, 5, "")

	require.Len(t, slots, 5)
	for i, slot := range slots {
		want := internal.NewDateFromTime(start).AddDate(0, 0, i+1)
		assert.Equal(t, want, slot.Date)
		assert.Nil(t, slot.StartsAt)
		assert.Nil(t, slot.EndsAt)
	}
}

func TestFindAvailableDates_ExcludesBlockedDays(t *testing.T) {
	a := newTestAnalyzer()
	start := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)

	events := []*internal.CalendarEvent{
		timedEvent("1", "Busy day", start.AddDate(0, 0, 3).Add(19*time.Hour), 4*time.Hour, internal.StatusBusy),
	}
	slots := a.FindAvailableDates(events, start, 5, "")

	require.Len(t, slots, 4)
	blocked := internal.NewDateFromTime(start).AddDate(0, 0, 3)
	for _, slot := range slots {
		assert.NotEqual(t, blocked, slot.Date)
	}
}

func TestFindAvailableDates_AnyCategoryBlocks(t *testing.T) {
	a := newTestAnalyzer()
	start := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)

	// A personal event blocks its day just like a session would.
	events := []*internal.CalendarEvent{
		timedEvent("1", "Dentist", start.AddDate(0, 0, 2), time.Hour, internal.StatusFree),
	}
	slots := a.FindAvailableDates(events, start, 5, "")

	require.Len(t, slots, 4)
	for _, slot := range slots {
		assert.NotEqual(t, internal.NewDateFromTime(start).AddDate(0, 0, 2), slot.Date)
	}
}

func TestFindAvailableDates_MultiDayEventBlocksStartDayOnly(t *testing.T) {
	a := newTestAnalyzer()
	start := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)

	vacation := timedEvent("1", "Vacation", start.AddDate(0, 0, 2), 5*24*time.Hour, internal.StatusFree)
	vacation.AllDay = true

	slots := a.FindAvailableDates([]*internal.CalendarEvent{vacation}, start, 7, "")

	dates := make([]string, len(slots))
	for i, slot := range slots {
		dates[i] = slot.Date.String()
	}
	// Day 2 is blocked; days 3-6, inside the vacation's span, are not.
	assert.Equal(t, []string{
		"2026-08-11", "2026-08-13", "2026-08-14",
		"2026-08-15", "2026-08-16", "2026-08-17",
	}, dates)
}

func TestFindAvailableDates_NeverIncludesStartDate(t *testing.T) {
	a := newTestAnalyzer()
	start := time.Date(2026, time.August, 10, 8, 0, 0, 0, time.UTC)

	slots := a.FindAvailableDates(nil, start, 14, "")
	require.NotEmpty(t, slots)
	for _, slot := range slots {
		assert.True(t, slot.Date.After(start), "slot %s not after start", slot.Date)
	}
}

func TestFindAvailableDates_PreferredDay(t *testing.T) {
	a := newTestAnalyzer()
	start := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC) // a Monday

	slots := a.FindAvailableDates(nil, start, 14, "Saturday")

	require.Len(t, slots, 2)
	for _, slot := range slots {
		assert.Equal(t, time.Saturday, slot.Date.Weekday())
	}

	// Weekday name matching is case-insensitive.
	assert.Equal(t, slots, a.FindAvailableDates(nil, start, 14, "saturday"))
}

func TestFindAvailableDates_NonPositiveDaysAhead(t *testing.T) {
	a := newTestAnalyzer()
	start := time.Now()

	assert.Empty(t, a.FindAvailableDates(nil, start, 0, ""))
	assert.Empty(t, a.FindAvailableDates(nil, start, -3, ""))
}

func TestFindAvailableDates_Deterministic(t *testing.T) {
	a := newTestAnalyzer()
	start := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	events := sampleEvents(start)

	first := a.FindAvailableDates(events, start, 14, "")
	second := a.FindAvailableDates(events, start, 14, "")
	assert.Equal(t, first, second)

	// Chronological ascending, at most daysAhead entries.
	assert.LessOrEqual(t, len(first), 14)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i].Date.After(first[i-1].Date.Time))
	}
}
