package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	"github.com/flumphworks/flumphbot/internal"
)

func TestNewEvent_Timed(t *testing.T) {
	gevent := &calendar.Event{
		Id:      "abc123",
		Summary: "D&D Session",
		Start:   &calendar.EventDateTime{DateTime: "2026-08-15T18:00:00Z"},
		End:     &calendar.EventDateTime{DateTime: "2026-08-15T22:00:00Z"},
		Creator: &calendar.EventCreator{Email: "dm@example.com"},
	}

	ev := newEvent(gevent)

	assert.Equal(t, "abc123", ev.ID)
	assert.Equal(t, "D&D Session", ev.Summary)
	assert.Equal(t, time.Date(2026, time.August, 15, 18, 0, 0, 0, time.UTC), ev.StartsAt)
	assert.Equal(t, time.Date(2026, time.August, 15, 22, 0, 0, 0, time.UTC), ev.EndsAt)
	assert.Equal(t, "dm@example.com", ev.CreatorEmail)
	assert.False(t, ev.AllDay)
	// Missing transparency means opaque.
	assert.Equal(t, internal.StatusBusy, ev.Status)
}

func TestNewEvent_AllDay(t *testing.T) {
	gevent := &calendar.Event{
		Id:      "vac1",
		Summary: "Vacation in Hawaii",
		Start:   &calendar.EventDateTime{Date: "2026-08-10"},
		End:     &calendar.EventDateTime{Date: "2026-08-17"},
	}

	ev := newEvent(gevent)

	assert.True(t, ev.AllDay)
	assert.Equal(t, time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC), ev.StartsAt)
	assert.Equal(t, time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC), ev.EndsAt)
	assert.Equal(t, 7*24*time.Hour, ev.EndsAt.Sub(ev.StartsAt))
}

func TestNewEvent_Transparent(t *testing.T) {
	gevent := &calendar.Event{
		Id:           "free1",
		Summary:      "Team meeting",
		Transparency: "transparent",
		Start:        &calendar.EventDateTime{DateTime: "2026-08-15T10:00:00Z"},
		End:          &calendar.EventDateTime{DateTime: "2026-08-15T11:00:00Z"},
	}

	assert.Equal(t, internal.StatusFree, newEvent(gevent).Status)
}

func TestNewGoogleEvent_Timed(t *testing.T) {
	start := time.Date(2026, time.August, 15, 18, 0, 0, 0, time.UTC)
	ev := &internal.CalendarEvent{
		Summary:     "D&D Session",
		Description: "Scheduled via FlumphBot",
		StartsAt:    start,
		EndsAt:      start.Add(4 * time.Hour),
		Status:      internal.StatusBusy,
	}

	gevent := newGoogleEvent(ev)

	require.NotNil(t, gevent.Start)
	require.NotNil(t, gevent.End)
	assert.Equal(t, "2026-08-15T18:00:00Z", gevent.Start.DateTime)
	assert.Equal(t, "2026-08-15T22:00:00Z", gevent.End.DateTime)
	assert.Empty(t, gevent.Start.Date)
	assert.Equal(t, "opaque", gevent.Transparency)
	assert.True(t, gevent.Reminders.UseDefault)
}

func TestNewGoogleEvent_AllDay(t *testing.T) {
	ev := &internal.CalendarEvent{
		Summary:  "Vacation",
		StartsAt: time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC),
		Status:   internal.StatusFree,
		AllDay:   true,
	}

	gevent := newGoogleEvent(ev)

	assert.Equal(t, "2026-08-10", gevent.Start.Date)
	assert.Equal(t, "2026-08-17", gevent.End.Date)
	assert.Empty(t, gevent.Start.DateTime)
	assert.Equal(t, "transparent", gevent.Transparency)
}

func TestRoundTrip(t *testing.T) {
	start := time.Date(2026, time.August, 15, 18, 0, 0, 0, time.UTC)
	ev := &internal.CalendarEvent{
		Summary:  "Session 12",
		StartsAt: start,
		EndsAt:   start.Add(4 * time.Hour),
		Status:   internal.StatusBusy,
	}

	got := newEvent(newGoogleEvent(ev))

	assert.Equal(t, ev.Summary, got.Summary)
	assert.True(t, ev.StartsAt.Equal(got.StartsAt))
	assert.True(t, ev.EndsAt.Equal(got.EndsAt))
	assert.Equal(t, ev.Status, got.Status)
}
