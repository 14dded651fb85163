package google

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/flumphworks/flumphbot/internal"
)

func newEvent(gevent *calendar.Event) *internal.CalendarEvent {
	var (
		startsAt, endsAt time.Time
		allDay           bool
	)
	if gevent.Start != nil && gevent.Start.Date != "" {
		// All-day events carry a date instead of a dateTime.
		startsAt, _ = time.Parse(internal.DateFormat, gevent.Start.Date)
		if gevent.End != nil {
			endsAt, _ = time.Parse(internal.DateFormat, gevent.End.Date)
		}
		allDay = true
	} else {
		if gevent.Start != nil {
			startsAt, _ = time.Parse(time.RFC3339, gevent.Start.DateTime)
		}
		if gevent.End != nil {
			endsAt, _ = time.Parse(time.RFC3339, gevent.End.DateTime)
		}
	}

	status := internal.StatusBusy
	if gevent.Transparency == internal.StatusFree.String() {
		status = internal.StatusFree
	}

	var creatorEmail string
	if gevent.Creator != nil {
		creatorEmail = gevent.Creator.Email
	}

	return &internal.CalendarEvent{
		ID:           gevent.Id,
		Summary:      gevent.Summary,
		Description:  gevent.Description,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		Status:       status,
		CreatorEmail: creatorEmail,
		AllDay:       allDay,
	}
}

func newGoogleEvent(event *internal.CalendarEvent) *calendar.Event {
	gevent := &calendar.Event{
		Summary:      event.Summary,
		Description:  event.Description,
		Transparency: event.Status.String(),
		Reminders: &calendar.EventReminders{
			UseDefault: true,
		},
	}

	if event.AllDay {
		gevent.Start = &calendar.EventDateTime{
			Date: event.StartsAt.Format(internal.DateFormat),
		}
		gevent.End = &calendar.EventDateTime{
			Date: event.EndsAt.Format(internal.DateFormat),
		}
	} else {
		gevent.Start = &calendar.EventDateTime{
			DateTime: event.StartsAt.Format(time.RFC3339),
		}
		gevent.End = &calendar.EventDateTime{
			DateTime: event.EndsAt.Format(time.RFC3339),
		}
	}
	return gevent
}
