package internal

import "time"

// EventStatus is the busy/free flag of a calendar event. The values match
// Google Calendar's transparency field.
type EventStatus string

func (s EventStatus) String() string {
	return string(s)
}

var (
	StatusBusy EventStatus = "opaque"
	StatusFree EventStatus = "transparent"
)

// EventCategory is the classifier's verdict for an event. Every event maps to
// exactly one category, with CategoryOther as the fallback.
type EventCategory string

func (c EventCategory) String() string {
	return string(c)
}

var (
	CategoryDndSession EventCategory = "dnd_session"
	CategoryAway       EventCategory = "away"
	CategoryPersonal   EventCategory = "personal"
	CategoryOther      EventCategory = "other"
)

// CalendarEvent is one event on the shared calendar. ID is empty until the
// event exists on the provider side.
type CalendarEvent struct {
	ID           string
	Summary      string
	Description  string
	StartsAt     time.Time
	EndsAt       time.Time
	Status       EventStatus
	CreatorEmail string
	AllDay       bool
}

// AvailabilitySlot is one candidate day for a new session. StartsAt/EndsAt
// are reserved for time-of-day granularity; while nil the whole day is
// considered available.
type AvailabilitySlot struct {
	Date     Date
	StartsAt *time.Time
	EndsAt   *time.Time
}

// DisplayDate formats the slot's day the way it appears as a poll option,
// e.g. "Saturday, August 29".
func (s AvailabilitySlot) DisplayDate() string {
	return s.Date.Format("Monday, January 2")
}

// DisplayTime formats the slot's time range, or "All day" when the slot has
// no time-of-day.
func (s AvailabilitySlot) DisplayTime() string {
	if s.StartsAt != nil && s.EndsAt != nil {
		return s.StartsAt.Format("3:04 PM") + " - " + s.EndsAt.Format("3:04 PM")
	}
	return "All day"
}
