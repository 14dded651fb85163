package analyzer

import (
	"strings"
	"time"

	"github.com/flumphworks/flumphbot/internal"
)

// FindAvailableDates returns the days with no existing event, starting the
// day after startDate and looking daysAhead days forward, in chronological
// order. preferredDay optionally restricts the result to a single weekday
// name ("Saturday"), matched case-insensitively.
//
// Any event blocks its entire start day regardless of category; the poll
// operates at whole-day granularity. Only the start day is blocked: a
// multi-day event does not block the rest of its span.
func (a *Analyzer) FindAvailableDates(
	events []*internal.CalendarEvent,
	startDate time.Time,
	daysAhead int,
	preferredDay string,
) []internal.AvailabilitySlot {
	blocked := make(map[string]struct{}, len(events))
	for _, ev := range events {
		day := internal.NewDateFromTime(ev.StartsAt)
		blocked[day.String()] = struct{}{}
	}

	var available []internal.AvailabilitySlot
	current := internal.NewDateFromTime(startDate)

	for i := 0; i < daysAhead; i++ {
		current = current.AddDate(0, 0, 1)

		if _, ok := blocked[current.String()]; ok {
			continue
		}
		if preferredDay != "" && !strings.EqualFold(current.Weekday().String(), preferredDay) {
			continue
		}
		available = append(available, internal.AvailabilitySlot{Date: current})
	}
	return available
}
