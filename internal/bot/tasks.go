package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flumphworks/flumphbot/internal"
)

const pollWarningWindow = 6 * time.Hour

// ErrSyncing reports that one or more events could not be repaired during a
// hygiene sync. Details are in the logs.
var ErrSyncing = errors.New("bot: unable to sync some events, check the logs")

// PostWeeklyPoll checks availability for the next two weeks and posts a
// scheduling poll, unless one is already running.
func (b *Bot) PostWeeklyPoll(ctx context.Context) error {
	active, err := b.storage.ActivePoll(ctx)
	if err != nil {
		return err
	}
	if active != nil {
		b.logf("active poll %s exists, skipping weekly poll", active.ID)
		return nil
	}

	now := time.Now()
	events, err := b.calendar.Events(ctx, now, now.AddDate(0, 0, 14))
	if err != nil {
		return fmt.Errorf("bot: fetching events: %w", err)
	}

	a := b.Analyzer()
	available := a.FindAvailableDates(events, now, 14, b.preferredDay(ctx))
	if len(available) == 0 {
		return b.Notify("No available dates found for the next 2 weeks. Everyone seems to be busy!")
	}

	_, err = b.polls.CreateSchedulingPoll(
		ctx,
		b.cfg.Discord.ChannelID,
		available,
		b.cfg.Scheduler.PollDurationHours,
		a.FindAwayEvents(events),
	)
	if err != nil {
		return err
	}
	b.logf("weekly poll created with %d option(s)", len(available))
	return nil
}

// SyncCalendarHygiene repairs busy/free flags and alerts the creators of
// events that look personal. Individual event failures are logged and do not
// stop the run.
func (b *Bot) SyncCalendarHygiene(ctx context.Context) error {
	now := time.Now()
	events, err := b.calendar.Events(ctx, now, now.AddDate(0, 0, 14))
	if err != nil {
		return fmt.Errorf("bot: fetching events: %w", err)
	}

	a := b.Analyzer()

	var failed bool
	needsFix := a.FindEventsNeedingFix(events)
	for _, ev := range needsFix {
		if err := b.calendar.UpdateEventStatus(ctx, ev.ID, internal.StatusFree); err != nil {
			b.logf("unable to fix event %s: %v", ev.ID, err)
			failed = true
			continue
		}
		b.notifyFixed(ctx, a.Category(ev), ev)
	}

	personal := a.FindPersonalEvents(events)
	for _, res := range personal {
		if res.Event.CreatorEmail == "" {
			continue
		}
		mapping, err := b.userByEmail(ctx, res.Event.CreatorEmail)
		if err != nil {
			return err
		}
		if mapping == nil {
			continue
		}
		msg := fmt.Sprintf(
			"Hey! Looks like %q might be personal. (Detected keywords: %s)\n\n"+
				"Did you mean to add this to the D&D calendar?",
			res.Event.Summary, strings.Join(res.MatchedKeywords, ", "),
		)
		if err := b.DM(mapping.DiscordID, msg); err != nil {
			b.logf("unable to DM %s: %v", mapping.DiscordID, err)
		}
	}

	b.logf("calendar sync complete: fixed %d, found %d personal event(s)", len(needsFix), len(personal))
	if failed {
		return ErrSyncing
	}
	return nil
}

func (b *Bot) notifyFixed(ctx context.Context, category internal.EventCategory, ev *internal.CalendarEvent) {
	var msg string
	if category == internal.CategoryAway {
		creator := ev.CreatorEmail
		if creator == "" {
			creator = "Someone"
		}
		if mapping, err := b.userByEmail(ctx, ev.CreatorEmail); err == nil && mapping != nil {
			creator = mapping.DiscordName
		}
		msg = fmt.Sprintf(
			"**%s** - You created an Away Time item (%q) in the shared D&D calendar "+
				"that was set to Busy. I automatically changed it to Free to not "+
				"interfere with shared free/busy schedules.",
			creator, ev.Summary,
		)
	} else {
		msg = fmt.Sprintf("Fixed %q to 'Free' status (was incorrectly marked as 'Busy')", ev.Summary)
	}
	if err := b.Notify(msg); err != nil {
		b.logf("unable to notify about fix of %s: %v", ev.ID, err)
	}
}

// CheckPollCompletion closes the active poll once its deadline passes and
// creates the winning session event.
func (b *Bot) CheckPollCompletion(ctx context.Context) error {
	active, err := b.storage.ActivePoll(ctx)
	if err != nil {
		return err
	}
	if active == nil || time.Now().UTC().Before(active.ClosesAt) {
		return nil
	}

	message, err := b.session.ChannelMessage(active.ChannelID, active.MessageID)
	if err != nil {
		return fmt.Errorf("bot: fetching poll message %s: %w", active.MessageID, err)
	}

	winner, err := b.polls.CloseAndGetWinner(ctx, active, message)
	if err != nil {
		return err
	}
	if winner == nil {
		return b.Notify("Poll closed but no votes were cast. No session scheduled.")
	}

	created, err := b.calendar.CreateEvent(ctx, NewDndEvent(winner.Time, "", 0, ""))
	if err != nil {
		return fmt.Errorf("bot: creating session event: %w", err)
	}

	active.CreatedEventID = created.ID
	if err := b.storage.UpdatePoll(ctx, active); err != nil {
		return err
	}
	return b.Notify(fmt.Sprintf("D&D session scheduled for %s!", winner.Format("Monday, January 2")))
}

// CheckPollWarning posts a last-call reminder when the active poll is about
// to close. Sent once per poll, tracked in settings.
func (b *Bot) CheckPollWarning(ctx context.Context) error {
	active, err := b.storage.ActivePoll(ctx)
	if err != nil || active == nil {
		return err
	}

	remaining := time.Until(active.ClosesAt)
	if remaining <= 0 || remaining > pollWarningWindow {
		return nil
	}

	key := "poll_warned_" + active.ID
	warned, err := b.storage.Setting(ctx, key)
	if err != nil || warned != "" {
		return err
	}

	msg := fmt.Sprintf("The scheduling poll closes in about %d hour(s). Vote now if you haven't!",
		int(remaining.Hours())+1)
	if err := b.Notify(msg); err != nil {
		return err
	}
	return b.storage.SetSetting(ctx, key, time.Now().UTC().Format(time.RFC3339))
}

// ConfirmVacations DMs each player their upcoming away events and asks them
// to verify the dates are still accurate.
func (b *Bot) ConfirmVacations(ctx context.Context) error {
	now := time.Now()
	events, err := b.calendar.Events(ctx, now, now.AddDate(0, 0, 28))
	if err != nil {
		return fmt.Errorf("bot: fetching events: %w", err)
	}

	byCreator := make(map[string][]*internal.CalendarEvent)
	for _, ev := range b.Analyzer().FindAwayEvents(events) {
		if ev.CreatorEmail != "" {
			byCreator[ev.CreatorEmail] = append(byCreator[ev.CreatorEmail], ev)
		}
	}

	var sent int
	for email, vacations := range byCreator {
		mapping, err := b.userByEmail(ctx, email)
		if err != nil {
			return err
		}
		if mapping == nil {
			continue
		}

		var sb strings.Builder
		sb.WriteString("You have the following upcoming vacations on the D&D calendar:\n\n")
		for _, v := range vacations {
			fmt.Fprintf(&sb, "- %s: %s - %s\n", v.Summary, v.StartsAt.Format("January 2"), v.EndsAt.Format("January 2"))
		}
		sb.WriteString("\nAre these dates still accurate? If not, please update them on the shared calendar.")

		if err := b.DM(mapping.DiscordID, sb.String()); err != nil {
			b.logf("unable to DM %s: %v", mapping.DiscordID, err)
			continue
		}
		sent++
	}

	b.logf("sent vacation confirmations to %d user(s)", sent)
	return nil
}

// SendSessionReminders notifies the channel the day before a session. Sent
// once per event, tracked in settings.
func (b *Bot) SendSessionReminders(ctx context.Context) error {
	now := time.Now()
	events, err := b.calendar.Events(ctx, now, now.AddDate(0, 0, 2))
	if err != nil {
		return fmt.Errorf("bot: fetching events: %w", err)
	}

	a := b.Analyzer()
	for _, ev := range events {
		if !a.IsDndSession(ev) {
			continue
		}
		until := ev.StartsAt.Sub(now)
		if until <= 0 || until > 24*time.Hour {
			continue
		}

		key := "reminded_" + ev.ID
		reminded, err := b.storage.Setting(ctx, key)
		if err != nil {
			return err
		}
		if reminded != "" {
			continue
		}

		msg := fmt.Sprintf("Reminder: %q is tomorrow at %s. See you there!",
			ev.Summary, ev.StartsAt.Format("3:04 PM"))
		if err := b.Notify(msg); err != nil {
			return err
		}
		if err := b.storage.SetSetting(ctx, key, now.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

// preferredDay reads the optional preferred-weekday setting; empty means no
// weekday filter.
func (b *Bot) preferredDay(ctx context.Context) string {
	day, err := b.storage.Setting(ctx, "preferred_day")
	if err != nil {
		b.logf("unable to read preferred_day setting: %v", err)
		return ""
	}
	return day
}
