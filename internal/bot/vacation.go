package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/flumphworks/flumphbot/internal"
)

var vacationCommand = &discordgo.ApplicationCommand{
	Name:        "vacation",
	Description: "Manage vacation entries on the shared calendar",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add",
			Description: "Add a vacation to the calendar",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "start",
					Description: "Start date (YYYY-MM-DD)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "end",
					Description: "End date (YYYY-MM-DD)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "title",
					Description: "Optional title for the vacation",
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "List upcoming vacations and their event IDs",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove",
			Description: "Remove a vacation from the calendar",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "id",
					Description: "Event ID, as shown by /vacation list",
					Required:    true,
				},
			},
		},
	},
}

func (b *Bot) handleVacation(ctx context.Context, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	switch sub.Name {
	case "add":
		return b.handleVacationAdd(ctx, i, sub)
	case "list":
		return b.handleVacationList(ctx)
	case "remove":
		return b.handleVacationRemove(ctx, sub)
	}
	return fmt.Sprintf("Unknown subcommand %q", sub.Name), nil
}

func (b *Bot) handleVacationAdd(ctx context.Context, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	title := "Vacation"
	var start, end string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "start":
			start = opt.StringValue()
		case "end":
			end = opt.StringValue()
		case "title":
			title = opt.StringValue()
		}
	}

	startDate, err := internal.ParseDate(internal.DateFormat, start)
	if err != nil {
		return "Invalid date format. Please use YYYY-MM-DD (e.g. 2026-03-15).", nil
	}
	endDate, err := internal.ParseDate(internal.DateFormat, end)
	if err != nil {
		return "Invalid date format. Please use YYYY-MM-DD (e.g. 2026-03-15).", nil
	}
	if !endDate.After(startDate.Time) {
		return "End date must be after start date.", nil
	}

	created, err := b.calendar.CreateEvent(ctx, &internal.CalendarEvent{
		Summary:  displayName(i) + " - " + title,
		StartsAt: startDate.Time,
		EndsAt:   endDate.Time,
		Status:   internal.StatusFree,
		AllDay:   true,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added vacation from %s to %s: %s", startDate, endDate, created.Summary), nil
}

func (b *Bot) handleVacationList(ctx context.Context) (string, error) {
	now := time.Now()
	events, err := b.calendar.Events(ctx, now, now.AddDate(0, 0, 90))
	if err != nil {
		return "", err
	}

	away := b.Analyzer().FindAwayEvents(events)
	if len(away) == 0 {
		return "No upcoming vacations on the calendar.", nil
	}

	var sb strings.Builder
	sb.WriteString("Upcoming vacations:\n")
	for _, ev := range away {
		fmt.Fprintf(&sb, "- %s: %s - %s (ID %s)\n",
			ev.Summary, ev.StartsAt.Format("January 2"), ev.EndsAt.Format("January 2"), ev.ID)
	}
	return sb.String(), nil
}

func (b *Bot) handleVacationRemove(ctx context.Context, sub *discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	var id string
	for _, opt := range sub.Options {
		if opt.Name == "id" {
			id = opt.StringValue()
		}
	}
	if id == "" {
		return "Please provide an event ID, see /vacation list.", nil
	}

	ev, err := b.calendar.Event(ctx, id)
	if err != nil {
		return "", err
	}
	if err := b.calendar.DeleteEvent(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed %q from the calendar.", ev.Summary), nil
}

// displayName prefers the server nickname, then the global display name.
func displayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}
	if user := interactionUser(i); user != nil {
		if user.GlobalName != "" {
			return user.GlobalName
		}
		return user.Username
	}
	return "Someone"
}
