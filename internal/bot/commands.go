package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/flumphworks/flumphbot/internal"
)

var zero float64

var dndCommand = &discordgo.ApplicationCommand{
	Name:        "dnd",
	Description: "D&D session scheduling commands",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "schedule",
			Description: "Manually trigger a scheduling poll",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "status",
			Description: "Show upcoming sessions and vacations",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "sync",
			Description: "Run a calendar hygiene sync now",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "link",
			Description: "Link your calendar email to your Discord account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "email",
					Description: "The email you create calendar events with",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "unlink",
			Description: "Remove your calendar email link",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "settings",
			Description: "Show or change the poll schedule",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "day",
					Description: "Weekday the poll is posted",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "hour",
					Description: "Hour of day (0-23) the poll is posted",
					MinValue:    &zero,
					MaxValue:    23,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "timezone",
					Description: "IANA timezone, e.g. America/New_York",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "preferred_day",
					Description: "Only propose this weekday in polls; \"any\" clears it",
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "keywords",
			Description: "Show or replace a keyword list",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "Which keyword list",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "dnd", Value: internal.KeywordsDnd.String()},
						{Name: "away", Value: internal.KeywordsAway.String()},
						{Name: "personal", Value: internal.KeywordsPersonal.String()},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "list",
					Description: "Comma-separated keywords; omit to show the current list",
				},
			},
		},
	},
}

func (b *Bot) registerCommands() error {
	for _, cmd := range []*discordgo.ApplicationCommand{dndCommand, vacationCommand} {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.Discord.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("bot: registering %s: %w", cmd.Name, err)
		}
	}
	return nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	if data.Name != dndCommand.Name && data.Name != vacationCommand.Name {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		b.logf("unable to defer interaction: %v", err)
		return
	}

	ctx := context.Background()
	sub := data.Options[0]

	var reply string
	if data.Name == vacationCommand.Name {
		reply, err = b.handleVacation(ctx, i, sub)
	} else {
		switch sub.Name {
		case "schedule":
			reply, err = b.handleSchedule(ctx, i)
		case "status":
			reply, err = b.handleStatus(ctx)
		case "sync":
			reply, err = b.handleSync(ctx)
		case "link":
			reply, err = b.handleLink(ctx, i, sub)
		case "unlink":
			reply, err = b.handleUnlink(ctx, i)
		case "settings":
			reply, err = b.handleSettings(ctx, sub)
		case "keywords":
			reply, err = b.handleKeywords(ctx, sub)
		default:
			reply = fmt.Sprintf("Unknown subcommand %q", sub.Name)
		}
	}
	if err != nil {
		b.logf("command %s failed: %v", sub.Name, err)
		reply = fmt.Sprintf("Something went wrong: %v", err)
	}

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: reply})
	if err != nil {
		b.logf("unable to send followup: %v", err)
	}
}

func (b *Bot) handleSchedule(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	active, err := b.storage.ActivePoll(ctx)
	if err != nil {
		return "", err
	}
	if active != nil {
		return "There's already an active poll. Please wait for it to close.", nil
	}

	now := time.Now()
	events, err := b.calendar.Events(ctx, now, now.AddDate(0, 0, 14))
	if err != nil {
		return "", err
	}

	a := b.Analyzer()
	available := a.FindAvailableDates(events, now, 14, b.preferredDay(ctx))
	if len(available) == 0 {
		return "No available dates found in the next 2 weeks. Everyone seems to be busy!", nil
	}

	_, err = b.polls.CreateSchedulingPoll(
		ctx, i.ChannelID, available,
		b.cfg.Scheduler.PollDurationHours,
		a.FindAwayEvents(events),
	)
	if err != nil {
		return "", err
	}
	return "Scheduling poll created!", nil
}

func (b *Bot) handleStatus(ctx context.Context) (string, error) {
	now := time.Now()
	events, err := b.calendar.Events(ctx, now, now.AddDate(0, 0, 28))
	if err != nil {
		return "", err
	}

	a := b.Analyzer()

	var sessions, away []string
	for _, ev := range events {
		if a.Category(ev) == internal.CategoryDndSession {
			sessions = append(sessions, fmt.Sprintf("- %s: %s", ev.Summary, ev.StartsAt.Format("Monday, January 2 at 3:04 PM")))
		}
	}
	for _, ev := range a.FindAwayEvents(events) {
		away = append(away, fmt.Sprintf("- %s: %s - %s", ev.Summary, ev.StartsAt.Format("January 2"), ev.EndsAt.Format("January 2")))
	}

	var sb strings.Builder
	sb.WriteString("**Upcoming sessions**\n")
	if len(sessions) == 0 {
		sb.WriteString("None scheduled.\n")
	} else {
		sb.WriteString(strings.Join(sessions, "\n") + "\n")
	}
	sb.WriteString("\n**Away time**\n")
	if len(away) == 0 {
		sb.WriteString("Nobody is away. ")
	} else {
		sb.WriteString(strings.Join(away, "\n"))
	}
	return sb.String(), nil
}

func (b *Bot) handleSync(ctx context.Context) (string, error) {
	if err := b.SyncCalendarHygiene(ctx); err != nil {
		return "", err
	}
	return "Calendar hygiene sync complete.", nil
}

func (b *Bot) handleLink(ctx context.Context, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	user := interactionUser(i)
	if user == nil {
		return "", fmt.Errorf("interaction has no user")
	}

	var email string
	for _, opt := range sub.Options {
		if opt.Name == "email" {
			email = opt.StringValue()
		}
	}
	if email == "" {
		return "Please provide an email.", nil
	}

	err := b.storage.SetUserMapping(ctx, &internal.UserMapping{
		DiscordID:     user.ID,
		DiscordName:   user.Username,
		CalendarEmail: email,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Linked %s to your Discord account.", email), nil
}

func (b *Bot) handleUnlink(ctx context.Context, i *discordgo.InteractionCreate) (string, error) {
	user := interactionUser(i)
	if user == nil {
		return "", fmt.Errorf("interaction has no user")
	}
	if err := b.storage.DeleteUserMapping(ctx, user.ID); err != nil {
		return "", err
	}
	return "Your calendar email link has been removed.", nil
}

func (b *Bot) handleSettings(ctx context.Context, sub *discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	if len(sub.Options) == 0 {
		return b.describeSettings(ctx)
	}

	for _, opt := range sub.Options {
		var key, value string
		switch opt.Name {
		case "day":
			key, value = "schedule_day", opt.StringValue()
		case "hour":
			key, value = "schedule_hour", fmt.Sprintf("%d", opt.IntValue())
		case "timezone":
			key, value = "schedule_timezone", opt.StringValue()
			if _, err := time.LoadLocation(value); err != nil {
				return fmt.Sprintf("Unknown timezone %q.", value), nil
			}
		case "preferred_day":
			key, value = "preferred_day", opt.StringValue()
			if strings.EqualFold(value, "any") {
				value = ""
			}
		default:
			continue
		}
		if err := b.storage.SetSetting(ctx, key, value); err != nil {
			return "", err
		}
	}

	if b.ScheduleChanged != nil {
		if err := b.ScheduleChanged(); err != nil {
			return "", err
		}
	}
	return "Settings updated.", nil
}

func (b *Bot) describeSettings(ctx context.Context) (string, error) {
	read := func(key, fallback string) string {
		if v, err := b.storage.Setting(ctx, key); err == nil && v != "" {
			return v
		}
		return fallback
	}

	day := read("schedule_day", b.cfg.Scheduler.PollDay)
	hour := read("schedule_hour", strings.SplitN(b.cfg.Scheduler.PollTime, ":", 2)[0])
	tz := read("schedule_timezone", b.cfg.Scheduler.Timezone)
	preferred := read("preferred_day", "any")
	if preferred == "" {
		preferred = "any"
	}

	return fmt.Sprintf(
		"Poll posted every %s at %s:00 (%s). Preferred session day: %s.",
		day, hour, tz, preferred,
	), nil
}

func (b *Bot) handleKeywords(ctx context.Context, sub *discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	var category, list string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "category":
			category = opt.StringValue()
		case "list":
			list = opt.StringValue()
		}
	}
	cat := internal.KeywordCategory(category)

	if list == "" {
		stored, err := b.storage.KeywordList(ctx, cat)
		if err != nil {
			return "", err
		}
		if stored == nil {
			stored = internal.DefaultKeywords().List(cat)
			return fmt.Sprintf("Current %s keywords (defaults): %s", category, strings.Join(stored, ", ")), nil
		}
		return fmt.Sprintf("Current %s keywords: %s", category, strings.Join(stored, ", ")), nil
	}

	keywords := splitKeywords(list)
	if len(keywords) == 0 {
		return "Please provide at least one keyword.", nil
	}
	if err := b.storage.SetKeywordList(ctx, cat, keywords); err != nil {
		return "", err
	}
	if err := b.ReloadAnalyzer(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("Updated %s keywords: %s", category, strings.Join(keywords, ", ")), nil
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func splitKeywords(list string) []string {
	var keywords []string
	for _, kw := range strings.Split(list, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
