// Package bot is the Discord surface of FlumphBot: slash commands,
// notifications, DMs and scheduling polls.
package bot

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/flumphworks/flumphbot/internal"
	"github.com/flumphworks/flumphbot/internal/analyzer"
	"github.com/flumphworks/flumphbot/internal/config"
)

type Bot struct {
	session  *discordgo.Session
	storage  internal.Storage
	calendar internal.CalendarProvider
	cfg      *config.Config
	output   io.Writer
	polls    *PollManager

	// current holds the active analyzer; keyword changes build a new one
	// and swap it here, so in-flight classifications never see a torn
	// configuration.
	current atomic.Pointer[analyzer.Analyzer]

	// ScheduleChanged, if set, is called after schedule settings change so
	// the job runner can pick them up.
	ScheduleChanged func() error
}

func New(cfg *config.Config, storage internal.Storage, cal internal.CalendarProvider, output io.Writer) (*Bot, error) {
	if output == nil {
		output = os.Stdout
	}

	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		return nil, fmt.Errorf("bot: creating session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		session:  session,
		storage:  storage,
		calendar: cal,
		cfg:      cfg,
		output:   output,
		polls:    NewPollManager(storage, session),
	}
	b.current.Store(analyzer.New(internal.DefaultKeywords()))
	return b, nil
}

// Start opens the gateway connection, loads keyword overrides and registers
// the slash commands.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.ReloadAnalyzer(ctx); err != nil {
		return err
	}

	b.session.AddHandler(b.handleInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("bot: opening gateway: %w", err)
	}
	b.logf("connected as %s", b.session.State.User.Username)

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return err
	}
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

// Analyzer returns the current classifier.
func (b *Bot) Analyzer() *analyzer.Analyzer {
	return b.current.Load()
}

// ReloadAnalyzer rebuilds the classifier from stored keyword overrides,
// falling back to the compiled-in defaults per category, and swaps it in.
func (b *Bot) ReloadAnalyzer(ctx context.Context) error {
	cfg := internal.DefaultKeywords()
	for _, cat := range []internal.KeywordCategory{
		internal.KeywordsDnd,
		internal.KeywordsAway,
		internal.KeywordsPersonal,
	} {
		list, err := b.storage.KeywordList(ctx, cat)
		if err != nil {
			return fmt.Errorf("bot: loading keyword list %s: %w", cat, err)
		}
		if list != nil {
			cfg.SetList(cat, list)
		}
	}

	b.current.Store(analyzer.New(cfg))
	return nil
}

// Notify posts a message to the configured notification channel.
func (b *Bot) Notify(msg string) error {
	_, err := b.session.ChannelMessageSend(b.cfg.Discord.ChannelID, msg)
	return err
}

// DM sends a direct message to a user.
func (b *Bot) DM(userID, msg string) error {
	ch, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("bot: opening DM channel for %s: %w", userID, err)
	}
	_, err = b.session.ChannelMessageSend(ch.ID, msg)
	return err
}

// userByEmail finds the mapping whose calendar email matches, ignoring case.
func (b *Bot) userByEmail(ctx context.Context, email string) (*internal.UserMapping, error) {
	mappings, err := b.storage.UserMappings(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range mappings {
		if strings.EqualFold(m.CalendarEmail, email) {
			return m, nil
		}
	}
	return nil, nil
}

func (b *Bot) logf(format string, a ...any) {
	internal.Logf(b.output, "bot:", format, a...)
}
