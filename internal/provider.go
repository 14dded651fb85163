package internal

import (
	"context"
	"time"
)

// CalendarProvider is the calendar backend the bot reads from and repairs.
type CalendarProvider interface {
	Events(ctx context.Context, from, to time.Time) ([]*CalendarEvent, error)
	Event(ctx context.Context, id string) (*CalendarEvent, error)
	CreateEvent(ctx context.Context, _ *CalendarEvent) (*CalendarEvent, error)
	UpdateEventStatus(ctx context.Context, id string, status EventStatus) error
	DeleteEvent(ctx context.Context, id string) error
}

// Storage persists user mappings, poll state, settings and keyword lists.
type Storage interface {
	UserMapping(ctx context.Context, discordID string) (*UserMapping, error)
	UserMappings(ctx context.Context) ([]*UserMapping, error)
	SetUserMapping(ctx context.Context, m *UserMapping) error
	DeleteUserMapping(ctx context.Context, discordID string) error

	CreatePoll(ctx context.Context, poll *PollRecord, options []*PollOption) error
	Poll(ctx context.Context, id string) (*PollRecord, error)
	ActivePoll(ctx context.Context) (*PollRecord, error)
	PollOptions(ctx context.Context, pollID string) ([]*PollOption, error)
	UpdatePoll(ctx context.Context, poll *PollRecord) error
	UpdateOptionVotes(ctx context.Context, pollID string, date Date, votes int) error

	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// KeywordList returns nil (and no error) when the category has no
	// stored override.
	KeywordList(ctx context.Context, cat KeywordCategory) ([]string, error)
	SetKeywordList(ctx context.Context, cat KeywordCategory, list []string) error
}

// UserMapping links a Discord user to the calendar email they create events
// with.
type UserMapping struct {
	DiscordID     string
	DiscordName   string
	CalendarEmail string
	CreatedAt     time.Time
}

// PollRecord is one scheduling poll posted to Discord.
type PollRecord struct {
	ID             string
	MessageID      string
	ChannelID      string
	CreatedAt      time.Time
	ClosesAt       time.Time
	Closed         bool
	WinningDate    *Date
	CreatedEventID string
}

// PollOption is one selectable date in a poll.
type PollOption struct {
	PollID    string
	Date      Date
	VoteCount int
}
