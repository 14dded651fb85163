package sqlite

import (
	"database/sql"
	"time"

	"github.com/flumphworks/flumphbot/internal"
)

const timeFormat = time.RFC3339

type UserMapping struct {
	DiscordID     string `db:"discord_id"`
	DiscordName   string `db:"discord_name"`
	CalendarEmail string `db:"calendar_email"`
	CreatedAt     string `db:"created_at"`
}

func (m UserMapping) Convert() *internal.UserMapping {
	createdAt, _ := time.Parse(timeFormat, m.CreatedAt)
	return &internal.UserMapping{
		DiscordID:     m.DiscordID,
		DiscordName:   m.DiscordName,
		CalendarEmail: m.CalendarEmail,
		CreatedAt:     createdAt,
	}
}

type Poll struct {
	ID             string         `db:"id"`
	MessageID      string         `db:"message_id"`
	ChannelID      string         `db:"channel_id"`
	CreatedAt      string         `db:"created_at"`
	ClosesAt       string         `db:"closes_at"`
	Closed         bool           `db:"closed"`
	WinningDate    sql.NullString `db:"winning_date"`
	CreatedEventID sql.NullString `db:"created_event_id"`
}

func (p Poll) Convert() *internal.PollRecord {
	createdAt, _ := time.Parse(timeFormat, p.CreatedAt)
	closesAt, _ := time.Parse(timeFormat, p.ClosesAt)

	rec := &internal.PollRecord{
		ID:             p.ID,
		MessageID:      p.MessageID,
		ChannelID:      p.ChannelID,
		CreatedAt:      createdAt,
		ClosesAt:       closesAt,
		Closed:         p.Closed,
		CreatedEventID: p.CreatedEventID.String,
	}
	if p.WinningDate.Valid {
		if d, err := internal.ParseDate(internal.DateFormat, p.WinningDate.String); err == nil {
			rec.WinningDate = &d
		}
	}
	return rec
}

type PollOption struct {
	PollID    string `db:"poll_id"`
	Date      string `db:"date"`
	VoteCount int    `db:"vote_count"`
}

func (o PollOption) Convert() *internal.PollOption {
	date, _ := internal.ParseDate(internal.DateFormat, o.Date)
	return &internal.PollOption{
		PollID:    o.PollID,
		Date:      date,
		VoteCount: o.VoteCount,
	}
}
