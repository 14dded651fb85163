package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/flumphworks/flumphbot/internal"
)

const DriverName = "sqlite3"

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) UserMapping(ctx context.Context, discordID string) (*internal.UserMapping, error) {
	var m UserMapping
	err := s.db.GetContext(ctx, &m, `
		SELECT * FROM user_mappings WHERE discord_id = ?
	`, discordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.Convert(), nil
}

func (s Storage) UserMappings(ctx context.Context) ([]*internal.UserMapping, error) {
	var mappings []UserMapping
	err := s.db.SelectContext(ctx, &mappings, `SELECT * FROM user_mappings`)
	if err != nil {
		return nil, err
	}

	res := make([]*internal.UserMapping, len(mappings))
	for i, m := range mappings {
		res[i] = m.Convert()
	}
	return res, nil
}

func (s Storage) SetUserMapping(ctx context.Context, m *internal.UserMapping) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_mappings (discord_id, discord_name, calendar_email, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(discord_id) DO UPDATE
			SET discord_name = excluded.discord_name,
			    calendar_email = excluded.calendar_email;
	`, m.DiscordID, m.DiscordName, m.CalendarEmail, m.CreatedAt.Format(timeFormat))
	return err
}

func (s Storage) DeleteUserMapping(ctx context.Context, discordID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM user_mappings WHERE discord_id = ?
	`, discordID)
	return err
}

func (s Storage) CreatePoll(ctx context.Context, poll *internal.PollRecord, options []*internal.PollOption) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO polls (id, message_id, channel_id, created_at, closes_at, closed, winning_date, created_event_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, poll.ID, poll.MessageID, poll.ChannelID,
		poll.CreatedAt.Format(timeFormat), poll.ClosesAt.Format(timeFormat),
		poll.Closed, winningDate(poll), nullable(poll.CreatedEventID))
	if err != nil {
		return fmt.Errorf("poll: %w", err)
	}

	for _, opt := range options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_options (poll_id, date, vote_count)
			VALUES (?, ?, ?)
		`, opt.PollID, opt.Date.String(), opt.VoteCount)
		if err != nil {
			return fmt.Errorf("poll option %s: %w", opt.Date, err)
		}
	}
	return tx.Commit()
}

func (s Storage) Poll(ctx context.Context, id string) (*internal.PollRecord, error) {
	var p Poll
	err := s.db.GetContext(ctx, &p, `
		SELECT * FROM polls WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.Convert(), nil
}

func (s Storage) ActivePoll(ctx context.Context) (*internal.PollRecord, error) {
	var p Poll
	err := s.db.GetContext(ctx, &p, `
		SELECT * FROM polls WHERE closed = 0 ORDER BY created_at DESC LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.Convert(), nil
}

func (s Storage) PollOptions(ctx context.Context, pollID string) ([]*internal.PollOption, error) {
	var options []PollOption
	err := s.db.SelectContext(ctx, &options, `
		SELECT * FROM poll_options WHERE poll_id = ? ORDER BY date
	`, pollID)
	if err != nil {
		return nil, err
	}

	res := make([]*internal.PollOption, len(options))
	for i, opt := range options {
		res[i] = opt.Convert()
	}
	return res, nil
}

func (s Storage) UpdatePoll(ctx context.Context, poll *internal.PollRecord) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE polls
		SET closed = ?, winning_date = ?, created_event_id = ?
		WHERE id = ?
	`, poll.Closed, winningDate(poll), nullable(poll.CreatedEventID), poll.ID)
	return err
}

func (s Storage) UpdateOptionVotes(ctx context.Context, pollID string, date internal.Date, votes int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE poll_options SET vote_count = ? WHERE poll_id = ? AND date = ?
	`, votes, pollID, date.String())
	return err
}

func (s Storage) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `
		SELECT value FROM settings WHERE key = ?
	`, key)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	return value, err
}

func (s Storage) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;
	`, key, value)
	return err
}

// KeywordList returns the stored override for a keyword category, or nil when
// none has been set. Lists are stored as JSON arrays in the settings table.
func (s Storage) KeywordList(ctx context.Context, cat internal.KeywordCategory) ([]string, error) {
	value, err := s.Setting(ctx, cat.String())
	if err != nil || value == "" {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		return nil, fmt.Errorf("keyword list %s: %w", cat, err)
	}
	return list, nil
}

func (s Storage) SetKeywordList(ctx context.Context, cat internal.KeywordCategory, list []string) error {
	value, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.SetSetting(ctx, cat.String(), string(value))
}

func winningDate(poll *internal.PollRecord) sql.NullString {
	if poll.WinningDate == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: poll.WinningDate.String(), Valid: true}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
