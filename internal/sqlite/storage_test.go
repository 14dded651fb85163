package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flumphworks/flumphbot/internal"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	db, err := sql.Open(DriverName, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStorage(db)
}

func TestUserMappings(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	got, err := s.UserMapping(ctx, "123")
	require.NoError(t, err)
	assert.Nil(t, got)

	mapping := &internal.UserMapping{
		DiscordID:     "123",
		DiscordName:   "alfie",
		CalendarEmail: "alfie@example.com",
		CreatedAt:     time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SetUserMapping(ctx, mapping))

	got, err = s.UserMapping(ctx, "123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mapping, got)

	// Upsert keeps the mapping unique per Discord ID.
	mapping.CalendarEmail = "alfie@flumph.example.com"
	require.NoError(t, s.SetUserMapping(ctx, mapping))

	all, err := s.UserMappings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "alfie@flumph.example.com", all[0].CalendarEmail)

	require.NoError(t, s.DeleteUserMapping(ctx, "123"))
	got, err = s.UserMapping(ctx, "123")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPolls(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	active, err := s.ActivePoll(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	createdAt := time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)
	poll := &internal.PollRecord{
		ID:        "poll-1",
		MessageID: "900",
		ChannelID: "42",
		CreatedAt: createdAt,
		ClosesAt:  createdAt.Add(48 * time.Hour),
	}
	options := []*internal.PollOption{
		{PollID: "poll-1", Date: internal.NewDate(2026, time.August, 29, time.UTC)},
		{PollID: "poll-1", Date: internal.NewDate(2026, time.September, 5, time.UTC)},
	}
	require.NoError(t, s.CreatePoll(ctx, poll, options))

	active, err = s.ActivePoll(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "poll-1", active.ID)
	assert.False(t, active.Closed)
	assert.Nil(t, active.WinningDate)
	assert.Empty(t, active.CreatedEventID)

	got, err := s.PollOptions(ctx, "poll-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-08-29", got[0].Date.String())

	require.NoError(t, s.UpdateOptionVotes(ctx, "poll-1", options[0].Date, 3))
	got, err = s.PollOptions(ctx, "poll-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got[0].VoteCount)

	winner := options[0].Date
	poll.Closed = true
	poll.WinningDate = &winner
	poll.CreatedEventID = "gcal-evt-1"
	require.NoError(t, s.UpdatePoll(ctx, poll))

	active, err = s.ActivePoll(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	closed, err := s.Poll(ctx, "poll-1")
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.True(t, closed.Closed)
	require.NotNil(t, closed.WinningDate)
	assert.Equal(t, "2026-08-29", closed.WinningDate.String())
	assert.Equal(t, "gcal-evt-1", closed.CreatedEventID)
}

func TestSettings(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	value, err := s.Setting(ctx, "schedule_day")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, s.SetSetting(ctx, "schedule_day", "Saturday"))
	require.NoError(t, s.SetSetting(ctx, "schedule_day", "Sunday"))

	value, err = s.Setting(ctx, "schedule_day")
	require.NoError(t, err)
	assert.Equal(t, "Sunday", value)
}

func TestKeywordLists(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	list, err := s.KeywordList(ctx, internal.KeywordsDnd)
	require.NoError(t, err)
	assert.Nil(t, list)

	override := []string{"D&D", "One Shot"}
	require.NoError(t, s.SetKeywordList(ctx, internal.KeywordsDnd, override))

	list, err = s.KeywordList(ctx, internal.KeywordsDnd)
	require.NoError(t, err)
	assert.Equal(t, override, list)

	// Other categories stay untouched.
	list, err = s.KeywordList(ctx, internal.KeywordsPersonal)
	require.NoError(t, err)
	assert.Nil(t, list)
}
