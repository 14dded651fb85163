package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Monday", cfg.Scheduler.PollDay)
	assert.Equal(t, "09:00", cfg.Scheduler.PollTime)
	assert.Equal(t, 48, cfg.Scheduler.PollDurationHours)
	assert.Equal(t, 15, cfg.Scheduler.SyncIntervalMinutes)
	assert.Equal(t, "America/New_York", cfg.Scheduler.Timezone)
	assert.Equal(t, "flumphbot.db", cfg.DBPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token-123")
	t.Setenv("DISCORD_CHANNEL_ID", "42")
	t.Setenv("GOOGLE_CALENDAR_ID", "shared@group.calendar.google.com")
	t.Setenv("POLL_DAY", "Saturday")
	t.Setenv("POLL_DURATION_HOURS", "24")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "token-123", cfg.Discord.BotToken)
	assert.Equal(t, "42", cfg.Discord.ChannelID)
	assert.Equal(t, "shared@group.calendar.google.com", cfg.Google.CalendarID)
	assert.Equal(t, "Saturday", cfg.Scheduler.PollDay)
	assert.Equal(t, 24, cfg.Scheduler.PollDurationHours)
}

func TestLoad_Base64Credentials(t *testing.T) {
	creds := `{"type":"service_account"}`
	t.Setenv("GOOGLE_CREDENTIALS_JSON", base64.StdEncoding.EncodeToString([]byte(creds)))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, creds, string(cfg.Google.Credentials))
}

func TestLoad_PlainJSONCredentials(t *testing.T) {
	creds := `{"type": "service_account"}`
	t.Setenv("GOOGLE_CREDENTIALS_JSON", creds)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, creds, string(cfg.Google.Credentials))
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
discord:
  channel_id: "77"
scheduler:
  poll_day: Friday
  sync_interval_minutes: 30
db_path: /var/lib/flumphbot/bot.db
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "77", cfg.Discord.ChannelID)
	assert.Equal(t, "Friday", cfg.Scheduler.PollDay)
	assert.Equal(t, 30, cfg.Scheduler.SyncIntervalMinutes)
	assert.Equal(t, "/var/lib/flumphbot/bot.db", cfg.DBPath)
	// Unset fields still get defaults.
	assert.Equal(t, "09:00", cfg.Scheduler.PollTime)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  poll_day: Friday\n"), 0o600))
	t.Setenv("POLL_DAY", "Sunday")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sunday", cfg.Scheduler.PollDay)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
