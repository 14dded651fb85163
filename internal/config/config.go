// Package config loads the bot configuration from an optional YAML file with
// environment variables (and a .env file) taking precedence.
package config

import (
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	GuildID   string `yaml:"guild_id"`
	ChannelID string `yaml:"channel_id"`
}

type GoogleConfig struct {
	// Credentials is the service-account key JSON. The environment variable
	// may hold it base64-encoded or as plain JSON.
	Credentials []byte `yaml:"-"`
	CalendarID  string `yaml:"calendar_id"`
}

type SchedulerConfig struct {
	PollDay             string `yaml:"poll_day"`
	PollTime            string `yaml:"poll_time"`
	PollDurationHours   int    `yaml:"poll_duration_hours"`
	SyncIntervalMinutes int    `yaml:"sync_interval_minutes"`
	Timezone            string `yaml:"timezone"`
}

type Config struct {
	Discord   DiscordConfig   `yaml:"discord"`
	Google    GoogleConfig    `yaml:"google"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	DBPath    string          `yaml:"db_path"`
}

// Normalize fills in missing values with defaults so partially-filled configs
// still behave.
func (c *Config) Normalize() {
	if c.Scheduler.PollDay == "" {
		c.Scheduler.PollDay = "Monday"
	}
	if c.Scheduler.PollTime == "" {
		c.Scheduler.PollTime = "09:00"
	}
	if c.Scheduler.PollDurationHours <= 0 {
		c.Scheduler.PollDurationHours = 48
	}
	if c.Scheduler.SyncIntervalMinutes <= 0 {
		c.Scheduler.SyncIntervalMinutes = 15
	}
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "America/New_York"
	}
	if c.DBPath == "" {
		c.DBPath = "flumphbot.db"
	}
}

// Load reads the YAML file at path (if non-empty and present), overlays
// environment variables on top, and normalizes defaults. A .env file in the
// working directory is loaded first, if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// No config file, env only.
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	cfg.Normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Discord.BotToken, "DISCORD_BOT_TOKEN")
	setString(&c.Discord.GuildID, "DISCORD_GUILD_ID")
	setString(&c.Discord.ChannelID, "DISCORD_CHANNEL_ID")

	if v := os.Getenv("GOOGLE_CREDENTIALS_JSON"); v != "" {
		c.Google.Credentials = decodeCredentials(v)
	}
	setString(&c.Google.CalendarID, "GOOGLE_CALENDAR_ID")

	setString(&c.Scheduler.PollDay, "POLL_DAY")
	setString(&c.Scheduler.PollTime, "POLL_TIME")
	setInt(&c.Scheduler.PollDurationHours, "POLL_DURATION_HOURS")
	setInt(&c.Scheduler.SyncIntervalMinutes, "SYNC_INTERVAL_MINUTES")
	setString(&c.Scheduler.Timezone, "TIMEZONE")

	setString(&c.DBPath, "DB_PATH")
}

func decodeCredentials(v string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
		return decoded
	}
	// Plain JSON, used for local development.
	return []byte(v)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
