package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flumphworks/flumphbot/calendar/google"
	"github.com/flumphworks/flumphbot/internal/bot"
	"github.com/flumphworks/flumphbot/internal/config"
	"github.com/flumphworks/flumphbot/internal/scheduler"
	"github.com/flumphworks/flumphbot/internal/sqlite"
)

var flags struct {
	ConfigPath string
	Verbose    bool
}

func init() {
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the optional YAML config file")
	flag.BoolVar(&flags.Verbose, "verbose", false, "log calendar API calls")
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fatal("Unable to load configuration:", err)
	}
	if cfg.Discord.BotToken == "" || cfg.Discord.ChannelID == "" {
		fatal("DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID are required")
	}
	if len(cfg.Google.Credentials) == 0 || cfg.Google.CalendarID == "" {
		fatal("GOOGLE_CREDENTIALS_JSON and GOOGLE_CALENDAR_ID are required")
	}

	db, err := sql.Open(sqlite.DriverName, cfg.DBPath)
	if err != nil {
		fatal("Unable to open database:", err)
	}
	defer db.Close()

	storage := sqlite.NewStorage(db)

	googleCal, err := google.NewClient(ctx, cfg.Google.Credentials, cfg.Google.CalendarID)
	if err != nil {
		fatal("Unable to create google client:", err)
	}
	googleCal.Verbose = flags.Verbose

	b, err := bot.New(cfg, storage, googleCal, os.Stdout)
	if err != nil {
		fatal("Unable to create bot:", err)
	}
	runner := scheduler.New(os.Stdout, b, storage, cfg.Scheduler)
	b.ScheduleChanged = runner.Reload

	if err := b.Start(ctx); err != nil {
		fatal("Unable to start bot:", err)
	}
	defer b.Stop()

	if err := runner.Start(ctx); err != nil {
		fatal("Unable to start scheduler:", err)
	}
	defer runner.Stop()

	<-ctx.Done()
}

func fatal(a ...any) {
	fmt.Fprintln(os.Stderr, a...)
	os.Exit(1)
}
