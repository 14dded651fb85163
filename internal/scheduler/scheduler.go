// Package scheduler runs the bot's periodic jobs on cron schedules, with the
// weekly poll time reloadable from stored settings.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flumphworks/flumphbot/internal"
	"github.com/flumphworks/flumphbot/internal/config"
)

// Tasks are the jobs the runner executes. *bot.Bot implements this.
type Tasks interface {
	PostWeeklyPoll(ctx context.Context) error
	SyncCalendarHygiene(ctx context.Context) error
	CheckPollCompletion(ctx context.Context) error
	CheckPollWarning(ctx context.Context) error
	ConfirmVacations(ctx context.Context) error
	SendSessionReminders(ctx context.Context) error
}

type Runner struct {
	output  io.Writer
	tasks   Tasks
	storage internal.Storage
	cfg     config.SchedulerConfig

	mu   sync.Mutex
	cron *cron.Cron
	ctx  context.Context
}

func New(output io.Writer, tasks Tasks, storage internal.Storage, cfg config.SchedulerConfig) *Runner {
	if output == nil {
		output = os.Stdout
	}
	return &Runner{
		output:  output,
		tasks:   tasks,
		storage: storage,
		cfg:     cfg,
	}
}

// Start schedules all jobs and starts the cron loop. ctx is the lifetime
// context passed to every job run.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ctx = ctx
	return r.schedule()
}

// Reload rebuilds the schedule, picking up setting overrides. Call after the
// schedule settings change.
func (r *Runner) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx == nil {
		// Not started yet. Start reads the stored settings itself.
		return nil
	}
	if r.cron != nil {
		r.cron.Stop()
		r.cron = nil
	}
	return r.schedule()
}

func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		<-r.cron.Stop().Done()
		r.cron = nil
	}
	r.logf("scheduler stopped")
}

func (r *Runner) schedule() error {
	day, hour, minute := r.pollSchedule()

	loc, err := time.LoadLocation(r.timezone())
	if err != nil {
		return fmt.Errorf("scheduler: loading timezone: %w", err)
	}

	c := cron.New(cron.WithLocation(loc))

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"weekly poll", weeklySpec(day, hour, minute), r.tasks.PostWeeklyPoll},
		{"vacation confirmation", weeklySpec(day, (hour+23)%24, minute), r.tasks.ConfirmVacations},
		{"calendar hygiene", everySpec(time.Duration(r.cfg.SyncIntervalMinutes) * time.Minute), r.tasks.SyncCalendarHygiene},
		{"poll completion", everySpec(5 * time.Minute), r.tasks.CheckPollCompletion},
		{"poll warning", everySpec(30 * time.Minute), r.tasks.CheckPollWarning},
		{"session reminders", everySpec(30 * time.Minute), r.tasks.SendSessionReminders},
	}
	for _, job := range jobs {
		job := job
		_, err := c.AddFunc(job.spec, func() {
			if err := job.run(r.ctx); err != nil {
				r.logf("%s: %v", job.name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("scheduler: adding %s job: %w", job.name, err)
		}
		r.logf("scheduled %s (%s)", job.name, job.spec)
	}

	c.Start()
	r.cron = c
	return nil
}

// pollSchedule resolves the weekly poll's day/hour/minute, with stored
// settings taking precedence over config.
func (r *Runner) pollSchedule() (day string, hour, minute int) {
	day = r.cfg.PollDay
	hour, minute = parsePollTime(r.cfg.PollTime)

	if stored := r.setting("schedule_day"); stored != "" {
		day = stored
	}
	if stored := r.setting("schedule_hour"); stored != "" {
		if h, err := strconv.Atoi(stored); err == nil && h >= 0 && h < 24 {
			hour, minute = h, 0
		}
	}
	return day, hour, minute
}

func (r *Runner) timezone() string {
	if stored := r.setting("schedule_timezone"); stored != "" {
		return stored
	}
	return r.cfg.Timezone
}

func (r *Runner) setting(key string) string {
	value, err := r.storage.Setting(context.Background(), key)
	if err != nil {
		r.logf("unable to read setting %s: %v", key, err)
		return ""
	}
	return value
}

func (r *Runner) logf(format string, a ...any) {
	internal.Logf(r.output, "scheduler:", format, a...)
}

var dayAbbrev = map[string]string{
	"monday":    "MON",
	"tuesday":   "TUE",
	"wednesday": "WED",
	"thursday":  "THU",
	"friday":    "FRI",
	"saturday":  "SAT",
	"sunday":    "SUN",
}

func weeklySpec(day string, hour, minute int) string {
	abbrev, ok := dayAbbrev[strings.ToLower(day)]
	if !ok {
		abbrev = "MON"
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, abbrev)
}

func everySpec(d time.Duration) string {
	return "@every " + d.String()
}

// parsePollTime parses "HH:MM"; malformed values fall back to 09:00.
func parsePollTime(v string) (hour, minute int) {
	hh, mm, ok := strings.Cut(v, ":")
	if ok {
		h, err1 := strconv.Atoi(hh)
		m, err2 := strconv.Atoi(mm)
		if err1 == nil && err2 == nil && h >= 0 && h < 24 && m >= 0 && m < 60 {
			return h, m
		}
	}
	return 9, 0
}
