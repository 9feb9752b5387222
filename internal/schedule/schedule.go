package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard 5-field cron expressions; daily wall-clock
// times are compiled down to these.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Task is one unit of scheduled work. Errors are the task's own business;
// the scheduler fires again at the next configured time regardless.
type Task func(ctx context.Context)

// Scheduler fires a task at fixed wall-clock times each day ("09:00",
// "15:00", ...). The task runs synchronously inside the loop goroutine, so
// two cycles can never overlap: a tick that arrives while the task is still
// running fires immediately after it finishes.
type Scheduler struct {
	schedules  []cron.Schedule
	runOnStart bool
	logger     *slog.Logger
}

// New compiles the given HH:MM times into daily schedules.
func New(times []string, runOnStart bool, logger *slog.Logger) (*Scheduler, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("no schedule times given")
	}

	schedules := make([]cron.Schedule, 0, len(times))
	for _, t := range times {
		parsed, err := time.Parse("15:04", t)
		if err != nil {
			return nil, fmt.Errorf("parse schedule time %q: %w", t, err)
		}
		spec := fmt.Sprintf("%d %d * * *", parsed.Minute(), parsed.Hour())
		sched, err := cronParser.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("compile schedule time %q: %w", t, err)
		}
		schedules = append(schedules, sched)
	}

	return &Scheduler{
		schedules:  schedules,
		runOnStart: runOnStart,
		logger:     logger,
	}, nil
}

// Next returns the earliest fire time after the given time across all
// configured daily times.
func (s *Scheduler) Next(after time.Time) time.Time {
	var next time.Time
	for _, sched := range s.schedules {
		n := sched.Next(after)
		if next.IsZero() || n.Before(next) {
			next = n
		}
	}
	return next
}

// Run starts the schedule loop. It returns nil when ctx is cancelled
// (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context, task Task) error {
	s.logger.Info("starting scheduler",
		"times", len(s.schedules),
		"run_on_start", s.runOnStart,
	)

	if s.runOnStart {
		task(ctx)
	}

	for {
		next := s.Next(time.Now())
		s.logger.Info("next cycle scheduled", "at", next.Format(time.RFC1123))

		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(time.Until(next)):
			task(ctx)
		}
	}
}
