package proc

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/leeineian/navi/sys"
)

// schedulerLogger routes gocron's own logging through the bot logger.
type schedulerLogger struct {
	l *slog.Logger
}

func newSchedulerLogger() gocron.Logger {
	return schedulerLogger{l: slog.Default().With(slog.String("component", "scheduler"))}
}

func (s schedulerLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s schedulerLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s schedulerLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s schedulerLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// Jobs runs the bot's periodic work.
type Jobs struct {
	s gocron.Scheduler
}

func NewJobs() (*Jobs, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(newSchedulerLogger()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Jobs{s: s}, nil
}

// Every schedules task at a fixed interval. A run that is still going when the next one
// is due makes that next run wait.
func (j *Jobs) Every(name string, interval time.Duration, task func()) error {
	_, err := j.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	sys.LogScheduler(sys.MsgSchedulerJobAdded, name, interval)
	return nil
}

func (j *Jobs) Start() {
	j.s.Start()
}

func (j *Jobs) Shutdown() error {
	if err := j.s.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}
