package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/reportbot/internal/errors"
	"git.home.luguber.info/inful/reportbot/internal/logfields"
)

// Scheduler wraps gocron for managing the daily check and cleanup jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// JobInfo describes a scheduled job for the status API.
type JobInfo struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// NewScheduler creates a scheduler operating in the given timezone.
func NewScheduler(loc *time.Location) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, errors.SchedulerError("failed to create gocron scheduler", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleDaily registers a job firing once per day at the given time.
// Singleton mode with reschedule keeps one instance per job: a fire that
// arrives while the previous run is still going is skipped, not queued.
func (s *Scheduler) ScheduleDaily(name string, hour, minute int, task func()) (string, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", errors.SchedulerError(
			fmt.Sprintf("invalid schedule time %02d:%02d", hour, minute), nil)
	}
	job, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", errors.SchedulerError(fmt.Sprintf("failed to create daily job %s", name), err)
	}

	slog.Info("Scheduled daily job",
		logfields.JobID(job.ID().String()),
		logfields.JobName(name),
		slog.String("at", fmt.Sprintf("%02d:%02d", hour, minute)))
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// Jobs returns the registered jobs with their next run times.
func (s *Scheduler) Jobs() []JobInfo {
	var infos []JobInfo
	for _, job := range s.scheduler.Jobs() {
		info := JobInfo{ID: job.ID().String(), Name: job.Name()}
		if next, err := job.NextRun(); err == nil {
			info.NextRun = &next
		}
		infos = append(infos, info)
	}
	return infos
}
