// Package engine orchestrates the daily report lifecycle: it fires
// checks at configured times, decides between generating, reminding,
// and waiting, and guarantees single-completion-per-day behavior.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/reportbot/internal/archive"
	"git.home.luguber.info/inful/reportbot/internal/config"
	"git.home.luguber.info/inful/reportbot/internal/errors"
	"git.home.luguber.info/inful/reportbot/internal/generate"
	"git.home.luguber.info/inful/reportbot/internal/logfields"
	"git.home.luguber.info/inful/reportbot/internal/metrics"
	"git.home.luguber.info/inful/reportbot/internal/notify"
	"git.home.luguber.info/inful/reportbot/internal/report"
	"git.home.luguber.info/inful/reportbot/internal/source"
	"git.home.luguber.info/inful/reportbot/internal/state"
)

// Fetcher retrieves report rows from the configured source URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]source.Record, error)
}

// Archiver persists generated reports for later review.
type Archiver interface {
	Save(ctx context.Context, e archive.Entry) (int64, error)
}

// Outcome is re-exported for callers of RunCheck.
type Outcome = metrics.Outcome

// CheckResult is the synchronous result of one check, returned to
// manual triggers.
type CheckResult struct {
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
	Err     string  `json:"error,omitempty"`
}

// Engine drives the per-day state machine. All collaborators are
// injected; the engine owns no goroutines beyond the scheduler.
type Engine struct {
	cfg       *config.Config
	store     *state.Store
	fetcher   Fetcher
	generator generate.Generator
	notifier  notify.Notifier
	archiver  Archiver
	recorder  metrics.Recorder

	// checkMu serializes scheduled fires and manual triggers; the
	// state machine is not reentrant.
	checkMu sync.Mutex

	mu        sync.Mutex
	scheduler *Scheduler
	running   bool
	startedAt time.Time

	now func() time.Time
}

// New constructs the engine. A nil recorder defaults to Noop.
func New(cfg *config.Config, store *state.Store, fetcher Fetcher, generator generate.Generator, notifier notify.Notifier, archiver Archiver, recorder metrics.Recorder) *Engine {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Engine{
		cfg:       cfg,
		store:     store,
		fetcher:   fetcher,
		generator: generator,
		notifier:  notifier,
		archiver:  archiver,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Start schedules the check and cleanup jobs and begins firing. A
// disabled engine starts nothing and reports not-running.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cfg.Enabled {
		slog.Info("Scheduler is disabled in configuration")
		return nil
	}
	if e.running {
		return errors.InternalError("engine already started", nil)
	}

	scheduler, err := NewScheduler(e.cfg.Location())
	if err != nil {
		return err
	}

	if err := e.scheduleJobs(scheduler); err != nil {
		_ = scheduler.Stop(ctx)
		return err
	}

	scheduler.Start(ctx)
	e.scheduler = scheduler
	e.running = true
	e.startedAt = e.now()
	slog.Info("Engine started",
		slog.Int("check_times", len(e.cfg.CheckTimes)),
		slog.String("timezone", e.cfg.Timezone))
	return nil
}

func (e *Engine) scheduleJobs(scheduler *Scheduler) error {
	for _, checkTime := range e.cfg.CheckTimes {
		hour, minute, err := config.ParseCheckTime(checkTime)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("daily-check-%s", checkTime)
		if _, err := scheduler.ScheduleDaily(name, hour, minute, e.checkJob); err != nil {
			return err
		}
	}

	// Retention cleanup runs once daily at midnight.
	if _, err := scheduler.ScheduleDaily("daily-cleanup", 0, 0, e.cleanupJob); err != nil {
		return err
	}
	return nil
}

// Stop shuts the scheduler down.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	e.running = false
	err := e.scheduler.Stop(ctx)
	e.scheduler = nil
	return err
}

// Reload replaces the configuration and reschedules jobs. Called by the
// config watcher; a stopped or disabled engine only swaps the config.
func (e *Engine) Reload(ctx context.Context, cfg *config.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = cfg
	if !e.running {
		return nil
	}

	scheduler, err := NewScheduler(cfg.Location())
	if err != nil {
		return err
	}
	if err := e.scheduleJobs(scheduler); err != nil {
		_ = scheduler.Stop(ctx)
		return err
	}

	old := e.scheduler
	scheduler.Start(ctx)
	e.scheduler = scheduler
	if old != nil {
		if err := old.Stop(ctx); err != nil {
			slog.Warn("Failed to stop previous scheduler", logfields.Error(err))
		}
	}
	slog.Info("Engine rescheduled after config reload",
		slog.Int("check_times", len(cfg.CheckTimes)))
	return nil
}

// snapshotConfig returns the current config pointer under the engine
// lock. Loaded configs are never mutated after Load, so job goroutines
// may read the snapshot freely while Reload swaps in a new pointer.
func (e *Engine) snapshotConfig() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// checkJob is the gocron entry point for scheduled fires. Errors never
// escape: an uncaught panic or returned error here would kill future
// scheduling.
func (e *Engine) checkJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result := e.RunCheck(ctx)
	slog.Info("Scheduled check finished",
		logfields.Status(string(result.Outcome)),
		slog.String("message", result.Message))
}

// cleanupJob removes state entries older than the retention window.
func (e *Engine) cleanupJob() {
	cfg := e.snapshotConfig()
	removed, err := e.store.CleanupOlderThan(e.now(), cfg.State.RetentionDays)
	if err != nil {
		slog.Error("Daily cleanup failed", logfields.Error(err))
		return
	}
	slog.Info("Daily cleanup completed", slog.Int("removed", removed))
}

// ManualCheck runs one check synchronously for operator-initiated
// triggers, serialized behind any in-flight scheduled check.
func (e *Engine) ManualCheck(ctx context.Context) CheckResult {
	triggerID := uuid.NewString()
	slog.Info("Manual check triggered", logfields.TriggerID(triggerID))
	return e.RunCheck(ctx)
}

// RunCheck executes one full check for "today": idempotent skip,
// fetch, presence decision, then the generate/remind/wait branch. All
// collaborator failures are recorded and notified, never propagated.
func (e *Engine) RunCheck(ctx context.Context) CheckResult {
	e.checkMu.Lock()
	defer e.checkMu.Unlock()

	started := e.now()
	defer func() {
		e.recorder.ObserveCheckDuration(e.now().Sub(started))
	}()

	// One config snapshot per check; a reload mid-check takes effect on
	// the next fire.
	cfg := e.snapshotConfig()
	today := e.now().In(cfg.Location())
	date := state.DateKey(today)

	// Idempotent skip: a completed day is never touched again.
	if e.store.IsCompleted(date) {
		slog.Info("Report already completed today, skipping check", logfields.Date(date))
		e.recorder.IncCheckOutcome(metrics.OutcomeSkipped)
		return CheckResult{Outcome: metrics.OutcomeSkipped, Message: "already completed today"}
	}

	if err := e.store.UpdateStatus(date, state.StatusChecking); err != nil {
		return e.fail(ctx, date, today, fmt.Errorf("enter checking state: %w", err), false)
	}
	if err := e.store.IncrementCheckCount(date); err != nil {
		slog.Error("Failed to persist check count", logfields.Date(date), logfields.Error(err))
	}

	url := cfg.Source.URL
	if url == "" {
		return e.fail(ctx, date, today, fmt.Errorf("no source URL configured"), true)
	}

	records, err := e.fetcher.Fetch(ctx, url)
	e.recorder.IncSourceFetch(err == nil)
	if err != nil {
		return e.fail(ctx, date, today, err, true)
	}

	found, record, err := report.CheckToday(records, today)
	if err != nil {
		// Missing date column: the sheet schema is broken, surface it.
		return e.fail(ctx, date, today, err, true)
	}

	if found {
		return e.processFound(ctx, date, today, *record, records)
	}
	return e.handleMissing(ctx, date, today)
}

// processFound drives FOUND -> PROCESSING -> COMPLETED, invoking the
// generator and archiving the result.
func (e *Engine) processFound(ctx context.Context, date string, today time.Time, record source.Record, records []source.Record) CheckResult {
	slog.Info("Found today's report, processing", logfields.Date(date))

	if !report.ValidateCompleteness(record) {
		// Found and complete share one gate before generation; an
		// incomplete row that passed the content check is logged but
		// still processed.
		slog.Warn("Report found but completeness check not satisfied", logfields.Date(date))
	}

	if err := e.store.MarkReportFound(date); err != nil {
		return e.fail(ctx, date, today, fmt.Errorf("mark report found: %w", err), false)
	}
	if err := e.store.UpdateStatus(date, state.StatusProcessing); err != nil {
		return e.fail(ctx, date, today, fmt.Errorf("enter processing state: %w", err), false)
	}

	genStarted := e.now()
	result, err := e.generator.Generate(ctx, generate.Request{
		Date:    date,
		Record:  record,
		Records: records,
		Context: "automated daily report generation",
	})
	e.recorder.ObserveGenerationDuration(e.now().Sub(genStarted), err == nil)
	if err != nil {
		return e.fail(ctx, date, today, err, true)
	}

	if err := e.store.MarkCompleted(date); err != nil {
		return e.fail(ctx, date, today, fmt.Errorf("mark completed: %w", err), false)
	}

	summary := report.Summary(record)
	if e.archiver != nil {
		if _, err := e.archiver.Save(ctx, archive.Entry{
			Date:    date,
			Summary: summary,
			Report:  result.Report,
			Prompt:  result.Prompt,
			Model:   result.Model,
		}); err != nil {
			slog.Warn("Failed to archive generated report", logfields.Date(date), logfields.Error(err))
		}
	}

	e.send(ctx, notify.SuccessMessage(summary, today))
	e.recorder.IncCheckOutcome(metrics.OutcomeCompleted)
	slog.Info("Report processing completed", logfields.Date(date), logfields.Model(result.Model))
	return CheckResult{Outcome: metrics.OutcomeCompleted, Message: "report generated and archived"}
}

// handleMissing sends the next reminder or parks the day in WAITING.
func (e *Engine) handleMissing(ctx context.Context, date string, today time.Time) CheckResult {
	if !e.store.ShouldRemind(date) {
		slog.Info("Maximum reminders reached or reminding ineligible", logfields.Date(date))
		if err := e.store.UpdateStatus(date, state.StatusWaiting); err != nil {
			slog.Error("Failed to enter waiting state", logfields.Date(date), logfields.Error(err))
		}
		e.recorder.IncCheckOutcome(metrics.OutcomeWaiting)
		return CheckResult{Outcome: metrics.OutcomeWaiting, Message: "no report found, reminders exhausted"}
	}

	ordinal := e.store.ReminderCount(date)
	msg := notify.ReminderMessage(ordinal, today)
	if err := e.notifier.Send(ctx, msg); err != nil {
		e.recorder.IncNotification(e.notifier.Name(), false)
		return e.fail(ctx, date, today, err, false)
	}
	e.recorder.IncNotification(e.notifier.Name(), true)
	e.recorder.IncReminder(ordinal)

	if err := e.store.IncrementNotificationCount(date); err != nil {
		slog.Error("Failed to persist notification count", logfields.Date(date), logfields.Error(err))
	}
	if err := e.store.UpdateStatus(date, state.StatusReminded); err != nil {
		slog.Error("Failed to enter reminded state", logfields.Date(date), logfields.Error(err))
	}

	e.recorder.IncCheckOutcome(metrics.OutcomeReminded)
	slog.Info("Reminder sent", logfields.Date(date), logfields.Reminder(ordinal))
	return CheckResult{
		Outcome: metrics.OutcomeReminded,
		Message: fmt.Sprintf("no report found, reminder %d sent", ordinal+1),
	}
}

// fail records the error into the day's state and, when notifyOps is
// set, reports it through the error template. It never propagates.
func (e *Engine) fail(ctx context.Context, date string, today time.Time, cause error, notifyOps bool) CheckResult {
	slog.Error("Check failed", logfields.Date(date), logfields.Error(cause))

	if err := e.store.MarkFailed(date, cause.Error()); err != nil {
		slog.Error("Failed to record failure state", logfields.Date(date), logfields.Error(err))
	}
	if notifyOps {
		e.send(ctx, notify.ErrorMessage(cause.Error(), today))
	}
	e.recorder.IncCheckOutcome(metrics.OutcomeFailed)
	return CheckResult{Outcome: metrics.OutcomeFailed, Err: cause.Error()}
}

// send delivers a notification, logging delivery failures without
// touching the day's state.
func (e *Engine) send(ctx context.Context, msg notify.Message) {
	if err := e.notifier.Send(ctx, msg); err != nil {
		e.recorder.IncNotification(e.notifier.Name(), false)
		slog.Error("Failed to deliver notification",
			logfields.Transport(e.notifier.Name()),
			slog.String("kind", string(msg.Kind)),
			logfields.Error(err))
		return
	}
	e.recorder.IncNotification(e.notifier.Name(), true)
}
