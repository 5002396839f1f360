package metrics

import "time"

// Outcome enumerates how a scheduled check ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeReminded  Outcome = "reminded"
	OutcomeWaiting   Outcome = "waiting"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped" // day already completed
)

// Recorder defines observability hooks for the scheduling engine.
// Implementations may forward to Prometheus; the NoopRecorder allows
// optional injection.
type Recorder interface {
	ObserveCheckDuration(d time.Duration)
	IncCheckOutcome(outcome Outcome)
	IncReminder(ordinal int)
	IncNotification(transport string, success bool)
	ObserveGenerationDuration(d time.Duration, success bool)
	IncSourceFetch(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCheckDuration(time.Duration)            {}
func (NoopRecorder) IncCheckOutcome(Outcome)                       {}
func (NoopRecorder) IncReminder(int)                               {}
func (NoopRecorder) IncNotification(string, bool)                  {}
func (NoopRecorder) ObserveGenerationDuration(time.Duration, bool) {}
func (NoopRecorder) IncSourceFetch(bool)                           {}
