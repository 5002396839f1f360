package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	checkDuration      prom.Histogram
	checkOutcomes      *prom.CounterVec
	reminders          *prom.CounterVec
	notifications      *prom.CounterVec
	generationDuration *prom.HistogramVec
	sourceFetches      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on
// the given registry (a fresh one when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		checkDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "reportbot",
			Name:      "check_duration_seconds",
			Help:      "Duration of one scheduled or manual check",
			Buckets:   prom.DefBuckets,
		}),
		checkOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "reportbot",
			Name:      "check_outcomes_total",
			Help:      "Check outcomes by final result",
		}, []string{"outcome"}),
		reminders: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "reportbot",
			Name:      "reminders_total",
			Help:      "Reminders sent by zero-based ordinal",
		}, []string{"ordinal"}),
		notifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "reportbot",
			Name:      "notifications_total",
			Help:      "Notification deliveries by transport and result",
		}, []string{"transport", "result"}),
		generationDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "reportbot",
			Name:      "generation_duration_seconds",
			Help:      "Duration of report generation calls",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		sourceFetches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "reportbot",
			Name:      "source_fetches_total",
			Help:      "Source fetches by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		pr.checkDuration,
		pr.checkOutcomes,
		pr.reminders,
		pr.notifications,
		pr.generationDuration,
		pr.sourceFetches,
	)
	return pr
}

func (pr *PrometheusRecorder) ObserveCheckDuration(d time.Duration) {
	pr.checkDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncCheckOutcome(outcome Outcome) {
	pr.checkOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (pr *PrometheusRecorder) IncReminder(ordinal int) {
	pr.reminders.WithLabelValues(strconv.Itoa(ordinal)).Inc()
}

func (pr *PrometheusRecorder) IncNotification(transport string, success bool) {
	pr.notifications.WithLabelValues(transport, resultLabel(success)).Inc()
}

func (pr *PrometheusRecorder) ObserveGenerationDuration(d time.Duration, success bool) {
	pr.generationDuration.WithLabelValues(resultLabel(success)).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncSourceFetch(success bool) {
	pr.sourceFetches.WithLabelValues(resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
