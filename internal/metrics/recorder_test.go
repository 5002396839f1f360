package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder_IsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveCheckDuration(time.Second)
	r.IncCheckOutcome(OutcomeCompleted)
	r.IncReminder(0)
	r.IncNotification("slack", true)
	r.ObserveGenerationDuration(time.Second, false)
	r.IncSourceFetch(true)
}

func TestPrometheusRecorder_RegistersAndCounts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveCheckDuration(250 * time.Millisecond)
	r.IncCheckOutcome(OutcomeReminded)
	r.IncCheckOutcome(OutcomeReminded)
	r.IncReminder(1)
	r.IncNotification("slack", false)
	r.ObserveGenerationDuration(2*time.Second, true)
	r.IncSourceFetch(true)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]bool{}
	for _, f := range families {
		byName[f.GetName()] = true
		if f.GetName() == "reportbot_check_outcomes_total" {
			require.Len(t, f.GetMetric(), 1)
			require.Equal(t, float64(2), f.GetMetric()[0].GetCounter().GetValue())
		}
	}

	for _, name := range []string{
		"reportbot_check_duration_seconds",
		"reportbot_check_outcomes_total",
		"reportbot_reminders_total",
		"reportbot_notifications_total",
		"reportbot_generation_duration_seconds",
		"reportbot_source_fetches_total",
	} {
		require.True(t, byName[name], "missing metric %s", name)
	}
}
