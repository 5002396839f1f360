package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var noon = time.Date(2025, 7, 4, 12, 30, 0, 0, time.UTC)

func TestReminderMessage_Variants(t *testing.T) {
	first := ReminderMessage(0, noon)
	second := ReminderMessage(1, noon)
	final := ReminderMessage(2, noon)
	generic := ReminderMessage(7, noon)

	require.Equal(t, KindReminder, first.Kind)
	require.Contains(t, first.Text, "Reminder #1")
	require.Contains(t, second.Text, "Reminder #2")
	require.Contains(t, final.Text, "Final")
	require.Contains(t, final.Text, "Reminder #3")
	require.NotContains(t, generic.Text, "#")

	// Each ordinal yields a distinct message.
	texts := map[string]bool{}
	for _, m := range []Message{first, second, final, generic} {
		texts[m.Text] = true
	}
	require.Len(t, texts, 4)
}

func TestReminderMessage_EmbedsDateAndTime(t *testing.T) {
	msg := ReminderMessage(0, noon)
	require.Contains(t, msg.Text, "12:30")
	require.Contains(t, msg.Text, "04/07/2025")
}

func TestSuccessMessage(t *testing.T) {
	msg := SuccessMessage("Date: 04/07/2025 | Completed: Task A", noon)
	require.Equal(t, KindSuccess, msg.Kind)
	require.Contains(t, msg.Text, "Task A")
	require.Contains(t, msg.Text, "12:30")
}

func TestErrorMessage(t *testing.T) {
	msg := ErrorMessage("source unavailable: timeout", noon)
	require.Equal(t, KindError, msg.Kind)
	require.Contains(t, msg.Text, "source unavailable: timeout")
	require.Contains(t, msg.Text, "/api/trigger")
}
