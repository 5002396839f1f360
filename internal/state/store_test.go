package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxReminders int) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "daily_state.json"), maxReminders)
	require.NoError(t, err)
	return s
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	s := newTestStore(t, 3)

	first, err := s.GetOrCreate("2025-07-04")
	require.NoError(t, err)
	require.Equal(t, StatusPending, first.Status)

	require.NoError(t, s.IncrementCheckCount("2025-07-04"))

	again, err := s.GetOrCreate("2025-07-04")
	require.NoError(t, err)
	require.Equal(t, 1, again.CheckCount, "counters must survive repeated GetOrCreate")
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_state.json")

	s1, err := NewStore(path, 3)
	require.NoError(t, err)
	require.NoError(t, s1.IncrementCheckCount("2025-07-04"))
	require.NoError(t, s1.UpdateStatus("2025-07-04", StatusChecking))
	require.NoError(t, s1.MarkReportFound("2025-07-04"))

	s2, err := NewStore(path, 3)
	require.NoError(t, err)
	st, err := s2.GetOrCreate("2025-07-04")
	require.NoError(t, err)
	require.Equal(t, StatusFound, st.Status)
	require.Equal(t, 1, st.CheckCount)
	require.True(t, st.ReportFound)
}

func TestStore_CorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := NewStore(path, 3)
	require.NoError(t, err)
	require.Equal(t, 0, s.Len())
}

func TestStore_ToleratesUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_state.json")
	doc := `{"2025-07-04": {"date": "2025-07-04", "status": "REMINDED", "check_count": 2, "notifications_sent": 1, "future_field": {"a": 1}}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	s, err := NewStore(path, 3)
	require.NoError(t, err)
	st, err := s.GetOrCreate("2025-07-04")
	require.NoError(t, err)
	require.Equal(t, StatusReminded, st.Status)
	require.Equal(t, 2, st.CheckCount)
	require.Equal(t, 1, st.NotificationsSent)
}

func TestStore_CompletedIsTerminal(t *testing.T) {
	s := newTestStore(t, 3)
	date := "2025-07-04"

	require.NoError(t, s.UpdateStatus(date, StatusChecking))
	require.NoError(t, s.MarkReportFound(date))
	require.NoError(t, s.UpdateStatus(date, StatusProcessing))
	require.NoError(t, s.MarkCompleted(date))

	require.True(t, s.IsCompleted(date))
	require.Error(t, s.UpdateStatus(date, StatusChecking))
	require.Error(t, s.MarkFailed(date, "late error"))
	require.False(t, s.ShouldRemind(date))
}

func TestStore_CompletedAtSetOnce(t *testing.T) {
	s := newTestStore(t, 3)
	date := "2025-07-04"

	require.NoError(t, s.UpdateStatus(date, StatusChecking))
	require.NoError(t, s.MarkReportFound(date))
	require.NoError(t, s.UpdateStatus(date, StatusProcessing))
	require.NoError(t, s.MarkCompleted(date))

	st, err := s.GetOrCreate(date)
	require.NoError(t, err)
	require.NotNil(t, st.CompletedAt)
	first := *st.CompletedAt

	// A second MarkCompleted is a same-state transition and must not
	// move the completion timestamp.
	require.NoError(t, s.MarkCompleted(date))
	st, err = s.GetOrCreate(date)
	require.NoError(t, err)
	require.True(t, first.Equal(*st.CompletedAt))
}

func TestStore_IllegalTransitionsRejected(t *testing.T) {
	s := newTestStore(t, 3)
	date := "2025-07-04"

	// PENDING cannot jump straight to PROCESSING.
	require.Error(t, s.UpdateStatus(date, StatusProcessing))

	require.NoError(t, s.UpdateStatus(date, StatusChecking))
	// CHECKING cannot complete without FOUND -> PROCESSING.
	require.Error(t, s.MarkCompleted(date))
}

func TestShouldRemind(t *testing.T) {
	t.Run("false once cap reached", func(t *testing.T) {
		s := newTestStore(t, 2)
		date := "2025-07-04"

		require.True(t, s.ShouldRemind(date))
		require.NoError(t, s.IncrementNotificationCount(date))
		require.True(t, s.ShouldRemind(date))
		require.NoError(t, s.IncrementNotificationCount(date))
		require.False(t, s.ShouldRemind(date))
	})

	t.Run("false with zero max reminders", func(t *testing.T) {
		s := newTestStore(t, 0)
		require.False(t, s.ShouldRemind("2025-07-04"))
	})

	t.Run("false once report found", func(t *testing.T) {
		s := newTestStore(t, 3)
		date := "2025-07-04"
		require.NoError(t, s.UpdateStatus(date, StatusChecking))
		require.NoError(t, s.MarkReportFound(date))
		require.False(t, s.ShouldRemind(date))
	})

	t.Run("false while processing", func(t *testing.T) {
		s := newTestStore(t, 3)
		date := "2025-07-04"
		require.NoError(t, s.UpdateStatus(date, StatusChecking))
		require.NoError(t, s.MarkReportFound(date))
		require.NoError(t, s.UpdateStatus(date, StatusProcessing))
		require.False(t, s.ShouldRemind(date))
	})
}

func TestMarkFailed_CountsErrors(t *testing.T) {
	s := newTestStore(t, 3)
	date := "2025-07-04"

	require.NoError(t, s.UpdateStatus(date, StatusChecking))
	require.NoError(t, s.MarkFailed(date, "fetch timeout"))

	st, err := s.GetOrCreate(date)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, st.Status)
	require.Equal(t, 1, st.ErrorCount)
	require.Equal(t, "fetch timeout", st.LastError)

	// FAILED resumes to CHECKING on the next slot.
	require.NoError(t, s.UpdateStatus(date, StatusChecking))
}

func TestCleanupOlderThan(t *testing.T) {
	s := newTestStore(t, 3)
	now := time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC)

	_, err := s.GetOrCreate("2025-07-04")
	require.NoError(t, err)
	_, err = s.GetOrCreate("2025-06-20")
	require.NoError(t, err)
	_, err = s.GetOrCreate("2025-05-01")
	require.NoError(t, err)

	removed, err := s.CleanupOlderThan(now, 30)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Equal(t, 2, s.Len())

	// Entries inside the window are untouched.
	st, err := s.GetOrCreate("2025-06-20")
	require.NoError(t, err)
	require.Equal(t, "2025-06-20", st.Date)
}

func TestStats(t *testing.T) {
	s := newTestStore(t, 3)
	date := "2025-07-04"

	snap := s.Stats(date)
	require.Equal(t, StatusPending, snap.Status)
	require.True(t, snap.ShouldRemind)

	require.NoError(t, s.UpdateStatus(date, StatusChecking))
	require.NoError(t, s.IncrementCheckCount(date))
	require.NoError(t, s.IncrementNotificationCount(date))
	require.NoError(t, s.UpdateStatus(date, StatusReminded))

	snap = s.Stats(date)
	require.Equal(t, StatusReminded, snap.Status)
	require.Equal(t, 1, snap.CheckCount)
	require.Equal(t, 1, snap.NotificationsSent)
	require.False(t, snap.Completed)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusChecking, true},
		{StatusChecking, StatusFound, true},
		{StatusFound, StatusProcessing, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusChecking, StatusReminded, true},
		{StatusReminded, StatusChecking, true},
		{StatusWaiting, StatusChecking, true},
		{StatusFailed, StatusChecking, true},
		{StatusCompleted, StatusChecking, false},
		{StatusCompleted, StatusFailed, false},
		{StatusPending, StatusCompleted, false},
		{StatusChecking, StatusChecking, true},
	}
	for _, test := range tests {
		require.Equal(t, test.allowed, CanTransition(test.from, test.to),
			"%s -> %s", test.from, test.to)
	}
}
