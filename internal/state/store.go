package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/reportbot/internal/errors"
	"git.home.luguber.info/inful/reportbot/internal/logfields"
)

// DateKey formats a time as the ISO date key used throughout the store.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Store is a JSON-file-backed map of ISO date -> DailyState. Every
// mutation persists the full document immediately; call frequency is a
// handful of writes per scheduled slot, so simplicity wins over
// throughput.
type Store struct {
	path         string
	maxReminders int

	mu     sync.RWMutex
	states map[string]*DailyState
}

// NewStore creates the store, loading any existing state file. A corrupt
// or unreadable file degrades to an empty store with a warning rather
// than failing startup.
func NewStore(path string, maxReminders int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.PersistenceError("create state directory", err)
		}
	}

	s := &Store{
		path:         path,
		maxReminders: maxReminders,
		states:       make(map[string]*DailyState),
	}

	if err := s.loadFromDisk(); err != nil {
		slog.Warn("State file unreadable, starting fresh",
			slog.String("path", path),
			logfields.Error(err))
	}
	return s, nil
}

func (s *Store) loadFromDisk() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}

	var states map[string]*DailyState
	if err := json.Unmarshal(data, &states); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}
	if states != nil {
		s.states = states
	}
	return nil
}

// saveUnsafe persists the full state document atomically. Caller holds
// the write lock.
func (s *Store) saveUnsafe() error {
	data, err := json.MarshalIndent(s.states, "", "  ")
	if err != nil {
		return errors.PersistenceError("marshal state", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return errors.PersistenceError("write temporary state file", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return errors.PersistenceError("replace state file", err)
	}
	return nil
}

// getOrCreateUnsafe returns the record for a date, creating it as
// PENDING on first access. Caller holds the write lock.
func (s *Store) getOrCreateUnsafe(date string) *DailyState {
	if st, ok := s.states[date]; ok {
		return st
	}
	st := newDailyState(date)
	s.states[date] = st
	return st
}

// GetOrCreate returns a copy of the record for a date, creating it
// lazily with status PENDING. Repeated calls never reset counters.
func (s *Store) GetOrCreate(date string) (DailyState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.states[date] == nil
	st := s.getOrCreateUnsafe(date)
	if created {
		if err := s.saveUnsafe(); err != nil {
			return *st, err
		}
	}
	return *st, nil
}

// UpdateStatus moves a date to a new status, enforcing the forward-only
// transition table, and stamps last_check.
func (s *Store) UpdateStatus(date string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateUnsafe(date)
	if !CanTransition(st.Status, status) {
		return illegalTransitionError(st.Status, status)
	}
	now := time.Now()
	st.Status = status
	st.LastCheck = &now
	return s.saveUnsafe()
}

// IncrementCheckCount records one scheduled check for the date.
func (s *Store) IncrementCheckCount(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateUnsafe(date)
	st.CheckCount++
	return s.saveUnsafe()
}

// IncrementNotificationCount records one sent reminder for the date.
func (s *Store) IncrementNotificationCount(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateUnsafe(date)
	st.NotificationsSent++
	return s.saveUnsafe()
}

// MarkReportFound sets report_found and moves the date to FOUND.
func (s *Store) MarkReportFound(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateUnsafe(date)
	if !CanTransition(st.Status, StatusFound) {
		return illegalTransitionError(st.Status, StatusFound)
	}
	now := time.Now()
	st.Status = StatusFound
	st.ReportFound = true
	st.LastCheck = &now
	return s.saveUnsafe()
}

// MarkCompleted moves the date to COMPLETED and stamps completed_at
// exactly once.
func (s *Store) MarkCompleted(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateUnsafe(date)
	if !CanTransition(st.Status, StatusCompleted) {
		return illegalTransitionError(st.Status, StatusCompleted)
	}
	now := time.Now()
	st.Status = StatusCompleted
	st.LastCheck = &now
	if st.CompletedAt == nil {
		st.CompletedAt = &now
	}
	return s.saveUnsafe()
}

// MarkFailed records an error for the date and moves it to FAILED.
func (s *Store) MarkFailed(date string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateUnsafe(date)
	if !CanTransition(st.Status, StatusFailed) {
		return illegalTransitionError(st.Status, StatusFailed)
	}
	now := time.Now()
	st.Status = StatusFailed
	st.ErrorCount++
	st.LastError = errMsg
	st.LastCheck = &now
	return s.saveUnsafe()
}

// IsCompleted reports whether the date has already been completed.
func (s *Store) IsCompleted(date string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[date]
	return ok && st.Status == StatusCompleted
}

// ShouldRemind reports whether another reminder may be sent for the
// date: the reminder cap is not reached, no report has been found, and
// the date is neither completed nor mid-processing.
func (s *Store) ShouldRemind(date string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shouldRemindUnsafe(date)
}

func (s *Store) shouldRemindUnsafe(date string) bool {
	st, ok := s.states[date]
	if !ok {
		return s.maxReminders > 0
	}
	return st.NotificationsSent < s.maxReminders &&
		!st.ReportFound &&
		st.Status != StatusCompleted &&
		st.Status != StatusProcessing
}

// ReminderCount returns the zero-based reminder ordinal for the date.
func (s *Store) ReminderCount(date string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.states[date]; ok {
		return st.NotificationsSent
	}
	return 0
}

// CleanupOlderThan removes entries dated more than the retention window
// before now and returns how many were removed. Unparseable keys are
// left alone.
func (s *Store) CleanupOlderThan(now time.Time, days int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.AddDate(0, 0, -days)
	var removed []string
	for key := range s.states {
		d, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		if d.Before(cutoff) {
			removed = append(removed, key)
		}
	}
	for _, key := range removed {
		delete(s.states, key)
	}
	if len(removed) == 0 {
		return 0, nil
	}
	if err := s.saveUnsafe(); err != nil {
		return len(removed), err
	}
	slog.Info("Cleaned up old state entries", slog.Int("removed", len(removed)))
	return len(removed), nil
}

// Stats returns the status-API snapshot for a date without creating it.
func (s *Store) Stats(date string) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[date]
	if !ok {
		return Stats{
			Date:         date,
			Status:       StatusPending,
			ShouldRemind: s.maxReminders > 0,
		}
	}
	return Stats{
		Date:              date,
		Status:            st.Status,
		CheckCount:        st.CheckCount,
		NotificationsSent: st.NotificationsSent,
		ReportFound:       st.ReportFound,
		Completed:         st.Status == StatusCompleted,
		ShouldRemind:      s.shouldRemindUnsafe(date),
		LastError:         st.LastError,
	}
}

// Len returns the number of retained date entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
