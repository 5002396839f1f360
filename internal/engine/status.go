package engine

import (
	"time"

	"git.home.luguber.info/inful/reportbot/internal/state"
)

// StatusSnapshot is the engine view served by the status API.
type StatusSnapshot struct {
	Running      bool        `json:"running"`
	Enabled      bool        `json:"enabled"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	Uptime       string      `json:"uptime,omitempty"`
	Timezone     string      `json:"timezone"`
	CheckTimes   []string    `json:"check_times"`
	MaxReminders int         `json:"max_reminders"`
	Jobs         []JobInfo   `json:"jobs,omitempty"`
	Today        state.Stats `json:"today"`
	TrackedDays  int         `json:"tracked_days"`
}

// Status assembles a point-in-time snapshot of the engine, its jobs and
// today's state record.
func (e *Engine) Status() StatusSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	snap := StatusSnapshot{
		Running:      e.running,
		Enabled:      e.cfg.Enabled,
		Timezone:     e.cfg.Timezone,
		CheckTimes:   e.cfg.CheckTimes,
		MaxReminders: e.cfg.ReminderCap(),
		Today:        e.store.Stats(state.DateKey(now.In(e.cfg.Location()))),
		TrackedDays:  e.store.Len(),
	}
	if e.running {
		started := e.startedAt
		snap.StartedAt = &started
		snap.Uptime = now.Sub(started).Truncate(time.Second).String()
		snap.Jobs = e.scheduler.Jobs()
	}
	return snap
}
