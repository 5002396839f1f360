// Package state persists the per-day report lifecycle: what has been
// checked, reminded, and completed for each calendar date.
package state

import "time"

// DailyState is the durable record for one calendar date. Serialized
// field names are part of the on-disk format and must stay stable.
type DailyState struct {
	Date              string     `json:"date"`
	Status            Status     `json:"status"`
	CheckCount        int        `json:"check_count"`
	LastCheck         *time.Time `json:"last_check"`
	ReportFound       bool       `json:"report_found"`
	NotificationsSent int        `json:"notifications_sent"`
	CompletedAt       *time.Time `json:"completed_at"`
	ErrorCount        int        `json:"error_count"`
	LastError         string     `json:"last_error,omitempty"`
}

// newDailyState initializes the lazily-created record for a date.
func newDailyState(date string) *DailyState {
	return &DailyState{
		Date:   date,
		Status: StatusPending,
	}
}

// Stats is a point-in-time snapshot of one date's state for the status API.
type Stats struct {
	Date              string `json:"date"`
	Status            Status `json:"status"`
	CheckCount        int    `json:"check_count"`
	NotificationsSent int    `json:"notifications_sent"`
	ReportFound       bool   `json:"report_found"`
	Completed         bool   `json:"completed"`
	ShouldRemind      bool   `json:"should_remind"`
	LastError         string `json:"last_error,omitempty"`
}
