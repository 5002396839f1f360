package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDate          = "date"
	KeyStatus        = "status"
	KeyCheckCount    = "check_count"
	KeyNotifications = "notifications_sent"
	KeyReminder      = "reminder_ordinal"
	KeyJobID         = "job_id"
	KeyJobName       = "job_name"
	KeyTriggerID     = "trigger_id"
	KeyURL           = "url"
	KeyRows          = "rows"
	KeyDurationMS    = "duration_ms"
	KeyTransport     = "transport"
	KeyModel         = "model"
	KeyError         = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Date(d string) slog.Attr         { return slog.String(KeyDate, d) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func CheckCount(n int) slog.Attr      { return slog.Int(KeyCheckCount, n) }
func Notifications(n int) slog.Attr   { return slog.Int(KeyNotifications, n) }
func Reminder(ordinal int) slog.Attr  { return slog.Int(KeyReminder, ordinal) }
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func JobName(name string) slog.Attr   { return slog.String(KeyJobName, name) }
func TriggerID(id string) slog.Attr   { return slog.String(KeyTriggerID, id) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Rows(n int) slog.Attr            { return slog.Int(KeyRows, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Transport(t string) slog.Attr    { return slog.String(KeyTransport, t) }
func Model(m string) slog.Attr        { return slog.String(KeyModel, m) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
