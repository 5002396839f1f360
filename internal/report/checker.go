// Package report decides whether a meaningful daily report exists in
// fetched spreadsheet rows.
package report

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/reportbot/internal/errors"
	"git.home.luguber.info/inful/reportbot/internal/source"
)

// progressFields are the known aliases for progress content columns.
var progressFields = []string{"Completed", "Inprogress", "In Progress", "Blocker", "Blocked"}

// maxSummaryValueLen bounds each field value in a summary line.
const maxSummaryValueLen = 100

// IsPlaceholder reports whether a cell value carries no content. The
// placeholder set mirrors what spreadsheet exports produce for blank or
// formula-derived empty cells.
func IsPlaceholder(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "null", "nan":
		return true
	}
	return false
}

// HasMeaningfulContent reports whether any non-date field of the record
// holds real content. A row that only carries a date is not a report.
func HasMeaningfulContent(rec source.Record) bool {
	for _, col := range rec.Headers {
		if strings.EqualFold(col, source.DateColumn) {
			continue
		}
		if !IsPlaceholder(rec.Values[col]) {
			return true
		}
	}
	return false
}

// CheckToday looks for a meaningful report row matching today's date.
// A missing date column is signalled as a schema error rather than a
// silent not-found. When several rows match, the first in input order
// wins.
func CheckToday(records []source.Record, today time.Time) (bool, *source.Record, error) {
	if len(records) == 0 {
		return false, nil, nil
	}

	hasDateColumn := false
	for _, col := range records[0].Headers {
		if strings.EqualFold(col, source.DateColumn) {
			hasDateColumn = true
			break
		}
	}
	if !hasDateColumn {
		return false, nil, errors.SchemaMissing(source.DateColumn)
	}

	for i := range records {
		if !matchesDate(records[i].Get(source.DateColumn), today) {
			continue
		}
		if HasMeaningfulContent(records[i]) {
			rec := records[i]
			return true, &rec, nil
		}
	}
	return false, nil, nil
}

// matchesDate compares a raw cell against today by substring match on
// the sheet's dd/mm/yyyy convention, falling back to ISO.
func matchesDate(raw string, today time.Time) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	return strings.Contains(raw, today.Format("02/01/2006")) ||
		strings.Contains(raw, today.Format("2006-01-02"))
}

// ValidateCompleteness checks that a found record carries a date and at
// least one populated progress field.
func ValidateCompleteness(rec source.Record) bool {
	if rec.Get(source.DateColumn) == "" {
		return false
	}
	for _, field := range progressFields {
		if value, ok := rec.Values[field]; ok && !IsPlaceholder(value) {
			return true
		}
	}
	return false
}

// Summary renders a one-line human-readable digest of the record for
// notifications, joining populated fields with " | ".
func Summary(rec source.Record) string {
	var parts []string
	if date := rec.Get(source.DateColumn); date != "" {
		parts = append(parts, "Date: "+date)
	}
	for _, field := range progressFields {
		value, ok := rec.Values[field]
		if !ok || IsPlaceholder(value) {
			continue
		}
		parts = append(parts, field+": "+truncate(strings.TrimSpace(value), maxSummaryValueLen))
	}
	if len(parts) == 0 {
		return "Empty report"
	}
	return strings.Join(parts, " | ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
