// Package source fetches tabular report data from a spreadsheet CSV export.
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/reportbot/internal/errors"
)

// DateColumn is the header name of the date-labeled column.
const DateColumn = "Date"

// dateLayouts are accepted formats for the date field, tried in order.
var dateLayouts = []string{"02/01/2006", "2006-01-02", "2/1/2006"}

// Record is one data row keyed by header name. Headers preserves the
// column order of the source so summaries render fields in sheet order.
type Record struct {
	Headers []string
	Values  map[string]string
}

// Get returns the value for a column, trimmed.
func (r Record) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// Date parses the record's date column. Returns an error when the value
// matches none of the accepted layouts.
func (r Record) Date() (time.Time, error) {
	raw := r.Get(DateColumn)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date value %q", raw)
}

// Fetcher retrieves records from a CSV-exporting URL.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given fetch timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch retrieves and parses all rows from the source URL. Share/edit
// URLs are normalized to the CSV export form first. An empty sheet
// yields an empty slice and no error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Record, error) {
	csvURL := NormalizeSheetURL(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, errors.SourceUnavailable(csvURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.SourceUnavailable(csvURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.SourceUnavailable(csvURL,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	records, err := parseCSV(resp.Body)
	if err != nil {
		return nil, errors.SourceUnavailable(csvURL, err)
	}
	return records, nil
}

// NormalizeSheetURL converts a Google Sheets share/edit URL into its CSV
// export form. Non-Sheets URLs are returned unchanged.
func NormalizeSheetURL(url string) string {
	if !strings.Contains(url, "docs.google.com/spreadsheets") {
		return url
	}
	var sheetID string
	if idx := strings.Index(url, "/d/"); idx >= 0 {
		rest := url[idx+len("/d/"):]
		if edit := strings.Index(rest, "/edit"); edit >= 0 {
			sheetID = rest[:edit]
		} else {
			sheetID = strings.TrimRight(rest, "/")
			if q := strings.IndexAny(sheetID, "?#"); q >= 0 {
				sheetID = sheetID[:q]
			}
		}
	} else {
		parts := strings.Split(strings.TrimRight(url, "/"), "/")
		sheetID = parts[len(parts)-1]
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", sheetID)
}

// parseCSV reads a UTF-8 CSV document with a header row into records.
func parseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		values := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				values[col] = row[i]
			}
		}
		records = append(records, Record{Headers: header, Values: values})
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// SortByDateDesc orders records most-recent-first. Rows with unparseable
// dates sort last, keeping their relative input order.
func SortByDateDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		di, erri := records[i].Date()
		dj, errj := records[j].Date()
		if erri != nil {
			return false
		}
		if errj != nil {
			return true
		}
		return di.After(dj)
	})
}

// Latest returns the most recent dated record, or false when no row has
// a parseable date.
func Latest(records []Record) (Record, bool) {
	var best Record
	var bestDate time.Time
	found := false
	for _, rec := range records {
		d, err := rec.Date()
		if err != nil {
			continue
		}
		if !found || d.After(bestDate) {
			best, bestDate, found = rec, d, true
		}
	}
	return best, found
}
