package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/reportbot/internal/errors"
	"git.home.luguber.info/inful/reportbot/internal/source"
)

var today = time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)

func rec(values map[string]string, headers ...string) source.Record {
	if headers == nil {
		headers = []string{"Date", "Completed", "Inprogress", "Blocker"}
	}
	return source.Record{Headers: headers, Values: values}
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", " ", "none", "None", "NULL", "nan", "NaN"} {
		require.True(t, IsPlaceholder(v), "expected %q to be placeholder", v)
	}
	for _, v := range []string{"Task A", "0", "-", "done"} {
		require.False(t, IsPlaceholder(v), "expected %q to be content", v)
	}
}

func TestHasMeaningfulContent(t *testing.T) {
	t.Run("date-only row has no content", func(t *testing.T) {
		r := rec(map[string]string{"Date": "04/07/2025", "Completed": "", "Inprogress": "none"})
		require.False(t, HasMeaningfulContent(r))
	})

	t.Run("any populated field counts", func(t *testing.T) {
		r := rec(map[string]string{"Date": "04/07/2025", "Completed": "Task A"})
		require.True(t, HasMeaningfulContent(r))
	})
}

func TestCheckToday(t *testing.T) {
	t.Run("missing date column is a schema error", func(t *testing.T) {
		records := []source.Record{rec(map[string]string{"Task": "x"}, "Task")}
		found, _, err := CheckToday(records, today)
		require.False(t, found)
		require.Error(t, err)
		require.True(t, errors.IsCategory(err, errors.CategorySchema))
	})

	t.Run("no rows is not found without error", func(t *testing.T) {
		found, record, err := CheckToday(nil, today)
		require.NoError(t, err)
		require.False(t, found)
		require.Nil(t, record)
	})

	t.Run("date-only row for today is not found", func(t *testing.T) {
		records := []source.Record{rec(map[string]string{"Date": "04/07/2025", "Completed": ""})}
		found, record, err := CheckToday(records, today)
		require.NoError(t, err)
		require.False(t, found)
		require.Nil(t, record)
	})

	t.Run("populated row for today is found", func(t *testing.T) {
		records := []source.Record{rec(map[string]string{"Date": "04/07/2025", "Completed": "Task A"})}
		found, record, err := CheckToday(records, today)
		require.NoError(t, err)
		require.True(t, found)
		require.NotNil(t, record)
		require.Equal(t, "Task A", record.Get("Completed"))
	})

	t.Run("other dates do not match", func(t *testing.T) {
		records := []source.Record{rec(map[string]string{"Date": "03/07/2025", "Completed": "Task B"})}
		found, _, err := CheckToday(records, today)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("first matching row in input order wins", func(t *testing.T) {
		records := []source.Record{
			rec(map[string]string{"Date": "04/07/2025", "Completed": "first"}),
			rec(map[string]string{"Date": "04/07/2025", "Completed": "second"}),
		}
		found, record, err := CheckToday(records, today)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "first", record.Get("Completed"))
	})

	t.Run("iso formatted dates match too", func(t *testing.T) {
		records := []source.Record{rec(map[string]string{"Date": "2025-07-04", "Completed": "Task A"})}
		found, _, err := CheckToday(records, today)
		require.NoError(t, err)
		require.True(t, found)
	})
}

func TestValidateCompleteness(t *testing.T) {
	tests := []struct {
		name     string
		record   source.Record
		expected bool
	}{
		{
			name:     "date plus completed",
			record:   rec(map[string]string{"Date": "04/07/2025", "Completed": "Task A"}),
			expected: true,
		},
		{
			name:     "date plus In Progress alias",
			record:   rec(map[string]string{"Date": "04/07/2025", "In Progress": "Task B"}, "Date", "In Progress"),
			expected: true,
		},
		{
			name:     "missing date",
			record:   rec(map[string]string{"Date": "", "Completed": "Task A"}),
			expected: false,
		},
		{
			name:     "only placeholders in progress fields",
			record:   rec(map[string]string{"Date": "04/07/2025", "Completed": "none", "Blocker": "null"}),
			expected: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, ValidateCompleteness(test.record))
		})
	}
}

func TestSummary(t *testing.T) {
	t.Run("joins populated fields in alias order", func(t *testing.T) {
		r := rec(map[string]string{
			"Date":      "04/07/2025",
			"Completed": "Task A",
			"Blocker":   "none",
		})
		require.Equal(t, "Date: 04/07/2025 | Completed: Task A", Summary(r))
	})

	t.Run("truncates long values", func(t *testing.T) {
		long := strings.Repeat("x", 150)
		r := rec(map[string]string{"Date": "04/07/2025", "Completed": long})
		s := Summary(r)
		require.Contains(t, s, strings.Repeat("x", 100)+"...")
		require.NotContains(t, s, strings.Repeat("x", 101))
	})

	t.Run("empty record", func(t *testing.T) {
		require.Equal(t, "Empty report", Summary(rec(map[string]string{})))
	})
}
