package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLatest(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	_, ok, err := s.Latest(ctx)
	require.NoError(t, err)
	require.False(t, ok, "empty archive has no latest entry")

	id, err := s.Save(ctx, Entry{
		Date:    "2025-07-04",
		Summary: "Date: 04/07/2025 | Completed: Task A",
		Report:  "## Completed\n- Task A",
		Prompt:  "Write the daily status report",
		Model:   "gemini-2.0-flash",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	latest, ok, err := s.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2025-07-04", latest.Date)
	require.Equal(t, "## Completed\n- Task A", latest.Report)
	require.False(t, latest.CreatedAt.IsZero())
}

func TestStore_ByDate(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	for _, date := range []string{"2025-07-03", "2025-07-04", "2025-07-04"} {
		_, err := s.Save(ctx, Entry{Date: date, Summary: "s", Report: "r"})
		require.NoError(t, err)
	}

	entries, err := s.ByDate(ctx, "2025-07-04")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Less(t, entries[0].ID, entries[1].ID)

	none, err := s.ByDate(ctx, "2025-01-01")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	ctx := context.Background()

	s1, err := NewStore(path)
	require.NoError(t, err)
	_, err = s1.Save(ctx, Entry{Date: "2025-07-04", Summary: "s", Report: "r"})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.Close() })

	latest, ok, err := s2.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2025-07-04", latest.Date)
}
