package generate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/reportbot/internal/config"
	"git.home.luguber.info/inful/reportbot/internal/source"
)

func TestBuildPrompt(t *testing.T) {
	rec := source.Record{
		Headers: []string{"Date", "Completed", "Blocker"},
		Values:  map[string]string{"Date": "04/07/2025", "Completed": "Task A", "Blocker": "none"},
	}
	older := source.Record{
		Headers: []string{"Date", "Completed", "Blocker"},
		Values:  map[string]string{"Date": "03/07/2025", "Completed": "Task B"},
	}

	prompt := BuildPrompt(Request{
		Date:    "2025-07-04",
		Record:  rec,
		Records: []source.Record{older, rec},
		Context: "automated daily run",
	})

	require.Contains(t, prompt, "2025-07-04")
	require.Contains(t, prompt, "Completed: Task A")
	require.Contains(t, prompt, "Task B")
	require.Contains(t, prompt, "automated daily run")

	// Recent rows are listed most recent first.
	require.Less(t, strings.Index(prompt, "Task A"), strings.LastIndex(prompt, "Task B"))
}

func TestBuildPrompt_CapsRecentRows(t *testing.T) {
	rec := source.Record{Headers: []string{"Date", "Completed"},
		Values: map[string]string{"Date": "04/07/2025", "Completed": "x"}}
	var records []source.Record
	for i := 0; i < 10; i++ {
		records = append(records, rec)
	}

	prompt := BuildPrompt(Request{Date: "2025-07-04", Record: rec, Records: records})
	require.Equal(t, 5, strings.Count(prompt, "\n- "))
}

func TestNewGeminiGenerator_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), config.GeneratorConfig{Model: "gemini-2.0-flash"})
	require.Error(t, err)
}
