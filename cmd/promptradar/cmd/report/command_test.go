package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/promptradar"
	"github.com/agentstation/promptradar/cmd/application"
	"github.com/agentstation/promptradar/internal/store/memory"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/logging"
	"github.com/agentstation/promptradar/pkg/snapshots"
	"github.com/agentstation/promptradar/pkg/sources"
)

func seeded(t *testing.T, format string) *application.Mock {
	t.Helper()
	logging.DisableLoggingForTest(t)

	at := utc.Time{Time: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	mem := memory.New()
	ctx := context.Background()
	require.NoError(t, mem.Write(ctx, constants.DocumentChangesLatest, &snapshots.ChangesLatest{
		GeneratedAt: &at,
		Changes: []snapshots.ChangeRecord{{
			DetectedAt: at,
			ToolID:     "cursor",
			ToolName:   "Cursor",
			NewHash:    "abc123",
			Confidence: 0.876,
			Source:     sources.Source{Type: sources.TypeFile, URL: "https://raw/cursor.txt"},
		}},
	}))
	require.NoError(t, mem.Write(ctx, constants.DocumentCurrent, &snapshots.Current{
		GeneratedAt: &at,
		Tools: map[string]snapshots.ToolEntry{
			"cursor": {ID: "cursor", Name: "Cursor"},
			"cline":  {ID: "cline", Name: "Cline", FallbackUsed: true},
		},
	}))

	tools := []sources.Tool{{ID: "cursor", Name: "Cursor", Sources: []sources.Source{{Type: sources.TypeFile, URL: "https://raw/cursor.txt"}}}}
	return &application.Mock{
		OutputFormatFunc: func() string { return format },
		RadarFunc: func(...promptradar.Option) (promptradar.Client, error) {
			return promptradar.New(promptradar.WithTools(tools), promptradar.WithStore(mem))
		},
	}
}

func execute(t *testing.T, mock *application.Mock) string {
	t.Helper()
	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestReportText(t *testing.T) {
	out := execute(t, seeded(t, "table"))

	assert.Contains(t, out, "Prompt Radar Report @ 2025-03-01T12:00:00.000Z")
	assert.Contains(t, out, "- Cursor (cursor)\n  prev: none\n  new : abc123\n  conf: 0.876\n")
	assert.Contains(t, out, "Tracked tools: 2\nFallback used: 1\nUnavailable  : 0\n")
}

func TestReportJSON(t *testing.T) {
	out := execute(t, seeded(t, "json"))

	var decoded struct {
		GeneratedAt string `json:"generatedAt"`
		Changes     []struct {
			ToolID string `json:"toolId"`
		} `json:"changes"`
		Tally snapshots.Tally `json:"tally"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "2025-03-01T12:00:00.000Z", decoded.GeneratedAt)
	require.Len(t, decoded.Changes, 1)
	assert.Equal(t, "cursor", decoded.Changes[0].ToolID)
	assert.Equal(t, 2, decoded.Tally.Tracked)
}

func TestReportInvalidFormat(t *testing.T) {
	cmd := NewCommand(seeded(t, "xml"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs(nil)
	require.Error(t, cmd.ExecuteContext(context.Background()))
}
