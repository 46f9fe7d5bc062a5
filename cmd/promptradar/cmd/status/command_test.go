package status

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
	"github.com/agentstation/promptradar/internal/cmd/output"
	"github.com/agentstation/promptradar/internal/store/memory"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/logging"
	"github.com/agentstation/promptradar/pkg/snapshots"
	"github.com/agentstation/promptradar/pkg/sources"
)

func TestStatusCommand(t *testing.T) {
	logging.DisableLoggingForTest(t)

	at := utc.Time{Time: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	mem := memory.New()
	require.NoError(t, mem.Write(context.Background(), constants.DocumentCurrent, &snapshots.Current{
		GeneratedAt: &at,
		Tools: map[string]snapshots.ToolEntry{
			"cursor": {
				ID:            "cursor",
				Name:          "Cursor",
				LastCheckedAt: at,
				TopCandidate: &snapshots.CandidateSummary{
					Hash:       "0123456789abcdef",
					Confidence: 0.9,
					Source:     sources.Source{Type: sources.TypeFile, URL: "https://raw/cursor.txt"},
				},
			},
			"aider": {ID: "aider", Name: "Aider", LastCheckedAt: at, Unavailable: true},
		},
	}))
	tools := []sources.Tool{{ID: "cursor", Name: "Cursor", Sources: []sources.Source{{Type: sources.TypeFile, URL: "https://raw/cursor.txt"}}}}

	format := "json"
	mock := &application.Mock{
		OutputFormatFunc: func() string { return format },
		RadarFunc: func(...promptradar.Option) (promptradar.Client, error) {
			return promptradar.New(promptradar.WithTools(tools), promptradar.WithStore(mem))
		},
	}

	run := func() string {
		cmd := NewCommand(mock)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(nil)
		require.NoError(t, cmd.ExecuteContext(context.Background()))
		return out.String()
	}

	var rows []output.ToolStatus
	require.NoError(t, json.Unmarshal([]byte(run()), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "aider", rows[0].ID)
	assert.Equal(t, snapshots.StateUnavailable, rows[0].State)
	assert.Equal(t, "cursor", rows[1].ID)
	assert.Equal(t, 0.9, rows[1].Confidence)

	format = "table"
	table := run()
	assert.Contains(t, table, "0123456789ab")
	assert.Contains(t, table, "unavailable")
}
