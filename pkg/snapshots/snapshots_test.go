package snapshots

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/promptradar/pkg/sources"
)

func TestToolEntryState(t *testing.T) {
	resolved := ToolEntry{ID: "a", TopCandidate: &CandidateSummary{Hash: "h"}}
	fallback := ToolEntry{ID: "b", TopCandidate: &CandidateSummary{Hash: "h"}, FallbackUsed: true}
	unavailable := ToolEntry{ID: "c", Unavailable: true}

	assert.Equal(t, StateResolved, resolved.State())
	assert.Equal(t, StateFallback, fallback.State())
	assert.Equal(t, StateUnavailable, unavailable.State())

	assert.True(t, resolved.HasTop())
	assert.False(t, unavailable.HasTop())
	assert.False(t, ToolEntry{TopCandidate: &CandidateSummary{}}.HasTop())
}

func TestTally(t *testing.T) {
	c := NewCurrent()
	c.Tools["a"] = ToolEntry{ID: "a", TopCandidate: &CandidateSummary{Hash: "1"}}
	c.Tools["b"] = ToolEntry{ID: "b", TopCandidate: &CandidateSummary{Hash: "2"}, FallbackUsed: true}
	c.Tools["c"] = ToolEntry{ID: "c", Unavailable: true}
	c.Tools["d"] = ToolEntry{ID: "d", Unavailable: true}

	assert.Equal(t, Tally{Tracked: 4, Fallback: 1, Unavailable: 2}, c.Tally())
	assert.Equal(t, Tally{}, NewCurrent().Tally())
}

func TestHistoryAppend(t *testing.T) {
	h := &History{}
	h.Append(ChangeRecord{ToolID: "cursor", NewHash: "h1"})
	h.Append(ChangeRecord{ToolID: "cursor", NewHash: "h2"})
	h.Append(ChangeRecord{ToolID: "zed", NewHash: "z1"})

	require.Len(t, h.Tools["cursor"], 2)
	assert.Equal(t, "h1", h.Tools["cursor"][0].NewHash)
	assert.Equal(t, "h2", h.Tools["cursor"][1].NewHash)
	assert.Equal(t, 3, h.Len())
}

func TestDecodeExistingDocuments(t *testing.T) {
	raw := `{
  "generatedAt": null,
  "tools": {
    "cursor": {
      "id": "cursor",
      "name": "Cursor",
      "aliases": ["cursor-ide"],
      "lastCheckedAt": "2025-03-01T12:00:00.000Z",
      "topCandidate": {
        "hash": "abc",
        "confidence": 0.876,
        "source": {"type": "github_file", "url": "https://raw/prompt.txt", "weight": 0.9},
        "preview": "You are..."
      },
      "evidence": [],
      "evidenceHash": "def",
      "failures": [],
      "fallbackUsed": false
    },
    "zed": {
      "id": "zed",
      "name": "Zed",
      "aliases": [],
      "lastCheckedAt": "2025-03-01T12:00:00.000Z",
      "unavailable": true,
      "failures": [{"type": "doc", "url": "https://zed", "error": "HTTP 500", "fetchedAt": "2025-03-01T12:00:00.000Z"}]
    }
  }
}`
	var cur Current
	require.NoError(t, json.Unmarshal([]byte(raw), &cur))

	assert.Nil(t, cur.GeneratedAt)
	require.Contains(t, cur.Tools, "cursor")
	cursor := cur.Tools["cursor"]
	assert.Equal(t, StateResolved, cursor.State())
	require.NotNil(t, cursor.TopCandidate.Source.Weight)
	assert.Equal(t, 0.9, *cursor.TopCandidate.Source.Weight)
	assert.Equal(t, sources.TypeFile, cursor.TopCandidate.Source.Type)

	zed := cur.Tools["zed"]
	assert.Equal(t, StateUnavailable, zed.State())
	require.Len(t, zed.Failures, 1)
	assert.Equal(t, "HTTP 500", zed.Failures[0].Error)
	assert.True(t, zed.Failures[0].FetchedAt.Time.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestChangeRecordRoundTrip(t *testing.T) {
	prev := "h1"
	now := utc.Time{Time: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	doc := &ChangesLatest{
		GeneratedAt: &now,
		Changes: []ChangeRecord{{
			DetectedAt:   now,
			ToolID:       "cursor",
			ToolName:     "Cursor",
			PreviousHash: &prev,
			NewHash:      "h2",
			Confidence:   0.876,
			Source:       sources.Source{Type: sources.TypeFile, URL: "https://raw"},
			Preview:      "p",
		}},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"previousHash":"h1"`)
	assert.Contains(t, string(data), `"toolId":"cursor"`)

	var back ChangesLatest
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(doc, &back, cmp.Comparer(func(a, b utc.Time) bool { return a.Time.Equal(b.Time) })); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNullPreviousHash(t *testing.T) {
	data, err := json.Marshal(ChangeRecord{ToolID: "x", NewHash: "h"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"previousHash":null`)
}
