package reconciler

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/promptradar/pkg/candidates"
	"github.com/agentstation/promptradar/pkg/snapshots"
	"github.com/agentstation/promptradar/pkg/sources"
)

var (
	t0 = utc.Time{Time: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	t1 = utc.Time{Time: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}
)

var cursor = sources.Tool{
	ID:      "cursor",
	Name:    "Cursor",
	Aliases: []string{"cursor-ide"},
	Sources: []sources.Source{
		{Type: sources.TypeFile, URL: "https://raw/cursor.txt"},
		{Type: sources.TypeDoc, URL: "https://docs/cursor"},
	},
}

func ok(src sources.Source, hash string, confidence float64) candidates.Candidate {
	return candidates.Candidate{Source: src, FetchedAt: t1, ContentHash: hash, Confidence: confidence, Preview: "preview " + hash}
}

func failed(src sources.Source, msg string) candidates.Candidate {
	return candidates.Candidate{Source: src, FetchedAt: t1, Err: errors.New(msg)}
}

func TestResolveFirstSighting(t *testing.T) {
	cands := []candidates.Candidate{
		ok(cursor.Sources[0], "h1", 0.9),
		failed(cursor.Sources[1], "HTTP 500"),
	}

	entry, change := Resolve(cursor, cands, nil, t1)

	assert.Equal(t, snapshots.StateResolved, entry.State())
	require.NotNil(t, entry.TopCandidate)
	assert.Equal(t, "h1", entry.TopCandidate.Hash)
	assert.Equal(t, []string{"cursor-ide"}, entry.Aliases)
	require.Len(t, entry.Failures, 1)
	assert.Equal(t, snapshots.Failure{Type: sources.TypeDoc, URL: "https://docs/cursor", Error: "HTTP 500", FetchedAt: t1}, entry.Failures[0])
	assert.False(t, entry.FallbackUsed)

	require.NotNil(t, change)
	assert.Nil(t, change.PreviousHash)
	assert.Equal(t, "h1", change.NewHash)
	assert.Equal(t, "cursor", change.ToolID)
	assert.Equal(t, "Cursor", change.ToolName)
	assert.Equal(t, 0.9, change.Confidence)
	assert.True(t, change.DetectedAt.Time.Equal(t1.Time))
}

func TestResolveUnchanged(t *testing.T) {
	prev := &snapshots.ToolEntry{ID: "cursor", TopCandidate: &snapshots.CandidateSummary{Hash: "h1"}}
	entry, change := Resolve(cursor, []candidates.Candidate{ok(cursor.Sources[0], "h1", 0.9)}, prev, t1)

	assert.Equal(t, snapshots.StateResolved, entry.State())
	assert.Nil(t, change)
	assert.Empty(t, entry.Failures)
	assert.NotNil(t, entry.Failures)
}

func TestResolveChanged(t *testing.T) {
	prev := &snapshots.ToolEntry{ID: "cursor", TopCandidate: &snapshots.CandidateSummary{Hash: "h1"}}
	entry, change := Resolve(cursor, []candidates.Candidate{ok(cursor.Sources[0], "h2", 0.9)}, prev, t1)

	assert.Equal(t, "h2", entry.TopCandidate.Hash)
	require.NotNil(t, change)
	require.NotNil(t, change.PreviousHash)
	assert.Equal(t, "h1", *change.PreviousHash)
	assert.Equal(t, "h2", change.NewHash)
}

func TestResolveAfterUnavailable(t *testing.T) {
	prev := &snapshots.ToolEntry{ID: "cursor", Unavailable: true}
	_, change := Resolve(cursor, []candidates.Candidate{ok(cursor.Sources[0], "h1", 0.9)}, prev, t1)

	require.NotNil(t, change)
	assert.Nil(t, change.PreviousHash)
}

func TestResolveFallback(t *testing.T) {
	prev := &snapshots.ToolEntry{
		ID:            "cursor",
		Name:          "Cursor",
		Aliases:       []string{"cursor-ide"},
		LastCheckedAt: t0,
		TopCandidate:  &snapshots.CandidateSummary{Hash: "h1", Confidence: 0.8},
		Evidence:      []snapshots.CandidateSummary{{Hash: "h1"}},
		EvidenceHash:  "e1",
		Failures:      []snapshots.Failure{},
	}
	cands := []candidates.Candidate{
		failed(cursor.Sources[0], "HTTP 404"),
		failed(cursor.Sources[1], "Content too short after normalization"),
	}

	entry, change := Resolve(cursor, cands, prev, t1)

	assert.Nil(t, change)
	assert.Equal(t, snapshots.StateFallback, entry.State())
	assert.True(t, entry.FallbackUsed)
	assert.Equal(t, prev.TopCandidate, entry.TopCandidate)
	assert.Equal(t, prev.Evidence, entry.Evidence)
	assert.Equal(t, "e1", entry.EvidenceHash)
	assert.True(t, entry.LastCheckedAt.Time.Equal(t1.Time))
	require.Len(t, entry.Failures, 2)
	assert.Equal(t, "HTTP 404", entry.Failures[0].Error)
	assert.Equal(t, "Content too short after normalization", entry.Failures[1].Error)

	// the previous entry is not modified
	assert.False(t, prev.FallbackUsed)
	assert.True(t, prev.LastCheckedAt.Time.Equal(t0.Time))
}

func TestResolveUnavailable(t *testing.T) {
	cands := []candidates.Candidate{failed(cursor.Sources[0], "HTTP 404"), failed(cursor.Sources[1], "timeout")}

	for name, prev := range map[string]*snapshots.ToolEntry{
		"no previous":             nil,
		"previous without top":    {ID: "cursor", Unavailable: true},
		"previous with empty top": {ID: "cursor", TopCandidate: &snapshots.CandidateSummary{}},
	} {
		t.Run(name, func(t *testing.T) {
			entry, change := Resolve(cursor, cands, prev, t1)
			assert.Nil(t, change)
			assert.Equal(t, snapshots.StateUnavailable, entry.State())
			assert.Nil(t, entry.TopCandidate)
			assert.Len(t, entry.Failures, 2)
			assert.Equal(t, "Cursor", entry.Name)
		})
	}
}

func TestResolveNoSources(t *testing.T) {
	entry, change := Resolve(sources.Tool{ID: "empty", Name: "Empty"}, nil, nil, t1)
	assert.Nil(t, change)
	assert.Equal(t, snapshots.StateUnavailable, entry.State())
	assert.Equal(t, []string{}, entry.Aliases)
	assert.Equal(t, []snapshots.Failure{}, entry.Failures)
}

func TestResolveEvidence(t *testing.T) {
	a := sources.Source{Type: sources.TypeGist, URL: "https://a"}
	b := sources.Source{Type: sources.TypeFile, URL: "https://b"}
	c := sources.Source{Type: sources.TypeDoc, URL: "https://c"}
	cands := []candidates.Candidate{ok(a, "hz", 0.5), ok(b, "ha", 0.9), ok(c, "hz", 0.7)}

	entry, _ := Resolve(cursor, cands, nil, t1)

	require.Len(t, entry.Evidence, 2)
	assert.Equal(t, "https://a", entry.Evidence[0].Source.URL)
	assert.Equal(t, "https://b", entry.Evidence[1].Source.URL)
	assert.Equal(t, "ha", entry.TopCandidate.Hash)
	assert.Equal(t, candidates.Hash("ha|hz"), entry.EvidenceHash)
}

func TestEvidenceHashIsOrderIndependent(t *testing.T) {
	x := []candidates.Candidate{{ContentHash: "b"}, {ContentHash: "a"}, {ContentHash: "c"}}
	y := []candidates.Candidate{{ContentHash: "c"}, {ContentHash: "b"}, {ContentHash: "a"}}
	assert.Equal(t, EvidenceHash(x), EvidenceHash(y))
	assert.Equal(t, candidates.Hash(strings.Join([]string{"a", "b", "c"}, "|")), EvidenceHash(x))
}
