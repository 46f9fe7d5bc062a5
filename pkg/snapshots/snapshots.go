// Package snapshots defines the persisted documents of the radar: the current
// per-tool state, the append-only change history and the latest run's changes.
package snapshots

import (
	"github.com/agentstation/utc"

	"github.com/agentstation/promptradar/pkg/sources"
)

// State is the shape a ToolEntry takes.
type State string

// Tool entry states.
const (
	StateResolved    State = "resolved"
	StateFallback    State = "fallback"
	StateUnavailable State = "unavailable"
)

// CandidateSummary is the persisted view of a successful candidate.
type CandidateSummary struct {
	Hash       string         `json:"hash"`
	Confidence float64        `json:"confidence"`
	Source     sources.Source `json:"source"`
	Preview    string         `json:"preview"`
}

// Failure records one source that could not be evaluated.
type Failure struct {
	Type      sources.Type `json:"type"`
	URL       string       `json:"url"`
	Error     string       `json:"error"`
	FetchedAt utc.Time     `json:"fetchedAt"`
}

// ToolEntry is a tool's state after a run. Exactly one of the resolved,
// fallback and unavailable shapes applies; see State.
type ToolEntry struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Aliases       []string           `json:"aliases"`
	LastCheckedAt utc.Time           `json:"lastCheckedAt"`
	TopCandidate  *CandidateSummary  `json:"topCandidate,omitempty"`
	Evidence      []CandidateSummary `json:"evidence,omitempty"`
	EvidenceHash  string             `json:"evidenceHash,omitempty"`
	Failures      []Failure          `json:"failures"`
	FallbackUsed  bool               `json:"fallbackUsed,omitempty"`
	Unavailable   bool               `json:"unavailable,omitempty"`
}

// State reports which shape the entry has.
func (e ToolEntry) State() State {
	switch {
	case e.Unavailable:
		return StateUnavailable
	case e.FallbackUsed:
		return StateFallback
	default:
		return StateResolved
	}
}

// HasTop reports whether the entry carries a top candidate.
func (e ToolEntry) HasTop() bool {
	return e.TopCandidate != nil && e.TopCandidate.Hash != ""
}

// ChangeRecord notes that a tool's authoritative content changed.
type ChangeRecord struct {
	DetectedAt   utc.Time       `json:"detectedAt"`
	ToolID       string         `json:"toolId"`
	ToolName     string         `json:"toolName"`
	PreviousHash *string        `json:"previousHash"`
	NewHash      string         `json:"newHash"`
	Confidence   float64        `json:"confidence"`
	Source       sources.Source `json:"source"`
	Preview      string         `json:"preview"`
}

// Current is the full per-tool state, replaced every run.
type Current struct {
	GeneratedAt *utc.Time            `json:"generatedAt"`
	Tools       map[string]ToolEntry `json:"tools"`
}

// NewCurrent returns the empty document used before the first run.
func NewCurrent() *Current {
	return &Current{Tools: map[string]ToolEntry{}}
}

// History is every change ever detected, per tool, oldest first.
type History struct {
	GeneratedAt *utc.Time                 `json:"generatedAt"`
	Tools       map[string][]ChangeRecord `json:"tools"`
}

// NewHistory returns the empty history document.
func NewHistory() *History {
	return &History{Tools: map[string][]ChangeRecord{}}
}

// Append adds rec to its tool's history.
func (h *History) Append(rec ChangeRecord) {
	if h.Tools == nil {
		h.Tools = map[string][]ChangeRecord{}
	}
	h.Tools[rec.ToolID] = append(h.Tools[rec.ToolID], rec)
}

// Len returns the total number of records across tools.
func (h *History) Len() int {
	n := 0
	for _, recs := range h.Tools {
		n += len(recs)
	}
	return n
}

// ChangesLatest lists the changes detected by the most recent run.
type ChangesLatest struct {
	GeneratedAt *utc.Time      `json:"generatedAt"`
	Changes     []ChangeRecord `json:"changes"`
}

// NewChangesLatest returns the empty latest-run document.
func NewChangesLatest() *ChangesLatest {
	return &ChangesLatest{Changes: []ChangeRecord{}}
}

// Tally counts tool entries by state.
type Tally struct {
	Tracked     int `json:"tracked"`
	Fallback    int `json:"fallback"`
	Unavailable int `json:"unavailable"`
}

// Tally counts the entries of c by state. Tracked counts every entry.
func (c *Current) Tally() Tally {
	var t Tally
	for _, e := range c.Tools {
		t.Tracked++
		switch e.State() {
		case StateFallback:
			t.Fallback++
		case StateUnavailable:
			t.Unavailable++
		}
	}
	return t
}
