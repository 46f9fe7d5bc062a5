// Package candidates evaluates sources into scored candidates and chooses
// among them.
package candidates

import (
	"github.com/agentstation/utc"

	"github.com/agentstation/promptradar/pkg/sources"
)

// Candidate is the outcome of evaluating one source in one run. A successful
// candidate has normalized content and a confidence; a failed one carries
// Err. Candidates are never persisted directly.
type Candidate struct {
	Source      sources.Source
	FetchedAt   utc.Time
	Content     string
	ContentHash string
	Confidence  float64
	Preview     string
	Err         error
}

// OK reports whether the evaluation succeeded.
func (c Candidate) OK() bool {
	return c.Err == nil
}

// Error returns the failure message, or "" for a success.
func (c Candidate) Error() string {
	if c.Err == nil {
		return ""
	}
	return c.Err.Error()
}

// Dedupe keeps successful candidates only, the first per content hash, in
// input order.
func Dedupe(cands []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if !c.OK() {
			continue
		}
		if _, dup := seen[c.ContentHash]; dup {
			continue
		}
		seen[c.ContentHash] = struct{}{}
		out = append(out, c)
	}
	return out
}

// PickTop returns the candidate with the highest confidence. Ties go to the
// earliest candidate. ok is false for empty input.
func PickTop(cands []Candidate) (top Candidate, ok bool) {
	for i, c := range cands {
		if i == 0 || c.Confidence > top.Confidence {
			top = c
		}
	}
	return top, len(cands) > 0
}
