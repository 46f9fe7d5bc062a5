package reconciler

import (
	"slices"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/promptradar/pkg/candidates"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/snapshots"
	"github.com/agentstation/promptradar/pkg/sources"
)

// Resolve decides a tool's new entry from this run's candidates and the
// previous entry (nil on first sight). A change record is returned when the
// tool resolved to content whose hash differs from the previous top
// candidate, or when there was no previous top candidate.
//
//	top found | previous has top | state
//	----------+------------------+------------
//	no        | yes              | fallback
//	no        | no               | unavailable
//	yes       | any              | resolved
func Resolve(tool sources.Tool, cands []candidates.Candidate, previous *snapshots.ToolEntry, now utc.Time) (snapshots.ToolEntry, *snapshots.ChangeRecord) {
	failures := failuresOf(cands)
	evidence := candidates.Dedupe(cands)

	top, ok := candidates.PickTop(evidence)
	if !ok {
		if previous != nil && previous.HasTop() {
			return fallback(*previous, failures, now), nil
		}
		return snapshots.ToolEntry{
			ID:            tool.ID,
			Name:          tool.Name,
			Aliases:       aliasesOf(tool),
			LastCheckedAt: now,
			Unavailable:   true,
			Failures:      failures,
		}, nil
	}

	topSummary := summarize(top)
	entry := snapshots.ToolEntry{
		ID:            tool.ID,
		Name:          tool.Name,
		Aliases:       aliasesOf(tool),
		LastCheckedAt: now,
		TopCandidate:  &topSummary,
		Evidence:      make([]snapshots.CandidateSummary, len(evidence)),
		EvidenceHash:  EvidenceHash(evidence),
		Failures:      failures,
	}
	for i, c := range evidence {
		entry.Evidence[i] = summarize(c)
	}

	if previous != nil && previous.HasTop() && previous.TopCandidate.Hash == top.ContentHash {
		return entry, nil
	}

	change := &snapshots.ChangeRecord{
		DetectedAt: now,
		ToolID:     tool.ID,
		ToolName:   tool.Name,
		NewHash:    top.ContentHash,
		Confidence: top.Confidence,
		Source:     top.Source,
		Preview:    top.Preview,
	}
	if previous != nil && previous.HasTop() {
		prev := previous.TopCandidate.Hash
		change.PreviousHash = &prev
	}
	return entry, change
}

// fallback carries the previous entry forward with this attempt's failures.
func fallback(previous snapshots.ToolEntry, failures []snapshots.Failure, now utc.Time) snapshots.ToolEntry {
	entry := previous
	entry.Aliases = slices.Clone(previous.Aliases)
	entry.Evidence = slices.Clone(previous.Evidence)
	entry.LastCheckedAt = now
	entry.FallbackUsed = true
	entry.Unavailable = false
	entry.Failures = failures
	return entry
}

// EvidenceHash fingerprints the set of distinct contents seen for a tool:
// the sha256 of the sorted content hashes joined by "|".
func EvidenceHash(evidence []candidates.Candidate) string {
	hashes := make([]string, len(evidence))
	for i, c := range evidence {
		hashes[i] = c.ContentHash
	}
	slices.Sort(hashes)
	return candidates.Hash(strings.Join(hashes, constants.EvidenceHashSeparator))
}

func summarize(c candidates.Candidate) snapshots.CandidateSummary {
	return snapshots.CandidateSummary{
		Hash:       c.ContentHash,
		Confidence: c.Confidence,
		Source:     c.Source,
		Preview:    c.Preview,
	}
}

func failuresOf(cands []candidates.Candidate) []snapshots.Failure {
	failures := []snapshots.Failure{}
	for _, c := range cands {
		if c.OK() {
			continue
		}
		failures = append(failures, snapshots.Failure{
			Type:      c.Source.Type,
			URL:       c.Source.URL,
			Error:     c.Error(),
			FetchedAt: c.FetchedAt,
		})
	}
	return failures
}

func aliasesOf(tool sources.Tool) []string {
	if tool.Aliases == nil {
		return []string{}
	}
	return slices.Clone(tool.Aliases)
}
