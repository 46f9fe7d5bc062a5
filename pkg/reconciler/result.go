package reconciler

import (
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/promptradar/pkg/candidates"
	"github.com/agentstation/promptradar/pkg/snapshots"
	"github.com/agentstation/promptradar/pkg/sources"
)

// Result represents the outcome of a run.
type Result struct {
	// RunID identifies the run in logs
	RunID string

	// GeneratedAt stamps every document written by the run
	GeneratedAt utc.Time

	// Documents as computed (and, unless DryRun, written)
	Current *snapshots.Current
	History *snapshots.History
	Latest  *snapshots.ChangesLatest

	// Tools in configuration order
	Tools []ToolResult

	DryRun   bool
	Duration time.Duration
}

// ToolResult is one tool's part of a run.
type ToolResult struct {
	Tool       sources.Tool
	Entry      snapshots.ToolEntry
	Change     *snapshots.ChangeRecord
	Candidates []candidates.Candidate
}

// Changes returns the change records detected by the run.
func (r *Result) Changes() []snapshots.ChangeRecord {
	if r.Latest == nil {
		return nil
	}
	return r.Latest.Changes
}

// Tally counts the run's tools by state.
func (r *Result) Tally() snapshots.Tally {
	if r.Current == nil {
		return snapshots.Tally{}
	}
	return r.Current.Tally()
}

// Observer is notified as a run progresses.
type Observer interface {
	// ObserveTool is called once per tool, in configuration order, after
	// all tools have been reconciled.
	ObserveTool(entry snapshots.ToolEntry, change *snapshots.ChangeRecord)
	// ObserveRun is called once the run's documents are final.
	ObserveRun(current *snapshots.Current, finished time.Time, elapsed time.Duration)
}
