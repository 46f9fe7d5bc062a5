// Package reconciler runs the radar: it evaluates every tool's sources,
// resolves each tool against its previous state and persists the current
// snapshot, the appended history and the latest change list.
package reconciler

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/logging"
	"github.com/agentstation/promptradar/pkg/snapshots"
	"github.com/agentstation/promptradar/pkg/sources"
	"github.com/agentstation/promptradar/pkg/store"
)

// Reconciler performs radar runs.
type Reconciler interface {
	// Run reconciles tools (in configuration order) against the stored
	// state. Store read problems are treated as a first run; store write
	// failures and cancellation abort the run with an error.
	Run(ctx context.Context, tools []sources.Tool) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	store     store.Store
	evaluator Evaluator
	options   *options
}

// New creates a Reconciler reading and writing st and evaluating sources
// with ev.
func New(st store.Store, ev Evaluator, opts ...Option) (Reconciler, error) {
	if st == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "cannot be nil"}
	}
	if ev == nil {
		return nil, &errors.ValidationError{Field: "evaluator", Message: "cannot be nil"}
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if options.newRunID == nil {
		options.newRunID = uuid.NewString
	}
	return &reconciler{store: st, evaluator: ev, options: options}, nil
}

// Run performs one run.
func (r *reconciler) Run(ctx context.Context, tools []sources.Tool) (*Result, error) {
	start := time.Now()
	runID := r.options.newRunID()
	ctx = logging.WithRun(ctx, runID)
	logger := logging.FromContext(ctx)

	generatedAt := r.options.now()
	logger.Info().
		Int("tools", len(tools)).
		Int("concurrency", r.options.concurrency).
		Bool("dry_run", r.options.dryRun).
		Msg("Starting radar run")

	previous := store.ReadOrDefault(ctx, r.store, constants.DocumentCurrent, snapshots.NewCurrent)
	history := store.ReadOrDefault(ctx, r.store, constants.DocumentHistory, snapshots.NewHistory)

	toolResults := r.reconcileTools(ctx, tools, previous, generatedAt)
	if err := ctx.Err(); err != nil {
		// canceled fetches look like failures; do not persist them
		logger.Warn().Err(err).Msg("Run canceled before completion, nothing written")
		return nil, err
	}

	result := assemble(runID, generatedAt, tools, toolResults, history)
	result.DryRun = r.options.dryRun

	for _, tr := range result.Tools {
		for _, obs := range r.options.observers {
			obs.ObserveTool(tr.Entry, tr.Change)
		}
	}

	if !r.options.dryRun {
		// once computed, the three documents are written together even if
		// the run is canceled meanwhile
		if err := r.persist(context.WithoutCancel(ctx), result); err != nil {
			logger.Error().Err(err).Msg("Failed to write snapshot documents")
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	for _, obs := range r.options.observers {
		obs.ObserveRun(result.Current, generatedAt.Time, result.Duration)
	}

	tally := result.Tally()
	logger.Info().
		Int("changes", len(result.Changes())).
		Int("tracked", tally.Tracked).
		Int("fallback", tally.Fallback).
		Int("unavailable", tally.Unavailable).
		Dur("elapsed", result.Duration).
		Msg("Radar run complete")

	return result, nil
}

// reconcileTools resolves every tool, at most concurrency at a time. The
// returned slice is indexed like tools.
func (r *reconciler) reconcileTools(ctx context.Context, tools []sources.Tool, previous *snapshots.Current, now utc.Time) []ToolResult {
	results := make([]ToolResult, len(tools))

	var g errgroup.Group
	g.SetLimit(r.options.concurrency)
	for i, tool := range tools {
		i, tool := i, tool
		var prev *snapshots.ToolEntry
		if e, ok := previous.Tools[tool.ID]; ok {
			prev = &e
		}
		g.Go(func() error {
			results[i] = r.reconcileTool(ctx, tool, prev, now)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *reconciler) reconcileTool(ctx context.Context, tool sources.Tool, previous *snapshots.ToolEntry, now utc.Time) ToolResult {
	ctx = logging.WithTool(ctx, tool.ID)
	cands := collect(ctx, r.evaluator, tool.Sources)
	entry, change := Resolve(tool, cands, previous, now)

	logEntry(logging.FromContext(ctx), entry, change)
	return ToolResult{Tool: tool, Entry: entry, Change: change, Candidates: cands}
}

func logEntry(logger *zerolog.Logger, entry snapshots.ToolEntry, change *snapshots.ChangeRecord) {
	switch entry.State() {
	case snapshots.StateFallback:
		logger.Warn().Int("failures", len(entry.Failures)).Msg("All sources failed, keeping previous snapshot")
	case snapshots.StateUnavailable:
		logger.Warn().Int("failures", len(entry.Failures)).Msg("All sources failed and no previous snapshot")
	default:
		level := zerolog.DebugLevel
		if change != nil {
			level = zerolog.InfoLevel
		}
		event := logger.WithLevel(level).Str("hash", entry.TopCandidate.Hash)
		if change != nil && change.PreviousHash != nil {
			event = event.Str("previous_hash", *change.PreviousHash)
		}
		event.
			Float64("confidence", entry.TopCandidate.Confidence).
			Int("evidence", len(entry.Evidence)).
			Bool("changed", change != nil).
			Msg("Tool resolved")
	}
}

// assemble builds the run's documents from per-tool results in
// configuration order, appending changes to history.
func assemble(runID string, generatedAt utc.Time, tools []sources.Tool, results []ToolResult, history *snapshots.History) *Result {
	stamp := generatedAt
	current := &snapshots.Current{GeneratedAt: &stamp, Tools: make(map[string]snapshots.ToolEntry, len(tools))}
	latest := &snapshots.ChangesLatest{GeneratedAt: &stamp, Changes: []snapshots.ChangeRecord{}}
	if history.Tools == nil {
		history.Tools = map[string][]snapshots.ChangeRecord{}
	}

	for _, tr := range results {
		current.Tools[tr.Tool.ID] = tr.Entry
		if tr.Change != nil {
			latest.Changes = append(latest.Changes, *tr.Change)
			history.Append(*tr.Change)
		}
	}
	history.GeneratedAt = &stamp

	return &Result{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Current:     current,
		History:     history,
		Latest:      latest,
		Tools:       results,
	}
}

// persist writes the three documents in order. A failure leaves the
// documents written before it in place.
func (r *reconciler) persist(ctx context.Context, result *Result) error {
	docs := []struct {
		key string
		doc any
	}{
		{constants.DocumentCurrent, result.Current},
		{constants.DocumentHistory, result.History},
		{constants.DocumentChangesLatest, result.Latest},
	}
	for _, d := range docs {
		if err := r.store.Write(ctx, d.key, d.doc); err != nil {
			if errors.IsStoreWrite(err) {
				return err
			}
			return errors.WrapStore("write", "", d.key, err)
		}
	}
	return nil
}
