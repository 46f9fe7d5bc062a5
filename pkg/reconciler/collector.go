package reconciler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/promptradar/pkg/candidates"
	"github.com/agentstation/promptradar/pkg/logging"
	"github.com/agentstation/promptradar/pkg/sources"
)

// Evaluator turns a source into a candidate. It must not fail; problems are
// reported through the candidate.
type Evaluator interface {
	Evaluate(ctx context.Context, src sources.Source) candidates.Candidate
}

// collect evaluates every source of a tool concurrently and returns the
// candidates in source order once all evaluations have finished.
func collect(ctx context.Context, ev Evaluator, srcs []sources.Source) []candidates.Candidate {
	cands := make([]candidates.Candidate, len(srcs))

	// no shared context: one slow or failing source must not cancel the others
	var g errgroup.Group
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			cands[i] = ev.Evaluate(logging.WithSource(ctx, src.URL), src)
			return nil
		})
	}
	_ = g.Wait()

	return cands
}
