package promptradar

import (
	"context"
	"time"

	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/logging"
	"github.com/agentstation/promptradar/pkg/reconciler"
)

// Compile-time interface check to ensure proper implementation.
var _ Updater = (*client)(nil)

// Updater runs the radar.
type Updater interface {
	// Update performs one run over the configured tools. Unless the run is
	// a dry run, the documents are written and hooks fire afterwards.
	Update(ctx context.Context, opts ...UpdateOption) (*reconciler.Result, error)
}

// Update performs one run.
func (c *client) Update(ctx context.Context, opts ...UpdateOption) (*reconciler.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	options := &updateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := c.run(ctx, options.dryRun)
	if err != nil {
		return nil, err
	}

	// hooks run unlocked so they may read snapshots or close the client
	if !result.DryRun {
		c.hooks.trigger(result)
	}

	logging.FromContext(ctx).Debug().
		Str("run_id", result.RunID).
		Dur("elapsed", time.Since(start)).
		Msg("Update finished")

	return result, nil
}

func (c *client) run(ctx context.Context, dryRun bool) (*reconciler.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		return nil, &errors.ResourceError{Operation: "update", Resource: "radar", Message: "client is closed"}
	}

	r, err := c.reconciler(dryRun)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, c.tools)
}
