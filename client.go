// Package promptradar watches the system prompts of AI coding tools.
//
// For every configured tool the radar fetches a set of candidate sources,
// normalizes and scores their content, picks the most trustworthy candidate
// and compares it with the last known state. Changes are appended to a
// history; tools whose sources all fail keep their previous snapshot.
//
// Example usage:
//
//	radar, err := promptradar.New(
//	    promptradar.WithToolsFile("config/sources.json"),
//	    promptradar.WithDataDir("data"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer radar.Close()
//
//	radar.OnChange(func(c snapshots.ChangeRecord) {
//	    log.Printf("%s changed: %s", c.ToolID, c.NewHash)
//	})
//
//	result, err := radar.Update(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Detected %d change(s).\n", len(result.Changes()))
package promptradar

import (
	"context"
	"sync"

	"github.com/agentstation/promptradar/internal/transport"
	"github.com/agentstation/promptradar/pkg/candidates"
	"github.com/agentstation/promptradar/pkg/config"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/logging"
	"github.com/agentstation/promptradar/pkg/reconciler"
	"github.com/agentstation/promptradar/pkg/sources"
	"github.com/agentstation/promptradar/pkg/store"
)

// Client runs the radar and exposes its stored documents.
type Client interface {
	// Updater runs the reconciliation pipeline
	Updater

	// Snapshots reads the stored documents
	Snapshots

	// Hooks provides access to event callback registration
	Hooks

	// Tools returns the configured tools in order
	Tools() []sources.Tool

	// Close releases the store if the client opened it
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	tools     []sources.Tool
	store     store.Store
	ownsStore bool
	evaluator *candidates.Evaluator

	// runs and Close take the write lock; snapshot reads hold the read
	// lock until they finish with the store
	mu sync.RWMutex

	hooks *hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	options, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	tools := options.tools
	if len(tools) == 0 {
		cfg, warnings, err := config.LoadAndValidate(options.toolsFile)
		if err != nil {
			return nil, err
		}
		for _, w := range warnings {
			logging.Warn().Str("config", options.toolsFile).Msg(w)
		}
		tools = cfg.Tools
	} else {
		cfg := &config.Tools{Tools: tools}
		if _, err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	c := &client{
		options: options,
		tools:   tools,
		store:   options.store,
		hooks:   newHooks(),
	}

	if c.store == nil {
		ctx, cancel := context.WithTimeout(context.Background(), constants.StoreOpenTimeout)
		defer cancel()
		if c.store, err = store.Open(ctx, options.backend, options.dataDir); err != nil {
			return nil, errors.WrapResource("open", "store", string(options.backend), err)
		}
		c.ownsStore = true
	}

	fetcher := options.fetcher
	if fetcher == nil {
		fetcher = transport.New(
			transport.WithTimeout(options.fetchTimeout),
			transport.WithUserAgent(options.userAgent),
		)
	}
	evalOpts := []candidates.EvaluatorOption{candidates.WithClock(options.now)}
	if options.metrics != nil {
		evalOpts = append(evalOpts, candidates.WithObserver(options.metrics))
	}
	c.evaluator = candidates.NewEvaluator(fetcher, evalOpts...)

	// fail on bad reconciler options now rather than on the first update
	if _, err := c.reconciler(false); err != nil {
		_ = c.Close()
		return nil, err
	}

	logging.Debug().
		Int("tools", len(tools)).
		Str("store", string(options.backend)).
		Str("data_dir", options.dataDir).
		Msg("Prompt radar client ready")

	return c, nil
}

func (c *client) reconciler(dryRun bool) (reconciler.Reconciler, error) {
	opts := []reconciler.Option{
		reconciler.WithConcurrency(c.options.concurrency),
		reconciler.WithClock(c.options.now),
		reconciler.WithDryRun(dryRun),
	}
	if c.options.metrics != nil {
		opts = append(opts, reconciler.WithObserver(c.options.metrics))
	}
	return reconciler.New(c.store, c.evaluator, opts...)
}

// Tools returns a copy of the configured tools.
func (c *client) Tools() []sources.Tool {
	return append([]sources.Tool(nil), c.tools...)
}

// Close releases the store when the client opened it.
func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ownsStore || c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}
