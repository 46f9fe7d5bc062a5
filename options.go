package promptradar

import (
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/promptradar/pkg/candidates"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/metrics"
	"github.com/agentstation/promptradar/pkg/sources"
	"github.com/agentstation/promptradar/pkg/store"
)

// options holds the client configuration.
type options struct {
	// tools to reconcile; toolsFile is read when tools is empty
	tools     []sources.Tool
	toolsFile string

	// storage
	backend store.Backend
	dataDir string
	store   store.Store

	// fetching
	fetcher      candidates.Fetcher
	fetchTimeout time.Duration
	userAgent    string
	concurrency  int

	metrics *metrics.Metrics
	now     func() utc.Time
}

func defaults() *options {
	return &options{
		toolsFile:    constants.DefaultConfigPath,
		backend:      constants.DefaultStoreBackend,
		dataDir:      constants.DefaultDataDir,
		fetchTimeout: constants.DefaultFetchTimeout,
		userAgent:    constants.DefaultUserAgent,
		concurrency:  constants.DefaultConcurrency,
		now:          utc.Now,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithTools sets the tools to reconcile, bypassing the tools file.
func WithTools(tools []sources.Tool) Option {
	return func(o *options) error {
		o.tools = tools
		return nil
	}
}

// WithToolsFile sets the path of the tools configuration file.
func WithToolsFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{Field: "toolsFile", Message: "cannot be empty"}
		}
		o.toolsFile = path
		return nil
	}
}

// WithStoreBackend selects the snapshot store backend opened under the data directory.
func WithStoreBackend(backend store.Backend) Option {
	return func(o *options) error {
		o.backend = backend
		return nil
	}
}

// WithDataDir sets the directory snapshot documents live in.
func WithDataDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return &errors.ValidationError{Field: "dataDir", Message: "cannot be empty"}
		}
		o.dataDir = dir
		return nil
	}
}

// WithStore uses an already open store. The client does not close it.
func WithStore(s store.Store) Option {
	return func(o *options) error {
		o.store = s
		return nil
	}
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f candidates.Fetcher) Option {
	return func(o *options) error {
		o.fetcher = f
		return nil
	}
}

// WithFetchTimeout bounds each source fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return &errors.ValidationError{Field: "fetchTimeout", Value: d, Message: "must be positive"}
		}
		o.fetchTimeout = d
		return nil
	}
}

// WithUserAgent sets the User-Agent sent with every fetch.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		o.userAgent = ua
		return nil
	}
}

// WithConcurrency bounds how many tools are reconciled at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		o.concurrency = n
		return nil
	}
}

// WithMetrics records run metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithClock sets the source of timestamps.
func WithClock(now func() utc.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.now = now
		return nil
	}
}

// UpdateOption configures a single Update call.
type UpdateOption func(*updateOptions)

type updateOptions struct {
	dryRun  bool
	timeout time.Duration
}

// WithDryRun computes the run without writing documents or firing hooks.
func WithDryRun(dryRun bool) UpdateOption {
	return func(o *updateOptions) {
		o.dryRun = dryRun
	}
}

// WithUpdateTimeout bounds the whole run. Zero means no bound.
func WithUpdateTimeout(d time.Duration) UpdateOption {
	return func(o *updateOptions) {
		o.timeout = d
	}
}
