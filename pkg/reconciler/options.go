package reconciler

import (
	"fmt"

	"github.com/agentstation/utc"

	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
)

// Options configures a reconciler.
type options struct {
	concurrency int
	dryRun      bool
	now         func() utc.Time
	newRunID    func() string
	observers   []Observer
}

func defaultOptions() *options {
	return &options{
		concurrency: constants.DefaultConcurrency,
		now:         utc.Now,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithConcurrency bounds how many tools are reconciled at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxConcurrency {
			return &errors.ValidationError{
				Field:   "concurrency",
				Value:   n,
				Message: fmt.Sprintf("must be between 1 and %d", constants.MaxConcurrency),
			}
		}
		o.concurrency = n
		return nil
	}
}

// WithDryRun computes the run without writing any document.
func WithDryRun(dryRun bool) Option {
	return func(o *options) error {
		o.dryRun = dryRun
		return nil
	}
}

// WithClock sets the source of the run timestamp.
func WithClock(now func() utc.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.now = now
		return nil
	}
}

// WithRunIDs sets the run id generator.
func WithRunIDs(next func() string) Option {
	return func(o *options) error {
		if next == nil {
			return &errors.ValidationError{Field: "run ids", Message: "cannot be nil"}
		}
		o.newRunID = next
		return nil
	}
}

// WithObserver adds an observer notified of tool outcomes and run completion.
func WithObserver(obs Observer) Option {
	return func(o *options) error {
		if obs == nil {
			return &errors.ValidationError{Field: "observer", Message: "cannot be nil"}
		}
		o.observers = append(o.observers, obs)
		return nil
	}
}
