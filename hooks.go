package promptradar

import (
	"sync"

	"github.com/agentstation/promptradar/pkg/reconciler"
	"github.com/agentstation/promptradar/pkg/snapshots"
)

// Hook function types for run events
type (
	// ChangeHook is called for every change record a run persisted
	ChangeHook func(change snapshots.ChangeRecord)

	// FallbackHook is called for every tool that kept its previous snapshot
	FallbackHook func(entry snapshots.ToolEntry)

	// UnavailableHook is called for every tool with no usable candidate and no history
	UnavailableHook func(entry snapshots.ToolEntry)
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hooks registers callbacks fired after a run's documents are written.
type Hooks interface {
	OnChange(ChangeHook)
	OnFallback(FallbackHook)
	OnUnavailable(UnavailableHook)
}

// hooks manages event callbacks for run outcomes
type hooks struct {
	mu            sync.RWMutex
	onChange      []ChangeHook
	onFallback    []FallbackHook
	onUnavailable []UnavailableHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnChange registers a callback for detected changes.
func (c *client) OnChange(fn ChangeHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onChange = append(c.hooks.onChange, fn)
}

// OnFallback registers a callback for tools served from their previous snapshot.
func (c *client) OnFallback(fn FallbackHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onFallback = append(c.hooks.onFallback, fn)
}

// OnUnavailable registers a callback for unavailable tools.
func (c *client) OnUnavailable(fn UnavailableHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onUnavailable = append(c.hooks.onUnavailable, fn)
}

// trigger fires hooks for result in configuration order.
func (h *hooks) trigger(result *reconciler.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, tr := range result.Tools {
		if tr.Change != nil {
			for _, hook := range h.onChange {
				hook(*tr.Change)
			}
		}
		switch tr.Entry.State() {
		case snapshots.StateFallback:
			for _, hook := range h.onFallback {
				hook(tr.Entry)
			}
		case snapshots.StateUnavailable:
			for _, hook := range h.onUnavailable {
				hook(tr.Entry)
			}
		}
	}
}
