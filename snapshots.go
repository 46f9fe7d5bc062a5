package promptradar

import (
	"context"

	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/snapshots"
	"github.com/agentstation/promptradar/pkg/store"
)

// Compile-time interface check to ensure proper implementation.
var _ Snapshots = (*client)(nil)

// Snapshots reads the documents written by the last run. Missing or
// unreadable documents read as empty ones.
type Snapshots interface {
	Current(ctx context.Context) (*snapshots.Current, error)
	History(ctx context.Context) (*snapshots.History, error)
	Latest(ctx context.Context) (*snapshots.ChangesLatest, error)
}

// Current returns the stored per-tool state.
func (c *client) Current(ctx context.Context) (*snapshots.Current, error) {
	return readDocument(ctx, c, constants.DocumentCurrent, snapshots.NewCurrent)
}

// History returns the stored change history.
func (c *client) History(ctx context.Context) (*snapshots.History, error) {
	return readDocument(ctx, c, constants.DocumentHistory, snapshots.NewHistory)
}

// Latest returns the changes of the last run.
func (c *client) Latest(ctx context.Context) (*snapshots.ChangesLatest, error) {
	return readDocument(ctx, c, constants.DocumentChangesLatest, snapshots.NewChangesLatest)
}

// readDocument reads key under the read lock so Close waits for it.
func readDocument[T any](ctx context.Context, c *client, key string, empty func() *T) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.store == nil {
		return nil, &errors.ResourceError{Operation: "read", Resource: "snapshots", Message: "client is closed"}
	}
	return store.ReadOrDefault(ctx, c.store, key, empty), nil
}
