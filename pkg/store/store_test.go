package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/promptradar/internal/store/memory"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/logging"
	"github.com/agentstation/promptradar/pkg/snapshots"
	"github.com/agentstation/promptradar/pkg/store"
)

type doc struct {
	Name  string         `json:"name"`
	Count int            `json:"count"`
	Tags  map[string]int `json:"tags"`
}

func openAll(t *testing.T) map[store.Backend]store.Store {
	t.Helper()
	out := map[store.Backend]store.Store{}
	for _, b := range store.Backends() {
		s, err := store.Open(context.Background(), b, t.TempDir())
		require.NoError(t, err, "open %s", b)
		t.Cleanup(func() { _ = s.Close() })
		out[b] = s
	}
	return out
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for backend, s := range openAll(t) {
		t.Run(string(backend), func(t *testing.T) {
			var got doc
			err := s.Read(ctx, "current", &got)
			require.Error(t, err)
			assert.True(t, errors.IsNotFound(err))

			require.NoError(t, s.Write(ctx, "current", doc{Name: "a", Count: 1}))
			require.NoError(t, s.Read(ctx, "current", &got))
			assert.Equal(t, doc{Name: "a", Count: 1}, got)

			// full replace
			require.NoError(t, s.Write(ctx, "current", doc{Name: "b", Tags: map[string]int{"x": 2}}))
			var replaced doc
			require.NoError(t, s.Read(ctx, "current", &replaced))
			assert.Equal(t, doc{Name: "b", Tags: map[string]int{"x": 2}}, replaced)

			// keys are independent
			require.NoError(t, s.Write(ctx, "history", doc{Name: "h"}))
			var other doc
			require.NoError(t, s.Read(ctx, "history", &other))
			assert.Equal(t, "h", other.Name)

			assert.Error(t, s.Write(ctx, "../escape", doc{}))
			assert.Error(t, s.Write(ctx, "", doc{}))
		})
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []store.Backend{store.BackendFiles, store.BackendSQLite, store.BackendBolt} {
		t.Run(string(backend), func(t *testing.T) {
			dir := t.TempDir()
			s, err := store.Open(ctx, backend, dir)
			require.NoError(t, err)
			require.NoError(t, s.Write(ctx, "changes-latest", doc{Name: "kept"}))
			require.NoError(t, s.Close())

			s, err = store.Open(ctx, backend, dir)
			require.NoError(t, err)
			defer s.Close()

			var got doc
			require.NoError(t, s.Read(ctx, "changes-latest", &got))
			assert.Equal(t, "kept", got.Name)
		})
	}
}

func TestFilesLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := store.Open(ctx, store.BackendFiles, dir)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "current", snapshots.NewCurrent()))

	data, err := os.ReadFile(filepath.Join(dir, "current.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"generatedAt\": null,\n  \"tools\": {}\n}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestReadOrDefault(t *testing.T) {
	ctx := context.Background()

	t.Run("missing document", func(t *testing.T) {
		s := memory.New()
		cur := store.ReadOrDefault(ctx, s, "current", snapshots.NewCurrent)
		require.NotNil(t, cur)
		assert.Nil(t, cur.GeneratedAt)
		assert.NotNil(t, cur.Tools)
	})

	t.Run("corrupt document", func(t *testing.T) {
		tl := logging.CaptureLoggingForTest(t)
		s := memory.New()
		s.Put("history", []byte("{not json"))

		h := store.ReadOrDefault(ctx, s, "history", snapshots.NewHistory)
		require.NotNil(t, h)
		assert.Empty(t, h.Tools)
		assert.NotNil(t, h.Tools)
		tl.AssertContains(t, "Unreadable stored document")
	})

	t.Run("corrupt file", func(t *testing.T) {
		logging.DisableLoggingForTest(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "current.json"), []byte("[]"), 0o644))
		s, err := store.Open(ctx, store.BackendFiles, dir)
		require.NoError(t, err)

		cur := store.ReadOrDefault(ctx, s, "current", snapshots.NewCurrent)
		assert.Empty(t, cur.Tools)
	})

	t.Run("stored document", func(t *testing.T) {
		s := memory.New()
		h := snapshots.NewHistory()
		h.Append(snapshots.ChangeRecord{ToolID: "cursor", NewHash: "h1"})
		require.NoError(t, s.Write(ctx, "history", h))

		got := store.ReadOrDefault(ctx, s, "history", snapshots.NewHistory)
		require.Len(t, got.Tools["cursor"], 1)
		assert.Equal(t, "h1", got.Tools["cursor"][0].NewHash)
	})
}

func TestParseBackend(t *testing.T) {
	b, err := store.ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, store.BackendFiles, b)

	b, err = store.ParseBackend(" SQLite ")
	require.NoError(t, err)
	assert.Equal(t, store.BackendSQLite, b)

	_, err = store.ParseBackend("postgres")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
