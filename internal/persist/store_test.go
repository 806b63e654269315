package persist

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeConformance exercises the contract every Store must honour.
func storeConformance(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	scope := ScopeKey("app")

	id, ok, err := s.Load(ctx, scope)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should report absence")
	assert.Empty(t, id)

	require.NoError(t, s.Save(ctx, scope, "nord"))
	id, ok, err = s.Load(ctx, scope)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "nord", id)

	require.NoError(t, s.Save(ctx, scope, "dracula"))
	id, _, err = s.Load(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "dracula", id, "second save should overwrite")

	other := ScopeKey("editor")
	require.NoError(t, s.Save(ctx, other, "gruvbox"))
	id, _, err = s.Load(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "dracula", id, "scopes must not collide")

	require.NoError(t, s.Clear(ctx, scope))
	_, ok, err = s.Load(ctx, scope)
	require.NoError(t, err)
	assert.False(t, ok, "cleared scope should be absent")

	require.NoError(t, s.Clear(ctx, scope), "clearing an empty scope must not fail")

	id, ok, err = s.Load(ctx, other)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gruvbox", id, "clear must only touch its own scope")
}

func TestScopeKey(t *testing.T) {
	assert.Equal(t, "theme_provider_app", ScopeKey("app"))
	assert.NotEqual(t, ScopeKey("a"), ScopeKey("b"))
}

func TestMemoryStoreConformance(t *testing.T) {
	storeConformance(t, NewMemoryStore())
}

func TestMockStoreConformance(t *testing.T) {
	m := NewMockStore()
	storeConformance(t, m)
	assert.Equal(t, 3, m.SaveCount())
	assert.Equal(t, 2, m.ClearCallCount)
}

func TestFileStoreConformance(t *testing.T) {
	storeConformance(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "config.yaml")))
}

func TestSQLiteStoreConformance(t *testing.T) {
	s, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "themes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	storeConformance(t, s)
}

func TestFileStorePreservesOtherSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: plain\nprovider-id: app\n"), 0o644))

	s := NewFileStore(path)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, ScopeKey("app"), "nord"))
	require.NoError(t, s.Save(ctx, ScopeKey("other"), "ayu"))
	require.NoError(t, s.Clear(ctx, ScopeKey("other")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "format: plain")
	assert.Contains(t, text, "provider-id: app")
	assert.Contains(t, text, "theme_provider_app: nord")
	assert.NotContains(t, text, "theme_provider_other")
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme-selections: [unterminated\n"), 0o644))

	s := NewFileStore(path)
	_, _, err := s.Load(context.Background(), ScopeKey("app"))
	assert.Error(t, err)
	assert.Error(t, s.Save(context.Background(), ScopeKey("app"), "nord"), "save must not clobber an unreadable file")
}

func TestStoresHonourCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, s := range map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "config.yaml")),
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := s.Load(ctx, ScopeKey("app"))
			assert.ErrorIs(t, err, context.Canceled)
			assert.ErrorIs(t, s.Save(ctx, ScopeKey("app"), "nord"), context.Canceled)
			assert.ErrorIs(t, s.Clear(ctx, ScopeKey("app")), context.Canceled)
		})
	}
}

func TestSQLiteEntriesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "themes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Save(ctx, ScopeKey("first"), "nord"))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.Save(ctx, ScopeKey("second"), "ayu"))

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ScopeKey("second"), entries[0].ScopeKey)
	assert.Equal(t, "ayu", entries[0].ThemeID)
	assert.False(t, entries[0].UpdatedAt.IsZero())
	assert.False(t, entries[0].UpdatedAt.Before(entries[1].UpdatedAt))
}

func TestSQLiteStoreReopenKeepsSelections(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "themes.db")

	first, err := OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, ScopeKey("app"), "kanagawa"))
	require.NoError(t, first.Close())
	require.NoError(t, first.Close(), "close is idempotent")

	second, err := OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	id, ok, err := second.Load(ctx, ScopeKey("app"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kanagawa", id)
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	mem, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, mem)

	file, err := Open("FILE", filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, file)

	db, err := Open(BackendSQLite, filepath.Join(dir, "themes.db"))
	require.NoError(t, err)
	closer, ok := db.(io.Closer)
	require.True(t, ok, "sqlite store should be closable")
	require.NoError(t, closer.Close())

	_, err = Open("etcd", "")
	assert.ErrorContains(t, err, "unknown store backend")
}
