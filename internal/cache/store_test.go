package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/distiviz/internal/config"
	"github.com/ginjaninja78/distiviz/internal/logging"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// countingBackend records how often each operation reaches the wrapped backend.
type countingBackend struct {
	Backend
	mu                    sync.Mutex
	loads, saves, deletes int
}

func (c *countingBackend) Load(ctx context.Context, name string) ([]byte, bool, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	return c.Backend.Load(ctx, name)
}

func (c *countingBackend) Save(ctx context.Context, name string, p []byte) error {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
	return c.Backend.Save(ctx, name, p)
}

func (c *countingBackend) Delete(ctx context.Context, name string) error {
	c.mu.Lock()
	c.deletes++
	c.mu.Unlock()
	return c.Backend.Delete(ctx, name)
}

func TestStoreSetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryBackend(), nil, nil)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	_, ok, err := s.Get(ctx, "dregs")
	require.NoError(t, err)
	assert.False(t, ok)

	rows := sampleRows()
	require.NoError(t, s.Set(ctx, "dregs", rows, types.Meta{RowCount: 2}))

	got, ok, err := s.Get(ctx, "dregs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rows, got.Rows)
	assert.Equal(t, 2, got.Meta.RowCount)
	assert.Equal(t, EntryVersion, got.Version)
	assert.Equal(t, "dregs", got.Name)
	assert.Equal(t, s.now(), got.Timestamp)

	// The caller's copy is independent of the stored one.
	got.Rows[0]["Distributor"] = types.String("changed")
	again, _, err := s.Get(ctx, "dregs")
	require.NoError(t, err)
	assert.Equal(t, `Arrow "Asia"`, again.Rows[0].Text("Distributor"))

	require.NoError(t, s.Set(ctx, "dregs", rows[:1], types.Meta{RowCount: 1}))
	got, _, err = s.Get(ctx, "dregs")
	require.NoError(t, err)
	assert.Len(t, got.Rows, 1)
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	legacy := NewMemoryBackend()
	s := NewStore(NewMemoryBackend(), legacy, nil)

	require.NoError(t, s.Set(ctx, "apps", sampleRows(), types.Meta{}))
	require.NoError(t, s.Set(ctx, "dregs", sampleRows(), types.Meta{}))
	require.NoError(t, legacy.Save(ctx, "campaign:leads", []byte(`[]`)))

	names, err := s.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apps", "dregs", "campaign:leads"}, names)

	require.NoError(t, s.Clear(ctx, "apps"))
	_, ok, err := s.Get(ctx, "apps")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ClearAll(ctx))
	names, err = s.Names(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	_, ok, _ = legacy.Load(ctx, "campaign:leads")
	assert.False(t, ok)
}

func TestStoreMigratesLegacyOnce(t *testing.T) {
	ctx := context.Background()
	primary := &countingBackend{Backend: NewMemoryBackend()}
	legacy := &countingBackend{Backend: NewMemoryBackend()}
	require.NoError(t, legacy.Backend.Save(ctx, "dregs", []byte(`[{"Distributor":"Arrow"}]`)))

	s := NewStore(primary, legacy, nil)

	got, ok, err := s.Get(ctx, "dregs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Arrow", got.Rows[0].Text("Distributor"))
	assert.Equal(t, 1, legacy.loads)
	assert.Equal(t, 1, legacy.deletes)
	assert.Equal(t, 1, primary.saves)

	_, ok, _ = legacy.Backend.Load(ctx, "dregs")
	assert.False(t, ok, "legacy copy must be removed")

	// Later calls in the same process never touch the legacy store again.
	for i := 0; i < 3; i++ {
		_, _, err := s.Get(ctx, "dregs")
		require.NoError(t, err)
	}
	require.NoError(t, s.Set(ctx, "dregs", sampleRows(), types.Meta{}))
	assert.Equal(t, 1, legacy.loads)
	assert.Equal(t, 1, legacy.deletes)
	assert.Equal(t, 0, legacy.saves)
}

func TestStoreSetAfterMigrationWins(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryBackend()
	legacy := NewMemoryBackend()
	require.NoError(t, legacy.Save(ctx, "dregs", []byte(`[{"Distributor":"old"}]`)))

	s := NewStore(primary, legacy, nil)
	require.NoError(t, s.Set(ctx, "dregs", []types.Record{{"Distributor": types.String("new")}}, types.Meta{}))

	got, _, err := s.Get(ctx, "dregs")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Rows[0].Text("Distributor"))
	_, ok, _ := legacy.Load(ctx, "dregs")
	assert.False(t, ok)
}

func TestStoreDropsCorruptLegacy(t *testing.T) {
	ctx := context.Background()
	legacy := NewMemoryBackend()
	require.NoError(t, legacy.Save(ctx, "apps", []byte(`{broken`)))
	s := NewStore(NewMemoryBackend(), legacy, nil)

	_, ok, err := s.Get(ctx, "apps")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, _ = legacy.Load(ctx, "apps")
	assert.False(t, ok)
}

func TestOpenDisabled(t *testing.T) {
	s, err := Open(context.Background(), config.CacheConfig{Disabled: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Strategy())
}

func TestOpenFallsBackToSimpleStore(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := config.Default().Cache
	cfg.DurablePath = filepath.Join(blocker, "datasets.db")
	cfg.LegacyDir = filepath.Join(dir, "legacy")

	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "file", s.Strategy())

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "apps", sampleRows(), types.Meta{RowCount: 2}))
	got, ok, err := s.Get(ctx, "apps")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Rows, 2)
}

func TestOpenFallsBackToMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := config.Default().Cache
	cfg.DurablePath = filepath.Join(blocker, "datasets.db")
	cfg.LegacyDir = filepath.Join(blocker, "legacy")

	var logs bytes.Buffer
	s, err := Open(context.Background(), cfg, logging.New(&logs, logging.LevelWarn))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "memory", s.Strategy())
	assert.Contains(t, logs.String(), "[WARN] no usable cache backend")

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "dregs", sampleRows(), types.Meta{RowCount: 2}))
	got, ok, err := s.Get(ctx, "dregs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Rows, 2)
}

func TestOpenDurableMigratesFromFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.Default().Cache
	cfg.DurablePath = filepath.Join(dir, "datasets.db")
	cfg.LegacyDir = filepath.Join(dir, "legacy")

	old, err := NewFileBackend(cfg.LegacyDir, cfg.LegacyPrefix, 0)
	require.NoError(t, err)
	require.NoError(t, old.Save(ctx, "apps", []byte(`{"rows":[{"ID":"A1"}],"meta":{"rowCount":1}}`)))

	s, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer s.Close()
	if s.Strategy() != "sqlite+file" {
		t.Skipf("sqlite unavailable in this build, strategy %s", s.Strategy())
	}

	got, ok, err := s.Get(ctx, "apps")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A1", got.Rows[0].Text("ID"))

	keys, err := old.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
