package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "datasets.db"))
	if err != nil {
		t.Skipf("sqlite unavailable in this build: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	db := openTestSQLite(t)

	_, ok, err := db.Load(ctx, "apps")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Save(ctx, "apps", []byte(`{"rows":[]}`)))
	require.NoError(t, db.Save(ctx, "apps", []byte(`{"rows":[{"ID":"A1"}]}`)))
	require.NoError(t, db.Save(ctx, "dregs", []byte(`{"rows":[]}`)))

	got, ok, err := db.Load(ctx, "apps")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"rows":[{"ID":"A1"}]}`, string(got))

	keys, err := db.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apps", "dregs"}, keys)

	require.NoError(t, db.Delete(ctx, "apps"))
	_, ok, err = db.Load(ctx, "apps")
	require.NoError(t, err)
	assert.False(t, ok)
}
