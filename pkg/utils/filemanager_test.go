package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{dataset}_{date}", map[string]string{"dataset": "campaign:master"})
	assert.True(t, strings.HasPrefix(name, "campaign_master_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))

	withUUID := GenerateOutputFileName("{uuid}.CSV", nil)
	assert.Len(t, withUUID, 36+len(".CSV"))
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apps.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0644))

	data, err := ReadInput(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	_, err = ReadInput(dir)
	assert.Error(t, err)

	_, err = ReadInput(filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "dregs.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	fm := NewFileManager(filepath.Join(dir, "out"), filepath.Join(dir, "archive"))
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, fm.EnsureDirectories())

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "archive", "2024", "01", "15", "dregs.xlsx"), archived)
	assert.False(t, FileExists(src))
	assert.True(t, FileExists(archived))

	fm.ArchiveOnSuccess = false
	same, err := fm.ArchiveInputFile("untouched.csv")
	require.NoError(t, err)
	assert.Equal(t, "untouched.csv", same)
}

func TestWriteOutputFile(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(filepath.Join(dir, "out"), "")

	path, err := fm.WriteOutputFile("apps.csv", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "apps.csv"), path)

	_, err = fm.WriteOutputFile("apps.csv", []byte("two"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	explicit := filepath.Join(dir, "elsewhere", "x.csv")
	got, err := fm.WriteOutputFile(explicit, []byte("three"))
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}
