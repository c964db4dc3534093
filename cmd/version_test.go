package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionReportWrite(t *testing.T) {
	var out bytes.Buffer
	err := versionReport{
		Version:       "1.2.3",
		BuildDate:     "2024-05-01",
		GoVersion:     "go1.22.0",
		EntryVersion:  1,
		PackVersion:   1,
		CacheStrategy: "sqlite+file",
		AliasesDir:    "/etc/distiviz/aliases",
	}.write(&out)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "distiviz 1.2.3 (built 2024-05-01, go1.22.0)")
	assert.Contains(t, got, "cache payload  v1")
	assert.Contains(t, got, "alias packs    up to v1, from /etc/distiviz/aliases")
	assert.Contains(t, got, "cache backend  sqlite+file")
}

func TestVersionReportWithoutCache(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, versionReport{Version: "1.2.3", EntryVersion: 1, PackVersion: 1}.write(&out))

	assert.Contains(t, out.String(), "cache backend  unavailable")
	assert.Contains(t, out.String(), "from (built-in only)")
}
