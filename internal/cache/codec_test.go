package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// sampleRows returns complete DREG records, as the shaper produces them.
func sampleRows() []types.Record {
	first := types.NewRecord(canon.DregFields)
	first[canon.DregDistributor] = types.String(`Arrow "Asia"`)
	first[canon.DregRegDate] = types.Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	first[canon.DregApprovalDate] = types.Null()
	first[canon.DregRevenue] = types.Number(1500.25)

	second := types.NewRecord(canon.DregFields)
	second[canon.DregDistributor] = types.String("Avnet")
	second[canon.DregRevenue] = types.Number(0)

	return []types.Record{first, second}
}

func TestEntryRoundTrip(t *testing.T) {
	in := Entry{
		Name:      "dregs",
		Version:   EntryVersion,
		Timestamp: time.Date(2024, 4, 1, 8, 30, 0, 0, time.UTC),
		Rows:      sampleRows(),
		Meta:      types.Meta{RowCount: 2, HeaderRowIndex: 0, Columns: []string{"Distributor"}},
	}

	data, err := encodeEntry(in)
	require.NoError(t, err)

	out, err := decodeEntry("dregs", data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeLegacyArray(t *testing.T) {
	data := []byte(`[{"Distributor":"Arrow","3-Year Revenue":12},{"Distributor":"Avnet","Approval Date":null}]`)

	e, err := decodeEntry("dregs", data)
	require.NoError(t, err)
	assert.Equal(t, "dregs", e.Name)
	assert.Equal(t, EntryVersion, e.Version)
	require.Len(t, e.Rows, 2)
	assert.Equal(t, 12.0, e.Rows[0]["3-Year Revenue"].Num())
	assert.True(t, e.Rows[1]["Approval Date"].IsNull())
	assert.Equal(t, 2, e.Meta.RowCount)
	assert.Len(t, e.Meta.Columns, len(canon.DregFields))

	for _, row := range e.Rows {
		assert.Len(t, row, len(canon.DregFields))
	}
	assert.Equal(t, types.KindString, e.Rows[0][canon.DregRegistrationID].Kind())
	assert.Equal(t, "", e.Rows[0].Text(canon.DregRegistrationID))
}

func TestDecodeUnknownNameKeepsRows(t *testing.T) {
	e, err := decodeEntry("scratch", []byte(`[{"A":"1"}]`))
	require.NoError(t, err)
	assert.Len(t, e.Rows[0], 1)
	assert.Nil(t, e.Meta.Columns)
}

func TestDecodeObjectWithoutVersion(t *testing.T) {
	e, err := decodeEntry("apps", []byte(`{"rows":[{"ID":"A1"}],"meta":{"rowCount":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "apps", e.Name)
	assert.Equal(t, EntryVersion, e.Version)
	assert.Equal(t, "A1", e.Rows[0].Text("ID"))
	assert.Len(t, e.Rows[0], len(canon.AppsFields))
}

func TestDecodeRejects(t *testing.T) {
	for name, payload := range map[string]string{
		"invalid":  `{"rows": [`,
		"no rows":  `{"name":"x"}`,
		"scalar":   `42`,
		"bad date": `{"rows":[{"d":{"$date":"yesterday"}}]}`,
	} {
		_, err := decodeEntry("x", []byte(payload))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, errCorruptPayload), name)
	}

	_, err := decodeEntry("x", []byte(`{"version":7,"rows":[]}`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, errCorruptPayload))
}
