package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

func TestForwardFillRegions(t *testing.T) {
	got := ForwardFillRegions([]string{"", "APAC", "", "nan", "EMEA", ""}, 7)
	assert.Equal(t, []string{"N/A", "APAC", "APAC", "APAC", "EMEA", "EMEA", "EMEA"}, got)

	assert.Equal(t, []string{"N/A", "N/A"}, ForwardFillRegions(nil, 2))
}

func TestFindDistributorColumns(t *testing.T) {
	header := []string{"ID", "Level III", " Arrow ", "", "Avnet"}
	fieldMap := map[types.CanonicalField]int{canon.AppsID: 0, canon.AppsLevel3: 1}

	got := FindDistributorColumns(header, fieldMap)
	assert.Equal(t, []types.DistributorColumn{{ColumnIndex: 2, Name: "Arrow"}, {ColumnIndex: 4, Name: "Avnet"}}, got)
}

func appsMatrix() [][]string {
	return [][]string{
		{"", "", "", "", "", "APAC", "", "", "EMEA", ""},
		{"ID", "Level III", "Level II", "App List Light", "Lead DIV", "Arrow", "Avnet", "WPG", "Future", "Rutronik"},
		{"A1", "Automotive", "Powertrain", "Inverter", "ATV", "80%", "", "40", "n/a", "65 %"},
		{"", "", "", "", "", "90%", "10%", "", "", ""},
		{"A2", "Industrial", "", "", "PSS", "", "", "", "", ""},
		{"A3", "Consumer"},
	}
}

func TestUnpivot(t *testing.T) {
	matrix := appsMatrix()
	header := DetectHeaderRow(matrix, appsTable(), DefaultDetectOptions())
	require.Equal(t, 1, header.HeaderRowIndex)

	records := Unpivot(matrix, header)
	require.Len(t, records, 4)

	for _, r := range records {
		assert.Len(t, r, len(canon.AppsFields))
		assert.Equal(t, "A1", r.Text(canon.AppsID))
		assert.Equal(t, "Automotive", r.Text(canon.AppsLevel3))
		assert.Equal(t, "Powertrain", r.Text(canon.AppsLevel2))
		assert.Equal(t, "Inverter", r.Text(canon.AppsApplication))
		assert.Equal(t, "ATV", r.Text(canon.AppsLeadDIV))
	}

	assert.Equal(t, "APAC", records[0].Text(canon.AppsRegion))
	assert.Equal(t, "Arrow", records[0].Text(canon.AppsDistributor))
	assert.Equal(t, 80.0, records[0][canon.AppsConfidence].Num())

	assert.Equal(t, "WPG", records[1].Text(canon.AppsDistributor))
	assert.Equal(t, "APAC", records[1].Text(canon.AppsRegion))
	assert.Equal(t, 40.0, records[1][canon.AppsConfidence].Num())

	assert.Equal(t, "Future", records[2].Text(canon.AppsDistributor))
	assert.Equal(t, "EMEA", records[2].Text(canon.AppsRegion))
	assert.Equal(t, types.KindString, records[2][canon.AppsConfidence].Kind())
	assert.Equal(t, "", records[2].Text(canon.AppsConfidence))

	assert.Equal(t, "Rutronik", records[3].Text(canon.AppsDistributor))
	assert.Equal(t, "EMEA", records[3].Text(canon.AppsRegion))
	assert.Equal(t, 65.0, records[3][canon.AppsConfidence].Num())
}

func TestUnpivotHeaderOnFirstRow(t *testing.T) {
	matrix := [][]string{
		{"ID", "Lead DIV", "Arrow"},
		{"A1", "ATV", "50"},
	}
	header := DetectHeaderRow(matrix, appsTable(), DefaultDetectOptions())
	records := Unpivot(matrix, header)

	require.Len(t, records, 1)
	assert.Equal(t, NoRegion, records[0].Text(canon.AppsRegion))
	assert.Equal(t, "", records[0].Text(canon.AppsLevel3))
}

func TestUnpivotNoHeader(t *testing.T) {
	assert.Nil(t, Unpivot([][]string{{"a"}}, types.HeaderDetectionResult{HeaderRowIndex: -1}))
}
