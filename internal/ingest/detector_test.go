package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

var registry = canon.MustRegistry()

func appsTable() *canon.Table { return registry.Table(types.DatasetApps) }

func TestDetectHeaderRowPicksBestRow(t *testing.T) {
	matrix := [][]string{
		{"Focus applications FY25"},
		{"", "", "APAC", "", "EMEA"},
		{"ID", "Level III", "Arrow", "Avnet", "Future"},
		{"1", "Auto", "80%", "", "50"},
	}
	got := DetectHeaderRow(matrix, appsTable(), DefaultDetectOptions())

	assert.True(t, got.Found())
	assert.Equal(t, 2, got.HeaderRowIndex)
	assert.Equal(t, 2, got.Score)
	assert.Equal(t, map[types.CanonicalField]int{canon.AppsID: 0, canon.AppsLevel3: 1}, got.FieldMap)
}

func TestDetectHeaderRowFirstColumnWins(t *testing.T) {
	matrix := [][]string{{"Level III", "level_iii", "ID"}}
	got := DetectHeaderRow(matrix, appsTable(), DefaultDetectOptions())

	assert.Equal(t, 0, got.FieldMap[canon.AppsLevel3])
	assert.Equal(t, 2, got.Score)
}

func TestDetectHeaderRowTieKeepsFirst(t *testing.T) {
	matrix := [][]string{
		{"x"},
		{"ID", "Lead DIV"},
		{"Conf", "Level II"},
	}
	got := DetectHeaderRow(matrix, appsTable(), DefaultDetectOptions())
	assert.Equal(t, 1, got.HeaderRowIndex)
}

func TestDetectHeaderRowStopsAtStrongMatch(t *testing.T) {
	strong := []string{"Region", "Distributor", "ID", "Level III", "Level II", "App List Light"}
	stronger := append(append([]string{}, strong...), "Lead DIV", "Confidence")
	matrix := [][]string{strong, stronger}

	got := DetectHeaderRow(matrix, appsTable(), DefaultDetectOptions())
	assert.Equal(t, 0, got.HeaderRowIndex)
	assert.Equal(t, 6, got.Score)

	got = DetectHeaderRow(matrix, appsTable(), DetectOptions{MaxScanRows: 50, StrongScore: 8})
	assert.Equal(t, 1, got.HeaderRowIndex)
}

func TestDetectHeaderRowScanLimit(t *testing.T) {
	matrix := make([][]string, 60)
	matrix[55] = []string{"ID", "Level III"}

	got := DetectHeaderRow(matrix, appsTable(), DefaultDetectOptions())
	assert.False(t, got.Found())
	assert.Equal(t, -1, got.HeaderRowIndex)

	got = DetectHeaderRow(matrix, appsTable(), DetectOptions{MaxScanRows: 60})
	assert.Equal(t, 55, got.HeaderRowIndex)
}

func TestDetectHeaderRowEmpty(t *testing.T) {
	got := DetectHeaderRow(nil, appsTable(), DefaultDetectOptions())
	assert.False(t, got.Found())
	assert.Zero(t, got.Score)
}
