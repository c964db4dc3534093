package ingest

import (
	"strings"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// NoRegion labels distributor columns that have no region cell to their left.
const NoRegion = "N/A"

// FindDistributorColumns returns every non-empty header cell that was not
// claimed by a canonical field, in column order.
func FindDistributorColumns(headerRow []string, fieldMap map[types.CanonicalField]int) []types.DistributorColumn {
	claimed := make(map[int]bool, len(fieldMap))
	for _, c := range fieldMap {
		claimed[c] = true
	}

	var cols []types.DistributorColumn
	for c, cell := range headerRow {
		name := strings.TrimSpace(cell)
		if name == "" || claimed[c] {
			continue
		}
		cols = append(cols, types.DistributorColumn{ColumnIndex: c, Name: name})
	}
	return cols
}

// ForwardFillRegions assigns each column the nearest non-empty region cell at
// or to its left. Cells reading "nan" (any case) count as empty. Columns with
// nothing to their left get NoRegion.
func ForwardFillRegions(regionRow []string, width int) []string {
	filled := make([]string, width)
	current := NoRegion
	for c := 0; c < width; c++ {
		v := strings.TrimSpace(cellAt(regionRow, c))
		if v != "" && !strings.EqualFold(v, "nan") {
			current = v
		}
		filled[c] = current
	}
	return filled
}

// Unpivot turns the wide Apps matrix into one record per non-empty
// distributor cell.
//
// The header row is header.HeaderRowIndex; the row above it, when there is
// one, carries region labels. Every row below the header is a data row.
// Rows whose base fields are all blank are skipped.
//
// PARAMETERS:
//   - matrix: The sheet's cells.
//   - header: The detection result for the sheet.
//
// RETURNS:
//   - The records in row-major order, distributor columns left to right.
func Unpivot(matrix [][]string, header types.HeaderDetectionResult) []types.Record {
	if !header.Found() || header.HeaderRowIndex >= len(matrix) {
		return nil
	}
	headerRow := matrix[header.HeaderRowIndex]
	distributors := FindDistributorColumns(headerRow, header.FieldMap)
	if len(distributors) == 0 {
		return nil
	}

	var regionRow []string
	if header.HeaderRowIndex > 0 {
		regionRow = matrix[header.HeaderRowIndex-1]
	}
	regions := ForwardFillRegions(regionRow, len(headerRow))

	var records []types.Record
	for _, row := range matrix[header.HeaderRowIndex+1:] {
		base := make(map[types.CanonicalField]string, len(canon.AppsBaseFields))
		blank := true
		for _, f := range canon.AppsBaseFields {
			c, ok := header.FieldMap[f]
			if !ok {
				continue
			}
			v := strings.TrimSpace(cellAt(row, c))
			base[f] = v
			if v != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		for _, d := range distributors {
			cell := cellAt(row, d.ColumnIndex)
			if strings.TrimSpace(cell) == "" {
				continue
			}
			rec := types.NewRecord(canon.AppsFields)
			rec[canon.AppsRegion] = types.String(regions[d.ColumnIndex])
			rec[canon.AppsDistributor] = types.String(d.Name)
			for f, v := range base {
				rec[f] = types.String(v)
			}
			rec[canon.AppsConfidence] = CoerceConfidence(types.ParseCell(cell))
			records = append(records, rec)
		}
	}
	return records
}

// cellAt returns row[c], or "" past the end of a ragged row.
func cellAt(row []string, c int) string {
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}
