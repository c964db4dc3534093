package ingest

import (
	"strings"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// DefaultDummySentinel marks placeholder registrations.
const DefaultDummySentinel = "DUMMY - DO NOT USE FOR TRACKING"

// FlatSheet is a sheet whose first row names the columns of the rest.
type FlatSheet struct {
	Headers []string
	Rows    [][]string
}

// FlatSheetAt splits matrix at the header row.
func FlatSheetAt(matrix [][]string, headerRowIndex int) FlatSheet {
	if headerRowIndex < 0 || headerRowIndex >= len(matrix) {
		return FlatSheet{}
	}
	return FlatSheet{Headers: matrix[headerRowIndex], Rows: matrix[headerRowIndex+1:]}
}

// columnsFor resolves each header once. The first column claiming a field keeps it.
func columnsFor(headers []string, table *canon.Table) map[types.CanonicalField]int {
	return mapHeaderRow(headers, table)
}

// Coercer converts a raw cell into a typed field value.
type Coercer func(types.Value) types.Value

// textValue trims a raw cell.
func textValue(raw string) types.Value {
	return types.String(strings.TrimSpace(raw))
}

// shapeRow builds a record holding every field of table. Mapped text fields are
// trimmed; fields with a coercer get coerced; unmapped fields get the
// coercer's reading of an empty cell (or "").
func shapeRow(row []string, cols map[types.CanonicalField]int, fields []types.CanonicalField, coercers map[types.CanonicalField]Coercer) types.Record {
	rec := make(types.Record, len(fields))
	for _, f := range fields {
		raw := ""
		if c, ok := cols[f]; ok {
			raw = cellAt(row, c)
		}
		if co, ok := coercers[f]; ok {
			rec[f] = co(types.ParseCell(strings.TrimSpace(raw)))
			continue
		}
		rec[f] = textValue(raw)
	}
	return rec
}

// =============================================================================
// DREG ROWS
// =============================================================================

// DregOptions controls which DREG rows survive shaping.
type DregOptions struct {
	// AllowedRegion keeps only rows whose Region equals it (case-insensitive).
	// Rows with a blank Region are kept. Empty disables the filter.
	AllowedRegion string

	// DummySentinel drops any row holding this value in a mapped column.
	DummySentinel string
}

// DefaultDregOptions returns the AP-only filter with the standard sentinel.
func DefaultDregOptions() DregOptions {
	return DregOptions{AllowedRegion: "AP", DummySentinel: DefaultDummySentinel}
}

var dregCoercers = map[types.CanonicalField]Coercer{
	canon.DregRegDate:      CoerceDate,
	canon.DregApprovalDate: CoerceDate,
	canon.DregRevenue:      CoerceRevenue,
}

// ShapeDregRows maps flat DREG rows onto the DREG schema.
//
// A row is dropped when:
//   - its Distributor is blank
//   - a mapped cell equals the dummy sentinel (trimmed, case-insensitive)
//   - it has a Region that differs from AllowedRegion
//
// Surviving rows carry every DREG field: dates coerced (null when unreadable),
// revenue coerced (0 when non-numeric), everything else trimmed text.
func ShapeDregRows(sheet FlatSheet, table *canon.Table, opts DregOptions) []types.Record {
	cols := columnsFor(sheet.Headers, table)
	fields := table.Fields()

	var records []types.Record
	for _, row := range sheet.Rows {
		if dropDregRow(row, cols, opts) {
			continue
		}
		records = append(records, shapeRow(row, cols, fields, dregCoercers))
	}
	return records
}

func dropDregRow(row []string, cols map[types.CanonicalField]int, opts DregOptions) bool {
	c, ok := cols[canon.DregDistributor]
	if !ok || strings.TrimSpace(cellAt(row, c)) == "" {
		return true
	}

	if opts.DummySentinel != "" {
		for _, c := range cols {
			if strings.EqualFold(strings.TrimSpace(cellAt(row, c)), opts.DummySentinel) {
				return true
			}
		}
	}

	if opts.AllowedRegion != "" {
		if c, ok := cols[canon.DregRegion]; ok {
			region := strings.TrimSpace(cellAt(row, c))
			if region != "" && !strings.EqualFold(region, opts.AllowedRegion) {
				return true
			}
		}
	}
	return false
}

// =============================================================================
// GENERIC ROWS
// =============================================================================

// NormalizeRows maps flat rows onto table's schema, dropping records whose
// fields are all blank.
func NormalizeRows(sheet FlatSheet, table *canon.Table, coercers map[types.CanonicalField]Coercer) []types.Record {
	cols := columnsFor(sheet.Headers, table)
	fields := table.Fields()

	var records []types.Record
	for _, row := range sheet.Rows {
		rec := shapeRow(row, cols, fields, coercers)
		if allBlank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func allBlank(rec types.Record) bool {
	for _, v := range rec {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}

// ShapeAppsFlatRows handles Apps sheets that are already one row per
// distributor, such as a previously exported CSV.
func ShapeAppsFlatRows(sheet FlatSheet, table *canon.Table) []types.Record {
	return NormalizeRows(sheet, table, map[types.CanonicalField]Coercer{
		canon.AppsConfidence: CoerceConfidence,
	})
}

// =============================================================================
// CAMPAIGN ROWS
// =============================================================================

// ShapeMasterRows shapes the campaign master list. Rows need a Registration ID
// or a Resale Customer to be kept.
func ShapeMasterRows(sheet FlatSheet, table *canon.Table) []types.Record {
	rows := NormalizeRows(sheet, table, map[types.CanonicalField]Coercer{
		canon.MasterRegDate: CoerceDate,
	})
	kept := rows[:0]
	for _, r := range rows {
		if !r[canon.MasterRegistrationID].IsBlank() || !r[canon.MasterResale].IsBlank() {
			kept = append(kept, r)
		}
	}
	return kept
}

// ShapeLeadRows shapes the campaign lead list. Rows with any field are kept.
func ShapeLeadRows(sheet FlatSheet, table *canon.Table) []types.Record {
	return NormalizeRows(sheet, table, nil)
}
