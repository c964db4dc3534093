package ingest

import (
	"strings"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// DetectOptions bounds the header search.
type DetectOptions struct {
	// MaxScanRows is the number of leading rows examined.
	MaxScanRows int

	// StrongScore ends the search as soon as a row recognises this many fields.
	StrongScore int
}

// DefaultDetectOptions returns the standard limits: 50 rows, stop at 6 fields.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{MaxScanRows: 50, StrongScore: 6}
}

// DetectHeaderRow finds the row of matrix that most looks like a header for
// table's dataset.
//
// Each scanned row is scored by the number of distinct canonical fields its
// non-empty cells resolve to. Within a row the first column claiming a field
// wins. The first row with the highest score is chosen; a row reaching
// StrongScore ends the scan.
//
// RETURNS:
//   - The best row. Score 0 (HeaderRowIndex -1) means no header was found.
func DetectHeaderRow(matrix [][]string, table *canon.Table, opts DetectOptions) types.HeaderDetectionResult {
	if opts.MaxScanRows <= 0 {
		opts.MaxScanRows = DefaultDetectOptions().MaxScanRows
	}
	if opts.StrongScore <= 0 {
		opts.StrongScore = DefaultDetectOptions().StrongScore
	}

	best := types.HeaderDetectionResult{HeaderRowIndex: -1, FieldMap: map[types.CanonicalField]int{}}
	limit := len(matrix)
	if limit > opts.MaxScanRows {
		limit = opts.MaxScanRows
	}

	for r := 0; r < limit; r++ {
		fieldMap := mapHeaderRow(matrix[r], table)
		if len(fieldMap) > best.Score {
			best = types.HeaderDetectionResult{HeaderRowIndex: r, FieldMap: fieldMap, Score: len(fieldMap)}
			if best.Score >= opts.StrongScore {
				break
			}
		}
	}
	return best
}

// mapHeaderRow resolves the cells of one row. The first column to claim a
// canonical field keeps it.
func mapHeaderRow(row []string, table *canon.Table) map[types.CanonicalField]int {
	fieldMap := make(map[types.CanonicalField]int)
	for c, cell := range row {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		f, ok := table.Canonicalize(cell)
		if !ok {
			continue
		}
		if _, claimed := fieldMap[f]; !claimed {
			fieldMap[f] = c
		}
	}
	return fieldMap
}
