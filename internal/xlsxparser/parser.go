// =============================================================================
// distiviz - Workbook Reader
// =============================================================================
//
// This module opens uploaded workbooks and exposes their sheets as cell
// matrices. Three formats are supported, chosen by file extension:
//
//   | Extension   | Reader                     |
//   |-------------|----------------------------|
//   | .xlsx/.xlsm | excelize                   |
//   | .xls        | extrame/xls (BIFF8)        |
//   | .csv/.txt   | internal/csvparser         |
//
// Cells are returned as strings. Numeric cells are returned raw (no number
// format applied) so that date serials and fractions reach the coercion step
// unchanged.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/distiviz/internal/csvparser"
)

// Format identifies the container format of a workbook.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// ErrUnreadable is returned when the bytes cannot be opened as a workbook.
var ErrUnreadable = errors.New("unreadable workbook")

// Workbook is a read-only view over an uploaded file.
type Workbook interface {
	// Format reports the container format.
	Format() Format

	// SheetNames lists sheets in workbook order.
	SheetNames() []string

	// Rows returns every row of a sheet. Rows may have different lengths.
	Rows(sheet string) ([][]string, error)

	Close() error
}

// Open parses data as a workbook, choosing the reader from the file extension.
//
// PARAMETERS:
//   - data: The uploaded bytes.
//   - filename: The original file name; only its extension is used.
//
// RETURNS:
//   - The opened workbook.
//   - An error wrapping ErrUnreadable if the bytes are not a workbook.
func Open(data []byte, filename string) (Workbook, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadable)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		return openCSV(data, filename)
	case ".xls":
		return openXLS(data)
	default:
		return openXLSX(data)
	}
}

// =============================================================================
// XLSX
// =============================================================================

type xlsxWorkbook struct {
	f *excelize.File
}

func openXLSX(data []byte) (Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return &xlsxWorkbook{f: f}, nil
}

func (w *xlsxWorkbook) Format() Format { return FormatXLSX }

func (w *xlsxWorkbook) SheetNames() []string { return w.f.GetSheetList() }

func (w *xlsxWorkbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (w *xlsxWorkbook) Close() error { return w.f.Close() }

// =============================================================================
// XLS
// =============================================================================

type xlsWorkbook struct {
	wb     *xls.WorkBook
	names  []string
	sheets map[string]int
}

func openXLS(data []byte) (wb Workbook, err error) {
	// The BIFF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	w := &xlsWorkbook{wb: book, sheets: make(map[string]int)}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		w.names = append(w.names, sheet.Name)
		w.sheets[sheet.Name] = i
	}
	return w, nil
}

func (w *xlsWorkbook) Format() Format { return FormatXLS }

func (w *xlsWorkbook) SheetNames() []string { return append([]string(nil), w.names...) }

func (w *xlsWorkbook) Rows(name string) ([][]string, error) {
	idx, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q does not exist", name)
	}
	sheet := w.wb.GetSheet(idx)
	if sheet == nil {
		return nil, fmt.Errorf("sheet %q could not be read", name)
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return trimTrailingEmpty(rows), nil
}

func (w *xlsWorkbook) Close() error { return nil }

// =============================================================================
// CSV
// =============================================================================

type csvWorkbook struct {
	name string
	rows [][]string
}

func openCSV(data []byte, filename string) (Workbook, error) {
	rows, err := csvparser.Parse(data, csvparser.Settings{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return &csvWorkbook{name: name, rows: rows}, nil
}

func (w *csvWorkbook) Format() Format       { return FormatCSV }
func (w *csvWorkbook) SheetNames() []string { return []string{w.name} }
func (w *csvWorkbook) Close() error         { return nil }

func (w *csvWorkbook) Rows(name string) ([][]string, error) {
	if name != w.name {
		return nil, fmt.Errorf("sheet %q does not exist", name)
	}
	return w.rows, nil
}

// =============================================================================
// SHEET LOOKUP
// =============================================================================

// NormalizeSheetName lowercases a sheet name and collapses whitespace.
func NormalizeSheetName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// FindSheet locates a sheet by normalised name, falling back to fuzzy.
//
// PARAMETERS:
//   - names: The workbook's sheet names in order.
//   - wanted: The preferred sheet name.
//   - fuzzy: Optional predicate over normalised names; the first sheet it
//     accepts is used when no exact match exists.
//
// RETURNS:
//   - The actual sheet name and true, or "" and false.
func FindSheet(names []string, wanted string, fuzzy func(normalized string) bool) (string, bool) {
	target := NormalizeSheetName(wanted)
	for _, n := range names {
		if NormalizeSheetName(n) == target {
			return n, true
		}
	}
	if fuzzy == nil {
		return "", false
	}
	for _, n := range names {
		if fuzzy(NormalizeSheetName(n)) {
			return n, true
		}
	}
	return "", false
}

// trimTrailingEmpty drops fully blank rows at the end of a sheet.
func trimTrailingEmpty(rows [][]string) [][]string {
	for len(rows) > 0 && isRowEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// isRowEmpty checks if a row contains only empty or whitespace values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
