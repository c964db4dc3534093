// =============================================================================
// distiviz - CSV Parser Module
// =============================================================================
//
// This module turns CSV input into a cell matrix so that CSV uploads flow
// through the same header detection and shaping code as spreadsheet sheets.
// It handles:
//   - Different delimiters (comma, semicolon, tab, pipe), sniffed when unset
//   - A leading UTF-8 byte order mark
//   - Quoted fields, ragged rows and loose quoting
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Settings controls CSV parsing.
type Settings struct {
	// Delimiter is one of ",", ";", "|", "\t" (or "tab", "pipe",
	// "semicolon"). Empty means sniff it from the first line.
	Delimiter string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads every record of a CSV document.
//
// PARAMETERS:
//   - data: The raw CSV bytes.
//   - settings: Parsing settings.
//
// RETURNS:
//   - The rows as a matrix of cell strings. Trailing fully empty rows are dropped.
//   - An error if the document is not valid CSV.
func Parse(data []byte, settings Settings) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	configureReader(reader, settings, data)

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}

	for len(rows) > 0 && isRowEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings, sample []byte) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	case ",":
		reader.Comma = ','
	case "":
		reader.Comma = SniffDelimiter(sample)
	default:
		reader.Comma = rune(settings.Delimiter[0])
	}

	// Exports from spreadsheet tools are often ragged and loosely quoted.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// SniffDelimiter picks the most frequent candidate delimiter on the first
// line, ignoring characters inside quotes. Comma wins ties.
func SniffDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		switch r {
		case ',', ';', '\t', '|':
			counts[r]++
		}
	}

	best := ','
	for _, r := range []rune{';', '\t', '|'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
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
