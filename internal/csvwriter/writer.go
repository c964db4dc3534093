// =============================================================================
// distiviz - CSV Writer
// =============================================================================
//
// This module serialises records to CSV in canonical column order.
//
// OUTPUT FORMAT:
//   - Header: canonical field names joined by commas
//   - Values: always double-quoted, internal quotes doubled
//   - Rows: joined by "\n", no trailing newline
//
//   Example:
//     Region,Distributor,ID
//     "APAC","Arrow ""Asia""","A1"
//
// Dates render as dd/mm/yyyy, numbers in their shortest form, null as "".
//
// =============================================================================

package csvwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/distiviz/internal/types"
)

// Encode renders rows as CSV text.
//
// PARAMETERS:
//   - fields: Column order; also the header.
//   - rows: Records to write. Missing fields render as "".
//
// RETURNS:
//   - The CSV document.
func Encode(fields []types.CanonicalField, rows []types.Record) string {
	var b strings.Builder
	writeTo(&b, fields, rows)
	return b.String()
}

// Write streams the CSV document to w.
func Write(w io.Writer, fields []types.CanonicalField, rows []types.Record) error {
	var b strings.Builder
	writeTo(&b, fields, rows)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func writeTo(b *strings.Builder, fields []types.CanonicalField, rows []types.Record) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(f))
	}
	for _, row := range rows {
		b.WriteByte('\n')
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(row[f].String()))
		}
	}
}

// quote wraps s in double quotes, doubling any quotes inside it.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Decode parses a document produced by Encode.
//
// Fields are split by the same rule Encode writes: commas separate fields,
// a field opening with a double quote runs to the next unpaired quote, and
// "" inside it stands for one quote. Bytes inside quotes are kept verbatim,
// so "\r\n" in a value survives. Outside quotes a row ends at "\n" or "\r\n".
//
// RETURNS:
//   - The header cells.
//   - The data rows as strings.
//   - An error if the document is malformed or a row has the wrong width.
func Decode(r io.Reader) ([]string, [][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, nil
	}

	all, err := split(string(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	header := all[0]
	for i, row := range all[1:] {
		if len(row) != len(header) {
			return nil, nil, fmt.Errorf("failed to parse CSV: row %d has %d fields, want %d", i+1, len(row), len(header))
		}
	}
	return header, all[1:], nil
}

// split cuts a document into rows of fields.
func split(s string) ([][]string, error) {
	var (
		rows  [][]string
		row   []string
		field strings.Builder
		line  = 1
	)
	i, n := 0, len(s)
	for {
		if i < n && s[i] == '"' {
			i++
			for {
				if i >= n {
					return nil, fmt.Errorf("line %d: unterminated quoted field", line)
				}
				if s[i] == '"' {
					if i+1 < n && s[i+1] == '"' {
						field.WriteByte('"')
						i += 2
						continue
					}
					i++
					break
				}
				if s[i] == '\n' {
					line++
				}
				field.WriteByte(s[i])
				i++
			}
		} else {
			for i < n && s[i] != ',' && s[i] != '\n' && !isCRLF(s, i) {
				if s[i] == '"' {
					return nil, fmt.Errorf("line %d: bare quote in unquoted field", line)
				}
				field.WriteByte(s[i])
				i++
			}
		}

		row = append(row, field.String())
		field.Reset()

		switch {
		case i >= n:
			return append(rows, row), nil
		case s[i] == ',':
			i++
		case s[i] == '\n' || isCRLF(s, i):
			if s[i] == '\r' {
				i++
			}
			i++
			line++
			rows = append(rows, row)
			row = nil
			if i >= n {
				return rows, nil
			}
		default:
			return nil, fmt.Errorf("line %d: unexpected %q after quoted field", line, s[i])
		}
	}
}

func isCRLF(s string, i int) bool {
	return s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n'
}

// DecodeRecords parses a document produced by Encode back into text records.
// Types are not recovered: every value is a string.
func DecodeRecords(r io.Reader) ([]types.CanonicalField, []types.Record, error) {
	header, rows, err := Decode(r)
	if err != nil {
		return nil, nil, err
	}
	fields := make([]types.CanonicalField, len(header))
	for i, h := range header {
		fields[i] = types.CanonicalField(h)
	}
	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(types.Record, len(fields))
		for i, f := range fields {
			rec[f] = types.String(row[i])
		}
		records = append(records, rec)
	}
	return fields, records, nil
}
