package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/ginjaninja78/distiviz/internal/types"
)

// excelEpoch is day zero of spreadsheet date serials.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serials outside this range are not plausible dates.
const (
	minSerial = -657434.0 // 0100-01-01
	maxSerial = 2958465.0 // 9999-12-31
)

var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02",
}

var dayFirstRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})$`)

// CoerceDate converts a cell to a date value.
//
// Accepted inputs:
//   - a date value, returned unchanged
//   - a number, read as a spreadsheet serial (day 0 = 1899-12-30)
//   - an ISO 8601 string
//   - a day-first string d/m/y or d-m-y; two-digit years are 20xx
//
// Anything else, including an empty cell, yields null.
func CoerceDate(v types.Value) types.Value {
	switch v.Kind() {
	case types.KindDate:
		return v
	case types.KindNumber:
		return serialToDate(v.Num())
	case types.KindString:
		return parseDateString(strings.TrimSpace(v.Str()))
	}
	return types.Null()
}

func serialToDate(serial float64) types.Value {
	if math.IsNaN(serial) || serial < minSerial || serial > maxSerial {
		return types.Null()
	}
	days := math.Floor(serial)
	ms := math.Round((serial - days) * 86400 * 1000)
	t := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond)
	return types.Date(t)
}

func parseDateString(s string) types.Value {
	if s == "" {
		return types.Null()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialToDate(f)
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return types.Date(t)
		}
	}

	m := dayFirstRe.FindStringSubmatch(s)
	if m == nil {
		return types.Null()
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 {
		return types.Null()
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		// e.g. 31/02 rolled into March
		return types.Null()
	}
	return types.Date(t)
}

// CoerceRevenue converts a cell to a number. Thousands separators and
// whitespace are stripped; anything non-numeric becomes 0.
func CoerceRevenue(v types.Value) types.Value {
	switch v.Kind() {
	case types.KindNumber:
		return v
	case types.KindString:
		s := strings.Map(func(r rune) rune {
			if r == ',' || unicode.IsSpace(r) {
				return -1
			}
			return r
		}, v.Str())
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return types.Number(f)
		}
	}
	return types.Number(0)
}

// CoerceConfidence converts a cell to a number after removing "%" signs.
// Cells that do not parse become the empty string, which downstream
// consumers treat as "no confidence data" rather than zero.
func CoerceConfidence(v types.Value) types.Value {
	switch v.Kind() {
	case types.KindNumber:
		return v
	case types.KindString:
		s := strings.TrimSpace(strings.ReplaceAll(v.Str(), "%", ""))
		if s == "" {
			break
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return types.Number(f)
		}
	}
	return types.String("")
}
