package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Kind tags the scalar held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	}
	return "null"
}

// DisplayDateLayout is the day-first layout used when a date is rendered as text.
const DisplayDateLayout = "02/01/2006"

// Value is a field value: a string, a finite number, a calendar date or null.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric value. Non-finite numbers become null.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Date wraps a date. The time is stored in UTC.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t.UTC()} }

// ParseCell classifies a raw spreadsheet cell: plain numbers become numbers,
// everything else stays text.
func ParseCell(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return String(raw)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Number(f)
	}
	return String(raw)
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) Str() string     { return v.str }
func (v Value) Num() float64    { return v.num }
func (v Value) Time() time.Time { return v.t }
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str && v.num == o.num && v.t.Equal(o.t)
}
func (v Value) IsBlank() bool {
	return v.kind == KindNull || (v.kind == KindString && strings.TrimSpace(v.str) == "")
}

// String renders the value for display and export. Dates use DisplayDateLayout,
// numbers the shortest representation, null the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.t.Format(DisplayDateLayout)
	}
	return ""
}

// =============================================================================
// JSON ENCODING
// =============================================================================
// Strings and numbers map to their JSON counterparts, null to null, and dates
// to {"$date": "<RFC3339Nano>"} so they survive a round trip as dates.

type dateJSON struct {
	Date string `json:"$date"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindDate:
		return json.Marshal(dateJSON{Date: v.t.Format(time.RFC3339Nano)})
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return errors.New("empty value")
	}
	switch s[0] {
	case 'n':
		*v = Null()
		return nil
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = String(str)
		return nil
	case '{':
		var d dateJSON
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, d.Date)
		if err != nil {
			return fmt.Errorf("invalid date value %q: %w", d.Date, err)
		}
		*v = Date(t)
		return nil
	case 't', 'f':
		// Legacy payloads occasionally carry booleans; keep them as text.
		*v = String(s)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid value %s: %w", s, err)
	}
	*v = Number(f)
	return nil
}
