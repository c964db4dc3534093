// =============================================================================
// distiviz - Record Filters
// =============================================================================
//
// Row selection over normalized records. A criteria map names fields that
// must equal a given display value; the value "All" (or an empty string)
// matches anything. An optional predicate runs after the equality checks.
//
// =============================================================================

package filter

import (
	"time"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// Wildcard is the criteria value that matches every row.
const Wildcard = "All"

// Predicate is an extra per-row check.
type Predicate func(types.Record) bool

// Apply returns the records that satisfy every criterion and pred.
// A nil pred accepts every row. The input slice is not modified.
func Apply(rows []types.Record, criteria map[types.CanonicalField]string, pred Predicate) []types.Record {
	out := make([]types.Record, 0, len(rows))
	for _, r := range rows {
		if matches(r, criteria) && (pred == nil || pred(r)) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r types.Record, criteria map[types.CanonicalField]string) bool {
	for field, want := range criteria {
		if want == "" || want == Wildcard {
			continue
		}
		if r.Text(field) != want {
			return false
		}
	}
	return true
}

// =============================================================================
// APPS
// =============================================================================

// AppsFilter selects Apps records for one region.
type AppsFilter struct {
	Region string
	Level3 string

	// MinConfidence is the lowest confidence kept. Records without a
	// positive numeric confidence are always dropped.
	MinConfidence float64
}

// Apply runs the filter over rows.
func (f AppsFilter) Apply(rows []types.Record) []types.Record {
	criteria := map[types.CanonicalField]string{
		canon.AppsRegion: f.Region,
		canon.AppsLevel3: f.Level3,
	}
	return Apply(rows, criteria, func(r types.Record) bool {
		c, ok := Confidence(r)
		return ok && c > 0 && c >= f.MinConfidence
	})
}

// Confidence returns the numeric confidence of an Apps record.
func Confidence(r types.Record) (float64, bool) {
	v := r[canon.AppsConfidence]
	if v.Kind() != types.KindNumber {
		return 0, false
	}
	return v.Num(), true
}

// =============================================================================
// DREGS
// =============================================================================

// DregFilter selects DREG records for one distributor.
type DregFilter struct {
	Distributor string
	RegStatus   string

	// DateField is the date compared against From and To. It defaults to
	// the registration date.
	DateField types.CanonicalField

	// From and To bound the date inclusively. A zero bound is open. When
	// either bound is set, records with a null date never match.
	From time.Time
	To   time.Time
}

// Apply runs the filter over rows.
func (f DregFilter) Apply(rows []types.Record) []types.Record {
	criteria := map[types.CanonicalField]string{
		canon.DregDistributor: f.Distributor,
		canon.DregRegStatus:   f.RegStatus,
	}
	field := f.DateField
	if field == "" {
		field = canon.DregRegDate
	}
	if f.From.IsZero() && f.To.IsZero() {
		return Apply(rows, criteria, nil)
	}
	return Apply(rows, criteria, func(r types.Record) bool {
		v := r[field]
		if v.Kind() != types.KindDate {
			return false
		}
		t := v.Time()
		if !f.From.IsZero() && t.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && t.After(f.To) {
			return false
		}
		return true
	})
}

// Distinct returns the non-blank values of field in first-seen order.
func Distinct(rows []types.Record, field types.CanonicalField) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		s := r.Text(field)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
