// =============================================================================
// distiviz - Apps vs DREGs Comparison
// =============================================================================
//
// Puts the Apps and DREG datasets side by side for one distributor. The
// Apps "System/Application Level III" field and the DREG "Segment" field
// describe the same thing and are matched against each other.
//
// RULES:
//   - Rows with "dummy" in an identifier or distributor field are ignored
//   - Distributors and segments are compared case-insensitively
//   - DREGs are deduplicated by Registration ID (first occurrence kept)
//
// =============================================================================

package compare

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/summary"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// TopN is the number of segments listed per side.
const TopN = 8

var dummyFields = []types.CanonicalField{
	canon.DregRegistrationID,
	canon.AppsID,
	canon.AppsDistributor,
}

// IsDummy reports whether a record is a placeholder row.
func IsDummy(r types.Record) bool {
	for _, f := range dummyFields {
		v, ok := r[f]
		if !ok || v.Kind() != types.KindString {
			continue
		}
		if strings.Contains(strings.ToLower(v.Str()), "dummy") {
			return true
		}
	}
	return false
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// values maps the lowercased non-blank values of field to the first
// spelling seen.
func values(rows []types.Record, field types.CanonicalField) map[string]string {
	out := make(map[string]string)
	for _, r := range rows {
		if IsDummy(r) {
			continue
		}
		s := strings.TrimSpace(r.Text(field))
		if s == "" {
			continue
		}
		if _, ok := out[key(s)]; !ok {
			out[key(s)] = s
		}
	}
	return out
}

func intersect(a, b map[string]string) []string {
	var out []string
	for k, disp := range a {
		if _, ok := b[k]; ok {
			out = append(out, disp)
		}
	}
	sort.Strings(out)
	return out
}

// Options lists the distributors and segments present in both datasets,
// using the Apps spelling, sorted.
type Options struct {
	Distributors []string
	Segments     []string
}

// BuildOptions computes the selectable distributors and segments.
func BuildOptions(apps, dregs []types.Record) Options {
	return Options{
		Distributors: intersect(values(apps, canon.AppsDistributor), values(dregs, canon.DregDistributor)),
		Segments:     intersect(values(apps, canon.AppsLevel3), values(dregs, canon.DregSegment)),
	}
}

// DedupeByRegistration keeps the first record of each Registration ID.
// Records without one are always kept.
func DedupeByRegistration(rows []types.Record) []types.Record {
	seen := make(map[string]struct{})
	out := make([]types.Record, 0, len(rows))
	for _, r := range rows {
		id := r.Text(canon.DregRegistrationID)
		if id != "" {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

// Request selects what to compare. An empty Segments list selects all.
type Request struct {
	Distributor string
	Segments    []string
}

// Result holds both sides of a comparison.
type Result struct {
	Apps  []types.Record
	Dregs []types.Record

	TopApps  []summary.Group
	TopDregs []summary.Group
}

// Run filters both datasets to the requested distributor and segments.
func Run(req Request, apps, dregs []types.Record) Result {
	dist := key(req.Distributor)
	segs := make(map[string]struct{}, len(req.Segments))
	for _, s := range req.Segments {
		segs[key(s)] = struct{}{}
	}
	segOK := func(s string) bool {
		if len(segs) == 0 {
			return true
		}
		_, ok := segs[key(s)]
		return ok
	}

	var a []types.Record
	for _, r := range apps {
		if IsDummy(r) || key(r.Text(canon.AppsDistributor)) != dist {
			continue
		}
		if segOK(r.Text(canon.AppsLevel3)) {
			a = append(a, r)
		}
	}

	var d []types.Record
	for _, r := range dregs {
		if IsDummy(r) || key(r.Text(canon.DregDistributor)) != dist {
			continue
		}
		d = append(d, r)
	}
	d = DedupeByRegistration(d)

	filtered := d[:0]
	for _, r := range d {
		if segOK(r.Text(canon.DregSegment)) {
			filtered = append(filtered, r)
		}
	}

	return Result{
		Apps:     a,
		Dregs:    filtered,
		TopApps:  summary.Top(a, canon.AppsLevel3, TopN),
		TopDregs: summary.Top(filtered, canon.DregSegment, TopN),
	}
}
