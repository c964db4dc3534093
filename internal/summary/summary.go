// =============================================================================
// distiviz - Dataset Summaries
// =============================================================================
//
// Aggregates over filtered records: value counts per field and the numeric
// statistics shown next to them (confidence mean/median for Apps, revenue
// total for DREGs).
//
// =============================================================================

package summary

import (
	"errors"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// BlankKey is the group key used for records whose field is empty.
const BlankKey = "(blank)"

// Group is one distinct value and the number of records carrying it.
type Group struct {
	Key   string
	Count int
}

// Count groups rows by the display value of field, sorted by count
// descending and then by key. Blank values are grouped under BlankKey.
func Count(rows []types.Record, field types.CanonicalField) []Group {
	counts := make(map[string]int)
	for _, r := range rows {
		k := r.Text(field)
		if k == "" {
			k = BlankKey
		}
		counts[k]++
	}

	groups := make([]Group, 0, len(counts))
	for k, n := range counts {
		groups = append(groups, Group{Key: k, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// Top returns at most n groups from Count.
func Top(rows []types.Record, field types.CanonicalField, n int) []Group {
	g := Count(rows, field)
	if n >= 0 && len(g) > n {
		g = g[:n]
	}
	return g
}

// Numbers collects the numeric values of field. Non-numeric values are skipped.
func Numbers(rows []types.Record, field types.CanonicalField) []float64 {
	var out []float64
	for _, r := range rows {
		if v := r[field]; v.Kind() == types.KindNumber {
			out = append(out, v.Num())
		}
	}
	return out
}

// =============================================================================
// APPS
// =============================================================================

// AppsSummary describes a set of Apps records.
type AppsSummary struct {
	Records      int
	Distributors []Group
	Levels       []Group

	// Scored is the number of records with a numeric confidence.
	Scored           int
	ConfidenceMean   float64
	ConfidenceMedian float64
}

// SummarizeApps builds an AppsSummary.
func SummarizeApps(rows []types.Record) (AppsSummary, error) {
	s := AppsSummary{
		Records:      len(rows),
		Distributors: Count(rows, canon.AppsDistributor),
		Levels:       Count(rows, canon.AppsLevel3),
	}

	scores := Numbers(rows, canon.AppsConfidence)
	s.Scored = len(scores)
	if len(scores) == 0 {
		return s, nil
	}

	var err error
	if s.ConfidenceMean, err = stats.Mean(scores); err != nil {
		return s, fmt.Errorf("confidence mean: %w", err)
	}
	if s.ConfidenceMedian, err = stats.Median(scores); err != nil {
		return s, fmt.Errorf("confidence median: %w", err)
	}
	return s, nil
}

// =============================================================================
// DREGS
// =============================================================================

// DregSummary describes a set of DREG records.
type DregSummary struct {
	Records      int
	Distributors []Group
	Statuses     []Group

	// CustomerRegions groups by the resale customer's region.
	CustomerRegions []Group
	RevenueTotal    float64
}

// SummarizeDregs builds a DregSummary.
func SummarizeDregs(rows []types.Record) (DregSummary, error) {
	s := DregSummary{
		Records:         len(rows),
		Distributors:    Count(rows, canon.DregDistributor),
		Statuses:        Count(rows, canon.DregRegStatus),
		CustomerRegions: Count(rows, canon.DregCustomerRegion),
	}

	total, err := stats.Sum(Numbers(rows, canon.DregRevenue))
	if err != nil && !errors.Is(err, stats.ErrEmptyInput) {
		return s, fmt.Errorf("revenue total: %w", err)
	}
	s.RevenueTotal = total
	return s, nil
}
