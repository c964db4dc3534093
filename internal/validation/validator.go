// =============================================================================
// distiviz - Validation
// =============================================================================
//
// Soft checks on an ingested dataset. Nothing here stops ingestion: the
// findings are returned as warnings for the caller to log or display.
//
// CHECKS:
//   1. Column-level: expected canonical columns missing from the header row
//   2. Record-level: date fields left null, numeric fields that are not numbers
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/distiviz/internal/types"
)

// Severity levels.
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Issue is one finding.
type Issue struct {
	Severity string
	Field    types.CanonicalField
	Message  string

	// Count is the number of records affected (0 for column-level issues).
	Count int
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(i.Severity), i.Field, i.Message)
}

// Report collects the findings for one dataset.
type Report struct {
	Dataset types.Dataset
	Issues  []Issue

	// MissingColumns lists expected fields that no header claimed.
	MissingColumns []types.CanonicalField
}

// Warnings returns the warning-level issues.
func (r *Report) Warnings() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// Rules describes what to check on records.
type Rules struct {
	// Expected are the columns the header row should provide.
	Expected []types.CanonicalField

	// Dates are fields expected to hold dates.
	Dates []types.CanonicalField

	// Numbers are fields expected to hold numbers.
	Numbers []types.CanonicalField
}

// Validator runs Rules against one dataset.
type Validator struct {
	dataset types.Dataset
	rules   Rules
}

// NewValidator creates a validator for a dataset.
func NewValidator(ds types.Dataset, rules Rules) *Validator {
	return &Validator{dataset: ds, rules: rules}
}

// Validate checks the header mapping and the shaped records.
//
// PARAMETERS:
//   - fieldMap: The detected header mapping (canonical field to column).
//   - records: The shaped records.
//
// RETURNS:
//   - The report; never nil.
func (v *Validator) Validate(fieldMap map[types.CanonicalField]int, records []types.Record) *Report {
	report := &Report{Dataset: v.dataset}

	for _, f := range v.rules.Expected {
		if _, ok := fieldMap[f]; ok {
			continue
		}
		report.MissingColumns = append(report.MissingColumns, f)
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Field:    f,
			Message:  "expected column not found in header row",
		})
	}

	for _, f := range v.rules.Dates {
		if _, mapped := fieldMap[f]; !mapped {
			continue
		}
		n := countRecords(records, func(r types.Record) bool { return r[f].IsNull() })
		if n > 0 {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityInfo,
				Field:    f,
				Message:  fmt.Sprintf("%d record(s) have no readable date", n),
				Count:    n,
			})
		}
	}

	for _, f := range v.rules.Numbers {
		if _, mapped := fieldMap[f]; !mapped {
			continue
		}
		n := countRecords(records, func(r types.Record) bool { return r[f].Kind() != types.KindNumber })
		if n > 0 {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityInfo,
				Field:    f,
				Message:  fmt.Sprintf("%d record(s) have no numeric value", n),
				Count:    n,
			})
		}
	}

	return report
}

func countRecords(records []types.Record, pred func(types.Record) bool) int {
	n := 0
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}

// FormatIssues formats a report for display or logging.
func FormatIssues(r *Report) string {
	if r == nil || len(r.Issues) == 0 {
		return "No validation issues."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n", len(r.Issues)))
	for i, issue := range r.Issues {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, issue.String()))
	}
	return builder.String()
}
