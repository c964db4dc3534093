// =============================================================================
// distiviz - Header Canonicalization
// =============================================================================
//
// Spreadsheet headers arrive in many spellings ("Level III", "level_iii",
// "Sys/App Lvl 3"). This package folds every observed header onto the fixed
// canonical field names of a dataset.
//
// LOOKUP ORDER:
//   1. Exact canonical name (fast path)
//   2. Normalised alias lookup
//   3. No match
//
// The alias table is a versioned data asset (aliases.yaml) embedded in the
// binary. Additional packs can be loaded from disk to teach it new spellings.
//
// =============================================================================

package canon

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/distiviz/internal/types"
)

var (
	slashRe     = regexp.MustCompile(`\s*/\s*`)
	separatorRe = regexp.MustCompile(`[_\-]+`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Normalize folds a header string into its lookup key: compatibility-normalised,
// trimmed, lowercased, "/" surrounded by single spaces, "_" and "-" replaced by
// spaces and runs of whitespace collapsed. It is idempotent.
func Normalize(h string) string {
	s := norm.NFKC.String(h)
	s = strings.ToLower(strings.TrimSpace(s))
	s = slashRe.ReplaceAllString(s, " / ")
	s = separatorRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// =============================================================================
// TABLE
// =============================================================================

// Table maps normalised header spellings of one dataset to canonical fields.
// Many aliases may point at one field; an alias never points at two.
type Table struct {
	dataset types.Dataset
	fields  []types.CanonicalField
	exact   map[types.CanonicalField]bool
	aliases map[string]types.CanonicalField
}

// NewTable creates a table whose only known spellings are the canonical names.
func NewTable(ds types.Dataset, fields []types.CanonicalField) *Table {
	t := &Table{
		dataset: ds,
		fields:  append([]types.CanonicalField(nil), fields...),
		exact:   make(map[types.CanonicalField]bool, len(fields)),
		aliases: make(map[string]types.CanonicalField, len(fields)*4),
	}
	for _, f := range fields {
		t.exact[f] = true
		t.aliases[Normalize(string(f))] = f
	}
	return t
}

// Dataset returns the dataset the table belongs to.
func (t *Table) Dataset() types.Dataset { return t.dataset }

// Fields returns the canonical fields in declared order.
func (t *Table) Fields() []types.CanonicalField {
	return append([]types.CanonicalField(nil), t.fields...)
}

// AddAlias registers an alternative spelling for field. Registering the same
// spelling twice for one field is a no-op; registering it for a different
// field is an error.
func (t *Table) AddAlias(field types.CanonicalField, alias string) error {
	if !t.exact[field] {
		return fmt.Errorf("unknown %s field %q", t.dataset, field)
	}
	key := Normalize(alias)
	if key == "" {
		return fmt.Errorf("empty alias for %s field %q", t.dataset, field)
	}
	if existing, ok := t.aliases[key]; ok && existing != field {
		return fmt.Errorf("alias %q already maps to %q, cannot map to %q", alias, existing, field)
	}
	t.aliases[key] = field
	return nil
}

// Canonicalize resolves a header to its canonical field.
//
// PARAMETERS:
//   - header: The raw header text as it appears in the sheet.
//
// RETURNS:
//   - The canonical field and true, or "" and false when the header is unknown.
func (t *Table) Canonicalize(header string) (types.CanonicalField, bool) {
	if f := types.CanonicalField(header); t.exact[f] {
		return f, true
	}
	f, ok := t.aliases[Normalize(header)]
	return f, ok
}

// Clone returns an independent copy that can be extended without affecting t.
func (t *Table) Clone() *Table {
	c := NewTable(t.dataset, t.fields)
	for k, v := range t.aliases {
		c.aliases[k] = v
	}
	return c
}
