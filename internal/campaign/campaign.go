// =============================================================================
// distiviz - Campaign Matching
// =============================================================================
//
// Matches campaign leads against the registration master list. A lead
// matches a registration when the token sets of the lead's company and the
// registration's resale customer overlap enough (Jaccard similarity), or
// when one name contains the other.
//
// FLOW:
//   1. Select master rows for a distributor, country and date window (Query)
//   2. Compare every lead company against every selected resale customer
//   3. Return the matches ordered by score, best first
//
// =============================================================================

package campaign

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

const (
	// DefaultThreshold is the lowest Jaccard similarity counted as a match.
	DefaultThreshold = 0.5

	// ContainmentScore is the score given when one name contains the other.
	ContainmentScore = 0.99

	// Unknown is shown for empty lead or customer names.
	Unknown = "(unknown)"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Key lowercases s, decomposes it (NFKD) and reduces it to space-separated
// ASCII letters and digits.
func Key(s string) string {
	s = norm.NFKD.String(strings.ToLower(s))
	return strings.TrimSpace(nonAlnum.ReplaceAllString(s, " "))
}

func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(Key(s)) {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard returns the token-set similarity of a and b. Empty names score 0.
func Jaccard(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// Contains reports whether either normalized name contains the other.
func Contains(a, b string) bool {
	ka, kb := Key(a), Key(b)
	if ka == "" || kb == "" {
		return false
	}
	return strings.Contains(ka, kb) || strings.Contains(kb, ka)
}

// =============================================================================
// QUERY
// =============================================================================

// Query selects the registrations a campaign is compared against.
type Query struct {
	// Start is the first registration day; Days extends the window so that
	// registrations up to Start+Days (inclusive) are kept.
	Start time.Time
	Days  int

	// Distributor must equal the registration's distributor after Key
	// normalization.
	Distributor string

	// Country is matched case-insensitively as a substring of the
	// registration's country. Empty matches every country.
	Country string
}

// End returns the last instant of the query window.
func (q Query) End() time.Time {
	return q.Start.AddDate(0, 0, q.Days)
}

// Select returns the master rows matching q. Rows without a registration
// date never match.
func (q Query) Select(master []types.Record) []types.Record {
	end := q.End()
	dist := Key(q.Distributor)
	country := strings.ToLower(strings.TrimSpace(q.Country))

	var out []types.Record
	for _, r := range master {
		d := r[canon.MasterRegDate]
		if d.Kind() != types.KindDate {
			continue
		}
		if t := d.Time(); t.Before(q.Start) || t.After(end) {
			continue
		}
		if Key(r.Text(canon.MasterDistributor)) != dist {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Text(canon.MasterCountry)), country) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// =============================================================================
// MATCHING
// =============================================================================

// Match pairs one lead with one registration.
type Match struct {
	Lead   types.Record
	Master types.Record
	Score  float64
}

// Contact returns the lead's full name, or Unknown.
func (m Match) Contact() string {
	name := strings.TrimSpace(m.Lead.Text(canon.LeadFirstName) + " " + m.Lead.Text(canon.LeadLastName))
	if name == "" {
		return Unknown
	}
	return name
}

// Email returns the lead's email, or Unknown.
func (m Match) Email() string {
	return orUnknown(m.Lead.Text(canon.LeadEmail))
}

// Company returns the lead's company, or Unknown.
func (m Match) Company() string {
	return orUnknown(m.Lead.Text(canon.LeadCompany))
}

// Customer returns the registration's resale customer, or Unknown.
func (m Match) Customer() string {
	return orUnknown(m.Master.Text(canon.MasterResale))
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// MatchLeads compares every lead with every registration in master and
// returns the pairs whose Jaccard score reaches threshold or whose names
// contain one another. Results are sorted by score, best first; ties keep
// lead-then-registration order.
func MatchLeads(master, leads []types.Record, threshold float64) []Match {
	var matches []Match
	for _, lead := range leads {
		company := lead.Text(canon.LeadCompany)
		for _, reg := range master {
			customer := reg.Text(canon.MasterResale)
			score := Jaccard(company, customer)
			contained := Contains(company, customer)
			if score < threshold && !contained {
				continue
			}
			if contained && score < ContainmentScore {
				score = ContainmentScore
			}
			matches = append(matches, Match{Lead: lead, Master: reg, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Result is the outcome of one campaign query.
type Result struct {
	Selected []types.Record
	Matches  []Match

	// MatchedLeads counts distinct leads (by email, else contact name).
	MatchedLeads int
}

// Run selects master rows with q and matches leads against them.
func Run(q Query, master, leads []types.Record) Result {
	selected := q.Select(master)
	matches := MatchLeads(selected, leads, DefaultThreshold)

	seen := make(map[string]struct{})
	for _, m := range matches {
		key := m.Lead.Text(canon.LeadEmail)
		if key == "" {
			key = m.Contact()
		}
		seen[key] = struct{}{}
	}
	return Result{Selected: selected, Matches: matches, MatchedLeads: len(seen)}
}
