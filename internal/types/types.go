// =============================================================================
// distiviz - Shared Types
// =============================================================================
//
// This package contains the types shared by the ingestion, cache, export and
// analysis packages. Keeping them here avoids import cycles between:
//   - ingest
//   - cache
//   - csvwriter
//   - filter / summary / campaign / compare
//
// =============================================================================

package types

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// CanonicalField is the fixed name of one field in a dataset's schema.
type CanonicalField string

// Dataset identifies which schema a set of records follows.
type Dataset string

const (
	DatasetApps           Dataset = "apps"
	DatasetDregs          Dataset = "dregs"
	DatasetCampaignMaster Dataset = "campaign:master"
	DatasetCampaignLeads  Dataset = "campaign:leads"
)

// Datasets lists every known dataset in display order.
var Datasets = []Dataset{DatasetApps, DatasetDregs, DatasetCampaignMaster, DatasetCampaignLeads}

// ParseDataset resolves a dataset name, accepting the short campaign aliases
// "master" and "leads".
func ParseDataset(name string) (Dataset, bool) {
	switch name {
	case "apps":
		return DatasetApps, true
	case "dregs", "dreg":
		return DatasetDregs, true
	case "master", "campaign:master":
		return DatasetCampaignMaster, true
	case "leads", "campaign:leads":
		return DatasetCampaignLeads, true
	}
	return "", false
}

// =============================================================================
// RECORDS
// =============================================================================

// Record is one output row keyed by canonical field.
// Every field of the dataset's schema is present once the record is shaped.
type Record map[CanonicalField]Value

// NewRecord returns a record with every field set to the empty string.
func NewRecord(fields []CanonicalField) Record {
	r := make(Record, len(fields))
	for _, f := range fields {
		r[f] = String("")
	}
	return r
}

// Clone returns a copy of the record. Values are immutable so a shallow copy
// of the map is enough.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Text returns the display string of a field, or "" when it is absent.
func (r Record) Text(f CanonicalField) string {
	v, ok := r[f]
	if !ok {
		return ""
	}
	return v.String()
}

// =============================================================================
// HEADER DETECTION
// =============================================================================

// HeaderDetectionResult describes where the header row of a sheet was found.
type HeaderDetectionResult struct {
	// HeaderRowIndex is the 0-based row index within the matrix.
	HeaderRowIndex int

	// FieldMap maps each claimed canonical field to its 0-based column index.
	FieldMap map[CanonicalField]int

	// Score is the number of distinct canonical fields recognised in the row.
	// Zero means no header was found.
	Score int
}

// Found reports whether any canonical field was recognised.
func (h HeaderDetectionResult) Found() bool {
	return h.Score > 0
}

// Columns returns the claimed fields ordered by column index.
func (h HeaderDetectionResult) Columns(order []CanonicalField) []CanonicalField {
	var cols []CanonicalField
	for _, f := range order {
		if _, ok := h.FieldMap[f]; ok {
			cols = append(cols, f)
		}
	}
	return cols
}

// DistributorColumn is a header cell of the Apps matrix that names a
// distributor rather than a base field.
type DistributorColumn struct {
	ColumnIndex int
	Name        string
}

// =============================================================================
// DATASET METADATA
// =============================================================================

// Meta describes how a stored dataset was produced.
type Meta struct {
	RowCount       int      `json:"rowCount"`
	HeaderRowIndex int      `json:"headerRowIndex"`
	Columns        []string `json:"columns"`

	// Sheet is the worksheet the rows were read from.
	Sheet string `json:"sheet,omitempty"`

	// Source is the uploaded file name.
	Source string `json:"source,omitempty"`

	// IngestID identifies the ingestion run.
	IngestID string `json:"ingestId,omitempty"`

	// Mode is "unpivot" or "flat" for Apps, "rows" otherwise.
	Mode string `json:"mode,omitempty"`
}
