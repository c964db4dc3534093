// =============================================================================
// distiviz - Ingestion Pipeline
// =============================================================================
//
// This module orchestrates the ingestion of one uploaded workbook into a list
// of canonical records.
//
// PIPELINE:
//   1. Open the workbook (xlsx, xls or csv)
//   2. Select the sheet for the dataset
//   3. Detect the header row
//   4. Shape rows (unpivot for the Apps matrix, flat shaping otherwise)
//   5. Apply configured field transformations
//   6. Validate (soft warnings only)
//
// Ingest is pure with respect to storage: persisting the result is up to the
// caller, and a failed ingestion returns no records at all.
//
// =============================================================================

package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/config"
	"github.com/ginjaninja78/distiviz/internal/logging"
	"github.com/ginjaninja78/distiviz/internal/types"
	"github.com/ginjaninja78/distiviz/internal/validation"
	"github.com/ginjaninja78/distiviz/internal/xlsxparser"
)

// Shaping modes recorded in Meta.Mode.
const (
	ModeUnpivot = "unpivot"
	ModeFlat    = "flat"
	ModeRows    = "rows"
)

// DefaultAppsSheet is the workbook tab holding the distributor matrix.
const DefaultAppsSheet = "2-Confidence Level Focus Appl."

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of a successful ingestion.
type Result struct {
	Dataset types.Dataset
	Records []types.Record
	Meta    types.Meta

	// Report holds soft validation findings.
	Report *validation.Report

	// Duration is the time taken to ingest the file.
	Duration time.Duration
}

// =============================================================================
// INGESTER
// =============================================================================

// Options configures an Ingester.
type Options struct {
	Detect    DetectOptions
	AppsSheet string
	DregSheet string
	Dreg      DregOptions

	// Transforms maps dataset names to their field rules.
	Transforms map[string][]config.TransformationRule
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{
		Detect:    DefaultDetectOptions(),
		AppsSheet: DefaultAppsSheet,
		DregSheet: "Data",
		Dreg:      DefaultDregOptions(),
	}
}

// OptionsFromConfig derives Options from the application configuration.
func OptionsFromConfig(cfg *config.MainConfig) Options {
	in := cfg.Ingest
	return Options{
		Detect:    DetectOptions{MaxScanRows: in.HeaderScanRows, StrongScore: in.StrongHeaderScore},
		AppsSheet: in.AppsSheet,
		DregSheet: in.DregSheet,
		Dreg: DregOptions{
			AllowedRegion: in.AllowedRegion(),
			DummySentinel: in.DummySentinel,
		},
		Transforms: cfg.Transforms,
	}
}

// Ingester turns workbook bytes into records. It is safe for concurrent use.
type Ingester struct {
	registry     *canon.Registry
	opts         Options
	logger       logging.Logger
	transformers map[types.Dataset]*Transformer
	newID        func() string
}

// New creates an Ingester.
//
// RETURNS:
//   - The ingester.
//   - An error if a configured transformation is invalid.
func New(registry *canon.Registry, opts Options, logger logging.Logger) (*Ingester, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	in := &Ingester{
		registry:     registry,
		opts:         opts,
		logger:       logger,
		transformers: make(map[types.Dataset]*Transformer),
		newID:        func() string { return uuid.New().String() },
	}
	for name, rules := range opts.Transforms {
		ds, ok := types.ParseDataset(name)
		if !ok {
			return nil, fmt.Errorf("transforms: %w %q", ErrUnknownDataset, name)
		}
		t, err := NewTransformer(rules)
		if err != nil {
			return nil, fmt.Errorf("transforms.%s: %w", name, err)
		}
		in.transformers[ds] = t
	}
	return in, nil
}

// Ingest parses one uploaded file into records of dataset ds.
//
// PARAMETERS:
//   - ctx: Checked between pipeline stages.
//   - ds: The dataset the file holds.
//   - data: The uploaded bytes.
//   - filename: The original file name (selects the workbook reader).
//
// RETURNS:
//   - The result on success.
//   - An *IngestError describing why the file was rejected.
func (in *Ingester) Ingest(ctx context.Context, ds types.Dataset, data []byte, filename string) (*Result, error) {
	start := time.Now()

	table := in.registry.Table(ds)
	if table == nil {
		return nil, &IngestError{Kind: ErrUnknownDataset, Message: fmt.Sprintf("unknown dataset %q", ds)}
	}

	wb, err := xlsxparser.Open(data, filename)
	if err != nil {
		return nil, &IngestError{Kind: ErrUnreadableWorkbook, Message: fmt.Sprintf("could not read %s", filename), Cause: err}
	}
	defer wb.Close()

	sheet, err := in.selectSheet(ds, wb)
	if err != nil {
		return nil, err
	}
	in.logger.Debug("ingest %s: using sheet %q of %s", ds, sheet, filename)

	matrix, err := wb.Rows(sheet)
	if err != nil {
		return nil, &IngestError{Kind: ErrUnreadableWorkbook, Message: fmt.Sprintf("could not read sheet %q", sheet), Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := DetectHeaderRow(matrix, table, in.opts.Detect)
	if !header.Found() {
		return nil, &IngestError{
			Kind:    ErrHeaderNotFound,
			Message: fmt.Sprintf("no recognisable %s header in the first %d rows of sheet %q", ds, in.opts.Detect.MaxScanRows, sheet),
		}
	}
	in.logger.Debug("ingest %s: header at row %d with %d field(s)", ds, header.HeaderRowIndex, header.Score)

	records, mode, rules := in.shape(ds, table, matrix, header)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if t := in.transformers[ds]; t != nil {
		t.Apply(records)
	}

	report := validation.NewValidator(ds, rules).Validate(header.FieldMap, records)
	for _, w := range report.Warnings() {
		in.logger.Warn("%s: %s", filename, w.String())
	}

	res := &Result{
		Dataset: ds,
		Records: records,
		Report:  report,
		Meta: types.Meta{
			RowCount:       len(records),
			HeaderRowIndex: header.HeaderRowIndex,
			Columns:        fieldNames(table.Fields()),
			Sheet:          sheet,
			Source:         filename,
			IngestID:       in.newID(),
			Mode:           mode,
		},
		Duration: time.Since(start),
	}
	in.logger.Info("ingested %d %s record(s) from %s in %s", len(records), ds, filename, res.Duration)
	return res, nil
}

// shape dispatches to the shaper for ds.
func (in *Ingester) shape(ds types.Dataset, table *canon.Table, matrix [][]string, header types.HeaderDetectionResult) ([]types.Record, string, validation.Rules) {
	flat := FlatSheetAt(matrix, header.HeaderRowIndex)

	switch ds {
	case types.DatasetApps:
		_, hasDistributor := header.FieldMap[canon.AppsDistributor]
		_, hasConfidence := header.FieldMap[canon.AppsConfidence]
		if hasDistributor && hasConfidence {
			return ShapeAppsFlatRows(flat, table), ModeFlat,
				validation.Rules{Expected: canon.AppsFields, Numbers: []types.CanonicalField{canon.AppsConfidence}}
		}
		return Unpivot(matrix, header), ModeUnpivot, validation.Rules{Expected: canon.AppsBaseFields}

	case types.DatasetDregs:
		return ShapeDregRows(flat, table, in.opts.Dreg), ModeRows, validation.Rules{
			Expected: []types.CanonicalField{
				canon.DregDistributor, canon.DregResaleCustomer, canon.DregSegment,
				canon.DregRegStatus, canon.DregRegDate, canon.DregRevenue,
			},
			Dates:   canon.DregDateFields,
			Numbers: []types.CanonicalField{canon.DregRevenue},
		}

	case types.DatasetCampaignMaster:
		return ShapeMasterRows(flat, table), ModeRows, validation.Rules{
			Expected: []types.CanonicalField{canon.MasterRegistrationID, canon.MasterResale},
			Dates:    []types.CanonicalField{canon.MasterRegDate},
		}
	}

	return ShapeLeadRows(flat, table), ModeRows, validation.Rules{
		Expected: []types.CanonicalField{canon.LeadCompany},
	}
}

// selectSheet picks the worksheet for ds.
//
// SHEET RULES:
//   - Single-sheet inputs (CSV) always use their only sheet.
//   - Apps: the configured sheet by normalised name, else the first sheet
//     whose name starts with "2" and mentions "confidence" plus "focus" or "level".
//   - DREGs: the configured sheet (case-insensitive), else the first sheet.
//   - Campaign lists: the first sheet.
func (in *Ingester) selectSheet(ds types.Dataset, wb xlsxparser.Workbook) (string, error) {
	names := wb.SheetNames()
	if len(names) == 0 {
		return "", &IngestError{Kind: ErrSheetNotFound, Message: "workbook has no sheets"}
	}
	if wb.Format() == xlsxparser.FormatCSV {
		return names[0], nil
	}

	switch ds {
	case types.DatasetApps:
		if name, ok := xlsxparser.FindSheet(names, in.opts.AppsSheet, isConfidenceSheet); ok {
			return name, nil
		}
		return "", &IngestError{
			Kind:      ErrSheetNotFound,
			Message:   fmt.Sprintf("sheet %q not found", in.opts.AppsSheet),
			Available: names,
		}

	case types.DatasetDregs:
		if name, ok := xlsxparser.FindSheet(names, in.opts.DregSheet, nil); ok {
			return name, nil
		}
	}
	return names[0], nil
}

// isConfidenceSheet is the fuzzy fallback for the Apps sheet.
func isConfidenceSheet(normalized string) bool {
	return strings.HasPrefix(normalized, "2") &&
		strings.Contains(normalized, "confidence") &&
		(strings.Contains(normalized, "focus") || strings.Contains(normalized, "level"))
}

func fieldNames(fields []types.CanonicalField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}

// =============================================================================
// UPLOAD STATUS
// =============================================================================

// State is the lifecycle of one upload as shown to the user.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateOK      State = "ok"
	StateError   State = "error"
)

// Status is the user-facing summary of an upload.
type Status struct {
	State    State
	Filename string
	Message  string
}

// Loading returns the status shown while filename is processed.
func Loading(filename string) Status {
	return Status{State: StateLoading, Filename: filename, Message: fmt.Sprintf("Reading %s...", filename)}
}

// StatusFor summarises the outcome of Ingest.
func StatusFor(filename string, res *Result, err error) Status {
	if err != nil {
		msg := err.Error()
		var ie *IngestError
		if errors.As(err, &ie) && ie.Retryable() {
			msg += "; check the file and upload it again"
		}
		return Status{State: StateError, Filename: filename, Message: msg}
	}
	if res == nil {
		return Status{State: StateIdle, Filename: filename}
	}
	return Status{
		State:    StateOK,
		Filename: filename,
		Message:  fmt.Sprintf("Loaded %d %s record(s) from %s", len(res.Records), res.Dataset, filename),
	}
}
