// =============================================================================
// distiviz - Ingest Command
// =============================================================================
//
// This file defines the 'ingest' command, which reads one spreadsheet,
// normalizes it into a canonical dataset, and stores it in the cache.
//
// COMMAND USAGE:
//   distiviz ingest <apps|dregs|master|leads> <file> [flags]
//
// FLAGS:
//   --export   : Also write the dataset to a CSV file in the output directory
//   --archive  : Move the input file to the input archive afterwards
//   --no-cache : Do not store the dataset in the cache
//
// PROCESSING PIPELINE:
//   1. Read the workbook (.xlsx, .xls or .csv)
//   2. Select the sheet and detect the header row
//   3. Unpivot (Apps) or shape (DREGs, campaign) the rows
//   4. Apply configured transformation rules and validate
//   5. Store in the cache (a cache failure is a warning, not an error)
//   6. Optionally export and archive
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/csvwriter"
	"github.com/ginjaninja78/distiviz/internal/ingest"
	"github.com/ginjaninja78/distiviz/internal/validation"
	"github.com/ginjaninja78/distiviz/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	ingestExport  bool
	ingestArchive bool
	ingestNoCache bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <apps|dregs|master|leads> <file>",
	Short: "Normalize a spreadsheet and store it in the cache",
	Long: `The ingest command reads an Apps, DREG or campaign spreadsheet, maps its
headers onto the canonical schema, and replaces the cached copy of that
dataset.

Apps workbooks are read from the "Confidence" sheet when present. When the
header row names both Distributor and Confidence the sheet is treated as an
already flat export and read row by row.

DREG workbooks are read from the "Data" sheet. Rows without a distributor,
placeholder rows and rows outside the configured region are dropped.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&ingestExport, "export", false, "Also export the dataset to CSV")
	ingestCmd.Flags().BoolVar(&ingestArchive, "archive", false, "Move the input file to the input archive")
	ingestCmd.Flags().BoolVar(&ingestNoCache, "no-cache", false, "Do not store the dataset in the cache")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runIngest(cmd *cobra.Command, datasetName, path string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	ds, err := datasetArg(datasetName)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	filename := filepath.Base(path)
	fmt.Fprintln(out, ingest.Loading(filename).Message)

	data, err := utils.ReadInput(path)
	if err != nil {
		return err
	}

	ingester, err := ingest.New(a.registry, ingest.OptionsFromConfig(a.cfg), a.logger)
	if err != nil {
		return fmt.Errorf("failed to set up ingestion: %w", err)
	}

	res, err := ingester.Ingest(ctx, ds, data, filename)
	status := ingest.StatusFor(filename, res, err)
	if err != nil {
		return errors.New(status.Message)
	}
	fmt.Fprintln(out, status.Message)

	if res.Report != nil && len(res.Report.Issues) > 0 {
		fmt.Fprint(out, validation.FormatIssues(res.Report))
	}

	// STEP 5: CACHE
	if !ingestNoCache {
		if err := a.store.Set(ctx, string(ds), res.Records, res.Meta); err != nil {
			a.logger.Warn("failed to cache %s: %v", ds, err)
		} else {
			a.logger.Debug("cached %d %s record(s) via %s", len(res.Records), ds, a.store.Strategy())
		}
	}

	// STEP 6: EXPORT AND ARCHIVE
	fm := utils.NewFileManager(a.cfg.OutputDir, a.cfg.InputArchiveDir)
	if ingestExport {
		name := utils.GenerateOutputFileName(a.cfg.OutputNameFormat, map[string]string{"dataset": string(ds)})
		written, err := fm.WriteOutputFile(name, []byte(csvwriter.Encode(canon.FieldsFor(ds), res.Records)))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported to %s\n", written)
	}
	if ingestArchive {
		archived, err := fm.ArchiveInputFile(path)
		if err != nil {
			a.logger.Warn("failed to archive %s: %v", path, err)
		} else {
			fmt.Fprintf(out, "Archived input to %s\n", archived)
		}
	}

	return nil
}
