// =============================================================================
// distiviz - Export Command
// =============================================================================
//
// COMMAND USAGE:
//   distiviz export <dataset> [--out path]
//
// Writes a cached dataset as CSV. Columns follow the dataset's canonical
// field order. With --out "-" the CSV is written to stdout.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/csvwriter"
	"github.com/ginjaninja78/distiviz/pkg/utils"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <apps|dregs|master|leads>",
	Short: "Export a cached dataset to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ds, err := datasetArg(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		rows, err := a.rows(ctx, ds)
		if err != nil {
			return err
		}
		fields := canon.FieldsFor(ds)

		if exportOut == "-" {
			return csvwriter.Write(cmd.OutOrStdout(), fields, rows)
		}

		name := exportOut
		if name == "" {
			name = utils.GenerateOutputFileName(a.cfg.OutputNameFormat, map[string]string{"dataset": string(ds)})
		}
		fm := utils.NewFileManager(a.cfg.OutputDir, a.cfg.InputArchiveDir)
		written, err := fm.WriteOutputFile(name, []byte(csvwriter.Encode(fields, rows)))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s record(s) to %s\n", len(rows), ds, written)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", `Output file ("-" for stdout); defaults to the configured name format`)
}
