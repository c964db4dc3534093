// =============================================================================
// distiviz - Compare Command
// =============================================================================
//
// COMMAND USAGE:
//   distiviz compare                                  List shared distributors and segments
//   distiviz compare --distributor Arrow [--segment S]...
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/distiviz/internal/compare"
	"github.com/ginjaninja78/distiviz/internal/summary"
	"github.com/ginjaninja78/distiviz/internal/types"
)

var (
	compareDistributor string
	compareSegments    []string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare Apps and DREGs for one distributor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		apps, err := a.rows(ctx, types.DatasetApps)
		if err != nil {
			return err
		}
		dregs, err := a.rows(ctx, types.DatasetDregs)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if compareDistributor == "" {
			opts := compare.BuildOptions(apps, dregs)
			fmt.Fprintf(out, "Distributors in both datasets (%d):\n  %s\n",
				len(opts.Distributors), strings.Join(opts.Distributors, "\n  "))
			fmt.Fprintf(out, "Segments in both datasets (%d):\n  %s\n",
				len(opts.Segments), strings.Join(opts.Segments, "\n  "))
			return nil
		}

		res := compare.Run(compare.Request{
			Distributor: compareDistributor,
			Segments:    compareSegments,
		}, apps, dregs)

		fmt.Fprintf(out, "Applications: %d\n", len(res.Apps))
		fmt.Fprintf(out, "DREGs:        %d\n", len(res.Dregs))
		printTop(out, "Applications: Top Areas", res.TopApps)
		printTop(out, "DREGs: Top Segments", res.TopDregs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareDistributor, "distributor", "", "Distributor to compare")
	compareCmd.Flags().StringSliceVar(&compareSegments, "segment", nil, "Segments to include (repeatable; default all)")
}

func printTop(out io.Writer, title string, groups []summary.Group) {
	fmt.Fprintf(out, "\n%s\n", title)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, g := range groups {
		fmt.Fprintf(tw, "  %d.\t%s\t%d\n", i+1, g.Key, g.Count)
	}
	tw.Flush()
}
