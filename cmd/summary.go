// =============================================================================
// distiviz - Summary Command
// =============================================================================
//
// COMMAND USAGE:
//   distiviz summary apps  [--region R] [--level3 L] [--min-confidence N]
//   distiviz summary dregs [--distributor D] [--status S] [--from D] [--to D]
//
// Filters a cached dataset and prints grouped counts. A filter value of
// "All" (or leaving the flag out) matches every row.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/distiviz/internal/filter"
	"github.com/ginjaninja78/distiviz/internal/summary"
	"github.com/ginjaninja78/distiviz/internal/types"
)

const dateFlagLayout = "2006-01-02"

var (
	sumRegion        string
	sumLevel3        string
	sumMinConfidence float64
	sumDistributor   string
	sumStatus        string
	sumFrom          string
	sumTo            string
	sumTop           int
)

var summaryCmd = &cobra.Command{
	Use:       "summary <apps|dregs>",
	Short:     "Summarize a cached Apps or DREG dataset",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"apps", "dregs"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ds, err := datasetArg(args[0])
		if err != nil {
			return err
		}
		if ds != types.DatasetApps && ds != types.DatasetDregs {
			return fmt.Errorf("summary supports apps and dregs, not %s", ds)
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

		if ds == types.DatasetApps {
			return summarizeApps(cmd.OutOrStdout(), rows)
		}
		return summarizeDregs(cmd.OutOrStdout(), rows)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	f := summaryCmd.Flags()
	f.StringVar(&sumRegion, "region", filter.Wildcard, "Apps: region to show")
	f.StringVar(&sumLevel3, "level3", filter.Wildcard, "Apps: System/Application Level III")
	f.Float64Var(&sumMinConfidence, "min-confidence", 0, "Apps: lowest confidence to include")
	f.StringVar(&sumDistributor, "distributor", filter.Wildcard, "DREGs: distributor")
	f.StringVar(&sumStatus, "status", filter.Wildcard, "DREGs: registration status")
	f.StringVar(&sumFrom, "from", "", "DREGs: earliest registration date (YYYY-MM-DD)")
	f.StringVar(&sumTo, "to", "", "DREGs: latest registration date (YYYY-MM-DD)")
	f.IntVar(&sumTop, "top", 10, "Groups to list per field (-1 for all)")
}

func summarizeApps(out io.Writer, rows []types.Record) error {
	rows = filter.AppsFilter{
		Region:        sumRegion,
		Level3:        sumLevel3,
		MinConfidence: sumMinConfidence,
	}.Apply(rows)

	s, err := summary.SummarizeApps(rows)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Applications: %d (%d scored)\n", s.Records, s.Scored)
	if s.Scored > 0 {
		fmt.Fprintf(out, "Confidence:   mean %.1f, median %.1f\n", s.ConfidenceMean, s.ConfidenceMedian)
	}
	printGroups(out, "Distributor", s.Distributors)
	printGroups(out, "Level III", s.Levels)
	return nil
}

func summarizeDregs(out io.Writer, rows []types.Record) error {
	from, err := parseDateFlag("from", sumFrom)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", sumTo)
	if err != nil {
		return err
	}

	rows = filter.DregFilter{
		Distributor: sumDistributor,
		RegStatus:   sumStatus,
		From:        from,
		To:          to,
	}.Apply(rows)

	s, err := summary.SummarizeDregs(rows)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "DREGs:         %d\n", s.Records)
	fmt.Fprintf(out, "3-Year Revenue: %.2f\n", s.RevenueTotal)
	printGroups(out, "Distributor", s.Distributors)
	printGroups(out, "Reg Status", s.Statuses)
	printGroups(out, "Region Resale Customer", s.CustomerRegions)
	return nil
}

func printGroups(out io.Writer, title string, groups []summary.Group) {
	if sumTop >= 0 && len(groups) > sumTop {
		groups = groups[:sumTop]
	}
	fmt.Fprintf(out, "\n%s\n", title)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(tw, "  %s\t%d\n", g.Key, g.Count)
	}
	tw.Flush()
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFlagLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", name, value)
	}
	return t, nil
}
