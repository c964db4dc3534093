// =============================================================================
// distiviz - Campaign Match Command
// =============================================================================
//
// COMMAND USAGE:
//   distiviz match --start 2024-03-01 --days 30 --distributor Arrow --country China
//
// Needs both campaign datasets in the cache:
//   distiviz ingest master ./registrations.xlsx
//   distiviz ingest leads  ./campaign.xlsx
//
// =============================================================================

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/distiviz/internal/campaign"
	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

var (
	matchStart       string
	matchDays        int
	matchDistributor string
	matchCountry     string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match campaign leads against registrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		start, err := parseDateFlag("start", matchStart)
		if err != nil {
			return err
		}
		if start.IsZero() {
			return fmt.Errorf("--start is required")
		}
		if matchDays < 0 {
			return fmt.Errorf("--days must not be negative")
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		master, err := a.rows(ctx, types.DatasetCampaignMaster)
		if err != nil {
			return err
		}
		leads, err := a.rows(ctx, types.DatasetCampaignLeads)
		if err != nil {
			return err
		}

		res := campaign.Run(campaign.Query{
			Start:       start,
			Days:        matchDays,
			Distributor: matchDistributor,
			Country:     matchCountry,
		}, master, leads)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Registrations in window: %d\n", len(res.Selected))
		fmt.Fprintf(out, "Campaign leads:          %d\n", len(leads))
		fmt.Fprintf(out, "Matched leads:           %d\n", res.MatchedLeads)
		fmt.Fprintf(out, "Matches:                 %d\n\n", len(res.Matches))

		if len(res.Matches) == 0 {
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CONTACT\tEMAIL\tCOMPANY\tRESALE CUSTOMER\tREG ID\tREG DATE\tSCORE")
		for _, m := range res.Matches {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\n",
				m.Contact(), m.Email(), m.Company(), m.Customer(),
				m.Master.Text(canon.MasterRegistrationID),
				m.Master.Text(canon.MasterRegDate),
				m.Score)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&matchStart, "start", "", "First registration date (YYYY-MM-DD)")
	matchCmd.Flags().IntVar(&matchDays, "days", 30, "Length of the registration window in days")
	matchCmd.Flags().StringVar(&matchDistributor, "distributor", "", "Main distributor")
	matchCmd.Flags().StringVar(&matchCountry, "country", "", "Country of the resale customer (substring)")
	matchCmd.MarkFlagRequired("distributor")
}
