// =============================================================================
// distiviz - Cache Commands
// =============================================================================
//
// COMMAND USAGE:
//   distiviz cache list          List cached datasets
//   distiviz cache show <name>   Print a dataset's metadata and first rows
//   distiviz cache clear <name>  Remove one dataset
//   distiviz cache clear-all     Remove every dataset
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/csvwriter"
	"github.com/ginjaninja78/distiviz/internal/types"
)

var cacheShowRows int

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the dataset cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.store.Names(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tROWS\tUPDATED\tSOURCE")
		for _, name := range names {
			entry, ok, err := a.store.Get(ctx, name)
			if err != nil {
				a.logger.Warn("failed to read %s: %v", name, err)
				continue
			}
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
				name, len(entry.Rows), entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Meta.Source)
		}
		return tw.Flush()
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a cached dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		name := args[0]
		if ds, ok := types.ParseDataset(name); ok {
			name = string(ds)
		}
		entry, ok, err := a.store.Get(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not cached", name)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:       %s\n", entry.Name)
		fmt.Fprintf(out, "Version:    %d\n", entry.Version)
		fmt.Fprintf(out, "Updated:    %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Rows:       %d\n", len(entry.Rows))
		fmt.Fprintf(out, "Source:     %s (sheet %q, header row %d, %s)\n",
			entry.Meta.Source, entry.Meta.Sheet, entry.Meta.HeaderRowIndex, entry.Meta.Mode)
		fmt.Fprintf(out, "Columns:    %s\n\n", strings.Join(entry.Meta.Columns, ", "))

		rows := entry.Rows
		if cacheShowRows >= 0 && len(rows) > cacheShowRows {
			rows = rows[:cacheShowRows]
		}
		fields := canon.FieldsFor(types.Dataset(entry.Name))
		if fields == nil {
			return nil
		}
		return csvwriter.Write(out, fields, rows)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <name>",
	Short: "Remove one cached dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		name := args[0]
		if ds, ok := types.ParseDataset(name); ok {
			name = string(ds)
		}
		if err := a.store.Clear(ctx, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", name)
		return nil
	},
}

var cacheClearAllCmd = &cobra.Command{
	Use:   "clear-all",
	Short: "Remove every cached dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cacheShowCmd, cacheClearCmd, cacheClearAllCmd)

	cacheShowCmd.Flags().IntVarP(&cacheShowRows, "rows", "n", 10, "Number of rows to print (-1 for all)")
}
