// =============================================================================
// distiviz - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// shares the same start-up: load the configuration, build the logger, load
// extra header aliases, and open the dataset cache.
//
// COBRA CLI STRUCTURE:
//   rootCmd (distiviz)
//   ├── ingestCmd  (distiviz ingest)
//   ├── exportCmd  (distiviz export)
//   ├── cacheCmd   (distiviz cache list|show|clear|clear-all)
//   ├── summaryCmd (distiviz summary)
//   ├── matchCmd   (distiviz match)
//   ├── compareCmd (distiviz compare)
//   └── versionCmd (distiviz version)
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/distiviz/internal/cache"
	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/config"
	"github.com/ginjaninja78/distiviz/internal/logging"
	"github.com/ginjaninja78/distiviz/internal/types"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "distiviz",
	Short: "distiviz - distributor Apps and DREG spreadsheet ingestion",
	Long: `distiviz normalizes distributor spreadsheets into canonical datasets.

Apps workbooks (one column per distributor) are unpivoted into one record per
application and distributor. DREG workbooks are shaped row by row. Ingested
datasets are cached locally and can be exported to CSV, summarized, compared,
or matched against campaign leads.

Example Usage:
  distiviz ingest apps ./apps.xlsx --export
  distiviz ingest dregs ./dregs.xls
  distiviz summary apps --region China --min-confidence 50
  distiviz compare --distributor Arrow --segment Automotive
  distiviz cache list`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the main configuration file (.yaml or .toml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED START-UP
// =============================================================================

// app bundles what every command needs.
type app struct {
	cfg      *config.MainConfig
	logger   logging.Logger
	registry *canon.Registry
	store    *cache.Store
}

// newApp loads the configuration and opens the cache.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.NewDefault(level)

	registry, err := canon.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load header aliases: %w", err)
	}
	n, err := registry.LoadDir(cfg.AliasesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load alias packs: %w", err)
	}
	if n > 0 {
		logger.Debug("loaded %d alias pack(s) from %s", n, cfg.AliasesDir)
	}

	store, err := cache.Open(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	logger.Debug("cache strategy: %s", store.Strategy())

	return &app{cfg: cfg, logger: logger, registry: registry, store: store}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close cache: %v", err)
	}
}

// rows returns the cached records of a dataset.
func (a *app) rows(ctx context.Context, ds types.Dataset) ([]types.Record, error) {
	entry, ok, err := a.store.Get(ctx, string(ds))
	if err != nil {
		return nil, fmt.Errorf("failed to read cached %s: %w", ds, err)
	}
	if !ok {
		return nil, fmt.Errorf("no cached %s dataset; run 'distiviz ingest %s <file>' first", ds, ds)
	}
	return entry.Rows, nil
}

// datasetArg resolves a dataset name given on the command line.
func datasetArg(name string) (types.Dataset, error) {
	ds, ok := types.ParseDataset(name)
	if !ok {
		return "", fmt.Errorf("unknown dataset %q (want apps, dregs, master or leads)", name)
	}
	return ds, nil
}
