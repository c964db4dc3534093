// =============================================================================
// distiviz - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   distiviz version
//
// Prints the build and the formats it reads, then opens the configured cache
// and reports which backend answered. A cache that cannot be opened is shown
// as "unavailable" rather than failing the command.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/distiviz/internal/cache"
	"github.com/ginjaninja78/distiviz/internal/canon"
)

// Set with -ldflags "-X github.com/ginjaninja78/distiviz/cmd.Version=...".
var (
	Version   = "0.3.0"
	BuildDate = "unknown"
)

// versionReport is what the version command prints.
type versionReport struct {
	Version       string
	BuildDate     string
	GoVersion     string
	EntryVersion  int
	PackVersion   int
	CacheStrategy string
	AliasesDir    string
}

func (r versionReport) write(out io.Writer) error {
	strategy := r.CacheStrategy
	if strategy == "" {
		strategy = "unavailable"
	}
	aliases := r.AliasesDir
	if aliases == "" {
		aliases = "(built-in only)"
	}
	_, err := fmt.Fprintf(out,
		"distiviz %s (built %s, %s)\n"+
			"  cache payload  v%d\n"+
			"  alias packs    up to v%d, from %s\n"+
			"  cache backend  %s\n",
		r.Version, r.BuildDate, r.GoVersion,
		r.EntryVersion,
		r.PackVersion, aliases,
		strategy)
	return err
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the build, supported formats and active cache backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := versionReport{
			Version:      Version,
			BuildDate:    BuildDate,
			GoVersion:    runtime.Version(),
			EntryVersion: cache.EntryVersion,
			PackVersion:  canon.SupportedPackVersion,
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		} else {
			defer a.Close()
			report.CacheStrategy = a.store.Strategy()
			report.AliasesDir = a.cfg.AliasesDir
		}
		return report.write(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
