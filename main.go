// =============================================================================
// distiviz - Main Entry Point
// =============================================================================
//
// USAGE:
//   distiviz ingest <dataset> <file>  - Normalize a spreadsheet into the cache
//   distiviz export <dataset>         - Write a cached dataset to CSV
//   distiviz cache list               - Show cached datasets
//   distiviz version                  - Display the application version
//
// ARCHITECTURE:
//   - cmd/      : CLI command definitions (Cobra)
//   - internal/ : Ingestion, cache and analysis packages
//   - pkg/      : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/distiviz/cmd"
)

func main() {
	cmd.Execute()
}
