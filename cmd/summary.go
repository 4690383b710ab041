package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/model"
	"github.com/pable/nrstats/internal/report"
)

var summaryTop int

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all tournaments stored in the database:
tournament count, date range, side win rates over every game, and the most
played identities on each side.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 10, "identities to list per side")
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetDBOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Tournaments == 0 {
		fmt.Fprintln(os.Stdout, "No tournaments stored yet. Run 'nrstats import <file|url>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Tournaments   : %d\n", ov.Tournaments)
	fmt.Fprintf(os.Stdout, "  Date range    : %s → %s\n", ov.Earliest, ov.Latest)
	fmt.Fprintf(os.Stdout, "  Player entries: %d\n", ov.PlayerEntries)
	fmt.Fprintf(os.Stdout, "  Players seen  : %d\n", ov.UniquePlayers)
	fmt.Fprintf(os.Stdout, "  Games         : %d\n\n", ov.Results.Total())

	report.PrintResultsTable(os.Stdout, "all games", ov.Results)

	for _, side := range []model.Side{model.SideCorp, model.SideRunner} {
		stats, err := db.GetIdentityStats(side)
		if err != nil {
			return fmt.Errorf("get %s identity stats: %w", side, err)
		}
		if summaryTop > 0 && len(stats) > summaryTop {
			stats = stats[:summaryTop]
		}
		report.PrintIdentityTable(os.Stdout, side, stats)
	}
	return nil
}
