package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/report"
)

var playerCmd = &cobra.Command{
	Use:   "player <name> [<name>...]",
	Short: "Cross-tournament history for one or more players",
	Long: `Show every stored tournament a player entered, with their final rank,
identities and game record, followed by their overall record. Names are
matched case-insensitively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlayer,
}

func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, name := range args {
		hist, err := db.GetPlayerHistory(name)
		if err != nil {
			return fmt.Errorf("query %s: %w", name, err)
		}
		if len(hist) == 0 {
			fmt.Fprintf(os.Stderr, "no data for player %q\n", name)
			continue
		}
		report.PrintPlayerHistoryTable(os.Stdout, hist)
	}
	return nil
}
