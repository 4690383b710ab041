package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored tournaments",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := db.ListTournaments()
	if err != nil {
		return fmt.Errorf("list tournaments: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(os.Stdout, "No tournaments stored yet. Run 'nrstats import <file|url>' to add one.")
		return nil
	}
	report.PrintTournamentList(os.Stdout, list)
	return nil
}
