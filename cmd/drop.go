package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

// dropCmd deletes one tournament, or the whole database file.
var dropCmd = &cobra.Command{
	Use:   "drop [id-prefix]",
	Short: "Delete a tournament or the whole database",
	Long: `With an id prefix, delete that tournament and its players and games.
Without one, permanently delete the SQLite database. All imported tournaments
and trained classifiers will be lost. Re-import your exports afterwards to rebuild.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return dropTournament(args[0])
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	// WAL side files; absent when the database was closed cleanly.
	os.Remove(dbPath + "-wal")
	os.Remove(dbPath + "-shm")
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func dropTournament(prefix string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.GetTournamentByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query tournament: %w", err)
	}
	if s == nil {
		fmt.Fprintf(os.Stderr, "No tournament found with id prefix %q\n", prefix)
		return nil
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will delete %q (%s).\n", s.Name, s.ID[:12])
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if _, err := db.DeleteTournament(s.ID); err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted tournament %s (%s)\n", s.Name, s.ID[:12])
	return nil
}
