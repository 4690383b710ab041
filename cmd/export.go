package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/aggregator"
	"github.com/pable/nrstats/internal/model"
)

var (
	exportOut    string
	exportRounds bool
)

// tournamentExport is the JSON document written by the export command.
type tournamentExport struct {
	Tournament  model.TournamentSummary `json:"tournament"`
	Swiss       aggregator.Analysis     `json:"swiss"`
	Cut         *aggregator.Analysis    `json:"cut,omitempty"`
	Rounds      []model.AugmentedRound  `json:"rounds,omitempty"`
	GeneratedAt string                  `json:"generated_at"`
}

var exportCmd = &cobra.Command{
	Use:   "export <id-prefix>",
	Short: "Export a tournament's derived statistics as JSON",
	Long: `Write the swiss and cut statistics of a stored tournament as a JSON document,
for use by a UI or a notebook. The cut section is omitted when the tournament
had no elimination rounds.

Example:
  nrstats export 3fa9 --rounds --out worlds.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
	exportCmd.Flags().BoolVar(&exportRounds, "rounds", false, "include every augmented game")
}

func runExport(_ *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.GetTournamentByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("query tournament: %w", err)
	}
	if s == nil {
		return fmt.Errorf("no tournament found with id prefix %q", args[0])
	}
	t, rounds, err := db.LoadTournament(s.ID)
	if err != nil {
		return fmt.Errorf("load tournament: %w", err)
	}

	doc := tournamentExport{
		Tournament:  *s,
		Swiss:       aggregator.Analyze(t, rounds, model.PhaseSwiss),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if len(t.EliminationPlayers) > 0 {
		cut := aggregator.Analyze(t, rounds, model.PhaseCut)
		doc.Cut = &cut
	}
	if exportRounds {
		doc.Rounds = rounds
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')

	if exportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(exportOut, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	return nil
}
