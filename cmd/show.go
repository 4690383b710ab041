package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/aggregator"
	"github.com/pable/nrstats/internal/model"
	"github.com/pable/nrstats/internal/report"
	"github.com/pable/nrstats/internal/storage"
)

var (
	showPhase    string
	showSort     string
	showMinGames int
)

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show stored tournament stats by id prefix",
	Long: `Show side results, identity representation, identity records and matchups
for a stored tournament.

--phase selects swiss games or the elimination cut (top). --sort orders the
representation tables by player count or identity name; without it identities
are listed in the order they were first seen.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPhase, "phase", string(model.PhaseSwiss), "swiss or cut")
	showCmd.Flags().StringVar(&showSort, "sort", "", "representation order: count or name")
	showCmd.Flags().IntVar(&showMinGames, "min-games", 1, "hide matchups with fewer games")
}

func runShow(cmd *cobra.Command, args []string) error {
	phase, ok := model.ParsePhase(showPhase)
	if !ok {
		return fmt.Errorf("invalid --phase %q (want swiss or cut)", showPhase)
	}
	switch aggregator.SortOrder(showSort) {
	case "", aggregator.SortByCount, aggregator.SortByName:
	default:
		return fmt.Errorf("invalid --sort %q (want count or name)", showSort)
	}

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
		fmt.Fprintf(os.Stderr, "No tournament found with id prefix %q\n", args[0])
		return nil
	}
	return showTournament(db, s.ID, phase)
}

func showTournament(db *storage.DB, id string, phase model.Phase) error {
	s, err := db.GetTournamentByPrefix(id)
	if err != nil {
		return fmt.Errorf("query tournament: %w", err)
	}
	if s == nil {
		return fmt.Errorf("tournament not found: %s", id)
	}
	t, rounds, err := db.LoadTournament(s.ID)
	if err != nil {
		return fmt.Errorf("load tournament: %w", err)
	}

	a := aggregator.Analyze(t, rounds, phase)
	corpIDs, runnerIDs := a.CorpIDs, a.RunnerIDs
	if showSort != "" {
		corpIDs = aggregator.SortIdentityCounts(corpIDs, aggregator.SortOrder(showSort))
		runnerIDs = aggregator.SortIdentityCounts(runnerIDs, aggregator.SortOrder(showSort))
	}

	report.PrintTournamentSummary(os.Stdout, *s)
	report.PrintResultsTable(os.Stdout, a.Phase, a.Results)
	report.PrintRepresentationTable(os.Stdout, model.SideCorp, corpIDs)
	report.PrintRepresentationTable(os.Stdout, model.SideRunner, runnerIDs)
	report.PrintIdentityTable(os.Stdout, model.SideCorp, a.CorpRecords)
	report.PrintIdentityTable(os.Stdout, model.SideRunner, a.RunnerRecords)
	report.PrintMatchupTable(os.Stdout, a.Matchups, showMinGames)
	return nil
}
