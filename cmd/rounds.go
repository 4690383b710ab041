package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/aggregator"
	"github.com/pable/nrstats/internal/model"
	"github.com/pable/nrstats/internal/report"
)

var (
	roundsPlayer  string
	roundsPhase   string
	roundsOutcome string
)

// roundsCmd is the cobra command for a game-by-game listing of one tournament.
var roundsCmd = &cobra.Command{
	Use:   "rounds <id-prefix>",
	Short: "Game-by-game listing of one tournament",
	Args:  cobra.ExactArgs(1),
	RunE:  runRounds,
}

func init() {
	roundsCmd.Flags().StringVar(&roundsPlayer, "player", "", "highlight a player by id or name")
	roundsCmd.Flags().StringVar(&roundsPhase, "phase", "", "only show swiss or cut games")
	roundsCmd.Flags().StringVar(&roundsOutcome, "outcome", "", "only show games with this result: corpWin, runnerWin, draw, bye, unknown")
}

// filterOutcome keeps games whose result matches outcome. Empty rounds are dropped.
func filterOutcome(rounds []model.AugmentedRound, outcome model.Outcome) []model.AugmentedRound {
	var out []model.AugmentedRound
	for _, r := range rounds {
		var games []model.AugmentedGame
		for _, g := range r.Games {
			if g.Outcome == outcome {
				games = append(games, g)
			}
		}
		if len(games) > 0 {
			out = append(out, model.AugmentedRound{Number: r.Number, Games: games})
		}
	}
	return out
}

func parseOutcome(s string) (model.Outcome, bool) {
	for _, o := range []model.Outcome{
		model.OutcomeCorpWin, model.OutcomeRunnerWin, model.OutcomeDraw, model.OutcomeBye, model.OutcomeUnknown,
	} {
		if strings.EqualFold(s, string(o)) {
			return o, true
		}
	}
	return "", false
}

// resolveFocusPlayer matches --player against player ids first, then names
// case-insensitively. Returns 0 when nothing matches.
func resolveFocusPlayer(players []model.Player, query string) int {
	if query == "" {
		return 0
	}
	if id, err := strconv.Atoi(query); err == nil {
		for _, p := range players {
			if p.ID == id {
				return id
			}
		}
	}
	for _, p := range players {
		if strings.EqualFold(p.Name, query) {
			return p.ID
		}
	}
	return 0
}

func runRounds(cmd *cobra.Command, args []string) error {
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
	t, rounds, err := db.LoadTournament(s.ID)
	if err != nil {
		return fmt.Errorf("load tournament: %w", err)
	}

	if roundsPhase != "" {
		phase, ok := model.ParsePhase(roundsPhase)
		if !ok {
			return fmt.Errorf("invalid --phase %q (want swiss or cut)", roundsPhase)
		}
		rounds = aggregator.FilterPhase(rounds, phase)
	}
	if roundsOutcome != "" {
		outcome, ok := parseOutcome(roundsOutcome)
		if !ok {
			return fmt.Errorf("invalid --outcome %q", roundsOutcome)
		}
		rounds = filterOutcome(rounds, outcome)
	}

	focus := resolveFocusPlayer(t.Players, roundsPlayer)
	if roundsPlayer != "" && focus == 0 {
		fmt.Fprintf(os.Stderr, "No player matching %q in this tournament\n", roundsPlayer)
	}

	report.PrintTournamentSummary(os.Stdout, *s)
	if len(rounds) == 0 {
		fmt.Fprintln(os.Stdout, "No games match the given filters.")
		return nil
	}
	report.PrintRoundsTable(os.Stdout, rounds, focus)
	return nil
}
