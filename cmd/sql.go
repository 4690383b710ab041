package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Query the tournament store directly",
	Long: `Run a read or write statement against the nrstats SQLite store and print any rows it returns.

Schema overview:
  tournaments(id, name, date, source, player_count, swiss_rounds, cut_players)
  players(tournament_id, player_id, name, rank, corp_identity, runner_identity, match_points)
  elimination_players(tournament_id, player_id, name, rank, seed)
  rounds(tournament_id, round_number)
  games(tournament_id, round_number, game_index, table_number,
    corp_id, corp_name, corp_identity, runner_id, runner_name, runner_identity,
    outcome, elimination)
  classifier_models(name, bias, learning_rate, updates)
  classifier_weights(model, feature, weight)

outcome is one of corpWin, runnerWin, draw, bye, unknown. Example:
  nrstats sql "SELECT corp_identity, COUNT(*) FROM games WHERE outcome = 'corpWin' GROUP BY 1 ORDER BY 2 DESC"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	report.PrintQueryTable(os.Stdout, cols, rows)
	return nil
}
