package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/nrstats/internal/aggregator"
	"github.com/pable/nrstats/internal/model"
	"github.com/pable/nrstats/internal/provider"
	"github.com/pable/nrstats/internal/report"
	"github.com/pable/nrstats/internal/storage"
)

var (
	importSource    string
	importAlternate bool
	importForce     bool
)

var importCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Import a tournament export and store its results",
	Long: `Import a Cobra or Aesops Tables JSON export from a file or URL.

The provider is detected from the export unless --source is given. --alternate
is shorthand for --source aesops. Gzip and zstd compressed files are accepted,
and a Cobra tournament page URL is followed to its JSON export.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "export provider: cobra or aesops (default: detect)")
	importCmd.Flags().BoolVar(&importAlternate, "alternate", false, "export comes from Aesops Tables")
	importCmd.Flags().BoolVarP(&importForce, "force", "f", false, "re-import a tournament that is already stored")
}

func runImport(cmd *cobra.Command, args []string) error {
	source, err := importSourceFlag()
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return importTournament(cmd.Context(), db, args[0], source)
}

func importSourceFlag() (model.Source, error) {
	if importAlternate {
		if importSource != "" && importSource != string(model.SourceAesops) {
			return "", fmt.Errorf("--alternate conflicts with --source %s", importSource)
		}
		return model.SourceAesops, nil
	}
	switch s := model.Source(importSource); s {
	case "", model.SourceCobra, model.SourceAesops:
		return s, nil
	default:
		return "", fmt.Errorf("unknown --source %q (want cobra or aesops)", importSource)
	}
}

// importTournament loads, augments and stores the export at location, then
// prints its swiss results.
func importTournament(ctx context.Context, db *storage.DB, location string, source model.Source) error {
	fmt.Fprintf(os.Stdout, "Loading %s...\n", location)
	loader := provider.NewLoader(provider.WithLogger(logger))
	t, err := loader.Load(ctx, location, source)
	if err != nil {
		return fmt.Errorf("load tournament: %w", err)
	}

	exists, err := db.TournamentExists(t.ID)
	if err != nil {
		return fmt.Errorf("check tournament: %w", err)
	}
	if exists && !importForce {
		fmt.Fprintf(os.Stdout, "Tournament %s already stored, showing cached results.\n", t.ID[:12])
		return showTournament(db, t.ID, model.PhaseSwiss)
	}

	rounds := aggregator.AugmentRounds(t, t.Source, aggregator.PlayerMap(t))
	summary := provider.Summarize(t)

	if err := db.ReplaceTournament(summary, t.Players, t.EliminationPlayers, rounds); err != nil {
		return fmt.Errorf("store tournament: %w", err)
	}
	logger.Info("tournament stored",
		zap.String("id", t.ID),
		zap.String("source", string(t.Source)),
		zap.Int("players", summary.Players))

	a := aggregator.Analyze(t, rounds, model.PhaseSwiss)
	report.PrintTournamentSummary(os.Stdout, summary)
	report.PrintResultsTable(os.Stdout, a.Phase, a.Results)
	report.PrintRepresentationTable(os.Stdout, model.SideCorp, a.CorpIDs)
	report.PrintRepresentationTable(os.Stdout, model.SideRunner, a.RunnerIDs)
	return nil
}
