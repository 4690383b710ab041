package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/model"
	"github.com/pable/nrstats/internal/provider"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <cobra-id>...",
	Short: "Download and import tournaments from Cobra by id",
	Long: `Download the JSON export of one or more Cobra tournaments and import them.
The Cobra instance is taken from cobra.base_url in the config (or NRSTATS_COBRA_URL).

Example:
  nrstats fetch 4512 4519`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid cobra id %q", a)
		}
		ids = append(ids, id)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	base := provider.DefaultCobraURL
	if cfg != nil && cfg.Cobra.BaseURL != "" {
		base = cfg.Cobra.BaseURL
	}
	for _, id := range ids {
		if err := importTournament(cmd.Context(), db, provider.CobraExportURL(base, id), model.SourceCobra); err != nil {
			return fmt.Errorf("cobra %d: %w", id, err)
		}
	}
	return nil
}
