package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/report"
)

var trendCmd = &cobra.Command{
	Use:   "trend <identity>",
	Short: "Chronological representation and win rate of an identity",
	Long: `List every stored tournament where an identity was played, oldest first, with
its share of the field and its game record there. The identity name is matched
case-insensitively; quote names with spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrend,
}

func runTrend(cmd *cobra.Command, args []string) error {
	identity := strings.Join(args, " ")

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	points, err := db.GetIdentityTrend(identity)
	if err != nil {
		return fmt.Errorf("query trend: %w", err)
	}
	if len(points) == 0 {
		fmt.Println("no tournaments found")
		return nil
	}

	report.PrintIdentityTrendTable(os.Stdout, identity, points)
	return nil
}
