package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/classifier"
	"github.com/pable/nrstats/internal/decklist"
	"github.com/pable/nrstats/internal/report"
)

var (
	predictModel string
	predictTop   int
)

var predictCmd = &cobra.Command{
	Use:   "predict <decklist-id>",
	Short: "Guess the side of a NetrunnerDB decklist with the trained classifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictModel, "model", "", "stored model name (default from config)")
	predictCmd.Flags().IntVar(&predictTop, "top", 0, "also print the n heaviest weights")
}

func runPredict(cmd *cobra.Command, args []string) error {
	ids, err := parseDecklistIDs(args)
	if err != nil {
		return err
	}
	name := predictModel
	if name == "" {
		name = cfg.Classifier.ModelName
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	stored, rate, err := db.LoadModel(name)
	if err != nil {
		return fmt.Errorf("load model %s: %w", name, err)
	}
	if stored == nil {
		return fmt.Errorf("no trained model %q; run 'nrstats train' first", name)
	}
	m := classifier.New(rate, classifier.WithState(*stored))

	ctx := cmd.Context()
	client := newNRDBClient()
	deck, err := client.Decklist(ctx, ids[0])
	if err != nil {
		return fmt.Errorf("fetch decklist: %w", err)
	}

	p := m.Predict(decklist.Features(*deck))
	fmt.Fprintf(os.Stdout, "%s (#%d)\n", deck.Name, deck.ID)
	fmt.Fprintf(os.Stdout, "P(corp) = %.4f  ->  %s\n", p, decklist.SideOf(p))

	if predictTop > 0 {
		cards, titles, err := loadCardIndex(ctx, client)
		if err != nil {
			return err
		}
		if side, ok := decklist.Side(*deck, cards); ok {
			fmt.Fprintf(os.Stdout, "Identity side: %s\n", side)
		}
		fmt.Fprintln(os.Stdout)
		report.PrintWeightsTable(os.Stdout, m.State(), titles, predictTop)
	}
	return nil
}
