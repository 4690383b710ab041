package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/nrstats/internal/classifier"
	"github.com/pable/nrstats/internal/decklist"
	"github.com/pable/nrstats/internal/report"
	"github.com/pable/nrstats/internal/storage"
)

var (
	trainEpochs int
	trainRate   float64
	trainModel  string
	trainReset  bool
	trainTop    int
)

var trainCmd = &cobra.Command{
	Use:   "train <decklist-id>...",
	Short: "Train the side classifier on NetrunnerDB decklists",
	Long: `Fetch published decklists from NetrunnerDB, label each one corp or runner
from its identity card, and feed them to the online side classifier.

Training continues from the stored model unless --reset is given. Decklists
whose side cannot be resolved, or that fail to fetch, are skipped.

Example:
  nrstats train 81234 81240 81301 --epochs 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 0, "passes over the decklists (default from config)")
	trainCmd.Flags().Float64Var(&trainRate, "rate", 0, "learning rate for a new model (default from config)")
	trainCmd.Flags().StringVar(&trainModel, "model", "", "stored model name (default from config)")
	trainCmd.Flags().BoolVar(&trainReset, "reset", false, "discard the stored model and start over")
	trainCmd.Flags().IntVar(&trainTop, "top", 15, "number of weights to print")
}

// trainingExample is one labelled decklist.
type trainingExample struct {
	id       int
	features classifier.FeatureVector
	label    bool
}

func runTrain(cmd *cobra.Command, args []string) error {
	ids, err := parseDecklistIDs(args)
	if err != nil {
		return err
	}
	epochs := trainEpochs
	if epochs <= 0 {
		epochs = cfg.Classifier.Epochs
	}
	rate := trainRate
	if rate <= 0 {
		rate = cfg.Classifier.LearningRate
	}
	name := trainModel
	if name == "" {
		name = cfg.Classifier.ModelName
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	client := newNRDBClient()
	cards, titles, err := loadCardIndex(ctx, client)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Fetching %d decklists...\n", len(ids))
	decks, failed := client.Decklists(ctx, ids)
	if len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "%d decklists failed to fetch and were skipped.\n", len(failed))
	}

	var examples []trainingExample
	for i, d := range decks {
		if d == nil {
			continue
		}
		side, ok := decklist.Side(*d, cards)
		if !ok {
			logger.Warn("decklist side unresolved", zap.Int("id", ids[i]))
			continue
		}
		examples = append(examples, trainingExample{
			id:       ids[i],
			features: decklist.Features(*d),
			label:    decklist.Label(side),
		})
	}
	if len(examples) == 0 {
		return fmt.Errorf("no usable decklists among %d ids", len(ids))
	}

	opts := []classifier.Option{
		classifier.WithObserver(classifier.ObserverFunc(func(s classifier.Snapshot) {
			logger.Debug("classifier updated",
				zap.Int("updates", s.Updates),
				zap.Float64("bias", s.Bias),
				zap.Int("features", len(s.Weights)))
		})),
	}
	if !trainReset {
		stored, storedRate, err := db.LoadModel(name)
		if err != nil {
			return fmt.Errorf("load model %s: %w", name, err)
		}
		if stored != nil {
			opts = append(opts, classifier.WithState(*stored))
			if trainRate <= 0 {
				rate = storedRate
			}
			fmt.Fprintf(os.Stderr, "Continuing model %q after %d updates.\n", name, stored.Updates)
		}
	}
	m := classifier.New(rate, opts...)

	for epoch := 1; epoch <= epochs; epoch++ {
		correct := 0
		for _, ex := range examples {
			// Score before the update so accuracy reflects unseen data in the first epoch.
			if (m.Predict(ex.features) >= 0.5) == ex.label {
				correct++
			}
			m.Update(ex.features, ex.label)
		}
		fmt.Fprintf(os.Stdout, "epoch %d/%d  accuracy %d/%d (%.1f%%)\n",
			epoch, epochs, correct, len(examples), 100*float64(correct)/float64(len(examples)))
	}

	state := m.State()
	if err := db.SaveModel(name, m.LearningRate(), state); err != nil {
		if errors.Is(err, storage.ErrNaNParameter) {
			return fmt.Errorf("training diverged, model %s not saved: %w", name, err)
		}
		return fmt.Errorf("save model %s: %w", name, err)
	}
	logger.Info("model saved", zap.String("model", name), zap.Int("updates", state.Updates))

	fmt.Fprintln(os.Stdout)
	report.PrintWeightsTable(os.Stdout, state, titles, trainTop)
	return nil
}

func parseDecklistIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid decklist id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
