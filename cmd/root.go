package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/nrstats/internal/config"
	"github.com/pable/nrstats/internal/storage"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "nrstats",
	Short: "Netrunner tournament statistics tool",
	Long: `Import Netrunner tournament exports from Cobra or Aesops Tables and compute
side win rates, identity representation and matchups. Also trains a classifier
that guesses the side of a NetrunnerDB decklist from its cards.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync() //nolint:errcheck
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default from config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(roundsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(shellCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = c.DBPath
	}
	l, err := c.Logging.NewLogger(verbose)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	logger.Debug("config loaded", zap.String("config", configPath), zap.String("db", dbPath))
	return nil
}

// openDB opens the database, creating its directory when needed.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}
