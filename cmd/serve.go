package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/nrstats/internal/classifier"
	"github.com/pable/nrstats/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve tournament statistics as a JSON API",
	Long: `Start an HTTP server exposing stored tournaments and their derived statistics.
When a trained classifier is stored, POST /classifier/predict scores decklists.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	}
	stored, rate, err := db.LoadModel(cfg.Classifier.ModelName)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if stored != nil {
		opts = append(opts, server.WithPredictor(classifier.New(rate, classifier.WithState(*stored))))
	} else {
		logger.Warn("no trained classifier; /classifier/predict disabled", zap.String("model", cfg.Classifier.ModelName))
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(db, opts...).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := cmd.Context()
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	fmt.Fprintf(os.Stderr, "Listening on http://%s\n", addr)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
