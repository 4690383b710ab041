package cmd

import (
	"context"
	"fmt"

	"github.com/pable/nrstats/internal/decklist"
	"github.com/pable/nrstats/internal/nrdb"
)

func newNRDBClient() *nrdb.Client {
	return nrdb.NewClient(
		nrdb.WithBaseURL(cfg.NRDB.BaseURL),
		nrdb.WithRateLimit(cfg.NRDB.RateLimit, cfg.NRDB.Burst),
		nrdb.WithLogger(logger),
	)
}

// loadCardIndex fetches card metadata and returns it indexed by code, plus a
// code -> title map for reports.
func loadCardIndex(ctx context.Context, client *nrdb.Client) (decklist.CardIndex, map[string]string, error) {
	cards, err := client.Cards(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch cards: %w", err)
	}
	titles := make(map[string]string, len(cards))
	for _, c := range cards {
		titles[c.Code] = c.Title
	}
	return decklist.NewCardIndex(cards), titles, nil
}
