// Package nrdb provides a minimal client for the NetrunnerDB public API v2.
package nrdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pable/nrstats/internal/model"
)

// DefaultBaseURL is the root endpoint for the NetrunnerDB public API v2.
const DefaultBaseURL = "https://netrunnerdb.com/api/2.0/public"

// maxConcurrentFetches bounds parallel decklist requests.
const maxConcurrentFetches = 4

// Client is a rate-limited NetrunnerDB API client.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimit allows rps requests per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger sets the client's logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client limited to 5 requests per second.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(5, 5),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the wrapper NetrunnerDB puts around every response.
type envelope[T any] struct {
	Data    []T  `json:"data"`
	Success bool `json:"success"`
}

// get waits for the rate limiter, performs a GET against the API and
// JSON-decodes the response body into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("nrdb request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Cards returns metadata for every card in the database.
func (c *Client) Cards(ctx context.Context) ([]model.Card, error) {
	var resp envelope[model.Card]
	if err := c.get(ctx, "/cards", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Decklist returns one published decklist.
func (c *Client) Decklist(ctx context.Context, id int) (*model.Decklist, error) {
	var resp envelope[model.Decklist]
	if err := c.get(ctx, fmt.Sprintf("/decklist/%d", id), &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("decklist %d: empty response", id)
	}
	return &resp.Data[0], nil
}

// Decklists fetches several decklists concurrently. Results keep the order of
// ids; a decklist that fails to fetch is left nil and reported in errs, keyed
// by its index.
func (c *Client) Decklists(ctx context.Context, ids []int) ([]*model.Decklist, map[int]error) {
	out := make([]*model.Decklist, len(ids))
	errs := make([]error, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, id := range ids {
		g.Go(func() error {
			d, err := c.Decklist(ctx, id)
			if err != nil {
				c.log.Warn("decklist fetch failed", zap.Int("id", id), zap.Error(err))
				errs[i] = err
				return nil
			}
			out[i] = d
			return nil
		})
	}
	_ = g.Wait()

	failed := make(map[int]error)
	for i, err := range errs {
		if err != nil {
			failed[i] = err
		}
	}
	return out, failed
}
