// Package server exposes derived tournament statistics as a JSON API for a
// UI layer.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pable/nrstats/internal/classifier"
	"github.com/pable/nrstats/internal/model"
)

// Store is the read side of the tournament database.
type Store interface {
	ListTournaments() ([]model.TournamentSummary, error)
	GetTournamentByPrefix(prefix string) (*model.TournamentSummary, error)
	LoadTournament(id string) (*model.Tournament, []model.AugmentedRound, error)
}

// Predictor scores a feature vector; *classifier.Model satisfies it.
type Predictor interface {
	Predict(classifier.FeatureVector) float64
}

// Server holds the handler dependencies.
type Server struct {
	store          Store
	predictor      Predictor
	log            *zap.Logger
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithPredictor enables POST /classifier/predict.
func WithPredictor(p Predictor) Option {
	return func(s *Server) { s.predictor = p }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithAllowedOrigins sets the CORS origins allowed to call the API.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// New returns a Server reading from store.
func New(store Store, opts ...Option) *Server {
	s := &Server{store: store, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  s.allowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost},
			AllowHeaders:  []string{"Content-Type", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/tournaments", s.listTournaments)
	t := r.Group("/tournaments/:id")
	{
		t.GET("", s.getTournament)
		t.GET("/rounds", s.getRounds)
		t.GET("/results", s.getResults)
		t.GET("/representation", s.getRepresentation)
		t.GET("/matchups", s.getMatchups)
		t.GET("/identities", s.getIdentities)
	}
	r.POST("/classifier/predict", s.predict)
	return r
}

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id, echoed in the response
// header, and logs it once the handler is done. A client-supplied id is kept.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
		s.log.Debug("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
