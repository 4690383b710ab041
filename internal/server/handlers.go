package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pable/nrstats/internal/aggregator"
	"github.com/pable/nrstats/internal/classifier"
	"github.com/pable/nrstats/internal/model"
)

func (s *Server) listTournaments(c *gin.Context) {
	list, err := s.store.ListTournaments()
	if err != nil {
		s.internalError(c, err)
		return
	}
	if list == nil {
		list = []model.TournamentSummary{}
	}
	c.JSON(http.StatusOK, list)
}

// loadTournament resolves the :id path parameter as an id prefix. It writes
// the error response itself and reports whether the handler may continue.
func (s *Server) loadTournament(c *gin.Context) (*model.TournamentSummary, *model.Tournament, []model.AugmentedRound, bool) {
	summary, err := s.store.GetTournamentByPrefix(c.Param("id"))
	if err != nil {
		s.internalError(c, err)
		return nil, nil, nil, false
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tournament not found"})
		return nil, nil, nil, false
	}
	t, rounds, err := s.store.LoadTournament(summary.ID)
	if err != nil {
		s.internalError(c, err)
		return nil, nil, nil, false
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tournament not found"})
		return nil, nil, nil, false
	}
	return summary, t, rounds, true
}

func (s *Server) getTournament(c *gin.Context) {
	summary, t, rounds, ok := s.loadTournament(c)
	if !ok {
		return
	}
	phase, ok := phaseParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tournament": summary,
		"analysis":   aggregator.Analyze(t, rounds, phase),
	})
}

func (s *Server) getRounds(c *gin.Context) {
	_, _, rounds, ok := s.loadTournament(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rounds)
}

func (s *Server) getResults(c *gin.Context) {
	_, _, rounds, ok := s.loadTournament(c)
	if !ok {
		return
	}
	phase, ok := phaseParam(c)
	if !ok {
		return
	}
	counts := aggregator.CountResults(aggregator.FilterPhase(rounds, phase))
	c.JSON(http.StatusOK, gin.H{
		"phase":   phase,
		"results": counts,
		"games":   counts.Total(),
	})
}

func (s *Server) getRepresentation(c *gin.Context) {
	_, t, _, ok := s.loadTournament(c)
	if !ok {
		return
	}
	phase, ok := phaseParam(c)
	if !ok {
		return
	}
	side, ok := sideParam(c)
	if !ok {
		return
	}
	counts := aggregator.RepresentationByID(t.Players, t.EliminationPlayers, side, phase)
	if by := c.Query("sort"); by != "" {
		order := aggregator.SortOrder(by)
		if order != aggregator.SortByCount && order != aggregator.SortByName {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be count or name"})
			return
		}
		counts = aggregator.SortIdentityCounts(counts, order)
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) getMatchups(c *gin.Context) {
	_, _, rounds, ok := s.loadTournament(c)
	if !ok {
		return
	}
	phase, ok := phaseParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, aggregator.Matchups(aggregator.FilterPhase(rounds, phase)))
}

func (s *Server) getIdentities(c *gin.Context) {
	_, t, rounds, ok := s.loadTournament(c)
	if !ok {
		return
	}
	phase, ok := phaseParam(c)
	if !ok {
		return
	}
	side, ok := sideParam(c)
	if !ok {
		return
	}
	a := aggregator.Analyze(t, rounds, phase)
	if side == model.SideCorp {
		c.JSON(http.StatusOK, a.CorpRecords)
		return
	}
	c.JSON(http.StatusOK, a.RunnerRecords)
}

type predictRequest struct {
	Cards map[string]float64 `json:"cards" binding:"required"`
}

func (s *Server) predict(c *gin.Context) {
	if s.predictor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no trained classifier"})
		return
	}
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := s.predictor.Predict(classifier.FeatureVector(req.Cards))
	side := model.SideRunner
	if p >= 0.5 {
		side = model.SideCorp
	}
	c.JSON(http.StatusOK, gin.H{"corpProbability": p, "side": side})
}

// phaseParam reads ?phase=, defaulting to swiss.
func phaseParam(c *gin.Context) (model.Phase, bool) {
	raw := c.DefaultQuery("phase", string(model.PhaseSwiss))
	phase, ok := model.ParsePhase(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phase must be swiss or cut"})
	}
	return phase, ok
}

// sideParam reads ?side=, defaulting to corp.
func sideParam(c *gin.Context) (model.Side, bool) {
	raw := c.DefaultQuery("side", string(model.SideCorp))
	side, ok := model.ParseSide(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be corp or runner"})
	}
	return side, ok
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.log.Error("request failed",
		zap.String("request_id", c.GetString(requestIDHeader)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
