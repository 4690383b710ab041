package aggregator

import "github.com/pable/nrstats/internal/model"

// Analysis bundles the derived views of one tournament phase.
type Analysis struct {
	Phase         model.Phase                 `json:"phase"`
	Results       model.ResultCounts          `json:"results"`
	CorpIDs       []model.IdentityCount       `json:"corpIdentities"`
	RunnerIDs     []model.IdentityCount       `json:"runnerIdentities"`
	Matchups      []model.Matchup             `json:"matchups"`
	CorpRecords   []model.IdentityPerformance `json:"corpRecords"`
	RunnerRecords []model.IdentityPerformance `json:"runnerRecords"`
}

// Analyze computes every derived view for one phase of a tournament whose
// rounds have already been augmented.
func Analyze(t *model.Tournament, rounds []model.AugmentedRound, phase model.Phase) Analysis {
	var players, elim []model.Player
	if t != nil {
		players, elim = t.Players, t.EliminationPlayers
	}
	phaseRounds := FilterPhase(rounds, phase)

	// Records cover the players of the phase only.
	recordPlayers := players
	if phase == model.PhaseCut {
		recordPlayers = cutPlayers(players, elim)
	}

	return Analysis{
		Phase:         phase,
		Results:       CountResults(phaseRounds),
		CorpIDs:       RepresentationByID(players, elim, model.SideCorp, phase),
		RunnerIDs:     RepresentationByID(players, elim, model.SideRunner, phase),
		Matchups:      Matchups(phaseRounds),
		CorpRecords:   IdentityPerformance(recordPlayers, phaseRounds, model.SideCorp),
		RunnerRecords: IdentityPerformance(recordPlayers, phaseRounds, model.SideRunner),
	}
}

func cutPlayers(players, elim []model.Player) []model.Player {
	byID := make(map[int]model.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	out := make([]model.Player, 0, len(elim))
	for _, ep := range elim {
		if p, ok := byID[ep.ID]; ok {
			p.Seed = ep.Seed
			out = append(out, p)
			continue
		}
		out = append(out, ep)
	}
	return out
}
