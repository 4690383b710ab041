package aggregator

import (
	"sort"

	"github.com/pable/nrstats/internal/model"
)

// SortOrder selects how identity counts are ordered for display.
type SortOrder string

const (
	SortByCount SortOrder = "count"
	SortByName  SortOrder = "name"
)

// RepresentationByID counts how many players chose each identity on the given
// side. For the swiss phase every player is counted; for the cut only the
// elimination players are, with identities looked up from players. A player
// with no recorded identity is counted under model.UnknownIdentity.
//
// Counts are returned in first-seen order; ordering for display is left to
// SortIdentityCounts.
func RepresentationByID(players, eliminationPlayers []model.Player, side model.Side, phase model.Phase) []model.IdentityCount {
	counted := players
	if phase == model.PhaseCut {
		counted = cutPlayers(players, eliminationPlayers)
	}

	out := []model.IdentityCount{}
	index := make(map[string]int)
	for i := range counted {
		id := identityOrUnknown(counted[i].Identity(side))
		n, ok := index[id]
		if !ok {
			n = len(out)
			index[id] = n
			out = append(out, model.IdentityCount{Identity: id})
		}
		out[n].Count++
	}
	return out
}

// SortIdentityCounts returns a sorted copy. By count sorts descending with
// name as the tie-break; by name sorts ascending.
func SortIdentityCounts(counts []model.IdentityCount, by SortOrder) []model.IdentityCount {
	out := make([]model.IdentityCount, len(counts))
	copy(out, counts)
	sort.SliceStable(out, func(i, j int) bool {
		if by == SortByCount && out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Identity < out[j].Identity
	})
	return out
}

// Matchups builds the corp identity x runner identity matrix. Byes and games
// with an unknown outcome carry no head-to-head information and are skipped.
// Rows are sorted by corp identity, then runner identity.
func Matchups(rounds []model.AugmentedRound) []model.Matchup {
	type matchupKey struct{ corp, runner string }
	acc := make(map[matchupKey]*model.Matchup)
	for _, r := range rounds {
		for _, g := range r.Games {
			if g.Outcome != model.OutcomeCorpWin && g.Outcome != model.OutcomeRunnerWin && g.Outcome != model.OutcomeDraw {
				continue
			}
			k := matchupKey{g.CorpIdentity, g.RunnerIdentity}
			m, ok := acc[k]
			if !ok {
				m = &model.Matchup{CorpIdentity: k.corp, RunnerIdentity: k.runner}
				acc[k] = m
			}
			switch g.Outcome {
			case model.OutcomeCorpWin:
				m.CorpWins++
			case model.OutcomeRunnerWin:
				m.RunnerWins++
			case model.OutcomeDraw:
				m.Draws++
			}
		}
	}

	out := make([]model.Matchup, 0, len(acc))
	for _, m := range acc {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CorpIdentity != out[j].CorpIdentity {
			return out[i].CorpIdentity < out[j].CorpIdentity
		}
		return out[i].RunnerIdentity < out[j].RunnerIdentity
	})
	return out
}

// IdentityPerformance returns each identity's win/loss/draw record on one
// side, together with how many players registered it. Sorted by games played
// descending, then identity.
func IdentityPerformance(players []model.Player, rounds []model.AugmentedRound, side model.Side) []model.IdentityPerformance {
	acc := make(map[string]*model.IdentityPerformance)
	get := func(id string) *model.IdentityPerformance {
		p, ok := acc[id]
		if !ok {
			p = &model.IdentityPerformance{Identity: id, Side: side}
			acc[id] = p
		}
		return p
	}

	for i := range players {
		get(identityOrUnknown(players[i].Identity(side))).Players++
	}

	for _, r := range rounds {
		for _, g := range r.Games {
			id := g.CorpIdentity
			win, loss := model.OutcomeCorpWin, model.OutcomeRunnerWin
			if side == model.SideRunner {
				id = g.RunnerIdentity
				win, loss = loss, win
			}
			switch g.Outcome {
			case win:
				get(id).Wins++
			case loss:
				get(id).Losses++
			case model.OutcomeDraw:
				get(id).Draws++
			}
		}
	}

	out := make([]model.IdentityPerformance, 0, len(acc))
	for _, p := range acc {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Games() != out[j].Games() {
			return out[i].Games() > out[j].Games()
		}
		return out[i].Identity < out[j].Identity
	})
	return out
}
