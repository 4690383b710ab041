// Package aggregator turns raw tournament exports into derived statistics.
// Every function is a pure transform: missing input yields empty or zero
// results, never an error.
package aggregator

import (
	"strings"

	"github.com/pable/nrstats/internal/model"
)

// PlayerMap indexes the tournament's players by id. A nil tournament or an
// absent player list yields an empty map.
func PlayerMap(t *model.Tournament) map[int]model.Player {
	players := make(map[int]model.Player)
	if t == nil {
		return players
	}
	for _, p := range t.Players {
		players[p.ID] = p
	}
	return players
}

// AugmentRounds resolves players, identities and outcomes for every game.
// The result has the same rounds and games, in the same order, as the input.
// source selects which raw game layout to read.
func AugmentRounds(t *model.Tournament, source model.Source, players map[int]model.Player) []model.AugmentedRound {
	if t == nil {
		return []model.AugmentedRound{}
	}
	out := make([]model.AugmentedRound, 0, len(t.Rounds))
	for i, round := range t.Rounds {
		ar := model.AugmentedRound{
			Number: i + 1,
			Games:  make([]model.AugmentedGame, 0, len(round)),
		}
		for _, g := range round {
			var ag model.AugmentedGame
			if source == model.SourceAesops {
				ag = augmentAesops(g)
			} else {
				ag = augmentCobra(g)
			}
			ag.Round = ar.Number
			ag.EliminationGame = g.EliminationGame
			resolvePlayers(&ag, players)
			ar.Games = append(ar.Games, ag)
		}
		out = append(out, ar)
	}
	return out
}

// augmentCobra reads a Cobra pairing. The seat whose role is "corp" is the
// corp player; with no roles recorded, player1 is taken as corp.
//
// Only single-sided pairings are supported. An older double-sided pairing
// (no roles, both scores on each seat) is read as the one game in which
// player1 was corp; the game with sides reversed is not counted.
func augmentCobra(g model.Game) model.AugmentedGame {
	ag := model.AugmentedGame{Table: g.Table}
	corp, runner := g.Player1, g.Player2
	if (corp != nil && strings.EqualFold(corp.Role, "runner")) ||
		(runner != nil && strings.EqualFold(runner.Role, "corp")) {
		corp, runner = runner, corp
	}
	var corpScore, runnerScore int
	if corp != nil {
		ag.CorpID = corp.ID
		corpScore = corp.CorpScore
	}
	if runner != nil {
		ag.RunnerID = runner.ID
		runnerScore = runner.RunnerScore
	}
	ag.Outcome = outcome(ag.CorpID, ag.RunnerID, corpScore, runnerScore, g.IntentionalDraw)
	return ag
}

// augmentAesops reads an Aesops Tables pairing with explicit corp/runner ids.
func augmentAesops(g model.Game) model.AugmentedGame {
	ag := model.AugmentedGame{
		Table:    g.TableNumber,
		CorpID:   g.CorpPlayer,
		RunnerID: g.RunnerPlayer,
	}
	ag.Outcome = outcome(g.CorpPlayer, g.RunnerPlayer, g.CorpScore, g.RunnerScore, g.IntentionalDraw)
	return ag
}

// outcome maps a pairing's scores to a result tag. A win is worth 3 points
// and a draw 1 point to each side.
func outcome(corpID, runnerID, corpScore, runnerScore int, intentionalDraw bool) model.Outcome {
	switch {
	case corpID == 0 || runnerID == 0:
		return model.OutcomeBye
	case intentionalDraw:
		return model.OutcomeDraw
	case corpScore == 3 && runnerScore == 0:
		return model.OutcomeCorpWin
	case runnerScore == 3 && corpScore == 0:
		return model.OutcomeRunnerWin
	case corpScore == 1 && runnerScore == 1:
		return model.OutcomeDraw
	default:
		return model.OutcomeUnknown
	}
}

func resolvePlayers(ag *model.AugmentedGame, players map[int]model.Player) {
	ag.CorpIdentity = model.UnknownIdentity
	ag.RunnerIdentity = model.UnknownIdentity
	if p, ok := players[ag.CorpID]; ok && ag.CorpID != 0 {
		ag.CorpName = p.Name
		ag.CorpIdentity = identityOrUnknown(p.CorpIdentity)
	}
	if p, ok := players[ag.RunnerID]; ok && ag.RunnerID != 0 {
		ag.RunnerName = p.Name
		ag.RunnerIdentity = identityOrUnknown(p.RunnerIdentity)
	}
}

func identityOrUnknown(id string) string {
	if strings.TrimSpace(id) == "" {
		return model.UnknownIdentity
	}
	return id
}

// FilterPhase keeps only swiss games or only elimination games. Rounds left
// with no games are dropped.
func FilterPhase(rounds []model.AugmentedRound, phase model.Phase) []model.AugmentedRound {
	out := make([]model.AugmentedRound, 0, len(rounds))
	for _, r := range rounds {
		var games []model.AugmentedGame
		for _, g := range r.Games {
			if g.EliminationGame == (phase == model.PhaseCut) {
				games = append(games, g)
			}
		}
		if len(games) > 0 {
			out = append(out, model.AugmentedRound{Number: r.Number, Games: games})
		}
	}
	return out
}

// CountResults tallies every game by outcome. Tags outside the known set are
// counted as unknown, so the counts always sum to the number of games.
func CountResults(rounds []model.AugmentedRound) model.ResultCounts {
	var c model.ResultCounts
	for _, r := range rounds {
		for _, g := range r.Games {
			switch g.Outcome {
			case model.OutcomeCorpWin:
				c.CorpWins++
			case model.OutcomeRunnerWin:
				c.RunnerWins++
			case model.OutcomeDraw:
				c.Draws++
			case model.OutcomeBye:
				c.Byes++
			default:
				c.Unknown++
			}
		}
	}
	return c
}
