package aggregator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pable/nrstats/internal/model"
)

// IDs for test players.
const (
	playerA = 1
	playerB = 2
	playerC = 3
	playerD = 4
)

func makePlayers() []model.Player {
	return []model.Player{
		{ID: playerA, Name: "Alice", Rank: 1, CorpIdentity: "Haas-Bioroid: Precision Design", RunnerIdentity: "Zahya Sadeghi"},
		{ID: playerB, Name: "Bob", Rank: 2, CorpIdentity: "Jinteki: Restoring Humanity", RunnerIdentity: "Zahya Sadeghi"},
		{ID: playerC, Name: "Carol", Rank: 3, CorpIdentity: "Haas-Bioroid: Precision Design", RunnerIdentity: "Lat: Ethical Freelancer"},
		{ID: playerD, Name: "Dave", Rank: 4, CorpIdentity: "", RunnerIdentity: ""},
	}
}

// cobraGame builds a single-sided Cobra pairing where corpID played corp.
func cobraGame(table, corpID, runnerID, corpScore, runnerScore int) model.Game {
	g := model.Game{
		Table:   table,
		Player1: &model.Seat{ID: corpID, Role: "corp", CorpScore: corpScore},
	}
	if runnerID != 0 {
		g.Player2 = &model.Seat{ID: runnerID, Role: "runner", RunnerScore: runnerScore}
	}
	return g
}

func makeCobraTournament(rounds ...[]model.Game) *model.Tournament {
	return &model.Tournament{
		Name:    "Test Regional",
		Date:    "2025-03-01",
		Source:  model.SourceCobra,
		Players: makePlayers(),
		Rounds:  rounds,
	}
}

func TestPlayerMap(t *testing.T) {
	tour := makeCobraTournament()
	m := PlayerMap(tour)
	if len(m) != 4 {
		t.Fatalf("expected 4 players, got %d", len(m))
	}
	if m[playerC].Name != "Carol" {
		t.Errorf("player %d: want Carol, got %q", playerC, m[playerC].Name)
	}
}

func TestPlayerMap_MissingPlayers(t *testing.T) {
	if m := PlayerMap(nil); len(m) != 0 {
		t.Errorf("nil tournament: want empty map, got %d entries", len(m))
	}
	if m := PlayerMap(&model.Tournament{}); len(m) != 0 {
		t.Errorf("no players: want empty map, got %d entries", len(m))
	}
}

func TestAugmentRounds_Cobra(t *testing.T) {
	tour := makeCobraTournament(
		[]model.Game{
			cobraGame(1, playerA, playerB, 3, 0),
			cobraGame(2, playerC, playerD, 0, 3),
		},
		[]model.Game{
			cobraGame(1, playerB, playerA, 1, 1),
			cobraGame(2, playerD, 0, 0, 0),
		},
	)

	rounds := AugmentRounds(tour, model.SourceCobra, PlayerMap(tour))

	want := []model.AugmentedRound{
		{Number: 1, Games: []model.AugmentedGame{
			{Round: 1, Table: 1, CorpID: playerA, CorpName: "Alice", CorpIdentity: "Haas-Bioroid: Precision Design",
				RunnerID: playerB, RunnerName: "Bob", RunnerIdentity: "Zahya Sadeghi", Outcome: model.OutcomeCorpWin},
			{Round: 1, Table: 2, CorpID: playerC, CorpName: "Carol", CorpIdentity: "Haas-Bioroid: Precision Design",
				RunnerID: playerD, RunnerName: "Dave", RunnerIdentity: model.UnknownIdentity, Outcome: model.OutcomeRunnerWin},
		}},
		{Number: 2, Games: []model.AugmentedGame{
			{Round: 2, Table: 1, CorpID: playerB, CorpName: "Bob", CorpIdentity: "Jinteki: Restoring Humanity",
				RunnerID: playerA, RunnerName: "Alice", RunnerIdentity: "Zahya Sadeghi", Outcome: model.OutcomeDraw},
			{Round: 2, Table: 2, CorpID: playerD, CorpName: "Dave", CorpIdentity: model.UnknownIdentity,
				RunnerIdentity: model.UnknownIdentity, Outcome: model.OutcomeBye},
		}},
	}
	if diff := cmp.Diff(want, rounds); diff != "" {
		t.Errorf("AugmentRounds mismatch (-want +got):\n%s", diff)
	}
}

// TestAugmentRounds_CobraSwappedSeats: player1 recorded as the runner.
func TestAugmentRounds_CobraSwappedSeats(t *testing.T) {
	g := model.Game{
		Table:   5,
		Player1: &model.Seat{ID: playerA, Role: "runner", RunnerScore: 3},
		Player2: &model.Seat{ID: playerB, Role: "corp", CorpScore: 0},
	}
	tour := makeCobraTournament([]model.Game{g})

	rounds := AugmentRounds(tour, model.SourceCobra, PlayerMap(tour))
	got := rounds[0].Games[0]
	if got.CorpID != playerB || got.RunnerID != playerA {
		t.Errorf("seats not swapped: corp=%d runner=%d", got.CorpID, got.RunnerID)
	}
	if got.Outcome != model.OutcomeRunnerWin {
		t.Errorf("outcome: want runnerWin, got %s", got.Outcome)
	}
}

func TestAugmentRounds_CobraDoubleSided(t *testing.T) {
	// Alice won both halves of a double-sided pairing.
	g := model.Game{
		Table:   2,
		Player1: &model.Seat{ID: playerA, CorpScore: 3, RunnerScore: 3},
		Player2: &model.Seat{ID: playerB, CorpScore: 0, RunnerScore: 0},
	}
	tour := makeCobraTournament([]model.Game{g})

	rounds := AugmentRounds(tour, model.SourceCobra, PlayerMap(tour))
	if len(rounds[0].Games) != 1 {
		t.Fatalf("want one game per pairing, got %d", len(rounds[0].Games))
	}
	got := rounds[0].Games[0]
	if got.CorpID != playerA || got.RunnerID != playerB {
		t.Errorf("player1 should be corp: corp=%d runner=%d", got.CorpID, got.RunnerID)
	}
	if got.Outcome != model.OutcomeCorpWin {
		t.Errorf("outcome: want corpWin, got %s", got.Outcome)
	}
}

func TestAugmentRounds_Aesops(t *testing.T) {
	tour := &model.Tournament{
		Players: makePlayers(),
		Rounds: [][]model.Game{{
			{TableNumber: 1, CorpPlayer: playerC, RunnerPlayer: playerA, CorpScore: 3, RunnerScore: 0},
			{TableNumber: 2, CorpPlayer: playerB, RunnerPlayer: playerD, CorpScore: 0, RunnerScore: 3, EliminationGame: true},
			{TableNumber: 3, CorpPlayer: playerA, RunnerPlayer: 0},
			{TableNumber: 4, CorpPlayer: playerA, RunnerPlayer: playerB, CorpScore: 3, RunnerScore: 3},
		}},
	}

	rounds := AugmentRounds(tour, model.SourceAesops, PlayerMap(tour))
	if len(rounds) != 1 || len(rounds[0].Games) != 4 {
		t.Fatalf("cardinality changed: %+v", rounds)
	}
	wantOutcomes := []model.Outcome{model.OutcomeCorpWin, model.OutcomeRunnerWin, model.OutcomeBye, model.OutcomeUnknown}
	for i, g := range rounds[0].Games {
		if g.Outcome != wantOutcomes[i] {
			t.Errorf("game %d: want %s, got %s", i, wantOutcomes[i], g.Outcome)
		}
		if g.Table != i+1 {
			t.Errorf("game %d: order not preserved, table=%d", i, g.Table)
		}
	}
	if !rounds[0].Games[1].EliminationGame {
		t.Error("expected elimination flag to carry over")
	}
	if rounds[0].Games[0].CorpName != "Carol" || rounds[0].Games[0].RunnerIdentity != "Zahya Sadeghi" {
		t.Errorf("players not resolved: %+v", rounds[0].Games[0])
	}
}

// TestAugmentRounds_UnknownPlayer: ids missing from the lookup fall back to the sentinel.
func TestAugmentRounds_UnknownPlayer(t *testing.T) {
	tour := makeCobraTournament([]model.Game{cobraGame(1, 99, playerA, 3, 0)})
	rounds := AugmentRounds(tour, model.SourceCobra, PlayerMap(tour))
	g := rounds[0].Games[0]
	if g.CorpIdentity != model.UnknownIdentity || g.CorpName != "" {
		t.Errorf("unknown corp player: got identity=%q name=%q", g.CorpIdentity, g.CorpName)
	}
}

func TestAugmentRounds_ZeroRounds(t *testing.T) {
	tour := makeCobraTournament()
	rounds := AugmentRounds(tour, model.SourceCobra, PlayerMap(tour))
	if len(rounds) != 0 {
		t.Errorf("expected empty sequence, got %d rounds", len(rounds))
	}
	counts := CountResults(rounds)
	if counts != (model.ResultCounts{}) {
		t.Errorf("expected all-zero counts, got %+v", counts)
	}

	if rounds := AugmentRounds(nil, model.SourceAesops, nil); len(rounds) != 0 {
		t.Errorf("nil tournament: expected empty sequence, got %d rounds", len(rounds))
	}
}

// TestCountResults_Partition: the five tags partition the game set.
func TestCountResults_Partition(t *testing.T) {
	rounds := []model.AugmentedRound{
		{Number: 1, Games: []model.AugmentedGame{
			{Outcome: model.OutcomeCorpWin},
			{Outcome: model.OutcomeCorpWin},
			{Outcome: model.OutcomeRunnerWin},
			{Outcome: model.OutcomeDraw},
		}},
		{Number: 2, Games: []model.AugmentedGame{
			{Outcome: model.OutcomeBye},
			{Outcome: model.OutcomeUnknown},
			{Outcome: model.Outcome("garbage")},
		}},
	}

	got := CountResults(rounds)
	want := model.ResultCounts{CorpWins: 2, RunnerWins: 1, Draws: 1, Byes: 1, Unknown: 2}
	if got != want {
		t.Errorf("CountResults: want %+v, got %+v", want, got)
	}
	if got.Total() != 7 {
		t.Errorf("Total: want 7 (number of games), got %d", got.Total())
	}
}

func TestFilterPhase(t *testing.T) {
	rounds := []model.AugmentedRound{
		{Number: 1, Games: []model.AugmentedGame{{Table: 1}, {Table: 2}}},
		{Number: 2, Games: []model.AugmentedGame{{Table: 1, EliminationGame: true}}},
	}

	swiss := FilterPhase(rounds, model.PhaseSwiss)
	if len(swiss) != 1 || len(swiss[0].Games) != 2 {
		t.Errorf("swiss: expected 1 round with 2 games, got %+v", swiss)
	}
	cut := FilterPhase(rounds, model.PhaseCut)
	if len(cut) != 1 || cut[0].Number != 2 {
		t.Errorf("cut: expected round 2 only, got %+v", cut)
	}
}

func TestCorpWinPct(t *testing.T) {
	c := model.ResultCounts{CorpWins: 3, RunnerWins: 1, Draws: 5}
	if got := c.CorpWinPct(); got != 75 {
		t.Errorf("CorpWinPct: want 75, got %f", got)
	}
	var empty model.ResultCounts
	if got := empty.CorpWinPct(); got != 0 {
		t.Errorf("CorpWinPct with no games: want 0, got %f", got)
	}
}
