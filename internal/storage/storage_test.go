package storage

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pable/nrstats/internal/classifier"
	"github.com/pable/nrstats/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTournamentInsertAndExists(t *testing.T) {
	db := openMemDB(t)

	summary := model.TournamentSummary{
		ID: "abc123", Name: "Spring Regional", Date: "2025-04-12",
		Source: model.SourceCobra, Players: 24, SwissRounds: 5, CutPlayers: 8,
	}
	if err := db.InsertTournament(summary); err != nil {
		t.Fatalf("InsertTournament: %v", err)
	}

	exists, err := db.TournamentExists("abc123")
	if err != nil {
		t.Fatalf("TournamentExists: %v", err)
	}
	if !exists {
		t.Error("expected tournament to exist after insert")
	}

	exists2, _ := db.TournamentExists("nonexistent")
	if exists2 {
		t.Error("expected non-existent tournament to not exist")
	}
}

func TestListTournaments(t *testing.T) {
	db := openMemDB(t)

	summaries := []model.TournamentSummary{
		{ID: "h1", Name: "Winter GNK", Date: "2025-01-01", Source: model.SourceCobra},
		{ID: "h2", Name: "Spring Regional", Date: "2025-04-01", Source: model.SourceAesops},
	}
	for _, s := range summaries {
		if err := db.InsertTournament(s); err != nil {
			t.Fatalf("InsertTournament: %v", err)
		}
	}

	list, err := db.ListTournaments()
	if err != nil {
		t.Fatalf("ListTournaments: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tournaments, got %d", len(list))
	}
	// Ordered by date DESC, so h2 comes first.
	if list[0].ID != "h2" {
		t.Errorf("expected h2 first (newest), got %s", list[0].ID)
	}
	if list[0].Source != model.SourceAesops {
		t.Errorf("source not round-tripped: %s", list[0].Source)
	}
}

func TestGetTournamentByPrefix(t *testing.T) {
	db := openMemDB(t)

	db.InsertTournament(model.TournamentSummary{ID: "deadbeef1234", Name: "Store Champs", Date: "2025-01-01"})

	s, err := db.GetTournamentByPrefix("deadb")
	if err != nil {
		t.Fatalf("GetTournamentByPrefix: %v", err)
	}
	if s == nil {
		t.Fatal("expected match for prefix 'deadb'")
	}
	if s.ID != "deadbeef1234" {
		t.Errorf("unexpected id %s", s.ID)
	}

	s2, err := db.GetTournamentByPrefix("ffffffff")
	if err != nil {
		t.Fatalf("GetTournamentByPrefix no-match: %v", err)
	}
	if s2 != nil {
		t.Error("expected nil for unknown prefix")
	}
}

func TestTournamentRoundTrip(t *testing.T) {
	db := openMemDB(t)

	db.InsertTournament(model.TournamentSummary{ID: "t1", Name: "Regional", Date: "2025-02-02", Source: model.SourceCobra})

	players := []model.Player{
		{ID: 1, Name: "Alice", Rank: 1, CorpIdentity: "HB", RunnerIdentity: "Zahya", MatchPoints: 9},
		{ID: 2, Name: "Bob", Rank: 2, CorpIdentity: "Jinteki", RunnerIdentity: "Lat", MatchPoints: 6},
	}
	elim := []model.Player{{ID: 2, Name: "Bob", Rank: 2, Seed: 1}}
	if err := db.InsertPlayers("t1", players, elim); err != nil {
		t.Fatalf("InsertPlayers: %v", err)
	}

	rounds := []model.AugmentedRound{
		{Number: 1, Games: []model.AugmentedGame{
			{Round: 1, Table: 1, CorpID: 1, CorpName: "Alice", CorpIdentity: "HB",
				RunnerID: 2, RunnerName: "Bob", RunnerIdentity: "Lat", Outcome: model.OutcomeCorpWin},
			{Round: 1, Table: 2, CorpID: 3, CorpIdentity: model.UnknownIdentity,
				RunnerIdentity: model.UnknownIdentity, Outcome: model.OutcomeBye},
		}},
		{Number: 2, Games: []model.AugmentedGame{
			{Round: 2, Table: 1, CorpID: 2, CorpName: "Bob", CorpIdentity: "Jinteki",
				RunnerID: 1, RunnerName: "Alice", RunnerIdentity: "Zahya", Outcome: model.OutcomeRunnerWin,
				EliminationGame: true},
		}},
	}
	if err := db.InsertRounds("t1", rounds); err != nil {
		t.Fatalf("InsertRounds: %v", err)
	}

	tour, gotRounds, err := db.LoadTournament("t1")
	if err != nil {
		t.Fatalf("LoadTournament: %v", err)
	}
	if tour == nil {
		t.Fatal("expected tournament")
	}
	if diff := cmp.Diff(players, tour.Players); diff != "" {
		t.Errorf("players mismatch (-want +got):\n%s", diff)
	}
	if len(tour.EliminationPlayers) != 1 || tour.EliminationPlayers[0].Seed != 1 {
		t.Errorf("elimination players: %+v", tour.EliminationPlayers)
	}
	if diff := cmp.Diff(rounds, gotRounds); diff != "" {
		t.Errorf("rounds mismatch (-want +got):\n%s", diff)
	}

	missing, _, err := db.LoadTournament("nope")
	if err != nil || missing != nil {
		t.Errorf("unknown id: want (nil, nil), got (%v, %v)", missing, err)
	}
}

func TestDeleteTournament(t *testing.T) {
	db := openMemDB(t)

	db.InsertTournament(model.TournamentSummary{ID: "t1", Name: "Regional"})
	db.InsertPlayers("t1", []model.Player{{ID: 1, Name: "Alice"}}, nil)
	db.InsertRounds("t1", []model.AugmentedRound{{Number: 1, Games: []model.AugmentedGame{{Round: 1, Outcome: model.OutcomeBye}}}})

	deleted, err := db.DeleteTournament("t1")
	if err != nil {
		t.Fatalf("DeleteTournament: %v", err)
	}
	if !deleted {
		t.Error("expected tournament to be deleted")
	}
	rounds, _ := db.GetRounds("t1")
	players, _ := db.GetPlayers("t1")
	if len(rounds) != 0 || len(players) != 0 {
		t.Errorf("child rows left behind: rounds=%d players=%d", len(rounds), len(players))
	}

	again, err := db.DeleteTournament("t1")
	if err != nil || again {
		t.Errorf("second delete: want (false, nil), got (%v, %v)", again, err)
	}
}

func TestInsertIdempotency(t *testing.T) {
	db := openMemDB(t)

	s := model.TournamentSummary{ID: "idem1", Name: "Regional", Date: "2025-01-01"}
	db.InsertTournament(s)
	db.InsertPlayers("idem1", []model.Player{{ID: 1, Name: "Alice"}}, nil)
	// Second insert should not error and should not drop players.
	if err := db.InsertTournament(s); err != nil {
		t.Errorf("second InsertTournament should succeed (idempotent): %v", err)
	}
	players, _ := db.GetPlayers("idem1")
	if len(players) != 1 {
		t.Errorf("expected players to survive re-insert, got %d", len(players))
	}
}

func TestModelRoundTrip(t *testing.T) {
	db := openMemDB(t)

	m := classifier.New(0.1)
	m.Update(classifier.FeatureVector{"30077": 3, "33004": 1}, true)
	saved := m.State()

	if err := db.SaveModel("side", 0.1, saved); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}
	// Saving again replaces the weights.
	if err := db.SaveModel("side", 0.1, saved); err != nil {
		t.Fatalf("SaveModel twice: %v", err)
	}

	got, rate, err := db.LoadModel("side")
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if got == nil {
		t.Fatal("expected saved model")
	}
	if rate != 0.1 {
		t.Errorf("learning rate: want 0.1, got %v", rate)
	}
	if diff := cmp.Diff(saved, *got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	none, _, err := db.LoadModel("missing")
	if err != nil || none != nil {
		t.Errorf("missing model: want (nil, nil), got (%v, %v)", none, err)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertTournament(model.TournamentSummary{ID: "q1", Name: "Regional", Players: 12}); err != nil {
		t.Fatalf("InsertTournament: %v", err)
	}

	cols, rows, err := db.QueryRaw("SELECT name, player_count, NULL AS empty_col FROM tournaments")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "player_count", "empty_col"}, cols); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if len(rows) != 1 || rows[0][0] != "Regional" || rows[0][1] != "12" || rows[0][2] != "NULL" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestEmptyRoundSurvivesReload(t *testing.T) {
	db := openMemDB(t)

	if err := db.InsertTournament(model.TournamentSummary{ID: "e1", Name: "Store Champs"}); err != nil {
		t.Fatalf("InsertTournament: %v", err)
	}
	rounds := []model.AugmentedRound{
		{Number: 1, Games: []model.AugmentedGame{
			{Round: 1, Table: 1, CorpID: 1, RunnerID: 2, Outcome: model.OutcomeCorpWin},
		}},
		{Number: 2, Games: []model.AugmentedGame{}},
	}
	if err := db.InsertRounds("e1", rounds); err != nil {
		t.Fatalf("InsertRounds: %v", err)
	}

	got, err := db.GetRounds("e1")
	if err != nil {
		t.Fatalf("GetRounds: %v", err)
	}
	if diff := cmp.Diff(rounds, got); diff != "" {
		t.Errorf("rounds mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceTournament(t *testing.T) {
	db := openMemDB(t)

	s := model.TournamentSummary{ID: "r1", Name: "Regional", Date: "2025-03-01"}
	first := []model.AugmentedRound{
		{Number: 1, Games: []model.AugmentedGame{{Round: 1, Table: 1, CorpID: 1, RunnerID: 2, Outcome: model.OutcomeCorpWin}}},
		{Number: 2, Games: []model.AugmentedGame{{Round: 2, Table: 1, CorpID: 2, RunnerID: 1, Outcome: model.OutcomeRunnerWin}}},
	}
	players := []model.Player{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}
	if err := db.ReplaceTournament(s, players, nil, first); err != nil {
		t.Fatalf("first ReplaceTournament: %v", err)
	}

	s.Name = "Regional (corrected)"
	second := first[:1]
	if err := db.ReplaceTournament(s, players[:1], nil, second); err != nil {
		t.Fatalf("second ReplaceTournament: %v", err)
	}

	tour, rounds, err := db.LoadTournament("r1")
	if err != nil || tour == nil {
		t.Fatalf("LoadTournament: %v, %v", tour, err)
	}
	if tour.Name != "Regional (corrected)" {
		t.Errorf("name: want corrected, got %q", tour.Name)
	}
	if len(tour.Players) != 1 {
		t.Errorf("players: want 1 after replace, got %d", len(tour.Players))
	}
	if diff := cmp.Diff(second, rounds); diff != "" {
		t.Errorf("rounds mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceTournamentRollsBack(t *testing.T) {
	db := openMemDB(t)

	s := model.TournamentSummary{ID: "rb1", Name: "Regional"}
	rounds := []model.AugmentedRound{
		{Number: 1, Games: []model.AugmentedGame{{Round: 1, Table: 1, CorpID: 1, RunnerID: 2, Outcome: model.OutcomeCorpWin}}},
	}
	if err := db.ReplaceTournament(s, []model.Player{{ID: 1, Name: "Alice"}}, nil, rounds); err != nil {
		t.Fatalf("ReplaceTournament: %v", err)
	}

	// Every games insert fails from here on.
	broken := s
	broken.ID = "rb2"
	if _, err := db.conn.Exec("CREATE TRIGGER fail_games BEFORE INSERT ON games BEGIN SELECT RAISE(ABORT, 'boom'); END"); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	if err := db.ReplaceTournament(broken, []model.Player{{ID: 1, Name: "Alice"}}, nil, rounds); err == nil {
		t.Fatal("expected ReplaceTournament to fail")
	}
	exists, err := db.TournamentExists("rb2")
	if err != nil {
		t.Fatalf("TournamentExists: %v", err)
	}
	if exists {
		t.Error("failed replace left a partial tournament behind")
	}
	players, _ := db.GetPlayers("rb2")
	if len(players) != 0 {
		t.Errorf("failed replace left %d players behind", len(players))
	}

	if err := db.ReplaceTournament(s, nil, nil, rounds); err == nil {
		t.Fatal("expected replace of an existing tournament to fail")
	}
	tour, kept, err := db.LoadTournament("rb1")
	if err != nil || tour == nil {
		t.Fatalf("LoadTournament: %v, %v", tour, err)
	}
	if len(tour.Players) != 1 || len(kept) != 1 {
		t.Errorf("failed replace dropped the previous import: players=%d rounds=%d", len(tour.Players), len(kept))
	}
}

func TestSaveModelRejectsNaN(t *testing.T) {
	db := openMemDB(t)

	m := classifier.New(0.1)
	m.Update(classifier.FeatureVector{"A": math.NaN()}, true)

	err := db.SaveModel("nan", 0.1, m.State())
	if !errors.Is(err, ErrNaNParameter) {
		t.Fatalf("want ErrNaNParameter, got %v", err)
	}
	got, _, err := db.LoadModel("nan")
	if err != nil || got != nil {
		t.Errorf("rejected model was stored: (%v, %v)", got, err)
	}
}
