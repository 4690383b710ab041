package storage

import (
	"database/sql"
	"fmt"

	"github.com/pable/nrstats/internal/model"
)

// TournamentExists returns true if a tournament with the given id is already stored.
func (db *DB) TournamentExists(id string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM tournaments WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Prepare(query string) (*sql.Stmt, error)
}

// InsertTournament upserts a tournament record. Child rows are kept.
func (db *DB) InsertTournament(s model.TournamentSummary) error {
	return insertTournament(db.conn, s)
}

// InsertPlayers bulk-inserts the swiss and elimination players of a tournament in a transaction.
func (db *DB) InsertPlayers(tournamentID string, players, elimination []model.Player) error {
	return db.inTx(func(tx *sql.Tx) error {
		return insertPlayers(tx, tournamentID, players, elimination)
	})
}

// InsertRounds bulk-inserts augmented rounds and their games in a transaction.
func (db *DB) InsertRounds(tournamentID string, rounds []model.AugmentedRound) error {
	return db.inTx(func(tx *sql.Tx) error {
		return insertRounds(tx, tournamentID, rounds)
	})
}

// ReplaceTournament stores a tournament with its players and rounds,
// dropping whatever was stored under the same id. Either all of it is
// written or none of it is.
func (db *DB) ReplaceTournament(s model.TournamentSummary, players, elimination []model.Player, rounds []model.AugmentedRound) error {
	return db.inTx(func(tx *sql.Tx) error {
		if _, err := deleteTournament(tx, s.ID); err != nil {
			return err
		}
		if err := insertTournament(tx, s); err != nil {
			return fmt.Errorf("insert tournament: %w", err)
		}
		if err := insertPlayers(tx, s.ID, players, elimination); err != nil {
			return fmt.Errorf("insert players: %w", err)
		}
		if err := insertRounds(tx, s.ID, rounds); err != nil {
			return fmt.Errorf("insert rounds: %w", err)
		}
		return nil
	})
}

func (db *DB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTournament(e execer, s model.TournamentSummary) error {
	_, err := e.Exec(`
		INSERT INTO tournaments(id, name, date, source, player_count, swiss_rounds, cut_players)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, date = excluded.date, source = excluded.source,
			player_count = excluded.player_count, swiss_rounds = excluded.swiss_rounds,
			cut_players = excluded.cut_players`,
		s.ID, s.Name, s.Date, string(s.Source), s.Players, s.SwissRounds, s.CutPlayers,
	)
	return err
}

func insertPlayers(e execer, tournamentID string, players, elimination []model.Player) error {
	stmt, err := e.Prepare(`
		INSERT OR REPLACE INTO players(
			tournament_id, player_id, name, rank, corp_identity, runner_identity, match_points
		) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range players {
		if _, err := stmt.Exec(tournamentID, p.ID, p.Name, p.Rank, p.CorpIdentity, p.RunnerIdentity, p.MatchPoints); err != nil {
			return fmt.Errorf("insert player %d: %w", p.ID, err)
		}
	}

	elimStmt, err := e.Prepare(`
		INSERT OR REPLACE INTO elimination_players(tournament_id, player_id, name, rank, seed)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer elimStmt.Close()
	for _, p := range elimination {
		if _, err := elimStmt.Exec(tournamentID, p.ID, p.Name, p.Rank, p.Seed); err != nil {
			return fmt.Errorf("insert elimination player %d: %w", p.ID, err)
		}
	}
	return nil
}

// insertRounds writes one rounds row per round, so rounds without games
// survive a reload, and one games row per game.
func insertRounds(e execer, tournamentID string, rounds []model.AugmentedRound) error {
	roundStmt, err := e.Prepare(`INSERT OR REPLACE INTO rounds(tournament_id, round_number) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer roundStmt.Close()

	stmt, err := e.Prepare(`
		INSERT OR REPLACE INTO games(
			tournament_id, round_number, game_index, table_number,
			corp_id, corp_name, corp_identity,
			runner_id, runner_name, runner_identity,
			outcome, elimination
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rounds {
		if _, err := roundStmt.Exec(tournamentID, r.Number); err != nil {
			return fmt.Errorf("insert round %d: %w", r.Number, err)
		}
		for i, g := range r.Games {
			_, err = stmt.Exec(
				tournamentID, r.Number, i, g.Table,
				g.CorpID, g.CorpName, g.CorpIdentity,
				g.RunnerID, g.RunnerName, g.RunnerIdentity,
				string(g.Outcome), boolInt(g.EliminationGame),
			)
			if err != nil {
				return fmt.Errorf("insert game round %d table %d: %w", r.Number, g.Table, err)
			}
		}
	}
	return nil
}

const summaryColumns = `id, name, date, source, player_count, swiss_rounds, cut_players`

func scanSummary(row interface{ Scan(...any) error }) (model.TournamentSummary, error) {
	var s model.TournamentSummary
	var source string
	err := row.Scan(&s.ID, &s.Name, &s.Date, &source, &s.Players, &s.SwissRounds, &s.CutPlayers)
	s.Source = model.Source(source)
	return s, err
}

// ListTournaments returns all stored tournaments ordered by date desc.
func (db *DB) ListTournaments() ([]model.TournamentSummary, error) {
	rows, err := db.conn.Query(`SELECT ` + summaryColumns + ` FROM tournaments ORDER BY date DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TournamentSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetTournamentByPrefix finds the first tournament whose id starts with the given prefix.
func (db *DB) GetTournamentByPrefix(prefix string) (*model.TournamentSummary, error) {
	s, err := scanSummary(db.conn.QueryRow(
		`SELECT `+summaryColumns+` FROM tournaments WHERE id LIKE ? ORDER BY id LIMIT 1`, prefix+"%"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetPlayers returns the swiss players of a tournament ordered by rank.
func (db *DB) GetPlayers(tournamentID string) ([]model.Player, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, name, rank, corp_identity, runner_identity, match_points
		FROM players WHERE tournament_id = ? ORDER BY rank, player_id`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Rank, &p.CorpIdentity, &p.RunnerIdentity, &p.MatchPoints); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetEliminationPlayers returns the cut players of a tournament ordered by seed.
func (db *DB) GetEliminationPlayers(tournamentID string) ([]model.Player, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, name, rank, seed
		FROM elimination_players WHERE tournament_id = ? ORDER BY seed, player_id`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Rank, &p.Seed); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetRounds returns the augmented games of a tournament grouped into rounds,
// in their original order. Rounds stored without games come back empty.
func (db *DB) GetRounds(tournamentID string) ([]model.AugmentedRound, error) {
	numbers, err := db.conn.Query(
		"SELECT round_number FROM rounds WHERE tournament_id = ? ORDER BY round_number", tournamentID)
	if err != nil {
		return nil, err
	}
	defer numbers.Close()

	out := []model.AugmentedRound{}
	index := make(map[int]int)
	for numbers.Next() {
		var n int
		if err := numbers.Scan(&n); err != nil {
			return nil, err
		}
		index[n] = len(out)
		out = append(out, model.AugmentedRound{Number: n, Games: []model.AugmentedGame{}})
	}
	if err := numbers.Err(); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(`
		SELECT round_number, table_number,
		       corp_id, corp_name, corp_identity,
		       runner_id, runner_name, runner_identity,
		       outcome, elimination
		FROM games WHERE tournament_id = ?
		ORDER BY round_number, game_index`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var g model.AugmentedGame
		var outcome string
		var elim int
		if err := rows.Scan(&g.Round, &g.Table,
			&g.CorpID, &g.CorpName, &g.CorpIdentity,
			&g.RunnerID, &g.RunnerName, &g.RunnerIdentity,
			&outcome, &elim); err != nil {
			return nil, err
		}
		g.Outcome = model.Outcome(outcome)
		g.EliminationGame = elim != 0
		i, ok := index[g.Round]
		if !ok {
			i = len(out)
			index[g.Round] = i
			out = append(out, model.AugmentedRound{Number: g.Round})
		}
		out[i].Games = append(out[i].Games, g)
	}
	return out, rows.Err()
}

// LoadTournament rebuilds a stored tournament's players together with its
// augmented rounds. Returns nil if the id is unknown.
func (db *DB) LoadTournament(id string) (*model.Tournament, []model.AugmentedRound, error) {
	s, err := scanSummary(db.conn.QueryRow(`SELECT `+summaryColumns+` FROM tournaments WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	players, err := db.GetPlayers(id)
	if err != nil {
		return nil, nil, fmt.Errorf("get players: %w", err)
	}
	elim, err := db.GetEliminationPlayers(id)
	if err != nil {
		return nil, nil, fmt.Errorf("get elimination players: %w", err)
	}
	rounds, err := db.GetRounds(id)
	if err != nil {
		return nil, nil, fmt.Errorf("get rounds: %w", err)
	}
	t := &model.Tournament{
		ID:                 s.ID,
		Name:               s.Name,
		Date:               s.Date,
		Source:             s.Source,
		Players:            players,
		EliminationPlayers: elim,
	}
	return t, rounds, nil
}

// DeleteTournament removes a tournament and all of its rows. Returns false if
// nothing was stored under id.
func (db *DB) DeleteTournament(id string) (bool, error) {
	var deleted bool
	err := db.inTx(func(tx *sql.Tx) error {
		var err error
		deleted, err = deleteTournament(tx, id)
		return err
	})
	return deleted, err
}

func deleteTournament(e execer, id string) (bool, error) {
	for _, table := range []string{"games", "rounds", "elimination_players", "players"} {
		if _, err := e.Exec("DELETE FROM "+table+" WHERE tournament_id = ?", id); err != nil {
			return false, fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := e.Exec("DELETE FROM tournaments WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete tournament: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// QueryRaw runs an arbitrary query and returns column names and rows as strings.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
