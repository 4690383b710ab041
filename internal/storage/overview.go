package storage

import (
	"fmt"
	"sort"

	"github.com/pable/nrstats/internal/model"
)

// GetDBOverview returns aggregate counts over every stored tournament.
func (db *DB) GetDBOverview() (model.DBOverview, error) {
	var ov model.DBOverview
	err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(MIN(NULLIF(date, '')), ''), COALESCE(MAX(date), '')
		FROM tournaments`).Scan(&ov.Tournaments, &ov.Earliest, &ov.Latest)
	if err != nil {
		return ov, fmt.Errorf("tournaments: %w", err)
	}
	err = db.conn.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT name) FROM players`).
		Scan(&ov.PlayerEntries, &ov.UniquePlayers)
	if err != nil {
		return ov, fmt.Errorf("players: %w", err)
	}

	var total int
	err = db.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(outcome = 'corpWin'), 0),
		       COALESCE(SUM(outcome = 'runnerWin'), 0),
		       COALESCE(SUM(outcome = 'draw'), 0),
		       COALESCE(SUM(outcome = 'bye'), 0)
		FROM games`).Scan(&total,
		&ov.Results.CorpWins, &ov.Results.RunnerWins, &ov.Results.Draws, &ov.Results.Byes)
	if err != nil {
		return ov, fmt.Errorf("games: %w", err)
	}
	ov.Results.Unknown = total - ov.Results.CorpWins - ov.Results.RunnerWins - ov.Results.Draws - ov.Results.Byes
	return ov, nil
}

// GetIdentityStats returns every identity's record on one side across all
// stored games, most played first. Byes and unknown results are not counted.
func (db *DB) GetIdentityStats(side model.Side) ([]model.IdentityPerformance, error) {
	// The same column name is used in games and players.
	idCol, winOutcome, lossOutcome := "corp_identity", model.OutcomeCorpWin, model.OutcomeRunnerWin
	if side == model.SideRunner {
		idCol, winOutcome, lossOutcome = "runner_identity", model.OutcomeRunnerWin, model.OutcomeCorpWin
	}

	byID := make(map[string]*model.IdentityPerformance)
	get := func(id string) *model.IdentityPerformance {
		if id == "" {
			id = model.UnknownIdentity
		}
		p, ok := byID[id]
		if !ok {
			p = &model.IdentityPerformance{Identity: id, Side: side}
			byID[id] = p
		}
		return p
	}

	rows, err := db.conn.Query(`
		SELECT `+idCol+`,
		       SUM(outcome = ?), SUM(outcome = ?), SUM(outcome = 'draw')
		FROM games
		WHERE outcome IN ('corpWin', 'runnerWin', 'draw')
		GROUP BY `+idCol, string(winOutcome), string(lossOutcome))
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id string
		var w, l, d int
		if err := rows.Scan(&id, &w, &l, &d); err != nil {
			rows.Close()
			return nil, err
		}
		p := get(id)
		p.Wins += w
		p.Losses += l
		p.Draws += d
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := db.conn.Query(`SELECT ` + idCol + `, COUNT(*) FROM players GROUP BY ` + idCol)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var id string
		var n int
		if err := prows.Scan(&id, &n); err != nil {
			return nil, err
		}
		get(id).Players += n
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.IdentityPerformance, 0, len(byID))
	for _, p := range byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Players != out[j].Players {
			return out[i].Players > out[j].Players
		}
		return out[i].Identity < out[j].Identity
	})
	return out, nil
}

// GetIdentityTrend returns, in date order, every tournament where identity
// was played, with its share of the field and its game record there.
// Identity names match case-insensitively.
func (db *DB) GetIdentityTrend(identity string) ([]model.IdentityTrendPoint, error) {
	rows, err := db.conn.Query(`
		SELECT t.id, t.name, t.date, t.player_count,
		       (SELECT COUNT(*) FROM players p WHERE p.tournament_id = t.id
		          AND (p.corp_identity = ?1 COLLATE NOCASE OR p.runner_identity = ?1 COLLATE NOCASE)),
		       (SELECT COUNT(*) FROM games g WHERE g.tournament_id = t.id
		          AND ((g.corp_identity = ?1 COLLATE NOCASE AND g.outcome = 'corpWin')
		            OR (g.runner_identity = ?1 COLLATE NOCASE AND g.outcome = 'runnerWin'))),
		       (SELECT COUNT(*) FROM games g WHERE g.tournament_id = t.id
		          AND ((g.corp_identity = ?1 COLLATE NOCASE AND g.outcome = 'runnerWin')
		            OR (g.runner_identity = ?1 COLLATE NOCASE AND g.outcome = 'corpWin'))),
		       (SELECT COUNT(*) FROM games g WHERE g.tournament_id = t.id AND g.outcome = 'draw'
		          AND (g.corp_identity = ?1 COLLATE NOCASE OR g.runner_identity = ?1 COLLATE NOCASE))
		FROM tournaments t
		ORDER BY t.date, t.name`, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.IdentityTrendPoint
	for rows.Next() {
		var p model.IdentityTrendPoint
		if err := rows.Scan(&p.TournamentID, &p.Tournament, &p.Date, &p.Field,
			&p.Players, &p.Wins, &p.Losses, &p.Draws); err != nil {
			return nil, err
		}
		if p.Players == 0 {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPlayerHistory returns every tournament entry of the named player, in
// date order. Names match case-insensitively.
func (db *DB) GetPlayerHistory(name string) ([]model.PlayerResult, error) {
	rows, err := db.conn.Query(`
		SELECT t.id, t.name, t.date, t.player_count,
		       p.player_id, p.name, p.rank, p.corp_identity, p.runner_identity, p.match_points,
		       (SELECT COUNT(*) FROM games g WHERE g.tournament_id = t.id
		          AND ((g.corp_id = p.player_id AND g.outcome = 'corpWin')
		            OR (g.runner_id = p.player_id AND g.outcome = 'runnerWin'))),
		       (SELECT COUNT(*) FROM games g WHERE g.tournament_id = t.id
		          AND ((g.corp_id = p.player_id AND g.outcome = 'runnerWin')
		            OR (g.runner_id = p.player_id AND g.outcome = 'corpWin'))),
		       (SELECT COUNT(*) FROM games g WHERE g.tournament_id = t.id AND g.outcome = 'draw'
		          AND (g.corp_id = p.player_id OR g.runner_id = p.player_id))
		FROM players p
		JOIN tournaments t ON t.id = p.tournament_id
		WHERE p.name = ? COLLATE NOCASE
		ORDER BY t.date, t.name`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerResult
	for rows.Next() {
		var r model.PlayerResult
		pl := &r.Player
		if err := rows.Scan(&r.TournamentID, &r.Tournament, &r.Date, &r.Field,
			&pl.ID, &pl.Name, &pl.Rank, &pl.CorpIdentity, &pl.RunnerIdentity, &pl.MatchPoints,
			&r.Wins, &r.Losses, &r.Draws); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
