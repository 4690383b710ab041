package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pable/nrstats/internal/model"
)

// PrintIdentityTrendTable prints an identity's share and record at each
// tournament, oldest first.
func PrintIdentityTrendTable(w io.Writer, identity string, points []model.IdentityTrendPoint) {
	fmt.Fprintf(w, "%s over %d tournaments\n", identity, len(points))
	table := newTable(w)
	table.Header("DATE", "TOURNAMENT", "PLAYERS", "FIELD", "SHARE", "W", "L", "D", "WIN%")
	for _, p := range points {
		games := p.Wins + p.Losses + p.Draws
		winRate := "—"
		if games > 0 {
			winRate = fmt.Sprintf("%.1f%%", p.WinRate())
		}
		table.Append(
			orDash(p.Date),
			p.Tournament,
			strconv.Itoa(p.Players),
			strconv.Itoa(p.Field),
			pct(p.Players, p.Field),
			strconv.Itoa(p.Wins),
			strconv.Itoa(p.Losses),
			strconv.Itoa(p.Draws),
			winRate,
		)
	}
	table.Render()
	fmt.Fprintln(w)
}

// PrintPlayerHistoryTable prints one row per tournament a player entered,
// followed by their combined record.
func PrintPlayerHistoryTable(w io.Writer, results []model.PlayerResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "%s: %d tournaments\n", results[0].Player.Name, len(results))
	table := newTable(w)
	table.Header("DATE", "TOURNAMENT", "RANK", "CORP ID", "RUNNER ID", "W", "L", "D")
	var wins, losses, draws int
	for _, r := range results {
		rank := "—"
		if r.Player.Rank > 0 {
			rank = fmt.Sprintf("%d/%d", r.Player.Rank, r.Field)
		}
		table.Append(
			orDash(r.Date),
			r.Tournament,
			rank,
			orDash(r.Player.CorpIdentity),
			orDash(r.Player.RunnerIdentity),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.Draws),
		)
		wins += r.Wins
		losses += r.Losses
		draws += r.Draws
	}
	table.Render()
	fmt.Fprintf(w, "Overall: %d-%d-%d  (win rate %s)\n\n", wins, losses, draws, pct(wins, wins+losses+draws))
}
