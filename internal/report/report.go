// Package report renders derived tournament statistics as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/nrstats/internal/classifier"
	"github.com/pable/nrstats/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func pct(n, total int) string {
	if total == 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// PrintTournamentSummary prints a one-line summary header for the tournament.
func PrintTournamentSummary(w io.Writer, s model.TournamentSummary) {
	fmt.Fprintf(w, "\n%s  |  Date: %s  |  Source: %s  |  Players: %d  |  Swiss rounds: %d  |  Cut: %d  |  ID: %s\n\n",
		s.Name, s.Date, s.Source, s.Players, s.SwissRounds, s.CutPlayers, shortID(s.ID))
}

// PrintResultsTable prints the side win/loss/draw breakdown.
func PrintResultsTable(w io.Writer, phase model.Phase, c model.ResultCounts) {
	fmt.Fprintf(w, "Results (%s)\n", phase)
	table := newTable(w)
	table.Header("CORP WINS", "RUNNER WINS", "DRAWS", "BYES", "UNKNOWN", "GAMES", "CORP WIN%")
	table.Append(
		strconv.Itoa(c.CorpWins),
		strconv.Itoa(c.RunnerWins),
		strconv.Itoa(c.Draws),
		strconv.Itoa(c.Byes),
		strconv.Itoa(c.Unknown),
		strconv.Itoa(c.Total()),
		pct(c.CorpWins, c.Decided()),
	)
	table.Render()
	fmt.Fprintln(w)
}

// PrintRepresentationTable prints identity counts with their share of the field.
// Counts are printed in the order given.
func PrintRepresentationTable(w io.Writer, side model.Side, counts []model.IdentityCount) {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	fmt.Fprintf(w, "%s identities (%d players)\n", sideTitle(side), total)
	table := newTable(w)
	table.Header("IDENTITY", "PLAYERS", "SHARE")
	for _, c := range counts {
		table.Append(c.Identity, strconv.Itoa(c.Count), pct(c.Count, total))
	}
	table.Render()
	fmt.Fprintln(w)
}

// PrintIdentityTable prints per-identity records on one side.
func PrintIdentityTable(w io.Writer, side model.Side, records []model.IdentityPerformance) {
	fmt.Fprintf(w, "%s records\n", sideTitle(side))
	table := newTable(w)
	table.Header("IDENTITY", "PLAYERS", "W", "L", "D", "GAMES", "WIN%")
	for _, r := range records {
		winRate := "—"
		if r.Games() > 0 {
			winRate = fmt.Sprintf("%.1f%%", r.WinRate())
		}
		table.Append(
			r.Identity,
			strconv.Itoa(r.Players),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.Draws),
			strconv.Itoa(r.Games()),
			winRate,
		)
	}
	table.Render()
	fmt.Fprintln(w)
}

// PrintMatchupTable prints the corp x runner identity matrix, one row per
// pairing of identities. Rows with fewer than minGames games are skipped.
func PrintMatchupTable(w io.Writer, matchups []model.Matchup, minGames int) {
	fmt.Fprintln(w, "Matchups")
	table := newTable(w)
	table.Header("CORP", "RUNNER", "CORP W", "RUNNER W", "D", "GAMES", "CORP%")
	for _, m := range matchups {
		if m.Games() < minGames {
			continue
		}
		table.Append(
			m.CorpIdentity,
			m.RunnerIdentity,
			strconv.Itoa(m.CorpWins),
			strconv.Itoa(m.RunnerWins),
			strconv.Itoa(m.Draws),
			strconv.Itoa(m.Games()),
			fmt.Sprintf("%.0f%%", m.CorpWinPct()),
		)
	}
	table.Render()
	fmt.Fprintln(w)
}

// PrintRoundsTable prints every game of every round. If focusPlayer is
// non-zero, games involving that player are marked with ">".
func PrintRoundsTable(w io.Writer, rounds []model.AugmentedRound, focusPlayer int) {
	table := newTable(w)
	table.Header(" ", "RND", "TBL", "CORP", "CORP ID", "RUNNER", "RUNNER ID", "RESULT")
	for _, r := range rounds {
		for _, g := range r.Games {
			marker := " "
			if focusPlayer != 0 && (g.CorpID == focusPlayer || g.RunnerID == focusPlayer) {
				marker = ">"
			}
			rnd := strconv.Itoa(r.Number)
			if g.EliminationGame {
				rnd += "*"
			}
			table.Append(
				marker,
				rnd,
				strconv.Itoa(g.Table),
				orDash(g.CorpName),
				g.CorpIdentity,
				orDash(g.RunnerName),
				g.RunnerIdentity,
				outcomeLabel(g.Outcome),
			)
		}
	}
	table.Render()
}

// PrintWeightsTable prints the n heaviest classifier weights, with card
// titles when known.
func PrintWeightsTable(w io.Writer, s classifier.Snapshot, titles map[string]string, n int) {
	fmt.Fprintf(w, "Bias: %.4f  |  Updates: %d  |  Features: %d\n", s.Bias, s.Updates, len(s.Weights))
	table := newTable(w)
	table.Header("FEATURE", "CARD", "WEIGHT", "LEANS")
	for _, wt := range s.Top(n) {
		leans := string(model.SideCorp)
		if wt.Value < 0 {
			leans = string(model.SideRunner)
		}
		table.Append(wt.Feature, orDash(titles[wt.Feature]), fmt.Sprintf("%+.4f", wt.Value), leans)
	}
	table.Render()
}

// PrintTournamentList prints the stored tournaments.
func PrintTournamentList(w io.Writer, list []model.TournamentSummary) {
	table := newTable(w)
	table.Header("ID", "NAME", "DATE", "SOURCE", "PLAYERS", "ROUNDS", "CUT")
	for _, s := range list {
		table.Append(
			shortID(s.ID),
			s.Name,
			s.Date,
			string(s.Source),
			strconv.Itoa(s.Players),
			strconv.Itoa(s.SwissRounds),
			strconv.Itoa(s.CutPlayers),
		)
	}
	table.Render()
}

func outcomeLabel(o model.Outcome) string {
	switch o {
	case model.OutcomeCorpWin:
		return "corp win"
	case model.OutcomeRunnerWin:
		return "runner win"
	case model.OutcomeDraw:
		return "draw"
	case model.OutcomeBye:
		return "bye"
	default:
		return "?"
	}
}

func sideTitle(s model.Side) string {
	if s == model.SideCorp {
		return "Corp"
	}
	return "Runner"
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
