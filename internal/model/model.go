package model

import "strings"

// UnknownIdentity is the bucket for players or games with no recorded identity.
const UnknownIdentity = "Unknown"

// Side is one of the two asymmetric roles a player takes in a game.
type Side string

const (
	SideCorp   Side = "corp"
	SideRunner Side = "runner"
)

// ParseSide accepts "corp" or "runner" in any case.
func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "corp":
		return SideCorp, true
	case "runner":
		return SideRunner, true
	default:
		return "", false
	}
}

// Outcome is the result tag of a single game.
type Outcome string

const (
	OutcomeCorpWin   Outcome = "corpWin"
	OutcomeRunnerWin Outcome = "runnerWin"
	OutcomeDraw      Outcome = "draw"
	OutcomeBye       Outcome = "bye"
	OutcomeUnknown   Outcome = "unknown"
)

// Phase selects the swiss rounds or the elimination cut.
type Phase string

const (
	PhaseSwiss Phase = "swiss"
	PhaseCut   Phase = "cut"
)

// ParsePhase accepts "swiss" or "cut"; "top" is an alias for cut.
func ParsePhase(s string) (Phase, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "swiss":
		return PhaseSwiss, true
	case "cut", "top":
		return PhaseCut, true
	default:
		return "", false
	}
}

// Source names the upstream provider a tournament export came from. The two
// providers lay out games differently.
type Source string

const (
	SourceCobra  Source = "cobra"
	SourceAesops Source = "aesops"
)

// ---- Raw tournament export ----

type Player struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Rank           int    `json:"rank"`
	CorpIdentity   string `json:"corpIdentity"`
	RunnerIdentity string `json:"runnerIdentity"`
	MatchPoints    int    `json:"matchPoints"`
	// Seed is only set on elimination players.
	Seed int `json:"seed,omitempty"`
}

// Identity returns the player's identity for the given side.
func (p *Player) Identity(side Side) string {
	if side == SideCorp {
		return p.CorpIdentity
	}
	return p.RunnerIdentity
}

// Seat is one half of a Cobra pairing.
type Seat struct {
	ID          int    `json:"id"`
	Role        string `json:"role"`
	CorpScore   int    `json:"corpScore"`
	RunnerScore int    `json:"runnerScore"`
}

// Game is one raw pairing. Cobra exports fill Table/Player1/Player2; Aesops
// exports fill TableNumber/CorpPlayer/RunnerPlayer and the top-level scores.
type Game struct {
	Table           int   `json:"table,omitempty"`
	Player1         *Seat `json:"player1,omitempty"`
	Player2         *Seat `json:"player2,omitempty"`
	IntentionalDraw bool  `json:"intentionalDraw,omitempty"`

	TableNumber  int `json:"tableNumber,omitempty"`
	CorpPlayer   int `json:"corpPlayer,omitempty"`
	RunnerPlayer int `json:"runnerPlayer,omitempty"`
	CorpScore    int `json:"corpScore,omitempty"`
	RunnerScore  int `json:"runnerScore,omitempty"`

	EliminationGame bool `json:"eliminationGame,omitempty"`
}

type Tournament struct {
	ID                 string   `json:"-"`
	Name               string   `json:"name"`
	Date               string   `json:"date"`
	Source             Source   `json:"-"`
	Players            []Player `json:"players"`
	EliminationPlayers []Player `json:"eliminationPlayers,omitempty"`
	Rounds             [][]Game `json:"rounds"`
}

// ---- Derived views ----

// AugmentedGame is a game with players, identities and outcome resolved.
type AugmentedGame struct {
	Round           int     `json:"round"`
	Table           int     `json:"table"`
	CorpID          int     `json:"corpId"`
	CorpName        string  `json:"corpName"`
	CorpIdentity    string  `json:"corpIdentity"`
	RunnerID        int     `json:"runnerId"`
	RunnerName      string  `json:"runnerName"`
	RunnerIdentity  string  `json:"runnerIdentity"`
	Outcome         Outcome `json:"outcome"`
	EliminationGame bool    `json:"eliminationGame"`
}

type AugmentedRound struct {
	Number int             `json:"number"`
	Games  []AugmentedGame `json:"games"`
}

// ResultCounts tallies games per outcome.
type ResultCounts struct {
	CorpWins   int `json:"corpWins"`
	RunnerWins int `json:"runnerWins"`
	Draws      int `json:"draws"`
	Byes       int `json:"byes"`
	Unknown    int `json:"unknown"`
}

func (c *ResultCounts) Total() int {
	return c.CorpWins + c.RunnerWins + c.Draws + c.Byes + c.Unknown
}

// Decided counts games that produced a winner.
func (c *ResultCounts) Decided() int {
	return c.CorpWins + c.RunnerWins
}

// CorpWinPct is corp wins over decided games, in percent.
func (c *ResultCounts) CorpWinPct() float64 {
	if c.Decided() == 0 {
		return 0
	}
	return float64(c.CorpWins) / float64(c.Decided()) * 100
}

type IdentityCount struct {
	Identity string `json:"identity"`
	Count    int    `json:"count"`
}

// Matchup is the head-to-head record of one corp identity against one runner identity.
type Matchup struct {
	CorpIdentity   string `json:"corpIdentity"`
	RunnerIdentity string `json:"runnerIdentity"`
	CorpWins       int    `json:"corpWins"`
	RunnerWins     int    `json:"runnerWins"`
	Draws          int    `json:"draws"`
}

func (m *Matchup) Games() int {
	return m.CorpWins + m.RunnerWins + m.Draws
}

// CorpWinPct is the corp's share of games in the matchup, draws counted as half.
func (m *Matchup) CorpWinPct() float64 {
	if m.Games() == 0 {
		return 0
	}
	return (float64(m.CorpWins) + float64(m.Draws)/2) / float64(m.Games()) * 100
}

// IdentityPerformance is one identity's record on one side.
type IdentityPerformance struct {
	Identity string `json:"identity"`
	Side     Side   `json:"side"`
	Players  int    `json:"players"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}

func (p *IdentityPerformance) Games() int {
	return p.Wins + p.Losses + p.Draws
}

func (p *IdentityPerformance) WinRate() float64 {
	if p.Games() == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.Games()) * 100
}

// TournamentSummary is a lightweight record for list/show commands.
type TournamentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Source      Source `json:"source"`
	Players     int    `json:"players"`
	SwissRounds int    `json:"swissRounds"`
	CutPlayers  int    `json:"cutPlayers"`
}

// ---- Cross-tournament views ----

// DBOverview summarises everything stored in the database.
type DBOverview struct {
	Tournaments   int
	PlayerEntries int // one per player per tournament
	UniquePlayers int
	Earliest      string
	Latest        string
	Results       ResultCounts
}

// IdentityTrendPoint is one identity's showing at one tournament.
type IdentityTrendPoint struct {
	TournamentID string `json:"tournamentId"`
	Tournament   string `json:"tournament"`
	Date         string `json:"date"`
	Field        int    `json:"field"`
	Players      int    `json:"players"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Draws        int    `json:"draws"`
}

// Share is the percentage of the field playing the identity.
func (p *IdentityTrendPoint) Share() float64 {
	if p.Field == 0 {
		return 0
	}
	return float64(p.Players) / float64(p.Field) * 100
}

func (p *IdentityTrendPoint) WinRate() float64 {
	games := p.Wins + p.Losses + p.Draws
	if games == 0 {
		return 0
	}
	return float64(p.Wins) / float64(games) * 100
}

// PlayerResult is one player's entry at one tournament with their game record.
type PlayerResult struct {
	TournamentID string
	Tournament   string
	Date         string
	Field        int
	Player       Player
	Wins         int
	Losses       int
	Draws        int
}

// ---- Cards and decklists ----

type Card struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	TypeCode    string `json:"type_code"`
	FactionCode string `json:"faction_code"`
	SideCode    string `json:"side_code"`
}

// IsIdentity reports whether the card is a deck-defining identity.
func (c *Card) IsIdentity() bool {
	return c.TypeCode == "identity"
}

type Decklist struct {
	ID    int            `json:"id"`
	Name  string         `json:"name"`
	Cards map[string]int `json:"cards"`
}
