package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/nrstats/internal/aggregator"
	"github.com/pable/nrstats/internal/model"
)

const analyzeSystemPrompt = `You are a Netrunner metagame analyst. You are given structured results from
a tournament statistics tool and a question from a player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Small samples (fewer than ~10 games) are noise; call that out.
- Be concise and focus on what the data says about the field.

Glossary:
- Swiss: the open rounds every player plays. Cut: the elimination bracket (top N).
- Corp win %: corp wins over decided games (byes, draws and unknown results excluded).
- Representation: how many players registered each identity; "Unknown" means no identity was recorded.
- Matchup: games between one corp identity and one runner identity; draws count half.
- Identity record: wins/losses/draws of every player on that identity, on one side.`

var (
	analyzeModel  string
	analyzeAPIKey string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <id-prefix> <question>",
	Short: "AI-powered grounded analysis of a tournament (requires ANTHROPIC_API_KEY)",
	Long: `Send a tournament's derived statistics, swiss and cut, to an Anthropic model
together with a question, and stream the answer.

Example:
  nrstats analyze 3fa9 "Which runner identity overperformed its representation?"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := strings.Join(args[1:], " ")

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.GetTournamentByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("find tournament: %w", err)
	}
	if s == nil {
		return fmt.Errorf("no tournament found with id prefix %q", args[0])
	}
	t, rounds, err := db.LoadTournament(s.ID)
	if err != nil {
		return fmt.Errorf("load tournament: %w", err)
	}

	contextJSON, err := buildTournamentContext(*s, t, rounds)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	key, err := analyzeKey(analyzeAPIKey)
	if err != nil {
		return err
	}
	return streamAnalysis(cmd.Context(), os.Stdout, key, analyzeModel, s.Name, contextJSON, question)
}

// buildTournamentContext renders the swiss and cut analyses as compact JSON.
// Win rates are pre-computed so the model does not have to do arithmetic.
func buildTournamentContext(s model.TournamentSummary, t *model.Tournament, rounds []model.AugmentedRound) (string, error) {
	type recordEntry struct {
		Identity string  `json:"identity"`
		Players  int     `json:"players"`
		Wins     int     `json:"wins"`
		Losses   int     `json:"losses"`
		Draws    int     `json:"draws"`
		WinPct   float64 `json:"win_pct"`
	}
	type matchupEntry struct {
		Corp    string  `json:"corp"`
		Runner  string  `json:"runner"`
		Games   int     `json:"games"`
		CorpPct float64 `json:"corp_pct"`
	}
	records := func(in []model.IdentityPerformance) []recordEntry {
		out := make([]recordEntry, 0, len(in))
		for _, r := range in {
			out = append(out, recordEntry{
				Identity: r.Identity,
				Players:  r.Players,
				Wins:     r.Wins,
				Losses:   r.Losses,
				Draws:    r.Draws,
				WinPct:   round2(r.WinRate()),
			})
		}
		return out
	}
	phase := func(p model.Phase) map[string]interface{} {
		a := aggregator.Analyze(t, rounds, p)
		matchups := make([]matchupEntry, 0, len(a.Matchups))
		for _, m := range a.Matchups {
			matchups = append(matchups, matchupEntry{
				Corp:    m.CorpIdentity,
				Runner:  m.RunnerIdentity,
				Games:   m.Games(),
				CorpPct: round2(m.CorpWinPct()),
			})
		}
		return map[string]interface{}{
			"results":                 a.Results,
			"corp_win_pct":            round2(a.Results.CorpWinPct()),
			"corp_representation":     a.CorpIDs,
			"runner_representation":   a.RunnerIDs,
			"corp_identity_records":   records(a.CorpRecords),
			"runner_identity_records": records(a.RunnerRecords),
			"matchups":                matchups,
		}
	}

	doc := map[string]interface{}{
		"subject":      "tournament",
		"name":         s.Name,
		"date":         s.Date,
		"players":      s.Players,
		"swiss_rounds": s.SwissRounds,
		"cut_players":  s.CutPlayers,
		"swiss":        phase(model.PhaseSwiss),
	}
	if s.CutPlayers > 0 {
		doc["cut"] = phase(model.PhaseCut)
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// analyzeKey picks the --api-key flag over $ANTHROPIC_API_KEY.
func analyzeKey(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}
	return "", errors.New("analyze needs an Anthropic key: set ANTHROPIC_API_KEY or pass --api-key")
}

// analysisHeader is the rule printed above the streamed answer.
func analysisHeader(tournament string) string {
	title := fmt.Sprintf("── %s ", tournament)
	if n := 54 - utf8.RuneCountInString(title); n > 0 {
		title += strings.Repeat("─", n)
	}
	return title
}

// streamAnalysis asks the model the question about the tournament context and
// writes the answer to w as it arrives.
func streamAnalysis(ctx context.Context, w io.Writer, apiKey, modelID, tournament, contextJSON, question string) error {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	logger.Debug("requesting analysis",
		zap.String("model", modelID),
		zap.String("tournament", tournament),
		zap.Int("context_bytes", len(contextJSON)))

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: analyzeSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				fmt.Sprintf("TOURNAMENT STATS:\n%s\n\nPLAYER QUESTION: %s", contextJSON, question))),
		},
	})

	fmt.Fprintln(w)
	fmt.Fprintln(w, analysisHeader(tournament))
	for stream.Next() {
		evt := stream.Current()
		if evt.Type != "content_block_delta" {
			continue
		}
		if delta := evt.AsContentBlockDelta(); delta.Delta.Type == "text_delta" {
			fmt.Fprint(w, delta.Delta.AsTextDelta().Text)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("─", 54))

	if err := stream.Err(); err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return errors.New("API key rejected by Anthropic: check --api-key or ANTHROPIC_API_KEY")
		}
		return fmt.Errorf("analysis of %s interrupted: %w", tournament, err)
	}
	return nil
}
