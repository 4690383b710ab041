// Package provider decodes tournament exports from the two supported result
// providers, Cobra and Aesops Tables, and loads them from files or URLs.
package provider

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pable/nrstats/internal/model"
)

// DefaultCobraURL is the public Cobra instance.
const DefaultCobraURL = "https://tournaments.nullsignal.games"

// CobraExportURL is the JSON export of Cobra tournament id on the instance at base.
func CobraExportURL(base string, id int) string {
	return fmt.Sprintf("%s/tournaments/%d.json", strings.TrimRight(base, "/"), id)
}

// DetectSource inspects the first games of an export and reports which
// provider produced it. Aesops games name the corp and runner players
// directly; Cobra games use player1/player2 seats. Exports with no games are
// treated as Cobra.
func DetectSource(data []byte) (model.Source, error) {
	var probe struct {
		Rounds [][]map[string]json.RawMessage `json:"rounds"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("detect source: %w", err)
	}
	for _, round := range probe.Rounds {
		for _, g := range round {
			if _, ok := g["corpPlayer"]; ok {
				return model.SourceAesops, nil
			}
			if _, ok := g["runnerPlayer"]; ok {
				return model.SourceAesops, nil
			}
			if _, ok := g["player1"]; ok {
				return model.SourceCobra, nil
			}
		}
	}
	return model.SourceCobra, nil
}

// Decode parses an export. An empty source is detected from the data. The
// tournament id is the sha256 of the export bytes.
func Decode(data []byte, source model.Source) (*model.Tournament, error) {
	if source == "" {
		var err error
		if source, err = DetectSource(data); err != nil {
			return nil, err
		}
	}
	switch source {
	case model.SourceCobra, model.SourceAesops:
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}

	var t model.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode %s export: %w", source, err)
	}
	t.Source = source
	t.ID = fmt.Sprintf("%x", sha256.Sum256(data))
	return &t, nil
}

// Summarize builds the list-view record for a decoded tournament.
func Summarize(t *model.Tournament) model.TournamentSummary {
	return model.TournamentSummary{
		ID:          t.ID,
		Name:        t.Name,
		Date:        t.Date,
		Source:      t.Source,
		Players:     len(t.Players),
		SwissRounds: swissRounds(t),
		CutPlayers:  len(t.EliminationPlayers),
	}
}

// swissRounds counts rounds holding at least one non-elimination game.
func swissRounds(t *model.Tournament) int {
	n := 0
	for _, r := range t.Rounds {
		for _, g := range r {
			if !g.EliminationGame {
				n++
				break
			}
		}
	}
	return n
}
