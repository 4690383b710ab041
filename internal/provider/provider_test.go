package provider

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/nrstats/internal/aggregator"
	"github.com/pable/nrstats/internal/model"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		fixture string
		want    model.Source
	}{
		{"cobra.json", model.SourceCobra},
		{"aesops.json", model.SourceAesops},
	}
	for _, tt := range tests {
		got, err := DetectSource(readFixture(t, tt.fixture))
		if err != nil {
			t.Fatalf("%s: %v", tt.fixture, err)
		}
		if got != tt.want {
			t.Errorf("%s: want %s, got %s", tt.fixture, tt.want, got)
		}
	}

	empty, err := DetectSource([]byte(`{"name":"x","rounds":[]}`))
	if err != nil || empty != model.SourceCobra {
		t.Errorf("empty rounds: want cobra, got %s (%v)", empty, err)
	}
	if _, err := DetectSource([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestDecode_Cobra(t *testing.T) {
	tour, err := Decode(readFixture(t, "cobra.json"), "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tour.Source != model.SourceCobra || tour.Name != "Spring Regional" {
		t.Errorf("unexpected header: %+v", tour)
	}
	if len(tour.ID) != 64 {
		t.Errorf("expected sha256 hex id, got %q", tour.ID)
	}
	if len(tour.Players) != 3 || len(tour.EliminationPlayers) != 2 || len(tour.Rounds) != 3 {
		t.Fatalf("unexpected shape: players=%d elim=%d rounds=%d",
			len(tour.Players), len(tour.EliminationPlayers), len(tour.Rounds))
	}
	if tour.EliminationPlayers[1].Seed != 2 {
		t.Errorf("elimination seed: want 2, got %d", tour.EliminationPlayers[1].Seed)
	}

	rounds := aggregator.AugmentRounds(tour, tour.Source, aggregator.PlayerMap(tour))
	counts := aggregator.CountResults(rounds)
	want := model.ResultCounts{CorpWins: 2, RunnerWins: 1, Draws: 1, Byes: 1}
	if counts != want {
		t.Errorf("results: want %+v, got %+v", want, counts)
	}

	s := Summarize(tour)
	if s.SwissRounds != 2 || s.CutPlayers != 2 || s.Players != 3 {
		t.Errorf("summary: %+v", s)
	}
}

func TestDecode_Aesops(t *testing.T) {
	tour, err := Decode(readFixture(t, "aesops.json"), "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tour.Source != model.SourceAesops {
		t.Fatalf("source: want aesops, got %s", tour.Source)
	}
	rounds := aggregator.AugmentRounds(tour, tour.Source, aggregator.PlayerMap(tour))
	if rounds[1].Games[0].Outcome != model.OutcomeRunnerWin {
		t.Errorf("round 2: want runnerWin, got %s", rounds[1].Games[0].Outcome)
	}
	if rounds[0].Games[0].RunnerIdentity != model.UnknownIdentity {
		t.Errorf("blank runner identity: want %q, got %q", model.UnknownIdentity, rounds[0].Games[0].RunnerIdentity)
	}
}

func TestDecode_UnknownSource(t *testing.T) {
	if _, err := Decode([]byte(`{}`), model.Source("challonge")); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestCobraExportURL(t *testing.T) {
	got := CobraExportURL("https://example.org/", 42)
	if got != "https://example.org/tournaments/42.json" {
		t.Errorf("unexpected URL %s", got)
	}
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestLoad_CompressedFiles(t *testing.T) {
	raw := readFixture(t, "cobra.json")
	dir := t.TempDir()

	files := map[string][]byte{
		"plain.json":      raw,
		"export.json.gz":  gzipBytes(t, raw),
		"export.json.zst": zstdBytes(t, raw),
	}
	l := NewLoader()
	var ids []string
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		tour, err := l.Load(context.Background(), path, "")
		if err != nil {
			t.Fatalf("Load %s: %v", name, err)
		}
		if tour.Name != "Spring Regional" {
			t.Errorf("%s: unexpected name %q", name, tour.Name)
		}
		ids = append(ids, tour.ID)
	}
	// The id is computed over the decompressed export.
	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Errorf("ids differ across encodings: %v", ids)
		}
	}
}

func TestLoad_FollowsExportLink(t *testing.T) {
	raw := readFixture(t, "aesops.json")
	mux := http.NewServeMux()
	mux.HandleFunc("/tournaments/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body>
			<a href="/tournaments/7/standings">Standings</a>
			<a href="/tournaments/7.json">Download JSON</a>
		</body></html>`))
	})
	mux.HandleFunc("/tournaments/7.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tour, err := NewLoader().Load(context.Background(), srv.URL+"/tournaments/7", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tour.Source != model.SourceAesops || len(tour.Players) != 2 {
		t.Errorf("unexpected tournament: %+v", tour)
	}
}

func TestLoad_HTMLWithoutExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><a href="/about">About</a></html>`))
	}))
	defer srv.Close()

	if _, err := NewLoader().Load(context.Background(), srv.URL, ""); err == nil {
		t.Error("expected error when page has no export link")
	}
}

func TestLoad_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := NewLoader().Load(context.Background(), srv.URL+"/missing.json", ""); err == nil {
		t.Error("expected error for HTTP 404")
	}
}
