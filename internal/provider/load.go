package provider

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/pable/nrstats/internal/model"
)

// maxExportBytes caps how much decompressed JSON is read from one export.
const maxExportBytes = 64 << 20

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Loader reads tournament exports from local files or HTTP(S) URLs.
type Loader struct {
	http *http.Client
	log  *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.http = c }
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// NewLoader returns a Loader with a 30s HTTP timeout and a no-op logger.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes the export at location, a file path or URL. gzip and
// zstd payloads are decompressed. When a URL serves an HTML tournament page,
// the first .json export link on it is followed once. An empty source is
// detected from the data.
func (l *Loader) Load(ctx context.Context, location string, source model.Source) (*model.Tournament, error) {
	data, err := l.read(ctx, location, true)
	if err != nil {
		return nil, err
	}
	t, err := Decode(data, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	l.log.Debug("loaded tournament",
		zap.String("location", location),
		zap.String("source", string(t.Source)),
		zap.Int("players", len(t.Players)),
		zap.Int("rounds", len(t.Rounds)))
	return t, nil
}

func (l *Loader) read(ctx context.Context, location string, followHTML bool) ([]byte, error) {
	if !isURL(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open export: %w", err)
		}
		defer f.Close()
		return decompress(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9")
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", location, resp.StatusCode)
	}

	data, err := decompress(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", location, err)
	}
	if !looksLikeHTML(resp.Header.Get("Content-Type"), data) {
		return data, nil
	}
	if !followHTML {
		return nil, fmt.Errorf("GET %s: expected JSON, got HTML", location)
	}

	link, err := exportLink(location, data)
	if err != nil {
		return nil, err
	}
	l.log.Info("following export link", zap.String("page", location), zap.String("export", link))
	return l.read(ctx, link, false)
}

// decompress sniffs the payload's magic bytes and transparently unwraps
// gzip or zstd.
func decompress(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	data, err := io.ReadAll(io.LimitReader(src, maxExportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) > maxExportBytes {
		return nil, fmt.Errorf("export larger than %d bytes", maxExportBytes)
	}
	return data, nil
}

// exportLink finds the first link to a .json export on a tournament page and
// resolves it against the page URL.
func exportLink(pageURL string, page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", pageURL, err)
	}

	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		h, _ := s.Attr("href")
		u, err := url.Parse(h)
		if err != nil || !strings.HasSuffix(strings.ToLower(u.Path), ".json") {
			return true
		}
		href = h
		return false
	})
	if href == "" {
		return "", fmt.Errorf("no JSON export link on %s", pageURL)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func looksLikeHTML(contentType string, data []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '<'
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
