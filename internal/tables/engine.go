package tables

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdfstruct/pdfstruct/internal/pdf"
)

// Mode selects a grid-engine detection flavor.
type Mode string

const (
	ModeLattice Mode = "lattice" // ruled tables with visible grid lines
	ModeStream  Mode = "stream"  // whitespace-separated tables
)

// Engine extracts the tables of one zero-based page. Accuracy semantics
// are engine-specific; the normalizer applies its thresholds on top.
type Engine interface {
	Name() string
	Available(ctx context.Context) bool
	Extract(ctx context.Context, path string, page int, mode Mode) ([]ExtractedTable, error)
}

// GridEngine calls the external grid-detection service. An empty base URL
// means the engine is not configured.
type GridEngine struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewGridEngine builds the client. A nil logger falls back to the default.
func NewGridEngine(baseURL string, logger *slog.Logger) *GridEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &GridEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  logger,
	}
}

func (g *GridEngine) Name() string { return "grid" }

// Available reports whether the service is configured and answering.
func (g *GridEngine) Available(ctx context.Context) bool {
	if g.baseURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Extract uploads the document and returns the page's tables in the given
// mode. Reported accuracy arrives as a 0..1 confidence.
func (g *GridEngine) Extract(ctx context.Context, path string, page int, mode Mode) ([]ExtractedTable, error) {
	if g.baseURL == "" {
		return nil, fmt.Errorf("grid engine not configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := mw.WriteField("page", strconv.Itoa(page)); err != nil {
		return nil, err
	}
	if err := mw.WriteField("flavor", string(mode)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/tables/extract", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grid engine request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid engine response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grid engine returned %d", resp.StatusCode)
	}

	var parsed struct {
		Tables []struct {
			Headers  []string   `json:"headers"`
			Rows     [][]string `json:"rows"`
			Accuracy float64    `json:"accuracy"`
			BBox     []float64  `json:"bbox"`
		} `json:"tables"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid grid engine JSON: %w", err)
	}

	out := make([]ExtractedTable, 0, len(parsed.Tables))
	for _, t := range parsed.Tables {
		et := ExtractedTable{
			Headers:    t.Headers,
			Rows:       t.Rows,
			Page:       page,
			Confidence: t.Accuracy,
			Method:     string(mode),
		}
		if len(t.BBox) == 4 {
			et.BBox = pdf.BoundingBox{X0: t.BBox[0], Y0: t.BBox[1], X1: t.BBox[2], Y1: t.BBox[3]}
		}
		if len(et.Headers) == 0 && len(et.Rows) > 0 && firstRowIsHeader(et.Rows[0]) {
			et.Headers = et.Rows[0]
			et.Rows = et.Rows[1:]
		}
		out = append(out, et)
	}

	g.logger.Debug("grid extraction done", "page", page, "mode", mode, "tables", len(out))
	return out, nil
}
