package layout

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

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdfstruct/pdfstruct/internal/pdf"
)

// detectResponseSchema is the contract the detector service must honor.
// Responses are validated before any block enters the pipeline.
const detectResponseSchema = `{
  "type": "object",
  "required": ["blocks"],
  "properties": {
    "blocks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "bbox"],
        "properties": {
          "type": {"type": "string"},
          "bbox": {
            "type": "array",
            "items": {"type": "number"},
            "minItems": 4,
            "maxItems": 4
          },
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "text": {"type": "string"}
        }
      }
    }
  }
}`

var detectSchema = jsonschema.MustCompileString("detect-response.json", detectResponseSchema)

// Detector calls the external layout detection service. An empty base URL
// means the capability is not configured.
type Detector struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewDetector builds a detector client. A nil logger falls back to the
// default.
func NewDetector(baseURL string, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  logger,
	}
}

// Available reports whether the detector is configured and answering.
func (d *Detector) Available(ctx context.Context) bool {
	if d.baseURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// DetectPage uploads the document and asks for the layout blocks of one
// zero-based page.
func (d *Detector) DetectPage(ctx context.Context, path string, page int) ([]Block, error) {
	if d.baseURL == "" {
		return nil, fmt.Errorf("layout detector not configured")
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
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/layout/detect", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("layout detector request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read detector response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("layout detector returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	blocks, err := parseDetectResponse(raw, page)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("layout detected", "page", page, "blocks", len(blocks))
	return blocks, nil
}

func parseDetectResponse(raw []byte, page int) ([]Block, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("invalid detector JSON: %w", err)
	}
	if err := detectSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("detector response violates contract: %w", err)
	}

	var parsed struct {
		Blocks []struct {
			Type       string     `json:"type"`
			BBox       [4]float64 `json:"bbox"`
			Confidence float64    `json:"confidence"`
			Text       string     `json:"text"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid detector JSON: %w", err)
	}

	blocks := make([]Block, 0, len(parsed.Blocks))
	for _, b := range parsed.Blocks {
		blocks = append(blocks, Block{
			Kind: normalizeKind(b.Type),
			Text: b.Text,
			BBox: pdf.BoundingBox{
				X0: b.BBox[0], Y0: b.BBox[1],
				X1: b.BBox[2], Y1: b.BBox[3],
			},
			Page:       page,
			Confidence: b.Confidence,
		})
	}
	return blocks, nil
}

// normalizeKind maps detector labels onto the block kinds used here.
func normalizeKind(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "title", "section-header", "section_header":
		return KindTitle
	case "table":
		return KindTable
	case "figure", "picture", "image":
		return KindFigure
	case "caption", "figure_caption", "table_caption":
		return KindCaption
	case "list", "list-item", "list_item":
		return KindList
	case "page-header", "header":
		return KindHeader
	case "page-footer", "footer":
		return KindFooter
	default:
		return KindText
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
