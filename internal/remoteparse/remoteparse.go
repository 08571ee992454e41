// Package remoteparse sends whole documents to a remote multimodal model
// and returns its structured JSON verbatim. The model is a black box: no
// parsing heuristics live here.
package remoteparse

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultModel = "gpt-4o-mini"

// defaultPrompt asks for the same structured shape the local pipeline
// produces, so callers can use either path interchangeably.
const defaultPrompt = `Extract the structure of the attached PDF as JSON with
fields "headings" (array of {text, level, page}), "toc" (array of
{title, level, page}), and "sections" (array of {heading, paragraphs}).
Respond with JSON only, no prose.`

// Config holds the remote parser settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Parser is the lazily-built client. Immutable after construction and safe
// for concurrent use.
type Parser struct {
	cfg    Config
	logger *slog.Logger

	once   sync.Once
	client openai.Client
}

// New builds a parser shell; the underlying client is constructed on first
// use. A nil logger falls back to the default.
func New(cfg Config, logger *slog.Logger) *Parser {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{cfg: cfg, logger: logger}
}

// Available reports whether the capability is configured.
func (p *Parser) Available() bool { return p.cfg.APIKey != "" }

func (p *Parser) init() {
	opts := []option.RequestOption{
		option.WithAPIKey(p.cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: p.cfg.Timeout}),
	}
	if p.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.cfg.BaseURL))
	}
	p.client = openai.NewClient(opts...)
}

// Parse uploads the document at path with the given prompt and returns the
// model's JSON output. An empty prompt uses the default structure prompt.
func (p *Parser) Parse(ctx context.Context, path, prompt string) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("remote parser API key not set")
	}
	p.once.Do(p.init)

	if prompt == "" {
		prompt = defaultPrompt
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	dataURL := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(raw)

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileData: openai.String(dataURL),
			Filename: openai.String(filepath.Base(path)),
		}),
	}

	p.logger.Info("remote parse started",
		"file", filepath.Base(path), "model", p.cfg.Model, "bytes", len(raw))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
	})
	if err != nil {
		return "", fmt.Errorf("remote parse request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("remote parser returned no choices")
	}

	out := StripFences(resp.Choices[0].Message.Content)
	p.logger.Info("remote parse finished", "file", filepath.Base(path), "chars", len(out))
	return out, nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, leaving bare JSON.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop a language tag such as "json" on the fence line
		first := strings.TrimSpace(s[:i])
		if first == "" || !strings.ContainsAny(first, "{[") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
