// Package extract orchestrates the full structure pipeline: fetch or open
// a document, analyze its text layer, detect headings, order blocks, pull
// tables, and assemble the final tree.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/pdfstruct/pdfstruct/internal/fetch"
	"github.com/pdfstruct/pdfstruct/internal/headings"
	"github.com/pdfstruct/pdfstruct/internal/layout"
	"github.com/pdfstruct/pdfstruct/internal/pdf"
	"github.com/pdfstruct/pdfstruct/internal/tables"
	"github.com/pdfstruct/pdfstruct/internal/tree"
)

// Extraction method labels reported in metadata.
const (
	MethodTextLayer = "text_layer"
	MethodOCR       = "ocr"
)

// Options selects pipeline behavior per request.
type Options struct {
	// UseOCR forces the layout-detector path even when a text layer exists.
	UseOCR             bool `json:"useOcr"`
	ExtractTables      bool `json:"extractTables"`
	AddTableOfContents bool `json:"addTableOfContents"`
	// TOCStartPage/TOCEndPage optionally bound the zero-based page range
	// whose headings feed the prepended table of contents. A zero end page
	// means no bound.
	TOCStartPage int `json:"tocStartPage"`
	TOCEndPage   int `json:"tocEndPage"`
}

// Metadata summarizes one extraction.
type Metadata struct {
	PageCount        int     `json:"pageCount"`
	HasTextLayer     bool    `json:"hasTextLayer"`
	ExtractionMethod string  `json:"extractionMethod"`
	HeadingCount     int     `json:"headingCount"`
	TableCount       int     `json:"tableCount"`
	NodeCount        int     `json:"nodeCount"`
	AvgFontSize      float64 `json:"avgFontSize"`
}

// Result is the complete output of one extraction. There are no partial
// results: a failed request carries only its error.
type Result struct {
	Tree     tree.Node           `json:"tree"`
	TOC      []headings.TOCEntry `json:"toc"`
	Tables   []map[string]any    `json:"tables"`
	Metadata Metadata            `json:"metadata"`
}

// SpanDebug is one line of the span-debugging output used to tune
// thresholds against a problem document.
type SpanDebug struct {
	Page int     `json:"page"`
	Text string  `json:"text"`
	Font string  `json:"font"`
	Size float64 `json:"size"`
	Y0   float64 `json:"y0"`
	X0   float64 `json:"x0"`
}

// Pipeline wires the stages together. Construct once, reuse across
// requests; it holds no per-request state.
type Pipeline struct {
	fetcher    *fetch.Fetcher
	classifier *headings.Classifier
	detector   *layout.Detector
	normalizer *tables.Normalizer
	order      layout.OrderEngine
	logger     *slog.Logger
}

// NewPipeline builds a pipeline. detector may be nil when no layout
// service is configured; normalizer must not be nil.
func NewPipeline(
	fetcher *fetch.Fetcher,
	classifier *headings.Classifier,
	detector *layout.Detector,
	normalizer *tables.Normalizer,
	order layout.OrderEngine,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher:    fetcher,
		classifier: classifier,
		detector:   detector,
		normalizer: normalizer,
		order:      order,
		logger:     logger,
	}
}

// ExtractFromURL downloads the document and runs ExtractFromFile. The
// temporary file is removed on every path.
func (p *Pipeline) ExtractFromURL(ctx context.Context, url string, opts Options) (*Result, error) {
	path, err := p.fetcher.Download(ctx, url)
	if err != nil {
		return nil, &ResourceFetchError{URL: url, Err: err}
	}
	defer os.Remove(path)

	return p.ExtractFromFile(ctx, path, opts)
}

// ExtractFromFile runs the full pipeline over a local document.
func (p *Pipeline) ExtractFromFile(ctx context.Context, path string, opts Options) (*Result, error) {
	reqID := uuid.NewString()
	logger := p.logger.With("request", reqID)
	logger.Info("extraction started", "useOcr", opts.UseOCR, "tables", opts.ExtractTables)

	a, err := pdf.Open(path, logger)
	if err != nil {
		return nil, &UnsupportedDocumentError{Reason: "cannot open document", Err: err}
	}
	defer a.Close()

	doc := a.AnalyzeDocument()

	var (
		blocks []layout.Block
		hs     []headings.Heading
		method string
	)
	if doc.HasTextLayer && !opts.UseOCR {
		method = MethodTextLayer
		blocks = p.orderSpans(doc)
		hs = p.classifier.Detect(doc)
	} else {
		method = MethodOCR
		blocks, hs, err = p.detectLayout(ctx, a)
		if err != nil {
			return nil, err
		}
	}

	var extracted []tables.ExtractedTable
	if opts.ExtractTables {
		extracted, err = p.normalizer.ExtractAll(ctx, path, a.PageCount())
		if err != nil {
			return nil, &ExtractionEngineError{Stage: "tables", Err: err}
		}
	}

	res := assemble(doc, blocks, hs, extracted, opts, method, logger)
	logger.Info("extraction finished",
		"method", method, "headings", len(hs),
		"tables", len(extracted), "nodes", res.Metadata.NodeCount)
	return res, nil
}

// assemble builds the final result from the stage outputs: the document
// tree, the flat TOC (optionally prepended to the tree), the table
// projections, and the metadata block.
func assemble(doc *pdf.DocumentAnalysis, blocks []layout.Block, hs []headings.Heading,
	extracted []tables.ExtractedTable, opts Options, method string, logger *slog.Logger) *Result {

	docTree := tree.NewBuilder(logger).Build(blocks, hs, extracted)
	toc := headings.BuildTOC(hs)
	if opts.AddTableOfContents {
		docTree = tree.PrependTOC(docTree, filterTOC(toc, opts.TOCStartPage, opts.TOCEndPage))
	}

	return &Result{
		Tree:   docTree,
		TOC:    toc,
		Tables: tables.TablesToJSON(extracted),
		Metadata: Metadata{
			PageCount:        doc.TotalPages,
			HasTextLayer:     doc.HasTextLayer,
			ExtractionMethod: method,
			HeadingCount:     len(hs),
			TableCount:       len(extracted),
			NodeCount:        docTree.Count(),
			AvgFontSize:      doc.GlobalAvgFontSize(),
		},
	}
}

// orderSpans lifts the text-layer spans page by page and applies reading
// order without margin stripping (running headers fall to the repeat
// filter instead).
func (p *Pipeline) orderSpans(doc *pdf.DocumentAnalysis) []layout.Block {
	engine := p.order
	engine.StripMargins = false

	var blocks []layout.Block
	for _, page := range doc.Pages {
		ordered := engine.Sort(layout.FromSpans(page.Spans), page.Height)
		blocks = append(blocks, ordered...)
	}
	return blocks
}

// detectLayout runs the layout-detector path for documents without a
// usable text layer, stripping header/footer margins and deriving
// level-one headings from title blocks.
func (p *Pipeline) detectLayout(ctx context.Context, a *pdf.Analyzer) ([]layout.Block, []headings.Heading, error) {
	if p.detector == nil || !p.detector.Available(ctx) {
		return nil, nil, &UnsupportedDocumentError{
			Reason: "document has no text layer and no layout detector is configured",
		}
	}

	engine := p.order
	engine.StripMargins = true

	var blocks []layout.Block
	var hs []headings.Heading
	for page := 0; page < a.PageCount(); page++ {
		detected, err := p.detector.DetectPage(ctx, a.Path(), page)
		if err != nil {
			return nil, nil, &ExtractionEngineError{
				Stage: fmt.Sprintf("layout page %d", page), Err: err,
			}
		}
		_, pageH := a.PageSize(page)
		ordered := engine.Sort(detected, pageH)
		blocks = append(blocks, ordered...)

		for _, b := range ordered {
			if b.Kind == layout.KindTitle && strings.TrimSpace(b.Text) != "" {
				hs = append(hs, headings.Heading{
					Text:       strings.TrimSpace(b.Text),
					Level:      1,
					Page:       page,
					BBox:       b.BBox,
					Confidence: b.Confidence,
					Strategy:   headings.StrategyLayout,
				})
			}
		}
	}
	return blocks, hs, nil
}

// Headings runs only the heading stage of the pipeline: faster than a full
// extraction when the caller needs an outline.
func (p *Pipeline) Headings(ctx context.Context, path string) ([]headings.Heading, Metadata, error) {
	a, err := pdf.Open(path, p.logger)
	if err != nil {
		return nil, Metadata{}, &UnsupportedDocumentError{Reason: "cannot open document", Err: err}
	}
	defer a.Close()

	doc := a.AnalyzeDocument()
	if !doc.HasTextLayer {
		return nil, Metadata{}, &UnsupportedDocumentError{Reason: "document has no text layer"}
	}

	hs := p.classifier.Detect(doc)
	md := Metadata{
		PageCount:        doc.TotalPages,
		HasTextLayer:     true,
		ExtractionMethod: MethodTextLayer,
		HeadingCount:     len(hs),
		AvgFontSize:      doc.GlobalAvgFontSize(),
	}
	return hs, md, nil
}

// HeadingsWithReference runs the reference-position strategy against a
// caller-supplied window. An empty window falls back to the ratio strategy
// inside the classifier.
func (p *Pipeline) HeadingsWithReference(ctx context.Context, path string, yMin, yMax float64) ([]headings.Heading, error) {
	a, err := pdf.Open(path, p.logger)
	if err != nil {
		return nil, &UnsupportedDocumentError{Reason: "cannot open document", Err: err}
	}
	defer a.Close()

	return p.classifier.DetectWithReference(a.AnalyzeDocument(), yMin, yMax), nil
}

// DebugSpans dumps up to maxSpans spans from each of the first maxPages
// pages, for threshold tuning.
func (p *Pipeline) DebugSpans(path string, maxPages, maxSpans int) ([]SpanDebug, error) {
	a, err := pdf.Open(path, p.logger)
	if err != nil {
		return nil, &UnsupportedDocumentError{Reason: "cannot open document", Err: err}
	}
	defer a.Close()

	if maxPages > a.PageCount() {
		maxPages = a.PageCount()
	}
	var out []SpanDebug
	for page := 0; page < maxPages; page++ {
		spans := a.ExtractSpans(page)
		if len(spans) > maxSpans {
			spans = spans[:maxSpans]
		}
		for _, s := range spans {
			out = append(out, SpanDebug{
				Page: page,
				Text: s.Text,
				Font: s.Font.Name,
				Size: s.Font.Size,
				Y0:   s.BBox.Y0,
				X0:   s.BBox.X0,
			})
		}
	}
	return out, nil
}

// filterTOC keeps entries within the zero-based page range [start, end].
// A zero end means unbounded.
func filterTOC(entries []headings.TOCEntry, start, end int) []headings.TOCEntry {
	if start == 0 && end == 0 {
		return entries
	}
	var out []headings.TOCEntry
	for _, e := range entries {
		if e.Page < start {
			continue
		}
		if end > 0 && e.Page > end {
			continue
		}
		out = append(out, e)
	}
	return out
}
