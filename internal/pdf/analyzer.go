// Package pdf extracts per-page text spans with bounding boxes and font
// descriptors from a PDF text layer, and aggregates them into page and
// document analyses used by heading detection and tree assembly.
package pdf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Default page geometry (US letter) used when the page dictionary carries
// no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Character runs on the same row are merged into one span while the font
// stays the same; a gap wider than wordSpaceMultiplier×fontSize inserts a
// space instead of breaking the span.
const (
	rowTolerance        = 3.0
	wordSpaceMultiplier = 0.3
)

// Analyzer reads a PDF's text layer. It owns a native file handle; Close
// must run on every exit path and is safe to call more than once.
type Analyzer struct {
	path      string
	file      *os.File
	reader    *lpdf.Reader
	dims      []types.Dim
	pageCount int
	closed    bool
	logger    *slog.Logger
}

// Open opens the document at path. A missing or unparsable file returns an
// error without touching process state.
func Open(path string, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("unparsable document %s: %w", filepath.Base(path), err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("document %s has zero pages", filepath.Base(path))
	}

	dims, err := api.PageDimsFile(path)
	if err != nil {
		// Dims are a convenience; extraction can proceed on defaults.
		logger.Warn("page dimensions unavailable", "file", filepath.Base(path), "err", err)
		dims = nil
	}

	f, reader, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF %s: %w", filepath.Base(path), err)
	}

	logger.Info("opened document", "file", filepath.Base(path), "pages", pageCount)

	return &Analyzer{
		path:      path,
		file:      f,
		reader:    reader,
		dims:      dims,
		pageCount: pageCount,
		logger:    logger,
	}, nil
}

// Close releases the native file handle. Idempotent.
func (a *Analyzer) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

// Path returns the path the analyzer was opened with.
func (a *Analyzer) Path() string { return a.path }

// PageCount returns the number of pages in the document.
func (a *Analyzer) PageCount() int { return a.pageCount }

// PageSize returns the width and height of the given zero-based page.
func (a *Analyzer) PageSize(page int) (w, h float64) {
	if page >= 0 && page < len(a.dims) && a.dims[page].Width > 0 && a.dims[page].Height > 0 {
		return a.dims[page].Width, a.dims[page].Height
	}
	return defaultPageWidth, defaultPageHeight
}

// CheckTextLayer reports whether the raw extracted text of the zero-based
// page is non-empty after trimming.
func (a *Analyzer) CheckTextLayer(page int) bool {
	p := a.reader.Page(page + 1)
	if p.V.IsNull() {
		return false
	}
	var b strings.Builder
	for _, t := range p.Content().Text {
		b.WriteString(t.S)
	}
	return strings.TrimSpace(b.String()) != ""
}

// ExtractSpans flattens the page's character runs into font-homogeneous
// spans. Empty spans and spans without a usable bounding box are dropped.
// Coordinates are converted to a top-left origin.
func (a *Analyzer) ExtractSpans(page int) []TextSpan {
	p := a.reader.Page(page + 1)
	if p.V.IsNull() {
		return nil
	}

	texts := make([]lpdf.Text, 0, len(p.Content().Text))
	for _, t := range p.Content().Text {
		if strings.TrimSpace(t.S) != "" || t.S == " " {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	_, pageH := a.PageSize(page)
	var spans []TextSpan
	for _, row := range groupIntoRows(texts) {
		spans = append(spans, mergeRow(row, page, pageH)...)
	}

	a.logger.Debug("extracted spans", "page", page, "count", len(spans))
	return spans
}

// AnalyzePage extracts and aggregates one zero-based page.
func (a *Analyzer) AnalyzePage(page int) *PageAnalysis {
	w, h := a.PageSize(page)
	spans := a.ExtractSpans(page)

	pa := &PageAnalysis{
		Page:         page,
		Width:        w,
		Height:       h,
		HasTextLayer: len(spans) > 0,
		Spans:        spans,
	}
	pa.AvgFontSize()
	if len(spans) > 0 {
		pa.DominantFont = dominantFont(spans)
	}
	return pa
}

// AnalyzeDocument runs AnalyzePage over every page and computes the
// document-level average font size.
func (a *Analyzer) AnalyzeDocument() *DocumentAnalysis {
	doc := &DocumentAnalysis{
		FileName:   filepath.Base(a.path),
		TotalPages: a.pageCount,
	}

	for page := 0; page < a.pageCount; page++ {
		pa := a.AnalyzePage(page)
		doc.Pages = append(doc.Pages, pa)
		if pa.HasTextLayer {
			doc.HasTextLayer = true
		}
		a.logger.Debug("analyzed page",
			"page", page+1, "of", a.pageCount,
			"spans", len(pa.Spans), "avgFontSize", pa.AvgFontSize())
	}

	doc.GlobalAvgFontSize()
	a.logger.Info("document analyzed",
		"file", doc.FileName, "pages", doc.TotalPages,
		"hasTextLayer", doc.HasTextLayer, "avgFontSize", doc.GlobalAvgFontSize())
	return doc
}

// groupIntoRows buckets character runs by baseline Y within rowTolerance.
// Rows come back top-of-page first (PDF Y grows upward, so higher Y first).
func groupIntoRows(texts []lpdf.Text) [][]lpdf.Text {
	type bucket struct {
		yMin, yMax float64
		texts      []lpdf.Text
	}

	var buckets []bucket
	for _, t := range texts {
		placed := false
		for i := range buckets {
			if t.Y >= buckets[i].yMin-rowTolerance && t.Y <= buckets[i].yMax+rowTolerance {
				buckets[i].texts = append(buckets[i].texts, t)
				if t.Y < buckets[i].yMin {
					buckets[i].yMin = t.Y
				}
				if t.Y > buckets[i].yMax {
					buckets[i].yMax = t.Y
				}
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, bucket{yMin: t.Y, yMax: t.Y, texts: []lpdf.Text{t}})
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].yMax > buckets[j].yMax
	})

	rows := make([][]lpdf.Text, len(buckets))
	for i, b := range buckets {
		rows[i] = b.texts
	}
	return rows
}

// mergeRow merges a row's character runs into font-homogeneous spans.
func mergeRow(row []lpdf.Text, page int, pageH float64) []TextSpan {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var spans []TextSpan
	var cur *TextSpan
	var curText strings.Builder
	var lastEnd float64

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(curText.String())
		if cur.Text != "" && cur.BBox.X1 >= cur.BBox.X0 && cur.BBox.Y1 >= cur.BBox.Y0 {
			spans = append(spans, *cur)
		}
		cur = nil
		curText.Reset()
	}

	for _, t := range row {
		sameFont := cur != nil && cur.Font.Name == t.Font &&
			absDiff(cur.Font.Size, t.FontSize) < 0.01
		if !sameFont {
			flush()
			y1 := pageH - t.Y
			y0 := y1 - t.FontSize
			if y0 < 0 {
				y0 = 0
			}
			cur = &TextSpan{
				BBox:       BoundingBox{X0: t.X, Y0: y0, X1: t.X + t.W, Y1: y1},
				Font:       NewFontDescriptor(t.Font, t.FontSize, 0, nil),
				Page:       page,
				Kind:       "text",
				Confidence: 1.0,
			}
			curText.WriteString(t.S)
			lastEnd = t.X + t.W
			continue
		}

		gap := t.X - lastEnd
		threshold := wordSpaceMultiplier * cur.Font.Size
		if threshold <= 0 {
			threshold = 3.0
		}
		if gap > threshold {
			curText.WriteString(" ")
		}
		curText.WriteString(t.S)
		if t.X+t.W > cur.BBox.X1 {
			cur.BBox.X1 = t.X + t.W
		}
		lastEnd = t.X + t.W
	}
	flush()

	return spans
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
