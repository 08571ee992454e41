package tables

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pdfstruct/pdfstruct/internal/pdf"
)

// Whitespace-alignment tuning: rows group on Y within rowYTol, column
// anchors merge on X within colXTol, and a table needs at least minRows
// consecutive multi-cell rows spanning minCols aligned columns.
const (
	rowYTol = 5.0
	colXTol = 15.0
	minRows = 3
	minCols = 2
)

// WhitespaceEngine infers tables from text-span alignment. It has no
// external dependency and is always available, which makes it the terminal
// fallback of the engine chain.
type WhitespaceEngine struct {
	logger *slog.Logger
}

// NewWhitespaceEngine builds the engine. A nil logger falls back to the
// default.
func NewWhitespaceEngine(logger *slog.Logger) *WhitespaceEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &WhitespaceEngine{logger: logger}
}

func (w *WhitespaceEngine) Name() string { return "whitespace" }

// Available always reports true.
func (w *WhitespaceEngine) Available(ctx context.Context) bool { return true }

// Extract opens the document, reads the page's spans, and infers tables
// from their alignment. The mode argument is ignored.
func (w *WhitespaceEngine) Extract(ctx context.Context, path string, page int, _ Mode) ([]ExtractedTable, error) {
	a, err := pdf.Open(path, w.logger)
	if err != nil {
		return nil, fmt.Errorf("whitespace engine: %w", err)
	}
	defer a.Close()

	if page < 0 || page >= a.PageCount() {
		return nil, fmt.Errorf("whitespace engine: page %d out of range", page)
	}

	tables := TablesFromSpans(a.ExtractSpans(page), page)
	w.logger.Debug("whitespace extraction done", "page", page, "tables", len(tables))
	return tables, nil
}

// TablesFromSpans infers tables from span alignment: consecutive runs of
// rows that each hold at least two cells, sharing at least two column
// anchors. Confidence is estimated from header presence, row uniformity,
// and cell fill rate.
func TablesFromSpans(spans []pdf.TextSpan, page int) []ExtractedTable {
	rows := groupSpanRows(spans)

	var tables []ExtractedTable
	var run [][]pdf.TextSpan
	flush := func() {
		if len(run) >= minRows {
			if t, ok := buildTable(run, page); ok {
				tables = append(tables, t)
			}
		}
		run = nil
	}

	for _, row := range rows {
		if len(row) >= minCols {
			run = append(run, row)
			continue
		}
		flush()
	}
	flush()

	return tables
}

// groupSpanRows buckets spans into rows by top Y within rowYTol, returning
// rows top to bottom with spans left to right.
func groupSpanRows(spans []pdf.TextSpan) [][]pdf.TextSpan {
	type bucket struct {
		y     float64
		spans []pdf.TextSpan
	}

	var buckets []*bucket
	for _, s := range spans {
		placed := false
		for _, b := range buckets {
			if s.BBox.Y0 >= b.y-rowYTol && s.BBox.Y0 <= b.y+rowYTol {
				b.spans = append(b.spans, s)
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, &bucket{y: s.BBox.Y0, spans: []pdf.TextSpan{s}})
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].y < buckets[j].y })

	rows := make([][]pdf.TextSpan, len(buckets))
	for i, b := range buckets {
		sort.SliceStable(b.spans, func(x, y int) bool {
			return b.spans[x].BBox.X0 < b.spans[y].BBox.X0
		})
		rows[i] = b.spans
	}
	return rows
}

// buildTable turns a run of aligned rows into a table, or reports false
// when the rows do not share enough column anchors.
func buildTable(run [][]pdf.TextSpan, page int) (ExtractedTable, bool) {
	cols := columnAnchors(run)
	if len(cols) < minCols {
		return ExtractedTable{}, false
	}

	var bbox pdf.BoundingBox
	first := true
	grid := make([][]string, len(run))
	for i, row := range run {
		cells := make([]string, len(cols))
		for _, s := range row {
			c := nearestColumn(cols, s.BBox.X0)
			if cells[c] == "" {
				cells[c] = s.Text
			} else {
				cells[c] = cells[c] + " " + s.Text
			}
			if first {
				bbox = s.BBox
				first = false
			} else {
				bbox = union(bbox, s.BBox)
			}
		}
		grid[i] = cells
	}

	t := ExtractedTable{
		Rows:   grid,
		Page:   page,
		BBox:   bbox,
		Method: MethodWhitespace,
	}
	if firstRowIsHeader(grid[0]) {
		t.Headers = grid[0]
		t.Rows = grid[1:]
	}
	t.Confidence = estimateConfidence(t)
	return t, true
}

// columnAnchors clusters the left edges of the run's spans within colXTol.
// Only anchors hit by more than one row count; a single wide row is prose,
// not a table.
func columnAnchors(run [][]pdf.TextSpan) []float64 {
	type anchor struct {
		x    float64
		n    int
		rows map[int]bool
	}

	var anchors []*anchor
	for ri, row := range run {
		for _, s := range row {
			placed := false
			for _, a := range anchors {
				if s.BBox.X0 >= a.x-colXTol && s.BBox.X0 <= a.x+colXTol {
					a.n++
					a.rows[ri] = true
					placed = true
					break
				}
			}
			if !placed {
				anchors = append(anchors, &anchor{
					x: s.BBox.X0, n: 1, rows: map[int]bool{ri: true},
				})
			}
		}
	}

	var cols []float64
	for _, a := range anchors {
		if len(a.rows) > 1 {
			cols = append(cols, a.x)
		}
	}
	sort.Float64s(cols)
	return cols
}

func nearestColumn(cols []float64, x float64) int {
	best := 0
	for i, c := range cols {
		if abs(x-c) < abs(x-cols[best]) {
			best = i
		}
	}
	return best
}

func union(a, b pdf.BoundingBox) pdf.BoundingBox {
	if b.X0 < a.X0 {
		a.X0 = b.X0
	}
	if b.Y0 < a.Y0 {
		a.Y0 = b.Y0
	}
	if b.X1 > a.X1 {
		a.X1 = b.X1
	}
	if b.Y1 > a.Y1 {
		a.Y1 = b.Y1
	}
	return a
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
