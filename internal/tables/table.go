// Package tables extracts tabular data from PDF pages through a chain of
// engines: an external grid-detection service (lattice then stream mode)
// with a built-in whitespace-alignment engine as the fallback.
package tables

import (
	"strconv"
	"strings"

	"github.com/pdfstruct/pdfstruct/internal/pdf"
)

// Extraction method labels, recorded on each table for provenance.
const (
	MethodLattice    = "lattice"
	MethodStream     = "stream"
	MethodWhitespace = "whitespace"
)

// ExtractedTable is one table found on a page. Headers may be empty when
// no header row was recognized.
type ExtractedTable struct {
	Headers    []string        `json:"headers"`
	Rows       [][]string      `json:"rows"`
	Page       int             `json:"page"`
	BBox       pdf.BoundingBox `json:"bbox"`
	Confidence float64         `json:"confidence"`
	Method     string          `json:"method"`
}

// ColumnCount returns the widest row width, counting headers.
func (t ExtractedTable) ColumnCount() int {
	n := len(t.Headers)
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// TableToJSON projects a table into the serializable API shape.
func TableToJSON(t ExtractedTable) map[string]any {
	headers := t.Headers
	if headers == nil {
		headers = []string{}
	}
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return map[string]any{
		"headers":     headers,
		"rows":        rows,
		"page":        t.Page,
		"rowCount":    len(rows),
		"columnCount": t.ColumnCount(),
		"confidence":  t.Confidence,
		"method":      t.Method,
	}
}

// TablesToJSON projects every table, preserving order.
func TablesToJSON(ts []ExtractedTable) []map[string]any {
	out := make([]map[string]any, 0, len(ts))
	for _, t := range ts {
		out = append(out, TableToJSON(t))
	}
	return out
}

// firstRowIsHeader reports whether a row looks like a header: more than
// half its cells non-empty and at least one cell non-numeric.
func firstRowIsHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	nonEmpty := 0
	nonNumeric := false
	for _, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(strings.ReplaceAll(c, ",", ""), 64); err != nil {
			nonNumeric = true
		}
	}
	return nonEmpty*2 > len(row) && nonNumeric
}

// estimateConfidence scores a whitespace-inferred table: 0.5 base, +0.2
// for a recognized header, +0.2 when every row has the same width, plus
// cell fill rate weighted by 0.1. Clamped to [0, 1].
func estimateConfidence(t ExtractedTable) float64 {
	conf := 0.5
	if len(t.Headers) > 0 {
		conf += 0.2
	}

	uniform := true
	filled, total := 0, 0
	width := -1
	for _, r := range t.Rows {
		if width == -1 {
			width = len(r)
		} else if len(r) != width {
			uniform = false
		}
		for _, c := range r {
			total++
			if strings.TrimSpace(c) != "" {
				filled++
			}
		}
	}
	if uniform && len(t.Rows) > 0 {
		conf += 0.2
	}
	if total > 0 {
		conf += float64(filled) / float64(total) * 0.1
	}

	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}
