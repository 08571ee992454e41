// Package headings classifies text spans as document headings, either by
// comparing font sizes against the document average or by matching a
// caller-supplied reference region's dominant font.
package headings

import (
	"strings"

	"github.com/pdfstruct/pdfstruct/internal/pdf"
)

// Strategy identifies which detection path produced a heading.
type Strategy string

const (
	StrategyRatio     Strategy = "ratio"
	StrategyReference Strategy = "reference"
	StrategyLayout    Strategy = "layout"
)

// Heading is a classified heading span.
type Heading struct {
	Text       string             `json:"text"`
	Level      int                `json:"level"`
	Page       int                `json:"page"`
	BBox       pdf.BoundingBox    `json:"bbox"`
	Font       pdf.FontDescriptor `json:"font"`
	Confidence float64            `json:"confidence"`
	Strategy   Strategy           `json:"strategy"`
}

// TOCEntry is one table-of-contents line derived from a heading. It keeps
// the heading's font size, bbox origin, and confidence so consumers can
// re-rank or re-anchor entries without the full heading record.
type TOCEntry struct {
	Title      string  `json:"title"`
	Level      int     `json:"level"`
	Page       int     `json:"page"`
	FontSize   float64 `json:"fontSize"`
	X0         float64 `json:"x0"`
	Y0         float64 `json:"y0"`
	Confidence float64 `json:"confidence"`
}

// BuildTOC projects headings into table-of-contents entries, preserving
// document order.
func BuildTOC(hs []Heading) []TOCEntry {
	toc := make([]TOCEntry, 0, len(hs))
	for _, h := range hs {
		toc = append(toc, TOCEntry{
			Title:      strings.TrimSpace(h.Text),
			Level:      h.Level,
			Page:       h.Page,
			FontSize:   h.Font.Size,
			X0:         h.BBox.X0,
			Y0:         h.BBox.Y0,
			Confidence: h.Confidence,
		})
	}
	return toc
}

// Thresholds are the tunables of the ratio strategy. Ratios compare a
// span's font size against the document-wide average.
type Thresholds struct {
	H1Ratio       float64 `json:"h1Ratio" yaml:"h1_ratio"`
	H2Ratio       float64 `json:"h2Ratio" yaml:"h2_ratio"`
	H3Ratio       float64 `json:"h3Ratio" yaml:"h3_ratio"`
	MinConfidence float64 `json:"minConfidence" yaml:"min_confidence"`
	MaxTitleLen   int     `json:"maxTitleLen" yaml:"max_title_len"`
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		H1Ratio:       1.8,
		H2Ratio:       1.4,
		H3Ratio:       1.2,
		MinConfidence: 0.6,
		MaxTitleLen:   200,
	}
}
