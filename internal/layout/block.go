// Package layout models page-layout blocks, talks to the external layout
// detection service, and orders blocks into natural reading order.
package layout

import (
	"github.com/pdfstruct/pdfstruct/internal/pdf"
)

// Block kinds, following the detector's taxonomy.
const (
	KindText    = "text"
	KindTitle   = "title"
	KindList    = "list"
	KindTable   = "table"
	KindFigure  = "figure"
	KindCaption = "caption"
	KindHeader  = "header"
	KindFooter  = "footer"
)

// Block is one layout region on a page, either reported by the detector or
// lifted from a text-layer span.
type Block struct {
	Kind       string             `json:"kind"`
	Text       string             `json:"text"`
	BBox       pdf.BoundingBox    `json:"bbox"`
	Page       int                `json:"page"`
	Confidence float64            `json:"confidence"`
	Order      int                `json:"order"`

	// Font carries span provenance on the text-layer path; nil for
	// detector-reported blocks.
	Font *pdf.FontDescriptor `json:"font,omitempty"`
}

// FromSpans lifts text spans into blocks so both extraction paths share the
// ordering engine and the tree builder.
func FromSpans(spans []pdf.TextSpan) []Block {
	blocks := make([]Block, 0, len(spans))
	for i := range spans {
		s := spans[i]
		font := s.Font
		blocks = append(blocks, Block{
			Kind:       KindText,
			Text:       s.Text,
			BBox:       s.BBox,
			Page:       s.Page,
			Confidence: s.Confidence,
			Font:       &font,
		})
	}
	return blocks
}
