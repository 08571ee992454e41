package pdf

import "strings"

// Font style flag bits, matching the convention used by span-level PDF
// text extractors. Flag extraction is unreliable in some documents, so
// style detection also falls back to a substring match on the font name.
const (
	FlagItalic = 1 << 1
	FlagBold   = 1 << 4
)

// FontDescriptor describes the font of a single text span.
type FontDescriptor struct {
	Name   string  `json:"name"`
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold"`
	Italic bool    `json:"italic"`
	Color  *int    `json:"color,omitempty"`
}

// NewFontDescriptor derives bold/italic from the style flag bitmask OR-ed
// with a name substring match.
func NewFontDescriptor(name string, size float64, flags int, color *int) FontDescriptor {
	return FontDescriptor{
		Name:   name,
		Size:   size,
		Bold:   flags&FlagBold != 0 || strings.Contains(name, "Bold"),
		Italic: flags&FlagItalic != 0 || strings.Contains(name, "Italic") || strings.Contains(name, "Oblique"),
		Color:  color,
	}
}

// TextSpan is a maximal run of text sharing one font within a page.
// Immutable once extracted.
type TextSpan struct {
	Text       string         `json:"text"`
	BBox       BoundingBox    `json:"bbox"`
	Font       FontDescriptor `json:"font"`
	Page       int            `json:"page"`
	Kind       string         `json:"kind"`
	Confidence float64        `json:"confidence"`
}

// PageAnalysis aggregates the spans of one page.
type PageAnalysis struct {
	Page         int        `json:"page"`
	Width        float64    `json:"width"`
	Height       float64    `json:"height"`
	HasTextLayer bool       `json:"hasTextLayer"`
	Spans        []TextSpan `json:"spans"`
	DominantFont string     `json:"dominantFont,omitempty"`

	avgFontSize float64
}

// AvgFontSize returns the arithmetic mean of span font sizes on the page.
// The value is cached; it is recomputed only while the cache is exactly
// zero, so the computation is idempotent for a fixed span set.
func (p *PageAnalysis) AvgFontSize() float64 {
	if p.avgFontSize == 0 {
		p.avgFontSize = meanFontSize(p.Spans)
	}
	return p.avgFontSize
}

// DocumentAnalysis aggregates all pages of one document.
type DocumentAnalysis struct {
	FileName     string          `json:"fileName"`
	TotalPages   int             `json:"totalPages"`
	HasTextLayer bool            `json:"hasTextLayer"`
	Pages        []*PageAnalysis `json:"pages"`

	globalAvgFontSize float64
}

// GlobalAvgFontSize returns the mean font size over every span in the
// document, unweighted by text length. Cached like PageAnalysis.
func (d *DocumentAnalysis) GlobalAvgFontSize() float64 {
	if d.globalAvgFontSize == 0 {
		var all []TextSpan
		for _, p := range d.Pages {
			all = append(all, p.Spans...)
		}
		d.globalAvgFontSize = meanFontSize(all)
	}
	return d.globalAvgFontSize
}

// AllSpans returns the document's spans in page order.
func (d *DocumentAnalysis) AllSpans() []TextSpan {
	var all []TextSpan
	for _, p := range d.Pages {
		all = append(all, p.Spans...)
	}
	return all
}

func meanFontSize(spans []TextSpan) float64 {
	if len(spans) == 0 {
		return 0
	}
	var total float64
	for _, s := range spans {
		total += s.Font.Size
	}
	return total / float64(len(spans))
}

// dominantFont returns the statistical mode of span font names. Ties go to
// the font seen first in span order.
func dominantFont(spans []TextSpan) string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, s := range spans {
		if _, ok := firstSeen[s.Font.Name]; !ok {
			firstSeen[s.Font.Name] = i
		}
		counts[s.Font.Name]++
	}
	best := ""
	for name, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && firstSeen[name] < firstSeen[best]) {
			best = name
		}
	}
	return best
}
