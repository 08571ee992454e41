package headings

import (
	"log/slog"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfstruct/pdfstruct/internal/pdf"
)

// Numbering shapes that commonly open a heading line. Matching one adds a
// confidence bonus; none of these is required.
var numberingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+(\.\d+)*\.?\s`),              // 1.  /  1.2  /  1.2.3
	regexp.MustCompile(`^제\s*\d+\s*[장절조항]`),           // 제1장, 제 2 절
	regexp.MustCompile(`(?i)^(chapter|section|part)\s+\d+`), // Chapter 3
	regexp.MustCompile(`^[IVXLCDM]+\.\s`),                // IV. Results
	regexp.MustCompile(`^\d+\s*-\s*\d+`),                 // 2-1
	regexp.MustCompile(`^\[[^\]]+\]`),                    // [부록]
	regexp.MustCompile(`^\d+(\.\d+)?\)\s`),               // 1)  /  1.1)
}

// Confidence scoring weights for the ratio strategy. A candidate starts at
// base and must reach Thresholds.MinConfidence to survive.
const (
	confBase      = 0.5
	confBold      = 0.2
	confPosition  = 0.2
	confNumbering = 0.3

	// reference-matched headings are near certain
	referenceConfidence = 0.95
	referenceSizeTol    = 0.5

	// titles repeated this often are running headers, not headings
	repeatLimit = 5
)

// Classifier detects headings in an analyzed document.
type Classifier struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// NewClassifier builds a classifier. A nil logger falls back to the default.
func NewClassifier(t Thresholds, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{thresholds: t, logger: logger}
}

// Detect runs the ratio strategy over the whole document. Span font sizes
// are compared against the document-wide average; candidates then pass
// confidence scoring and the repeated-title filter. The result preserves
// document order.
func (c *Classifier) Detect(doc *pdf.DocumentAnalysis) []Heading {
	avg := doc.GlobalAvgFontSize()
	if avg == 0 {
		return nil
	}

	var candidates []Heading
	for _, page := range doc.Pages {
		for _, s := range page.Spans {
			level := c.levelFor(s.Font.Size, avg)
			if level == 0 {
				continue
			}
			text := strings.TrimSpace(s.Text)
			// character count, not bytes: Korean titles run 3 bytes per rune
			if n := len([]rune(text)); n == 0 || n > c.thresholds.MaxTitleLen {
				continue
			}
			conf := scoreConfidence(s, page.Width, page.Height)
			if conf < c.thresholds.MinConfidence {
				continue
			}
			candidates = append(candidates, Heading{
				Text:       text,
				Level:      level,
				Page:       s.Page,
				BBox:       s.BBox,
				Font:       s.Font,
				Confidence: conf,
				Strategy:   StrategyRatio,
			})
		}
	}

	result := filterFalsePositives(candidates)
	c.logger.Info("heading detection done",
		"strategy", StrategyRatio, "candidates", len(candidates), "kept", len(result))
	return result
}

// levelFor maps a font size to a heading level, or 0 for body text.
func (c *Classifier) levelFor(size, avg float64) int {
	ratio := size / avg
	switch {
	case ratio >= c.thresholds.H1Ratio:
		return 1
	case ratio >= c.thresholds.H2Ratio:
		return 2
	case ratio >= c.thresholds.H3Ratio:
		return 3
	default:
		return 0
	}
}

// scoreConfidence accumulates bonuses for boldness, page position (left
// margin or upper region), and a numbering prefix.
func scoreConfidence(s pdf.TextSpan, pageW, pageH float64) float64 {
	conf := confBase
	if s.Font.Bold {
		conf += confBold
	}
	if s.BBox.X0 < 0.3*pageW || s.BBox.Y0 < 150 || s.BBox.Y0 < 0.2*pageH {
		conf += confPosition
	}
	text := strings.TrimSpace(s.Text)
	for _, re := range numberingPatterns {
		if re.MatchString(text) {
			conf += confNumbering
			break
		}
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// filterFalsePositives drops titles repeated repeatLimit or more times
// (running headers), titles shorter than two characters, and purely
// numeric titles (page numbers).
func filterFalsePositives(candidates []Heading) []Heading {
	counts := make(map[string]int, len(candidates))
	for _, h := range candidates {
		counts[h.Text]++
	}

	kept := make([]Heading, 0, len(candidates))
	for _, h := range candidates {
		if counts[h.Text] >= repeatLimit {
			continue
		}
		if len([]rune(h.Text)) < 2 {
			continue
		}
		if isNumericTitle(h.Text) {
			continue
		}
		kept = append(kept, h)
	}
	return kept
}

// isNumericTitle reports whether the title is digits only, ignoring dots
// and spaces.
func isNumericTitle(s string) bool {
	seen := false
	for _, r := range s {
		if r == '.' || r == ' ' {
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
		seen = true
	}
	return seen
}

type fontKey struct {
	name string
	size float64 // rounded to 0.1pt
}

// DetectWithReference runs the reference strategy: the caller supplies a
// vertical window [yMin, yMax] known to contain headings; spans whose
// bbox y0 falls in that window on any page elect a dominant (font, size)
// pair, which is then matched across the whole document. Matched headings
// are all level 1. An empty window falls back to the ratio strategy.
func (c *Classifier) DetectWithReference(doc *pdf.DocumentAnalysis, yMin, yMax float64) []Heading {
	var window []pdf.TextSpan
	for _, s := range doc.AllSpans() {
		if s.BBox.Y0 >= yMin && s.BBox.Y0 <= yMax {
			window = append(window, s)
		}
	}
	if len(window) == 0 {
		c.logger.Warn("reference window matched no spans, falling back to ratio strategy",
			"yMin", yMin, "yMax", yMax)
		return c.Detect(doc)
	}

	ref := dominantFontKey(window)
	c.logger.Info("reference font resolved",
		"font", ref.name, "size", ref.size, "windowSpans", len(window))

	var out []Heading
	seen := make(map[string]bool)
	for _, s := range doc.AllSpans() {
		if s.Font.Name != ref.name || math.Abs(s.Font.Size-ref.size) > referenceSizeTol {
			continue
		}
		text := strings.TrimSpace(s.Text)
		if len([]rune(text)) < 2 || isNumericTitle(text) {
			continue
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, Heading{
			Text:       text,
			Level:      1,
			Page:       s.Page,
			BBox:       s.BBox,
			Font:       s.Font,
			Confidence: referenceConfidence,
			Strategy:   StrategyReference,
		})
	}

	c.logger.Info("heading detection done",
		"strategy", StrategyReference, "kept", len(out))
	return out
}

// dominantFontKey returns the most frequent (name, size) pair, size rounded
// to one decimal. Ties resolve to the pair seen first.
func dominantFontKey(spans []pdf.TextSpan) fontKey {
	counts := make(map[fontKey]int)
	order := make(map[fontKey]int)
	for i, s := range spans {
		k := fontKey{name: s.Font.Name, size: math.Round(s.Font.Size*10) / 10}
		if _, ok := order[k]; !ok {
			order[k] = i
		}
		counts[k]++
	}

	var best fontKey
	bestN := -1
	for k, n := range counts {
		if n > bestN || (n == bestN && order[k] < order[best]) {
			best, bestN = k, n
		}
	}
	return best
}
