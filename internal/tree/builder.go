package tree

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/pdfstruct/pdfstruct/internal/headings"
	"github.com/pdfstruct/pdfstruct/internal/layout"
	"github.com/pdfstruct/pdfstruct/internal/tables"
)

// Builder assembles ordered layout blocks, detected headings, and extracted
// tables into one document tree. Assembly is deterministic for a fixed
// input: map-backed lookups are keyed, not iterated.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder returns a builder. A nil logger falls back to the default.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

type headingKey struct {
	page int
	text string
}

// headingIndex matches blocks to detected headings by (page, trimmed text).
// Each detection is consumed at most once, so a title repeated on one page
// only promotes the first matching block.
type headingIndex struct {
	pending map[headingKey][]headings.Heading
}

func indexHeadings(hs []headings.Heading) *headingIndex {
	idx := &headingIndex{pending: make(map[headingKey][]headings.Heading)}
	for _, h := range hs {
		k := headingKey{page: h.Page, text: strings.TrimSpace(h.Text)}
		idx.pending[k] = append(idx.pending[k], h)
	}
	return idx
}

// take consumes and returns the heading matching the block, if any.
func (idx *headingIndex) take(page int, text string) (headings.Heading, bool) {
	k := headingKey{page: page, text: strings.TrimSpace(text)}
	q := idx.pending[k]
	if len(q) == 0 {
		return headings.Heading{}, false
	}
	h := q[0]
	if len(q) == 1 {
		delete(idx.pending, k)
	} else {
		idx.pending[k] = q[1:]
	}
	return h, true
}

// tableIndex hands out a page's extracted tables in order.
type tableIndex struct {
	byPage map[int][]tables.ExtractedTable
}

func indexTables(ts []tables.ExtractedTable) *tableIndex {
	idx := &tableIndex{byPage: make(map[int][]tables.ExtractedTable)}
	for _, t := range ts {
		idx.byPage[t.Page] = append(idx.byPage[t.Page], t)
	}
	return idx
}

func (idx *tableIndex) take(page int) (tables.ExtractedTable, bool) {
	q := idx.byPage[page]
	if len(q) == 0 {
		return tables.ExtractedTable{}, false
	}
	t := q[0]
	idx.byPage[page] = q[1:]
	return t, true
}

// remaining returns the tables never claimed by a layout block, ordered by
// page and, within a page, by extraction order.
func (idx *tableIndex) remaining() []tables.ExtractedTable {
	pages := make([]int, 0, len(idx.byPage))
	for p, q := range idx.byPage {
		if len(q) > 0 {
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)

	var out []tables.ExtractedTable
	for _, p := range pages {
		out = append(out, idx.byPage[p]...)
	}
	return out
}

// Build assembles the tree from blocks already in reading order (page
// order outer, reading order inner), the detected headings, and any
// extracted tables. Tables no block claimed (the text-layer path has no
// table blocks) append after the body in page order.
func (b *Builder) Build(blocks []layout.Block, hs []headings.Heading, ts []tables.ExtractedTable) Node {
	hIdx := indexHeadings(hs)
	tIdx := indexTables(ts)

	var content []Node
	for _, blk := range blocks {
		content = append(content, b.nodeFor(blk, hIdx, tIdx)...)
	}
	for _, t := range tIdx.remaining() {
		content = append(content, NewTableNode(t.Headers, t.Rows, t.Page))
	}

	doc := NewDoc(content)
	b.logger.Info("tree assembled", "blocks", len(blocks), "nodes", doc.Count())
	return doc
}

// nodeFor maps one block to tree nodes.
func (b *Builder) nodeFor(blk layout.Block, hIdx *headingIndex, tIdx *tableIndex) []Node {
	text := strings.TrimSpace(blk.Text)

	switch blk.Kind {
	case layout.KindTable:
		if t, ok := tIdx.take(blk.Page); ok {
			nodes := []Node{NewTableNode(t.Headers, t.Rows, t.Page)}
			if text != "" {
				// merged caption survives below the table
				nodes = append(nodes, NewParagraph(text, blk.Page))
			}
			return nodes
		}
		return []Node{NewTablePlaceholder(blk.Page)}

	case layout.KindFigure:
		return []Node{NewFigurePlaceholder(blk.Page, text)}

	case layout.KindTitle:
		if h, ok := hIdx.take(blk.Page, text); ok {
			return []Node{NewHeading(h.Text, h.Level, h.Page, h.Confidence, h.Font.Name)}
		}
		if text == "" {
			return nil
		}
		return []Node{NewHeading(text, 1, blk.Page, blk.Confidence, "")}

	case layout.KindList:
		if text == "" {
			return nil
		}
		items := []Node{}
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				items = append(items, NewListItem(line, blk.Page))
			}
		}
		if len(items) == 0 {
			return nil
		}
		return []Node{NewBulletList(items)}

	case layout.KindHeader, layout.KindFooter:
		// margins are stripped upstream; drop stragglers
		return nil

	default: // text, caption, anything unmapped
		if text == "" {
			return nil
		}
		if h, ok := hIdx.take(blk.Page, text); ok {
			return []Node{NewHeading(h.Text, h.Level, h.Page, h.Confidence, h.Font.Name)}
		}
		return []Node{NewParagraphWithFont(text, blk.Page, blk.Font)}
	}
}

// PrependTOC inserts a "Table of Contents" section at the head of the
// document: a level-1 heading, a bullet list whose items indent two spaces
// per level below 1, and a divider before the body.
func PrependTOC(doc Node, entries []headings.TOCEntry) Node {
	if len(entries) == 0 {
		return doc
	}

	items := make([]Node, 0, len(entries))
	for _, e := range entries {
		indent := strings.Repeat("  ", maxInt(e.Level-1, 0))
		items = append(items, NewListItem(indent+e.Title, e.Page))
	}

	head := []Node{
		NewHeading("Table of Contents", 1, 0, 0, ""),
		NewBulletList(items),
		NewDivider(),
	}
	doc.Content = append(head, doc.Content...)
	return doc
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
