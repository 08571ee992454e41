// Package tree assembles extracted structure into a rich-text document
// tree (doc, heading, paragraph, table, list nodes) ready for editors and
// renderers that consume the JSON shape.
package tree

import (
	"fmt"
	"strings"

	"github.com/pdfstruct/pdfstruct/internal/pdf"
)

// Node is one tree vertex. Leaf text lives in Text with Type "text";
// everything else is a container with Content children.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// Count returns the total number of nodes in the subtree, including the
// receiver.
func (n Node) Count() int {
	total := 1
	for _, c := range n.Content {
		total += c.Count()
	}
	return total
}

// NewDoc wraps content in the root document node.
func NewDoc(content []Node) Node {
	if content == nil {
		content = []Node{}
	}
	return Node{Type: "doc", Content: content}
}

func textLeaf(text string) Node {
	return Node{Type: "text", Text: text}
}

// NewHeading builds a heading node. Levels clamp to [1, 6]. Provenance
// (page, confidence, font) rides along in attrs.
func NewHeading(text string, level, page int, confidence float64, font string) Node {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	attrs := map[string]any{
		"level": level,
		"page":  page,
	}
	if confidence > 0 {
		attrs["confidence"] = confidence
	}
	if font != "" {
		attrs["font"] = font
	}
	return Node{Type: "heading", Attrs: attrs, Content: []Node{textLeaf(text)}}
}

// NewParagraph builds a paragraph node. Empty text yields an empty
// paragraph with no text leaf.
func NewParagraph(text string, page int) Node {
	n := Node{Type: "paragraph", Attrs: map[string]any{"page": page}}
	if text != "" {
		n.Content = []Node{textLeaf(text)}
	}
	return n
}

// NewParagraphWithFont is NewParagraph carrying the source span's font
// descriptor in attrs, for consumers that restyle body text.
func NewParagraphWithFont(text string, page int, font *pdf.FontDescriptor) Node {
	n := NewParagraph(text, page)
	if font != nil {
		n.Attrs["font"] = map[string]any{
			"name":   font.Name,
			"size":   font.Size,
			"bold":   font.Bold,
			"italic": font.Italic,
		}
	}
	return n
}

// NewTablePlaceholder marks a table that was located but not extracted.
// The page renders one-based for readers.
func NewTablePlaceholder(page int) Node {
	return NewParagraph(fmt.Sprintf("[Table on page %d]", page+1), page)
}

// NewFigurePlaceholder marks a detected figure.
func NewFigurePlaceholder(page int, caption string) Node {
	text := fmt.Sprintf("[Figure on page %d]", page+1)
	if caption != "" {
		text += " " + caption
	}
	return NewParagraph(text, page)
}

// NewDivider is a horizontal rule.
func NewDivider() Node {
	return Node{Type: "horizontalRule"}
}

// NewBlockquote wraps text in a blockquote holding one paragraph.
func NewBlockquote(text string, page int) Node {
	return Node{Type: "blockquote", Content: []Node{NewParagraph(text, page)}}
}

// NewListItem wraps text in a listItem holding one paragraph.
func NewListItem(text string, page int) Node {
	return Node{Type: "listItem", Content: []Node{NewParagraph(text, page)}}
}

// NewBulletList wraps items in a bulletList.
func NewBulletList(items []Node) Node {
	return Node{Type: "bulletList", Content: items}
}

// NewTableNode builds a real table node: a header row of tableHeader cells
// when headers exist, then one tableRow of tableCells per data row. Cell
// text sits in a paragraph, matching the editor schema.
func NewTableNode(headers []string, rows [][]string, page int) Node {
	var content []Node

	cellOf := func(cellType, text string) Node {
		return Node{Type: cellType, Content: []Node{NewParagraph(strings.TrimSpace(text), page)}}
	}

	if len(headers) > 0 {
		cells := make([]Node, 0, len(headers))
		for _, h := range headers {
			cells = append(cells, cellOf("tableHeader", h))
		}
		content = append(content, Node{Type: "tableRow", Content: cells})
	}
	for _, row := range rows {
		cells := make([]Node, 0, len(row))
		for _, c := range row {
			cells = append(cells, cellOf("tableCell", c))
		}
		content = append(content, Node{Type: "tableRow", Content: cells})
	}

	return Node{Type: "table", Attrs: map[string]any{"page": page}, Content: content}
}
