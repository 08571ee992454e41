package tables

import (
	"math"
	"testing"

	"github.com/pdfstruct/pdfstruct/internal/pdf"
)

func TestFirstRowIsHeader(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{"labels", []string{"Name", "Revenue", "Year"}, true},
		{"all numeric", []string{"1", "2,500", "3.14"}, false},
		{"mostly empty", []string{"Name", "", ""}, false},
		{"empty row", nil, false},
		{"mixed majority", []string{"Region", "2024", ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstRowIsHeader(tt.row); got != tt.want {
				t.Errorf("firstRowIsHeader(%v) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}

func TestEstimateConfidence(t *testing.T) {
	t.Run("full table", func(t *testing.T) {
		tab := ExtractedTable{
			Headers: []string{"a", "b"},
			Rows:    [][]string{{"1", "2"}, {"3", "4"}},
		}
		// 0.5 base + 0.2 header + 0.2 uniform + 1.0 fill * 0.1 = 1.0
		if got := estimateConfidence(tab); math.Abs(got-1.0) > 1e-9 {
			t.Errorf("confidence = %v, want 1.0", got)
		}
	})
	t.Run("ragged no header", func(t *testing.T) {
		tab := ExtractedTable{
			Rows: [][]string{{"1", "2"}, {"3"}},
		}
		// 0.5 base + fill 1.0 * 0.1 = 0.6
		if got := estimateConfidence(tab); math.Abs(got-0.6) > 1e-9 {
			t.Errorf("confidence = %v, want 0.6", got)
		}
	})
	t.Run("bounds", func(t *testing.T) {
		tabs := []ExtractedTable{
			{},
			{Headers: []string{"x"}, Rows: [][]string{{"", ""}}},
			{Rows: [][]string{{"a", "b", "c"}}},
		}
		for _, tab := range tabs {
			got := estimateConfidence(tab)
			if got < 0 || got > 1 {
				t.Errorf("confidence %v out of [0,1] for %+v", got, tab)
			}
		}
	})
}

func TestTableToJSON(t *testing.T) {
	tab := ExtractedTable{
		Headers:    []string{"Name", "Qty"},
		Rows:       [][]string{{"bolts", "40"}, {"nuts", "12"}},
		Page:       2,
		Confidence: 0.8,
		Method:     MethodStream,
	}
	j := TableToJSON(tab)
	if j["rowCount"] != 2 || j["columnCount"] != 2 {
		t.Errorf("counts = %v/%v, want 2/2", j["rowCount"], j["columnCount"])
	}
	if j["page"] != 2 || j["method"] != MethodStream {
		t.Errorf("page/method = %v/%v", j["page"], j["method"])
	}

	t.Run("nil slices serialize empty", func(t *testing.T) {
		j := TableToJSON(ExtractedTable{})
		if j["headers"] == nil || j["rows"] == nil {
			t.Error("nil headers/rows must project as empty slices")
		}
	})
}

func tspan(text string, x0, y0 float64) pdf.TextSpan {
	return pdf.TextSpan{
		Text: text,
		BBox: pdf.BoundingBox{X0: x0, Y0: y0, X1: x0 + 40, Y1: y0 + 10},
		Font: pdf.FontDescriptor{Name: "F", Size: 10},
	}
}

func TestTablesFromSpans(t *testing.T) {
	// Three rows aligned on two column anchors (x=50 and x=200).
	spans := []pdf.TextSpan{
		tspan("Item", 50, 100), tspan("Price", 200, 100),
		tspan("apple", 50, 120), tspan("3.50", 200, 120),
		tspan("pear", 50, 140), tspan("2.00", 200, 140),
	}

	got := TablesFromSpans(spans, 4)
	if len(got) != 1 {
		t.Fatalf("got %d tables, want 1", len(got))
	}
	tab := got[0]
	if tab.Page != 4 || tab.Method != MethodWhitespace {
		t.Errorf("page/method = %d/%q", tab.Page, tab.Method)
	}
	if len(tab.Headers) != 2 || tab.Headers[0] != "Item" {
		t.Errorf("headers = %v", tab.Headers)
	}
	if len(tab.Rows) != 2 || tab.Rows[0][1] != "3.50" {
		t.Errorf("rows = %v", tab.Rows)
	}
	if tab.Confidence <= 0 || tab.Confidence > 1 {
		t.Errorf("confidence = %v", tab.Confidence)
	}
	if tab.BBox.X0 != 50 || tab.BBox.Y0 != 100 {
		t.Errorf("bbox = %+v", tab.BBox)
	}
}

func TestTablesFromSpansProseIgnored(t *testing.T) {
	// Single-cell rows are prose paragraphs, never a table.
	spans := []pdf.TextSpan{
		tspan("one long sentence", 50, 100),
		tspan("another sentence", 50, 120),
		tspan("a third sentence", 50, 140),
		tspan("a fourth one", 50, 160),
	}
	if got := TablesFromSpans(spans, 0); len(got) != 0 {
		t.Errorf("got %d tables from prose, want 0", len(got))
	}
}

func TestTablesFromSpansTooFewRows(t *testing.T) {
	spans := []pdf.TextSpan{
		tspan("a", 50, 100), tspan("b", 200, 100),
		tspan("c", 50, 120), tspan("d", 200, 120),
	}
	if got := TablesFromSpans(spans, 0); len(got) != 0 {
		t.Errorf("got %d tables from two rows, want 0", len(got))
	}
}
