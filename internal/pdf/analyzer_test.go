package pdf

import (
	"testing"

	lpdf "github.com/ledongthuc/pdf"
)

func ch(s string, x, y, w, size float64, font string) lpdf.Text {
	return lpdf.Text{S: s, X: x, Y: y, W: w, FontSize: size, Font: font}
}

func TestGroupIntoRows(t *testing.T) {
	texts := []lpdf.Text{
		ch("a", 10, 700, 5, 12, "F"),
		ch("b", 20, 701, 5, 12, "F"), // same row, within tolerance
		ch("c", 10, 650, 5, 12, "F"), // lower on page
		ch("d", 10, 750, 5, 12, "F"), // higher on page
	}

	rows := groupIntoRows(texts)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// Top of page first: PDF y grows upward.
	if rows[0][0].S != "d" {
		t.Errorf("first row starts with %q, want d", rows[0][0].S)
	}
	if len(rows[1]) != 2 {
		t.Errorf("middle row has %d runs, want 2", len(rows[1]))
	}
	if rows[2][0].S != "c" {
		t.Errorf("last row starts with %q, want c", rows[2][0].S)
	}
}

func TestMergeRowJoinsSameFont(t *testing.T) {
	// "Hi" then a word gap then "there", all one font.
	row := []lpdf.Text{
		ch("H", 10, 700, 6, 12, "Helvetica"),
		ch("i", 16, 700, 4, 12, "Helvetica"),
		ch("t", 30, 700, 4, 12, "Helvetica"), // gap 10 > 0.3*12
		ch("h", 34, 700, 4, 12, "Helvetica"),
	}

	spans := mergeRow(row, 0, 792)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Text != "Hi th" {
		t.Errorf("merged text = %q, want %q", spans[0].Text, "Hi th")
	}
	if spans[0].BBox.X0 != 10 || spans[0].BBox.X1 != 38 {
		t.Errorf("bbox x = [%v,%v], want [10,38]", spans[0].BBox.X0, spans[0].BBox.X1)
	}
}

func TestMergeRowBreaksOnFontChange(t *testing.T) {
	row := []lpdf.Text{
		ch("A", 10, 700, 6, 12, "Helvetica"),
		ch("B", 16, 700, 6, 12, "Helvetica-Bold"),
		ch("C", 22, 700, 6, 14, "Helvetica-Bold"), // size change also breaks
	}

	spans := mergeRow(row, 0, 792)
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}
	if !spans[1].Font.Bold {
		t.Error("second span should be bold from font name")
	}
}

func TestMergeRowTopOriginFlip(t *testing.T) {
	row := []lpdf.Text{ch("x", 10, 700, 5, 12, "F")}

	spans := mergeRow(row, 0, 792)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	// Baseline at 700 from the bottom of a 792pt page sits 92pt from the top.
	if spans[0].BBox.Y1 != 92 {
		t.Errorf("y1 = %v, want 92", spans[0].BBox.Y1)
	}
	if spans[0].BBox.Y0 != 80 {
		t.Errorf("y0 = %v, want 80", spans[0].BBox.Y0)
	}
}

func TestMergeRowDropsEmpty(t *testing.T) {
	row := []lpdf.Text{
		ch(" ", 10, 700, 3, 12, "F"),
		ch("  ", 14, 700, 6, 12, "F"),
	}
	if spans := mergeRow(row, 0, 792); len(spans) != 0 {
		t.Errorf("got %d spans from whitespace-only row, want 0", len(spans))
	}
}
