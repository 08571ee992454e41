package tables

import (
	"context"
	"errors"
	"testing"
)

// fakeEngine scripts per-mode results for the chain tests.
type fakeEngine struct {
	name      string
	available bool
	byMode    map[Mode][]ExtractedTable
	errByMode map[Mode]error
	calls     []Mode
}

func (f *fakeEngine) Name() string                         { return f.name }
func (f *fakeEngine) Available(context.Context) bool       { return f.available }
func (f *fakeEngine) Extract(_ context.Context, _ string, page int, mode Mode) ([]ExtractedTable, error) {
	f.calls = append(f.calls, mode)
	if err := f.errByMode[mode]; err != nil {
		return nil, err
	}
	return f.byMode[mode], nil
}

func tableWith(conf float64, method string) ExtractedTable {
	return ExtractedTable{
		Rows:       [][]string{{"a", "b"}},
		Confidence: conf,
		Method:     method,
	}
}

func TestNormalizerLatticeWins(t *testing.T) {
	grid := &fakeEngine{name: "grid", available: true, byMode: map[Mode][]ExtractedTable{
		ModeLattice: {tableWith(0.9, MethodLattice)},
		ModeStream:  {tableWith(0.9, MethodStream)},
	}}
	fb := &fakeEngine{name: "whitespace", available: true}

	n := NewNormalizer(grid, fb, nil)
	got, err := n.ExtractPage(context.Background(), "doc.pdf", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Method != MethodLattice {
		t.Errorf("got %v, want one lattice table", got)
	}
	if len(grid.calls) != 1 {
		t.Errorf("grid called %d times, want 1 (lattice only)", len(grid.calls))
	}
	if len(fb.calls) != 0 {
		t.Error("fallback should not run when lattice succeeds")
	}
}

func TestNormalizerLowAccuracyFallsToStream(t *testing.T) {
	grid := &fakeEngine{name: "grid", available: true, byMode: map[Mode][]ExtractedTable{
		ModeLattice: {tableWith(0.3, MethodLattice)}, // below 0.5 floor
		ModeStream:  {tableWith(0.45, MethodStream)}, // above 0.4 floor
	}}
	fb := &fakeEngine{name: "whitespace", available: true}

	n := NewNormalizer(grid, fb, nil)
	got, err := n.ExtractPage(context.Background(), "doc.pdf", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Method != MethodStream {
		t.Errorf("got %v, want one stream table", got)
	}
}

func TestNormalizerFallsToWhitespace(t *testing.T) {
	t.Run("grid errors", func(t *testing.T) {
		grid := &fakeEngine{name: "grid", available: true, errByMode: map[Mode]error{
			ModeLattice: errors.New("down"),
			ModeStream:  errors.New("down"),
		}}
		fb := &fakeEngine{name: "whitespace", available: true, byMode: map[Mode][]ExtractedTable{
			"": {tableWith(0.7, MethodWhitespace)},
		}}

		got, err := NewNormalizer(grid, fb, nil).ExtractPage(context.Background(), "doc.pdf", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Method != MethodWhitespace {
			t.Errorf("got %v, want one whitespace table", got)
		}
	})

	t.Run("grid unavailable", func(t *testing.T) {
		grid := &fakeEngine{name: "grid", available: false}
		fb := &fakeEngine{name: "whitespace", available: true}

		if _, err := NewNormalizer(grid, fb, nil).ExtractPage(context.Background(), "doc.pdf", 0); err != nil {
			t.Fatal(err)
		}
		if len(grid.calls) != 0 {
			t.Error("unavailable grid engine must not be called")
		}
		if len(fb.calls) != 1 {
			t.Errorf("fallback called %d times, want 1", len(fb.calls))
		}
	})

	t.Run("nil grid", func(t *testing.T) {
		fb := &fakeEngine{name: "whitespace", available: true}
		if _, err := NewNormalizer(nil, fb, nil).ExtractPage(context.Background(), "doc.pdf", 0); err != nil {
			t.Fatal(err)
		}
	})
}

func TestNormalizerEmptyPageSucceeds(t *testing.T) {
	fb := &fakeEngine{name: "whitespace", available: true}
	got, err := NewNormalizer(nil, fb, nil).ExtractPage(context.Background(), "doc.pdf", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d tables, want 0", len(got))
	}
}

func TestNormalizerFallbackErrorSurfaces(t *testing.T) {
	fb := &fakeEngine{name: "whitespace", available: true, errByMode: map[Mode]error{
		"": errors.New("unreadable"),
	}}
	if _, err := NewNormalizer(nil, fb, nil).ExtractPage(context.Background(), "doc.pdf", 0); err == nil {
		t.Error("expected fallback error to surface")
	}
}

func TestNormalizerExtractAll(t *testing.T) {
	fb := &fakeEngine{name: "whitespace", available: true, byMode: map[Mode][]ExtractedTable{
		"": {tableWith(0.7, MethodWhitespace)},
	}}
	got, err := NewNormalizer(nil, fb, nil).ExtractAll(context.Background(), "doc.pdf", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("got %d tables over 3 pages, want 3", len(got))
	}
}
