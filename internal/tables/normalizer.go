package tables

import (
	"context"
	"fmt"
	"log/slog"
)

// Accuracy floors applied to grid-engine results. Lattice output below its
// floor is discarded and the chain moves on.
const (
	DefaultLatticeMinAccuracy = 0.5
	DefaultStreamMinAccuracy  = 0.4
)

// Normalizer runs the engine chain for one page: grid lattice, then grid
// stream, then the built-in whitespace fallback. The first stage producing
// at least one table above its accuracy floor wins; a page with no tables
// anywhere is a valid empty result, not an error.
type Normalizer struct {
	grid       Engine
	fallback   Engine
	latticeMin float64
	streamMin  float64
	logger     *slog.Logger
}

// NewNormalizer wires the chain. grid may be nil or unconfigured, in which
// case every page goes straight to the fallback engine.
func NewNormalizer(grid, fallback Engine, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		grid:       grid,
		fallback:   fallback,
		latticeMin: DefaultLatticeMinAccuracy,
		streamMin:  DefaultStreamMinAccuracy,
		logger:     logger,
	}
}

// SetAccuracyFloors overrides the default lattice/stream floors.
func (n *Normalizer) SetAccuracyFloors(lattice, stream float64) {
	n.latticeMin = lattice
	n.streamMin = stream
}

// ExtractPage returns the tables of one zero-based page. Grid-engine
// failures are logged and demote the request down the chain; only a
// fallback failure is an error.
func (n *Normalizer) ExtractPage(ctx context.Context, path string, page int) ([]ExtractedTable, error) {
	if n.grid != nil && n.grid.Available(ctx) {
		if ts := n.tryGrid(ctx, path, page, ModeLattice, n.latticeMin); len(ts) > 0 {
			return ts, nil
		}
		if ts := n.tryGrid(ctx, path, page, ModeStream, n.streamMin); len(ts) > 0 {
			return ts, nil
		}
	}

	ts, err := n.fallback.Extract(ctx, path, page, "")
	if err != nil {
		return nil, fmt.Errorf("table extraction failed on page %d: %w", page, err)
	}
	return ts, nil
}

// ExtractAll runs ExtractPage over pages [0, pageCount).
func (n *Normalizer) ExtractAll(ctx context.Context, path string, pageCount int) ([]ExtractedTable, error) {
	var all []ExtractedTable
	for page := 0; page < pageCount; page++ {
		ts, err := n.ExtractPage(ctx, path, page)
		if err != nil {
			return nil, err
		}
		all = append(all, ts...)
	}
	return all, nil
}

func (n *Normalizer) tryGrid(ctx context.Context, path string, page int, mode Mode, minAccuracy float64) []ExtractedTable {
	ts, err := n.grid.Extract(ctx, path, page, mode)
	if err != nil {
		n.logger.Warn("grid engine failed, falling through",
			"page", page, "mode", mode, "err", err)
		return nil
	}

	kept := ts[:0]
	for _, t := range ts {
		if t.Confidence > minAccuracy {
			kept = append(kept, t)
		}
	}
	if len(kept) < len(ts) {
		n.logger.Debug("grid tables below accuracy floor dropped",
			"page", page, "mode", mode, "dropped", len(ts)-len(kept))
	}
	return kept
}
