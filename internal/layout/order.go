package layout

import "sort"

// OrderEngine sorts a page's blocks into reading order: optional
// header/footer stripping, column clustering on horizontal centers, then
// top-to-bottom within each column, left column first.
type OrderEngine struct {
	// HeaderMargin and FooterMargin are the strip heights in points,
	// applied only when StripMargins is set (detector path; span text keeps
	// margins because running headers are filtered later as repeats).
	HeaderMargin float64
	FooterMargin float64
	// ColumnEps is the maximum horizontal-center gap that still joins two
	// blocks into the same column.
	ColumnEps    float64
	StripMargins bool
}

// DefaultOrderEngine returns the stock tuning.
func DefaultOrderEngine() OrderEngine {
	return OrderEngine{HeaderMargin: 50, FooterMargin: 50, ColumnEps: 50}
}

// Sort orders one page's blocks. The input is not modified; the result has
// captions merged into their table/figure and contiguous Order values
// starting at zero. Blocks with no spatial footprint keep relative order.
func (e OrderEngine) Sort(blocks []Block, pageHeight float64) []Block {
	work := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if e.StripMargins && pageHeight > 0 {
			if b.BBox.Y0 < e.HeaderMargin || b.BBox.Y1 > pageHeight-e.FooterMargin {
				continue
			}
		}
		work = append(work, b)
	}
	if len(work) == 0 {
		return work
	}

	var ordered []Block
	for _, col := range e.clusterColumns(work) {
		sort.SliceStable(col, func(i, j int) bool {
			return col[i].BBox.Y0 < col[j].BBox.Y0
		})
		ordered = append(ordered, col...)
	}

	ordered = mergeCaptions(ordered)
	for i := range ordered {
		ordered[i].Order = i
	}
	return ordered
}

// clusterColumns groups blocks whose horizontal centers fall within
// ColumnEps of each other, by sorting centers and merging adjacent
// intervals. Columns come back left to right by mean center. Singleton
// columns are fine.
func (e OrderEngine) clusterColumns(blocks []Block) [][]Block {
	idx := make([]int, len(blocks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return blocks[idx[a]].BBox.CenterX() < blocks[idx[b]].BBox.CenterX()
	})

	var columns [][]Block
	var col []Block
	var prev float64
	for n, i := range idx {
		cx := blocks[i].BBox.CenterX()
		if n > 0 && cx-prev > e.ColumnEps {
			columns = append(columns, col)
			col = nil
		}
		col = append(col, blocks[i])
		prev = cx
	}
	columns = append(columns, col)
	return columns
}

// mergeCaptions folds a caption block into the immediately preceding table
// or figure block, joining texts with a newline. The anchor's bbox is left
// untouched; only text is carried over.
func mergeCaptions(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		if (b.Kind == KindTable || b.Kind == KindFigure) &&
			i+1 < len(blocks) && blocks[i+1].Kind == KindCaption {
			c := blocks[i+1]
			if b.Text == "" {
				b.Text = c.Text
			} else {
				b.Text = b.Text + "\n" + c.Text
			}
			i++
		}
		out = append(out, b)
	}
	return out
}
