package pdf

// BoundingBox is an axis-aligned rectangle in page coordinates with the
// origin at the top-left corner (x grows right, y grows down). Extraction
// backends that report bottom-origin PDF coordinates convert before
// constructing one.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns x1-x0.
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns y1-y0.
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// CenterX returns the horizontal center of the box.
func (b BoundingBox) CenterX() float64 { return (b.X0 + b.X1) / 2 }

// CenterY returns the vertical center of the box.
func (b BoundingBox) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }
