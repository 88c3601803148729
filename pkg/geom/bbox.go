package geom

// BBox is an axis-aligned bounding box. Min and Max are inclusive.
type BBox struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// BBoxOf returns the smallest box containing all points.
// It returns the zero box for no points.
func BBoxOf(pts ...Point) BBox {
	if len(pts) == 0 {
		return BBox{}
	}
	b := BBox{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min.X = min(b.Min.X, p.X)
		b.Min.Y = min(b.Min.Y, p.Y)
		b.Max.X = max(b.Max.X, p.X)
		b.Max.Y = max(b.Max.Y, p.Y)
	}
	return b
}

// Width of the box.
func (b BBox) Width() Length { return b.Max.X - b.Min.X }

// Height of the box.
func (b BBox) Height() Length { return b.Max.Y - b.Min.Y }

// Center of the box.
func (b BBox) Center() Point {
	return Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// Expand grows the box by d on every side.
func (b BBox) Expand(d Length) BBox {
	return BBox{
		Min: Point{X: b.Min.X - d, Y: b.Min.Y - d},
		Max: Point{X: b.Max.X + d, Y: b.Max.Y + d},
	}
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		Min: Point{X: min(b.Min.X, o.Min.X), Y: min(b.Min.Y, o.Min.Y)},
		Max: Point{X: max(b.Max.X, o.Max.X), Y: max(b.Max.Y, o.Max.Y)},
	}
}

// Intersects reports whether the boxes overlap or touch.
func (b BBox) Intersects(o BBox) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// Contains reports whether p is inside the box or on its edge.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}
