package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is a straight line between two points.
type Segment struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Seg creates a Segment.
func Seg(a, b Point) Segment { return Segment{A: a, B: b} }

// Length returns the segment length in nanometres.
func (s Segment) Length() float64 { return s.A.Dist(s.B) }

// BBox returns the bounding box of the centreline.
func (s Segment) BBox() BBox { return BBoxOf(s.A, s.B) }

// IsZero reports whether both endpoints coincide.
func (s Segment) IsZero() bool { return s.A == s.B }

// Reverse swaps the endpoints.
func (s Segment) Reverse() Segment { return Segment{A: s.B, B: s.A} }

// PointDist returns the distance from p to the closest point on s.
func (s Segment) PointDist(p Point) float64 {
	return pointSegDist(p.vec(), s.A.vec(), s.B.vec())
}

// SegmentDist returns the minimum distance between the two segments.
// It is zero when they touch or cross.
func (s Segment) SegmentDist(o Segment) float64 {
	if s.Intersects(o) {
		return 0
	}
	return math.Min(
		math.Min(s.PointDist(o.A), s.PointDist(o.B)),
		math.Min(o.PointDist(s.A), o.PointDist(s.B)),
	)
}

// Intersects reports whether the segments share at least one point.
// The test uses exact integer orientation arithmetic.
func (s Segment) Intersects(o Segment) bool {
	d1 := orient(o.A, o.B, s.A)
	d2 := orient(o.A, o.B, s.B)
	d3 := orient(s.A, s.B, o.A)
	d4 := orient(s.A, s.B, o.B)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(o.A, o.B, s.A):
		return true
	case d2 == 0 && onSegment(o.A, o.B, s.B):
		return true
	case d3 == 0 && onSegment(s.A, s.B, o.A):
		return true
	case d4 == 0 && onSegment(s.A, s.B, o.B):
		return true
	}
	return false
}

// CrossesProperly reports whether the segments cross at a single interior
// point of both. Touching endpoints and collinear overlap do not count.
func (s Segment) CrossesProperly(o Segment) bool {
	d1 := orient(o.A, o.B, s.A)
	d2 := orient(o.A, o.B, s.B)
	d3 := orient(s.A, s.B, o.A)
	d4 := orient(s.A, s.B, o.B)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// IsAxisAligned reports whether the segment is horizontal or vertical.
func (s Segment) IsAxisAligned() bool {
	return s.A.X == s.B.X || s.A.Y == s.B.Y
}

// IsDiagonal reports whether the segment runs at exactly 45°.
func (s Segment) IsDiagonal() bool {
	d := s.B.Sub(s.A)
	return d.X != 0 && d.X.Abs() == d.Y.Abs()
}

// orient returns the sign of the cross product (b-a)×(c-a).
func orient(a, b, c Point) int {
	v := int64(b.X-a.X)*int64(c.Y-a.Y) - int64(b.Y-a.Y)*int64(c.X-a.X)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment reports whether c, known to be collinear with a-b, lies within it.
func onSegment(a, b, c Point) bool {
	return c.X >= min(a.X, b.X) && c.X <= max(a.X, b.X) &&
		c.Y >= min(a.Y, b.Y) && c.Y <= max(a.Y, b.Y)
}

func pointSegDist(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	ap := r2.Sub(p, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return r2.Norm(ap)
	}
	t := r2.Dot(ap, ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Norm(r2.Sub(ap, r2.Scale(t, ab)))
}
