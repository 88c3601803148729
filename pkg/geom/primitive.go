package geom

import (
	"fmt"
	"math"
)

// Primitive is a core (one point, a two-point segment or a closed polygon of
// three or more points) inflated by a radius in nanometres.
type Primitive struct {
	Core    []Point
	Inflate float64
}

// PointPrimitive returns a disc of the given diameter.
func PointPrimitive(c Point, diameter Length) Primitive {
	return Primitive{Core: []Point{c}, Inflate: float64(diameter) / 2}
}

// SegmentPrimitive returns a stadium: the segment a-b inflated by width/2.
func SegmentPrimitive(a, b Point, width Length) Primitive {
	if a == b {
		return PointPrimitive(a, width)
	}
	return Primitive{Core: []Point{a, b}, Inflate: float64(width) / 2}
}

// PolygonPrimitive returns a filled polygon inflated by r.
func PolygonPrimitive(pts []Point, r Length) Primitive {
	return Primitive{Core: pts, Inflate: float64(r)}
}

// IsPolygon reports whether the core is a filled polygon.
func (p Primitive) IsPolygon() bool { return len(p.Core) >= 3 }

// BBox returns the bounding box of the inflated primitive.
func (p Primitive) BBox() BBox {
	return BBoxOf(p.Core...).Expand(Length(math.Ceil(p.Inflate)))
}

// edges returns the core as segments. A point core yields one degenerate segment.
func (p Primitive) edges() []Segment {
	if len(p.Core) == 0 {
		panic("geom: primitive with empty core")
	}
	return PolygonEdges(p.Core)
}

// coreDist returns the distance between two cores, zero if they touch or if
// either polygon contains part of the other.
func coreDist(a, b Primitive) float64 {
	if a.IsPolygon() && PointInPolygon(b.Core[0], a.Core) {
		return 0
	}
	if b.IsPolygon() && PointInPolygon(a.Core[0], b.Core) {
		return 0
	}
	d := math.Inf(1)
	for _, ea := range a.edges() {
		for _, eb := range b.edges() {
			d = math.Min(d, ea.SegmentDist(eb))
			if d == 0 {
				return 0
			}
		}
	}
	return d
}

// Clearance returns the edge-to-edge gap between a and b, rounded to whole
// nanometres. It is negative when the primitives overlap and satisfies
// Clearance(a, b) == Clearance(b, a).
func Clearance(a, b Primitive) Length {
	d := coreDist(a, b)
	return Length(math.Round(d - (a.Inflate + b.Inflate)))
}

// DistToPoint returns the distance from q to the primitive's boundary, zero
// when q lies inside it.
func (p Primitive) DistToPoint(q Point) float64 {
	return math.Max(0, coreDist(p, Primitive{Core: []Point{q}})-p.Inflate)
}

// Contains reports whether q lies inside or on the primitive.
func (p Primitive) Contains(q Point) bool {
	return coreDist(p, Primitive{Core: []Point{q}}) <= p.Inflate
}

// String describes the primitive for debugging.
func (p Primitive) String() string {
	kind := "point"
	switch {
	case len(p.Core) == 2:
		kind = "segment"
	case len(p.Core) >= 3:
		kind = "polygon"
	}
	return fmt.Sprintf("%s%v+%.0fnm", kind, p.Core, p.Inflate)
}
