package route

import (
	"github.com/matzehuels/copper/pkg/geom"
)

// ElementKind distinguishes accumulated segments from vias.
type ElementKind uint8

// Element kinds.
const (
	KindSegment ElementKind = iota + 1
	KindVia
)

func (k ElementKind) String() string {
	switch k {
	case KindSegment:
		return "segment"
	case KindVia:
		return "via"
	default:
		return "unknown"
	}
}

// Element is one piece of an in-progress route.
//
// A segment runs Start→End on Layer. A via sits at Start (equal to End) and
// joins Layer to To.
type Element struct {
	Kind     ElementKind
	Layer    string
	Start    geom.Point
	End      geom.Point
	Width    geom.Length
	To       string
	Drill    geom.Length
	Diameter geom.Length

	// corner is the vertex a chamfer replaced, where the segment before
	// it ended until the miter trimmed it.
	corner  geom.Point
	chamfer bool
}

// Length returns the centreline length of a segment, zero for a via.
func (e Element) Length() float64 {
	if e.Kind != KindSegment {
		return 0
	}
	return e.Start.Dist(e.End)
}

// axisDir returns the unit direction of an axis-aligned segment, or false.
func axisDir(a, b geom.Point) (dx, dy, n geom.Length, ok bool) {
	switch {
	case a == b:
		return 0, 0, 0, false
	case a.Y == b.Y:
		n = (b.X - a.X).Abs()
		return sign(b.X - a.X), 0, n, true
	case a.X == b.X:
		n = (b.Y - a.Y).Abs()
		return 0, sign(b.Y - a.Y), n, true
	}
	return 0, 0, 0, false
}

func sign(v geom.Length) geom.Length {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// orthogonalLegs splits from→to into an axis-aligned leg and the remainder.
func orthogonalLegs(from, to geom.Point, verticalFirst bool) []geom.Segment {
	if from.X == to.X || from.Y == to.Y {
		return []geom.Segment{geom.Seg(from, to)}
	}
	corner := geom.Point{X: to.X, Y: from.Y}
	if verticalFirst {
		corner = geom.Point{X: from.X, Y: to.Y}
	}
	return []geom.Segment{geom.Seg(from, corner), geom.Seg(corner, to)}
}

// miter cuts the right-angle corner between prev (ending at the corner) and
// next (starting there). It returns the shortened previous segment, the
// chamfer and the shortened next segment. The chamfer runs at 45° and trims
// both legs by the same amount, half the shorter leg. Corners that are not
// axis-aligned right angles, or whose shorter leg is under minLeg, are left
// alone (ok is false).
func miter(prev, next geom.Segment, minLeg geom.Length) (a, chamfer, b geom.Segment, ok bool) {
	if prev.B != next.A {
		return prev, geom.Segment{}, next, false
	}
	dx1, dy1, l1, ok1 := axisDir(prev.A, prev.B)
	dx2, dy2, l2, ok2 := axisDir(next.A, next.B)
	if !ok1 || !ok2 || dx1*dx2+dy1*dy2 != 0 {
		return prev, geom.Segment{}, next, false
	}
	short := min(l1, l2)
	if short < minLeg {
		return prev, geom.Segment{}, next, false
	}
	// Half the shorter leg, not the whole of it, so both legs keep a
	// straight run into the chamfer.
	c := short / 2
	if c == 0 {
		return prev, geom.Segment{}, next, false
	}
	corner := prev.B
	p1 := geom.Point{X: corner.X - c*dx1, Y: corner.Y - c*dy1}
	p2 := geom.Point{X: corner.X + c*dx2, Y: corner.Y + c*dy2}
	return geom.Seg(prev.A, p1), geom.Seg(p1, p2), geom.Seg(p2, next.B), true
}
