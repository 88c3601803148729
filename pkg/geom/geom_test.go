package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateExact(t *testing.T) {
	p := PtMM(1, 2)
	assert.Equal(t, PtMM(-2, 1), p.Rotate(90))
	assert.Equal(t, PtMM(-1, -2), p.Rotate(180))
	assert.Equal(t, PtMM(2, -1), p.Rotate(-90))
	assert.Equal(t, p, p.Rotate(360))

	q := PtMM(1, 0).Rotate(45)
	assert.InDelta(t, float64(MM(math.Sqrt2/2)), float64(q.X), 1)
	assert.InDelta(t, float64(MM(math.Sqrt2/2)), float64(q.Y), 1)
}

func TestBBox(t *testing.T) {
	b := BBoxOf(PtMM(1, 5), PtMM(-2, 3), PtMM(4, -1))
	assert.Equal(t, PtMM(-2, -1), b.Min)
	assert.Equal(t, PtMM(4, 5), b.Max)
	assert.Equal(t, MM(6), b.Width())
	assert.True(t, b.Contains(PtMM(4, 5)))
	assert.False(t, b.Contains(PtMM(4.1, 5)))

	other := BBoxOf(PtMM(4, 5), PtMM(6, 6))
	assert.True(t, b.Intersects(other), "touching boxes intersect")
	assert.False(t, b.Intersects(BBoxOf(PtMM(5, 6), PtMM(6, 7))))
	assert.Equal(t, PtMM(6, 6), b.Union(other).Max)
	assert.Equal(t, PtMM(-3, -2), b.Expand(MM(1)).Min)
}

func TestSegmentDistances(t *testing.T) {
	s := Seg(PtMM(0, 0), PtMM(10, 0))

	assert.InDelta(t, float64(MM(3)), s.PointDist(PtMM(5, 3)), 0.5)
	assert.InDelta(t, float64(MM(5)), s.PointDist(PtMM(13, 4)), 0.5)

	crossing := Seg(PtMM(5, -1), PtMM(5, 1))
	assert.True(t, s.Intersects(crossing))
	assert.True(t, s.CrossesProperly(crossing))
	assert.Zero(t, s.SegmentDist(crossing))

	touching := Seg(PtMM(10, 0), PtMM(12, 3))
	assert.True(t, s.Intersects(touching))
	assert.False(t, s.CrossesProperly(touching))

	parallel := Seg(PtMM(0, 0.4), PtMM(10, 0.4))
	assert.False(t, s.Intersects(parallel))
	assert.InDelta(t, float64(MM(0.4)), s.SegmentDist(parallel), 0.5)
	assert.Equal(t, s.SegmentDist(parallel), parallel.SegmentDist(s))
}

func TestSegmentDirections(t *testing.T) {
	assert.True(t, Seg(PtMM(0, 0), PtMM(3, 0)).IsAxisAligned())
	assert.True(t, Seg(PtMM(0, 0), PtMM(3, -3)).IsDiagonal())
	assert.False(t, Seg(PtMM(0, 0), PtMM(3, 1)).IsDiagonal())
	assert.InDelta(t, float64(MM(5)), Seg(PtMM(0, 0), PtMM(3, 4)).Length(), 0.5)
}

func TestArc(t *testing.T) {
	a := Arc{Center: Point{}, Radius: MM(1), Start: 0, Sweep: 90}
	s, e := a.Endpoints()
	assert.Equal(t, PtMM(1, 0), s)
	assert.Equal(t, PtMM(0, 1), e)
	assert.Len(t, a.Polyline(4), 5)
	assert.InDelta(t, float64(MM(math.Pi/2)), a.Length(), 1)

	half := Arc{Radius: MM(1), Start: 0, Sweep: 180}
	b := half.BBox()
	assert.Equal(t, MM(1), b.Max.Y, "bbox includes the 90° extreme")
	assert.Equal(t, MM(-1), b.Min.X)
}

func TestPointInPolygon(t *testing.T) {
	sq := RectPolygon(Point{}, MM(2), MM(2))
	assert.True(t, PointInPolygon(PtMM(0.5, 0.5), sq))
	assert.False(t, PointInPolygon(PtMM(1.5, 0), sq))
	assert.False(t, PointInPolygon(PtMM(0, 0), sq[:2]))
	assert.InDelta(t, float64(MM(0.5)), PolygonDist(PtMM(1.5, 0), sq), 0.5)
}

func TestPolygonsOverlap(t *testing.T) {
	a := RectPolygon(Point{}, MM(2), MM(2))

	tests := []struct {
		name string
		b    []Point
		want bool
	}{
		{"crossing", RectPolygon(PtMM(1.5, 0), MM(2), MM(2)), true},
		{"contained", RectPolygon(Point{}, MM(1), MM(1)), true},
		{"identical", RectPolygon(Point{}, MM(2), MM(2)), true},
		{"edge touching", RectPolygon(PtMM(2, 0), MM(2), MM(2)), false},
		{"apart", RectPolygon(PtMM(5, 0), MM(2), MM(2)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PolygonsOverlap(a, tt.b))
			assert.Equal(t, tt.want, PolygonsOverlap(tt.b, a))
		})
	}
}

func TestClearanceParallelTraces(t *testing.T) {
	a := SegmentPrimitive(PtMM(0, 0), PtMM(10, 0), MM(0.25))
	b := SegmentPrimitive(PtMM(0, 0.4), PtMM(10, 0.4), MM(0.25))
	assert.Equal(t, MM(0.15), Clearance(a, b))
}

func TestClearanceSymmetry(t *testing.T) {
	prims := []Primitive{
		PointPrimitive(PtMM(0, 0), MM(0.6)),
		PointPrimitive(PtMM(0.7, 0.3), MM(0.45)),
		SegmentPrimitive(PtMM(-1, 1), PtMM(3, 1.2), MM(0.25)),
		SegmentPrimitive(PtMM(0.3, -2), PtMM(0.9, 2), MM(0.15)),
		Rect(MM(1), MM(0.6)).Primitive(PtMM(2, 0), 30),
		RoundRect(MM(1.2), MM(0.8), MM(0.2)).Primitive(PtMM(-1.3, -0.4), 0),
		Oval(MM(1.6), MM(0.8)).Primitive(PtMM(0, 2.5), 90),
		Polygon(PtMM(0, 0), PtMM(1, 0), PtMM(0, 1)).Primitive(PtMM(4, 4), 15),
	}
	for i, a := range prims {
		for j, b := range prims {
			assert.Equal(t, Clearance(a, b), Clearance(b, a), "pair %d,%d", i, j)
		}
	}
}

func TestClearanceOverlapIsNegative(t *testing.T) {
	pad := Rect(MM(1), MM(1)).Primitive(Point{}, 0)
	via := PointPrimitive(Point{}, MM(0.6))
	assert.Equal(t, MM(-0.3), Clearance(pad, via))
}

func TestShapePrimitive(t *testing.T) {
	oval := Oval(MM(2), MM(1))
	p := oval.Primitive(PtMM(5, 5), 0)
	require.Len(t, p.Core, 2)
	assert.Equal(t, PtMM(4.5, 5), p.Core[0])
	assert.Equal(t, PtMM(5.5, 5), p.Core[1])
	assert.InDelta(t, float64(MM(0.5)), p.Inflate, 0)

	rotated := oval.Primitive(Point{}, 90)
	assert.Equal(t, PtMM(0, -0.5), rotated.Core[0])

	bb := Rect(MM(2), MM(1)).BBox(PtMM(1, 1), 90)
	assert.Equal(t, MM(1), bb.Width())
	assert.Equal(t, MM(2), bb.Height())

	assert.True(t, Circle(MM(1)).Contains(Point{}, 0, PtMM(0.5, 0)))
	assert.False(t, Circle(MM(1)).Contains(Point{}, 0, PtMM(0.51, 0)))
	assert.Zero(t, RoundRect(MM(2), MM(2), MM(0.5)).DistToPoint(Point{}, 0, PtMM(0.9, 0)))
}

func TestShapeOutline(t *testing.T) {
	for _, s := range []Shape{
		Circle(MM(1)), Rect(MM(1), MM(2)), RoundRect(MM(2), MM(1), MM(0.25)),
		Oval(MM(2), MM(1)), Polygon(PtMM(0, 0), PtMM(1, 0), PtMM(0, 1)),
	} {
		out := s.Outline(PtMM(3, 3), 0)
		assert.GreaterOrEqual(t, len(out), 3, s.Kind)
		bb := s.BBox(PtMM(3, 3), 0).Expand(1)
		for _, p := range out {
			assert.True(t, bb.Contains(p), "%s outline point %v outside bbox", s.Kind, p)
		}
	}
}

func TestShapeUnknownKindPanics(t *testing.T) {
	s := Shape{Kind: "hexagon"}
	assert.Error(t, s.Validate())
	assert.Panics(t, func() { s.Primitive(Point{}, 0) })
	assert.Panics(t, func() { s.Outline(Point{}, 0) })
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Circle(MM(1)).Validate())
	assert.Error(t, Circle(0).Validate())
	assert.Error(t, RoundRect(MM(1), MM(1), MM(0.6)).Validate())
	assert.Error(t, Polygon(PtMM(0, 0), PtMM(1, 1)).Validate())
}
