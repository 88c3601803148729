package geom

import (
	"fmt"
	"math"

	cerrors "github.com/matzehuels/copper/pkg/errors"
)

// ShapeKind tags the variant held by a [Shape].
type ShapeKind string

// Shape kinds.
const (
	ShapeCircle    ShapeKind = "circle"
	ShapeRect      ShapeKind = "rect"
	ShapeRoundRect ShapeKind = "roundrect"
	ShapeOval      ShapeKind = "oval"
	ShapePolygon   ShapeKind = "polygon"
)

// Shape is a pad or via outline in local coordinates, centred on the origin.
//
// Field use by kind:
//   - circle: W is the diameter
//   - rect: W × H
//   - roundrect: W × H with corner radius Radius
//   - oval: W × H stadium, rounded along the shorter axis
//   - polygon: Points, relative to the origin
type Shape struct {
	Kind   ShapeKind `json:"kind" toml:"kind"`
	W      Length    `json:"w,omitempty" toml:"w,omitempty"`
	H      Length    `json:"h,omitempty" toml:"h,omitempty"`
	Radius Length    `json:"radius,omitempty" toml:"radius,omitempty"`
	Points []Point   `json:"points,omitempty" toml:"points,omitempty"`
}

// Circle returns a circular shape.
func Circle(diameter Length) Shape { return Shape{Kind: ShapeCircle, W: diameter, H: diameter} }

// Rect returns a rectangular shape.
func Rect(w, h Length) Shape { return Shape{Kind: ShapeRect, W: w, H: h} }

// RoundRect returns a rectangle with rounded corners.
func RoundRect(w, h, r Length) Shape { return Shape{Kind: ShapeRoundRect, W: w, H: h, Radius: r} }

// Oval returns a stadium-shaped pad.
func Oval(w, h Length) Shape { return Shape{Kind: ShapeOval, W: w, H: h} }

// Polygon returns a custom polygon shape.
func Polygon(pts ...Point) Shape { return Shape{Kind: ShapePolygon, Points: pts} }

func unknownKind(k ShapeKind) string { return fmt.Sprintf("geom: unknown shape kind %q", k) }

// Validate checks that the fields required by the shape's kind are sane.
func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeCircle:
		if s.W <= 0 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "circle diameter must be positive")
		}
	case ShapeRect, ShapeOval:
		if s.W <= 0 || s.H <= 0 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "%s size must be positive", s.Kind)
		}
	case ShapeRoundRect:
		if s.W <= 0 || s.H <= 0 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "roundrect size must be positive")
		}
		if s.Radius < 0 || 2*s.Radius > min(s.W, s.H) {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "roundrect radius %s out of range", s.Radius)
		}
	case ShapePolygon:
		if len(s.Points) < 3 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "polygon needs at least 3 points")
		}
	default:
		return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown shape kind %q", s.Kind)
	}
	return nil
}

// Primitive places the shape at `at`, rotated by rot degrees, and reduces it
// to a core plus inflation radius.
func (s Shape) Primitive(at Point, rot float64) Primitive {
	switch s.Kind {
	case ShapeCircle:
		return PointPrimitive(at, s.W)
	case ShapeRect:
		return PolygonPrimitive(Transform(RectPolygon(Point{}, s.W, s.H), at, rot), 0)
	case ShapeRoundRect:
		r := s.Radius
		core := RectPolygon(Point{}, s.W-2*r, s.H-2*r)
		return PolygonPrimitive(Transform(core, at, rot), r)
	case ShapeOval:
		if s.W == s.H {
			return PointPrimitive(at, s.W)
		}
		var a, b Point
		minor := min(s.W, s.H)
		half := (max(s.W, s.H) - minor) / 2
		if s.W > s.H {
			a, b = Point{X: -half}, Point{X: half}
		} else {
			a, b = Point{Y: -half}, Point{Y: half}
		}
		return SegmentPrimitive(a.Rotate(rot).Add(at), b.Rotate(rot).Add(at), minor)
	case ShapePolygon:
		return PolygonPrimitive(Transform(s.Points, at, rot), 0)
	default:
		panic(unknownKind(s.Kind))
	}
}

// BBox returns the bounding box of the placed shape.
func (s Shape) BBox(at Point, rot float64) BBox {
	return s.Primitive(at, rot).BBox()
}

// Outline returns a polygon approximation of the placed shape.
func (s Shape) Outline(at Point, rot float64) []Point {
	const arcSteps = 8
	switch s.Kind {
	case ShapeCircle:
		return CirclePoints(at, s.W/2, 4*arcSteps)
	case ShapeRect, ShapePolygon:
		return s.Primitive(at, rot).Core
	case ShapeRoundRect, ShapeOval:
		p := s.Primitive(at, rot)
		if len(p.Core) == 1 {
			return CirclePoints(p.Core[0], Length(p.Inflate), 4*arcSteps)
		}
		return inflateOutline(p.Core, Length(math.Round(p.Inflate)), arcSteps)
	default:
		panic(unknownKind(s.Kind))
	}
}

// DistToPoint returns the distance from p to the placed shape, zero inside.
func (s Shape) DistToPoint(at Point, rot float64, p Point) float64 {
	return s.Primitive(at, rot).DistToPoint(p)
}

// DistToSegment returns the gap between the placed shape and a trace of the
// given width along seg. Negative values mean overlap.
func (s Shape) DistToSegment(at Point, rot float64, seg Segment, width Length) Length {
	return Clearance(s.Primitive(at, rot), SegmentPrimitive(seg.A, seg.B, width))
}

// Contains reports whether p lies on the placed shape.
func (s Shape) Contains(at Point, rot float64, p Point) bool {
	return s.Primitive(at, rot).Contains(p)
}

// inflateOutline approximates a convex core (segment or polygon) grown by r,
// by placing an arc of steps segments around each vertex.
func inflateOutline(core []Point, r Length, steps int) []Point {
	if len(core) == 2 {
		a, b := core[0], core[1]
		dir := normalAngle(a, b) + 90
		first := Arc{Center: b, Radius: r, Start: dir - 90, Sweep: 180}
		second := Arc{Center: a, Radius: r, Start: dir + 90, Sweep: 180}
		return append(first.Polyline(steps), second.Polyline(steps)...)
	}
	n := len(core)
	var out []Point
	for i := 0; i < n; i++ {
		prev, cur, next := core[(i+n-1)%n], core[i], core[(i+1)%n]
		a0 := normalAngle(prev, cur)
		a1 := normalAngle(cur, next)
		sweep := a1 - a0
		for sweep < 0 {
			sweep += 360
		}
		if sweep > 180 {
			sweep -= 360
		}
		arc := Arc{Center: cur, Radius: r, Start: a0, Sweep: sweep}
		out = append(out, arc.Polyline(steps)...)
	}
	return out
}

// normalAngle returns the direction, in degrees, of the outward normal of the
// edge a→b for a counter-clockwise polygon.
func normalAngle(a, b Point) float64 {
	d := b.Sub(a)
	return math.Atan2(float64(d.Y), float64(d.X))*180/math.Pi - 90
}
