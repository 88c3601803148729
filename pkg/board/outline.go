package board

import (
	"github.com/matzehuels/copper/pkg/geom"

	cerrors "github.com/matzehuels/copper/pkg/errors"
)

// OutlineKind is the shape of the board edge.
type OutlineKind string

// Outline kinds.
const (
	OutlineRect    OutlineKind = "rect"
	OutlinePolygon OutlineKind = "polygon"
	OutlineCircle  OutlineKind = "circle"
)

// Outline is the board edge.
//
// A rect outline spans Width × Height from Points[0] (the origin when
// omitted). A circle is centred on Points[0] with diameter Width. A polygon
// uses Points directly.
type Outline struct {
	Kind   OutlineKind  `json:"kind" toml:"kind"`
	Points []geom.Point `json:"points,omitempty" toml:"points,omitempty"`
	Width  geom.Length  `json:"width,omitempty" toml:"width,omitempty"`
	Height geom.Length  `json:"height,omitempty" toml:"height,omitempty"`
}

// RectOutline returns a rectangular outline with its lower-left corner at
// the origin.
func RectOutline(w, h geom.Length) Outline {
	return Outline{Kind: OutlineRect, Width: w, Height: h}
}

// Validate checks the outline fields for its kind.
func (o Outline) Validate() error {
	switch o.Kind {
	case OutlineRect:
		if o.Width <= 0 || o.Height <= 0 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "rect outline needs positive width and height")
		}
	case OutlineCircle:
		if o.Width <= 0 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "circle outline needs a positive diameter")
		}
	case OutlinePolygon:
		if len(o.Points) < 3 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "polygon outline needs at least 3 points")
		}
	default:
		return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown outline kind %q", o.Kind)
	}
	return nil
}

func (o Outline) origin() geom.Point {
	if len(o.Points) > 0 {
		return o.Points[0]
	}
	return geom.Point{}
}

// Polygon returns the outline as a closed polygon. Circles are approximated.
func (o Outline) Polygon() []geom.Point {
	switch o.Kind {
	case OutlineRect:
		p := o.origin()
		return []geom.Point{
			p,
			{X: p.X + o.Width, Y: p.Y},
			{X: p.X + o.Width, Y: p.Y + o.Height},
			{X: p.X, Y: p.Y + o.Height},
		}
	case OutlineCircle:
		return geom.CirclePoints(o.origin(), o.Width/2, 64)
	case OutlinePolygon:
		return append([]geom.Point(nil), o.Points...)
	default:
		return nil
	}
}

// Edges returns the outline edges.
func (o Outline) Edges() []geom.Segment { return geom.PolygonEdges(o.Polygon()) }

// BBox returns the outline bounding box.
func (o Outline) BBox() geom.BBox { return geom.PolygonBBox(o.Polygon()) }

// Contains reports whether p is inside the board.
func (o Outline) Contains(p geom.Point) bool {
	if o.Kind == OutlineCircle {
		return o.origin().Dist(p) <= float64(o.Width)/2
	}
	return geom.PointInPolygon(p, o.Polygon())
}
