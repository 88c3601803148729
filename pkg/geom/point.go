package geom

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	cerrors "github.com/matzehuels/copper/pkg/errors"
)

// Point is a 2D position on the board.
type Point struct {
	X Length `json:"x" toml:"x"`
	Y Length `json:"y" toml:"y"`
}

// Pt creates a Point.
func Pt(x, y Length) Point { return Point{X: x, Y: y} }

// PtMM creates a Point from millimetre coordinates.
func PtMM(x, y float64) Point { return Point{X: MM(x), Y: MM(y)} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Dist returns the Euclidean distance to q in nanometres.
func (p Point) Dist(q Point) float64 {
	return r2.Norm(r2.Sub(p.vec(), q.vec()))
}

// Rotate rotates p about the origin by deg degrees (counter-clockwise).
// Multiples of 90° are exact.
func (p Point) Rotate(deg float64) Point {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return p
	case 90:
		return Point{X: -p.Y, Y: p.X}
	case 180:
		return Point{X: -p.X, Y: -p.Y}
	case 270:
		return Point{X: p.Y, Y: -p.X}
	}
	rad := d * math.Pi / 180
	sin, cos := math.Sincos(rad)
	x, y := float64(p.X), float64(p.Y)
	return Point{
		X: Length(math.Round(x*cos - y*sin)),
		Y: Length(math.Round(x*sin + y*cos)),
	}
}

// String formats the point in millimetres.
func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", p.X, p.Y)
}

func (p Point) vec() r2.Vec { return r2.Vec{X: float64(p.X), Y: float64(p.Y)} }

func fromVec(v r2.Vec) Point {
	return Point{X: Length(math.Round(v.X)), Y: Length(math.Round(v.Y))}
}

// ParsePoint parses "x,y" where each coordinate is a [ParseLength] value,
// for example "10mm,5mm" or "400mil, 200mil".
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(strings.Trim(strings.TrimSpace(s), "()"), ",")
	if len(parts) != 2 {
		return Point{}, cerrors.New(cerrors.ErrCodeInvalidInput, "invalid point %q (want x,y)", s)
	}
	x, err := ParseLength(parts[0])
	if err != nil {
		return Point{}, err
	}
	y, err := ParseLength(parts[1])
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// Point3D is a position with a height above the board reference plane.
type Point3D struct {
	X Length `json:"x"`
	Y Length `json:"y"`
	Z Length `json:"z"`
}

// XY drops the Z coordinate.
func (p Point3D) XY() Point { return Point{X: p.X, Y: p.Y} }

// Dist returns the Euclidean distance to q in nanometres.
func (p Point3D) Dist(q Point3D) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	dz := float64(p.Z - q.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
