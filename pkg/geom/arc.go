package geom

import "math"

// Arc is a circular arc. Angles are in degrees, counter-clockwise from +X.
// A negative Sweep runs clockwise.
type Arc struct {
	Center Point   `json:"center"`
	Radius Length  `json:"radius"`
	Start  float64 `json:"start"`
	Sweep  float64 `json:"sweep"`
}

// Point returns the point at parameter t in [0,1] along the arc.
func (a Arc) Point(t float64) Point {
	ang := (a.Start + t*a.Sweep) * math.Pi / 180
	sin, cos := math.Sincos(ang)
	r := float64(a.Radius)
	return Point{
		X: a.Center.X + Length(math.Round(r*cos)),
		Y: a.Center.Y + Length(math.Round(r*sin)),
	}
}

// Endpoints returns the start and end points.
func (a Arc) Endpoints() (Point, Point) { return a.Point(0), a.Point(1) }

// Length returns the arc length in nanometres.
func (a Arc) Length() float64 {
	return math.Abs(a.Sweep) * math.Pi / 180 * float64(a.Radius)
}

// Polyline approximates the arc with n segments (n+1 points).
func (a Arc) Polyline(n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = a.Point(float64(i) / float64(n))
	}
	return pts
}

// BBox returns a bounding box of the arc, including any axis extremes it
// sweeps through.
func (a Arc) BBox() BBox {
	s, e := a.Endpoints()
	b := BBoxOf(s, e)
	lo, hi := a.Start, a.Start+a.Sweep
	if hi < lo {
		lo, hi = hi, lo
	}
	for q := math.Ceil(lo/90) * 90; q <= hi; q += 90 {
		ang := q * math.Pi / 180
		sin, cos := math.Sincos(ang)
		r := float64(a.Radius)
		b = b.Union(BBoxOf(Point{
			X: a.Center.X + Length(math.Round(r*cos)),
			Y: a.Center.Y + Length(math.Round(r*sin)),
		}))
	}
	return b
}
