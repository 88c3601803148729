package geom

import "math"

// PointInPolygon tests if a point is inside a polygon using ray casting.
// Points exactly on an edge may be reported either way; callers that need a
// boundary-inclusive answer should also check [PolygonDist].
func PointInPolygon(p Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)
	px, py := float64(p.X), float64(p.Y)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		xi, yi := float64(polygon[i].X), float64(polygon[i].Y)
		xj, yj := float64(polygon[j].X), float64(polygon[j].Y)

		if ((yi > py) != (yj > py)) &&
			(px < (xj-xi)*(py-yi)/(yj-yi)+xi) {
			inside = !inside
		}
	}

	return inside
}

// PolygonEdges returns the closed edge list of a polygon.
func PolygonEdges(polygon []Point) []Segment {
	n := len(polygon)
	switch n {
	case 0:
		return nil
	case 1:
		return []Segment{{A: polygon[0], B: polygon[0]}}
	case 2:
		return []Segment{{A: polygon[0], B: polygon[1]}}
	}
	edges := make([]Segment, n)
	for i := range polygon {
		edges[i] = Segment{A: polygon[i], B: polygon[(i+1)%n]}
	}
	return edges
}

// PolygonBBox returns the bounding box of a polygon.
func PolygonBBox(polygon []Point) BBox { return BBoxOf(polygon...) }

// PolygonDist returns the distance from p to the polygon boundary.
func PolygonDist(p Point, polygon []Point) float64 {
	d := math.Inf(1)
	for _, e := range PolygonEdges(polygon) {
		d = math.Min(d, e.PointDist(p))
	}
	return d
}

// PolygonCentroid returns the vertex average of a polygon.
func PolygonCentroid(polygon []Point) Point {
	if len(polygon) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range polygon {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(polygon))
	return Point{X: Length(math.Round(sx / n)), Y: Length(math.Round(sy / n))}
}

// PolygonsOverlap reports whether two simple polygons share interior area.
// Polygons that only touch along an edge or at a vertex do not overlap.
func PolygonsOverlap(a, b []Point) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	if !PolygonBBox(a).Intersects(PolygonBBox(b)) {
		return false
	}
	for _, ea := range PolygonEdges(a) {
		for _, eb := range PolygonEdges(b) {
			if ea.CrossesProperly(eb) {
				return true
			}
		}
	}
	return strictlyInside(samplePoints(a), b) || strictlyInside(samplePoints(b), a)
}

// samplePoints returns the vertices, edge midpoints and centroid of a polygon.
func samplePoints(poly []Point) []Point {
	pts := make([]Point, 0, 2*len(poly)+1)
	pts = append(pts, poly...)
	for _, e := range PolygonEdges(poly) {
		pts = append(pts, Point{X: (e.A.X + e.B.X) / 2, Y: (e.A.Y + e.B.Y) / 2})
	}
	return append(pts, PolygonCentroid(poly))
}

// strictlyInside reports whether any point of pts lies inside poly and off
// its boundary.
func strictlyInside(pts, poly []Point) bool {
	for _, p := range pts {
		if PointInPolygon(p, poly) && PolygonDist(p, poly) > 0 {
			return true
		}
	}
	return false
}

// RectPolygon returns the four corners of an axis-aligned rectangle centred
// on c, counter-clockwise.
func RectPolygon(c Point, w, h Length) []Point {
	hw, hh := w/2, h/2
	return []Point{
		{X: c.X - hw, Y: c.Y - hh},
		{X: c.X + w - hw, Y: c.Y - hh},
		{X: c.X + w - hw, Y: c.Y + h - hh},
		{X: c.X - hw, Y: c.Y + h - hh},
	}
}

// Transform rotates each point by deg about the origin, then translates it by at.
func Transform(pts []Point, at Point, deg float64) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = p.Rotate(deg).Add(at)
	}
	return out
}

// CirclePoints generates n evenly-spaced points around a circle.
func CirclePoints(c Point, r Length, n int) []Point {
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		ang := float64(i) * 2 * math.Pi / float64(n)
		sin, cos := math.Sincos(ang)
		pts[i] = Point{
			X: c.X + Length(math.Round(float64(r)*cos)),
			Y: c.Y + Length(math.Round(float64(r)*sin)),
		}
	}
	return pts
}
