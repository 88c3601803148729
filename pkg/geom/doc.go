// Package geom provides the geometric primitives used by the board model,
// the routing engine and the design rule checker.
//
// All coordinates and sizes are [Length] values: signed 64-bit integer
// nanometres. Integer storage keeps rule boundaries exact. A via whose copper
// diameter is exactly drill + 2×ring passes an annular ring check, and one
// nanometre less fails, without floating-point tolerance games.
//
// Distances between primitives are computed in float64 and rounded back to
// whole nanometres.
//
// # Primitives
//
// Every piece of copper reduces to a [Primitive]: a core (a point, a segment
// or a polygon) inflated by a radius. A trace is a segment inflated by half its
// width, a via is a point inflated by half its diameter, an oval pad is a
// segment inflated by half its minor axis. Clearance between any two
// primitives is then
//
//	dist(coreA, coreB) - inflateA - inflateB
//
// which is symmetric by construction.
//
// # Shapes
//
// Pad shapes are a tagged variant ([Shape] with a [ShapeKind] tag) over
// circle, rectangle, rounded rectangle, oval and custom polygon. Functions that
// take a Shape switch on every kind and panic on an unknown tag.
package geom
