// Package ratsnest computes and draws a board's unrouted connections.
//
// # Overview
//
// A net's copper falls into islands: groups of pads, traces, vias and zones
// that touch on a shared layer. A routed net is one island. Every further
// island needs an airwire, a straight connection the router still has to
// replace with copper.
//
// [Compute] joins the islands of each net with a minimum spanning tree of
// airwires, measured between the closest anchor points of two islands (pad
// centres, trace endpoints, via centres, zone centroids). Results are
// deterministic: nets sort by name and ties resolve to the lower island.
//
// # Rendering
//
// [ToDOT] writes Graphviz DOT with one cluster per net. Pads are nodes,
// copper inside an island is drawn solid and airwires are dashed and
// labelled with their length. [RenderSVG] renders the DOT with
// [github.com/goccy/go-graphviz], which needs no external binaries.
package ratsnest
