// Package render holds the board visualizations.
//
// The [ratsnest] subpackage draws the unrouted connections of a board, one
// Graphviz cluster per net, and renders them to SVG in-process.
//
//	nets := ratsnest.Compute(snap, nl)
//	dot := ratsnest.ToDOT(nets, ratsnest.Options{})
//	svg, err := ratsnest.RenderSVG(dot)
package render
