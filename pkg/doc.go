// Package pkg provides the core libraries of copper, the physical-design core
// of a printed circuit board editor.
//
// # Overview
//
// A design is a board (layer stack, outline, placed footprints and copper
// items) plus a netlist (components, pins, nets and net classes). The board
// changes only through undoable commands; readers work on immutable
// snapshots. Around that model sit an interactive router and a design rule
// checker.
//
// # Architecture
//
// The typical data flow:
//
//	design.toml
//	     ↓
//	[io] package (parse board, netlist, rules and exclusions)
//	     ↓
//	[history] session (board + netlist + undo stack)
//	     ↓                      ↓
//	[route] engine         [board] snapshot
//	(commits commands)          ↓
//	                       [drc] engine → report
//	                            ↓
//	                       [render/ratsnest] (DOT, SVG, JSON)
//
// # Quick Start
//
// Load a design, route one trace and check the result:
//
//	d, _ := io.Load("divider.toml")
//	session := history.NewSession(d.Board, d.Netlist)
//	eng, _ := route.New(session, d.Route, nil)
//
//	_ = eng.Start(geom.PtMM(10.8, 10), "F.Cu")
//	_ = eng.Extend(geom.PtMM(19.2, 10))
//	_, _ = eng.Commit()
//
//	rep, _ := drc.Run(ctx, d.Board.Snapshot(), d.Netlist, d.Rules, d.Exclusions)
//	fmt.Println(rep.Passed())
//
// # Main Packages
//
// [geom] - Integer nanometre lengths, points, segments and the distance
// queries the router and checker share.
//
// [board] - Layer stack, outline, footprints, pads, traces, vias and zones,
// with a spatial index and content fingerprints.
//
// [netlist] - Components, pins, nets and net classes.
//
// [history] - Commands and the bounded undo/redo stack bound to a session.
//
// [route] - The interactive routing state machine and route scripts.
//
// [drc] - Rule evaluation, reports, fingerprints and exclusions.
//
// [render/ratsnest] - Unrouted connections as minimum spanning airwires.
//
// ## Infrastructure
//
// [pipeline] - Load, check and render with caching, shared by the CLI and the
// HTTP server.
//
// [cache] - Byte caches: file, in-memory LRU, Redis and null.
//
// [store] - Durable exclusion records in files or MongoDB.
//
// [observability] - Hooks for routing, checks, caches and HTTP requests.
//
// [errors] - Structured error codes.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/geom
// [board]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/board
// [netlist]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/netlist
// [history]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/history
// [route]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/route
// [drc]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/drc
// [render/ratsnest]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/render/ratsnest
// [io]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/copper/pkg/errors
package pkg
