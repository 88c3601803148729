// Package board is the authoritative store of physical copper: the layer
// stack, the board outline, placed footprints and their pads, traces, vias and
// zones.
//
// Elements live in an arena keyed by [ElementID], allocated monotonically and
// never reused for a different element. A uniform grid over bounding boxes
// serves spatial queries. Callers hold ids, not pointers, and resolve them
// through the board or a [Snapshot].
//
// # Mutation
//
// Traces, vias and zones change only through command values ([AddBatch],
// [DeleteTrace], [DeleteVia], [AddZone], [DeleteZone]). A command validates
// everything before touching the arena, so a rejected command leaves the
// board unchanged, and Revert restores the exact prior state. Commands are
// pushed through a history stack by the caller.
//
// Deleting copper never touches the netlist.
//
// # Snapshots
//
// [Board.Snapshot] returns an immutable deep copy that is safe to read from
// any number of goroutines while the live board keeps changing.
package board
