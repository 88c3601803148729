// Package route implements interactive point-to-point routing.
//
// An [Engine] is a small state machine bound to one editing session:
//
//	Idle --Start--> Routing --Commit--> Idle (committed)
//	                        --Cancel--> Idle (cancelled)
//
// While routing, Extend, InsertVia, width changes and UndoSegment accumulate
// geometry privately. Nothing reaches the board until Commit, which pushes a
// single undoable batch through the session history. Cancel discards the
// accumulation and leaves the board exactly as it was.
//
// A route is always bound to a net: Start must land on copper that belongs
// to one, and Commit must end on copper of the same net. Only one route may
// be active per session; a second Start is rejected with BUSY_ROUTING.
package route
