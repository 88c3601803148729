// Package drc checks board geometry against design rules.
//
// A [Ruleset] sets the global limits and per-rule severities. [Engine.Run]
// evaluates every enabled rule against an immutable [board.Snapshot] and the
// netlist, each rule on its own goroutine, and merges the results into a
// [Report] whose order depends only on its inputs. Rules never mutate the
// board and never depend on one another.
//
// # Violations and Exclusions
//
// A failed rule is data, not an error. Each [Violation] carries a stable
// fingerprint built from the rule id and the canonical pair of offending
// items. Pads are keyed by their pin (for example "pad:U1.3"), so a
// fingerprint survives edits elsewhere on the board. [Exclusions] match
// fingerprints back onto a fresh report and mark the violations excluded
// without dropping them:
//
//	rep, err := drc.NewEngine(nil).Run(ctx, b.Snapshot(), nl, drc.DefaultRuleset(), excl)
//	for _, v := range rep.Active() {
//	    fmt.Println(v)
//	}
package drc
