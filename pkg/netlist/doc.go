// Package netlist holds the connectivity model: which component pins must be
// joined, which net each pin belongs to and which net class constrains each
// net.
//
// A [Netlist] is populated upstream (capture, import, a design file) and is
// read-only for routing and DRC. The invariant maintained by every mutation is
// that a pin belongs to at most one net:
//
//	for all nets N1 != N2: PinsOf(N1) ∩ PinsOf(N2) = ∅
//
// Assigning a pin that is already on a different net fails with a CONFLICT
// error and changes nothing; callers must [Netlist.Detach] first.
//
// Every net belongs to exactly one class. Nets without an explicit class use
// [DefaultClass], which always exists.
package netlist
