package ratsnest

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/copper/pkg/board"
	"github.com/matzehuels/copper/pkg/drc"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

// Airwire is one unrouted connection between two islands of a net.
type Airwire struct {
	From   drc.Item    `json:"from"`
	To     drc.Item    `json:"to"`
	A      geom.Point  `json:"a"`
	B      geom.Point  `json:"b"`
	Length geom.Length `json:"length"`
}

// Net is the routing status of one net.
type Net struct {
	Name     netlist.NetID `json:"net"`
	Islands  [][]drc.Item  `json:"islands"`
	Airwires []Airwire     `json:"airwires,omitempty"`
}

// Complete reports whether the net needs no more routing.
func (n Net) Complete() bool { return len(n.Airwires) == 0 }

// Unrouted returns the summed airwire length.
func (n Net) Unrouted() geom.Length {
	var total geom.Length
	for _, a := range n.Airwires {
		total += a.Length
	}
	return total
}

// Compute returns the status of every net with copper on snap, sorted by
// net name.
func Compute(snap *board.Snapshot, nl *netlist.Netlist) []Net {
	islands := drc.Islands(snap, nl)
	names := make([]netlist.NetID, 0, len(islands))
	for name := range islands {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]Net, 0, len(names))
	for _, name := range names {
		groups := islands[name]
		out = append(out, Net{Name: name, Islands: groups, Airwires: span(snap, groups)})
	}
	return out
}

// Find returns the status of one net.
func Find(nets []Net, name netlist.NetID) (Net, bool) {
	i, ok := slices.BinarySearchFunc(nets, name, func(n Net, t netlist.NetID) int {
		return strings.Compare(string(n.Name), string(t))
	})
	if !ok {
		return Net{}, false
	}
	return nets[i], true
}

type anchor struct {
	item drc.Item
	at   geom.Point
}

// anchors returns the points an airwire may attach to on an island.
func anchors(snap *board.Snapshot, group []drc.Item) []anchor {
	var out []anchor
	for _, it := range group {
		kind, _ := snap.Kind(it.ID)
		switch kind {
		case board.KindPad:
			if p, ok := snap.Pad(it.ID); ok {
				out = append(out, anchor{it, p.At})
			}
		case board.KindTrace:
			if t, ok := snap.Trace(it.ID); ok {
				out = append(out, anchor{it, t.Start}, anchor{it, t.End})
			}
		case board.KindVia:
			if v, ok := snap.Via(it.ID); ok {
				out = append(out, anchor{it, v.At})
			}
		case board.KindZone:
			if z, ok := snap.Zone(it.ID); ok {
				out = append(out, anchor{it, geom.PolygonCentroid(z.Polygon)})
			}
		}
	}
	return out
}

// closest returns the shortest connection between two islands.
func closest(a, b []anchor) Airwire {
	best := Airwire{Length: -1}
	bestDist := math.Inf(1)
	for _, p := range a {
		for _, q := range b {
			if d := p.at.Dist(q.at); d < bestDist {
				bestDist = d
				best = Airwire{From: p.item, To: q.item, A: p.at, B: q.at, Length: geom.Length(math.Round(d))}
			}
		}
	}
	return best
}

// span joins islands with Prim's algorithm over closest-anchor distances.
func span(snap *board.Snapshot, groups [][]drc.Item) []Airwire {
	if len(groups) < 2 {
		return nil
	}
	pts := make([][]anchor, len(groups))
	for i, g := range groups {
		pts[i] = anchors(snap, g)
	}

	in := make([]bool, len(groups))
	in[0] = true
	var wires []Airwire
	for range len(groups) - 1 {
		best := Airwire{Length: -1}
		next := -1
		for i := range groups {
			if !in[i] {
				continue
			}
			for j := range groups {
				if in[j] {
					continue
				}
				w := closest(pts[i], pts[j])
				if w.Length < 0 {
					continue
				}
				if next < 0 || w.Length < best.Length {
					best, next = w, j
				}
			}
		}
		if next < 0 {
			break
		}
		in[next] = true
		wires = append(wires, best)
	}
	return wires
}
