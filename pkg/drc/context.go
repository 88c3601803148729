package drc

import (
	"context"
	"slices"

	"github.com/matzehuels/copper/pkg/board"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

// copper is a conductive object prepared for pairwise checks.
type copper struct {
	item   Item
	kind   board.Kind
	net    netlist.NetID
	layers []string
	prim   geom.Primitive
	box    geom.BBox

	// Zones only.
	clearance geom.Length
	priority  int
}

// Context is the read-only input shared by all rules of one run.
type Context struct {
	ctx     context.Context
	Board   *board.Snapshot
	Netlist *netlist.Netlist
	Rules   Ruleset

	items []copper
	byID  map[board.ElementID]int
	// maxClearance bounds every pairwise clearance requirement.
	maxClearance geom.Length
}

func newContext(ctx context.Context, snap *board.Snapshot, nl *netlist.Netlist, rs Ruleset) *Context {
	c := &Context{
		ctx:          ctx,
		Board:        snap,
		Netlist:      nl,
		Rules:        rs,
		byID:         make(map[board.ElementID]int),
		maxClearance: rs.GlobalClearance,
	}
	for _, cl := range nl.Classes() {
		c.maxClearance = max(c.maxClearance, cl.Clearance)
	}

	stack := snap.Stack()
	add := func(cu copper) {
		cu.box = cu.prim.BBox()
		c.byID[cu.item.ID] = len(c.items)
		c.items = append(c.items, cu)
	}
	for _, p := range snap.Pads() {
		net, _ := nl.NetFor(p.Pin)
		add(copper{item: padItem(p), kind: board.KindPad, net: net, layers: p.Layers, prim: p.Primitive()})
	}
	for _, t := range snap.Traces() {
		add(copper{item: traceItem(t.ID), kind: board.KindTrace, net: t.Net, layers: []string{t.Layer}, prim: t.Primitive()})
	}
	for _, v := range snap.Vias() {
		span, err := v.Span(stack)
		if err != nil {
			// A via with a broken span still occupies its named layers.
			span = []string{v.From, v.To}
		}
		add(copper{item: viaItem(v.ID), kind: board.KindVia, net: v.Net, layers: span, prim: v.Primitive()})
	}
	for _, z := range snap.Zones() {
		c.maxClearance = max(c.maxClearance, z.Clearance)
		add(copper{
			item:      zoneItem(z.ID),
			kind:      board.KindZone,
			net:       z.Net,
			layers:    []string{z.Layer},
			prim:      z.Primitive(),
			clearance: z.Clearance,
			priority:  z.Priority,
		})
	}
	return c
}

// cancelled reports whether the run was cancelled. Long rules poll it between
// items.
func (c *Context) cancelled() bool { return c.ctx.Err() != nil }

// clearanceFor returns the clearance two nets need: the largest of the global
// rule and both net classes.
func (c *Context) clearanceFor(a, b netlist.NetID) geom.Length {
	return max(c.Rules.GlobalClearance,
		c.Netlist.ClassFor(a).Clearance,
		c.Netlist.ClassFor(b).Clearance)
}

// required returns the clearance between two items, raised by a zone's own
// clearance when either is a zone.
func (c *Context) required(a, b copper) geom.Length {
	return max(c.clearanceFor(a.net, b.net), a.clearance, b.clearance)
}

// sameNet reports whether two items are on the same net. Copper without a net
// is never on the same net as anything.
func sameNet(a, b copper) bool { return a.net != "" && a.net == b.net }

func sharedLayer(a, b copper) (string, bool) {
	for _, l := range a.layers {
		if slices.Contains(b.layers, l) {
			return l, true
		}
	}
	return "", false
}

// pairs calls fn once for every unordered pair of copper items that share a
// layer, belong to different nets and whose boxes come within the largest
// clearance of each other. Candidates come from the board's spatial index.
// Zones are unfilled outlines, so foreign copper inside one is a clash. Of two
// overlapping zones with different priorities the higher one is filled first
// and the other pours around it; equal priorities are checked like any pair.
func (c *Context) pairs(fn func(a, b copper, layer string)) {
	for i, a := range c.items {
		if c.cancelled() {
			return
		}
		for _, id := range c.Board.Query(a.box.Expand(c.maxClearance), "") {
			j, ok := c.byID[id]
			if !ok || j <= i {
				continue
			}
			b := c.items[j]
			if sameNet(a, b) {
				continue
			}
			if a.kind == board.KindZone && b.kind == board.KindZone && a.priority != b.priority {
				continue
			}
			layer, ok := sharedLayer(a, b)
			if !ok {
				continue
			}
			fn(a, b, layer)
		}
	}
}

// midpoint returns a point between two boxes, used to locate pair violations.
func midpoint(a, b geom.BBox) geom.Point {
	ca, cb := a.Center(), b.Center()
	return geom.Point{X: (ca.X + cb.X) / 2, Y: (ca.Y + cb.Y) / 2}
}
