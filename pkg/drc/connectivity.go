package drc

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/copper/pkg/board"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

// Islands groups each net's copper on snap into connected islands. A fully
// routed net has exactly one island.
func Islands(snap *board.Snapshot, nl *netlist.Netlist) map[netlist.NetID][][]Item {
	return newContext(context.Background(), snap, nl, DefaultRuleset()).Islands()
}

// Islands splits the copper of each net into electrically joined groups.
// Two items join when they share a layer and their copper touches. Each
// group is sorted by key; groups are ordered by their first key.
func (c *Context) Islands() map[netlist.NetID][][]Item {
	byNet := make(map[netlist.NetID][]int)
	for i, cu := range c.items {
		if cu.net != "" {
			byNet[cu.net] = append(byNet[cu.net], i)
		}
	}

	out := make(map[netlist.NetID][][]Item, len(byNet))
	for net, members := range byNet {
		g := simple.NewUndirectedGraph()
		for _, i := range members {
			g.AddNode(simple.Node(i))
		}
		for _, i := range members {
			a := c.items[i]
			for _, id := range c.Board.Query(a.box, "") {
				j, ok := c.byID[id]
				if !ok || j <= i || c.items[j].net != net {
					continue
				}
				b := c.items[j]
				if _, shared := sharedLayer(a, b); !shared {
					continue
				}
				if geom.Clearance(a.prim, b.prim) <= 0 {
					g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
				}
			}
		}

		var groups [][]Item
		for _, comp := range topo.ConnectedComponents(g) {
			group := make([]Item, 0, len(comp))
			for _, n := range comp {
				group = append(group, c.items[n.ID()].item)
			}
			slices.SortFunc(group, func(a, b Item) int { return strings.Compare(a.Key, b.Key) })
			groups = append(groups, group)
		}
		slices.SortFunc(groups, func(a, b []Item) int { return strings.Compare(a[0].Key, b[0].Key) })
		out[net] = groups
	}
	return out
}

// representative picks the item that names a group in a violation, a pad
// when the group has one.
func representative(group []Item) Item {
	for _, it := range group {
		if strings.HasPrefix(it.Key, "pad:") {
			return it
		}
	}
	return group[0]
}

// checkUnconnected reports one violation for every island of a net beyond
// the first.
func checkUnconnected(c *Context) []Violation {
	var out []Violation
	for net, groups := range c.Islands() {
		if len(groups) < 2 {
			continue
		}
		first := representative(groups[0])
		for _, g := range groups[1:] {
			rep := representative(g)
			out = append(out, Violation{
				Rule:    RuleUnconnected,
				Items:   pair(first, rep),
				At:      c.itemBox(rep).Center(),
				Message: fmt.Sprintf("net %s: %s is not connected to %s", net, rep.Key, first.Key),
			})
		}
	}
	return out
}

func (c *Context) itemBox(it Item) geom.BBox {
	if i, ok := c.byID[it.ID]; ok {
		return c.items[i].box
	}
	return geom.BBox{}
}
