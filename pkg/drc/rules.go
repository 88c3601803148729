package drc

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/copper/pkg/board"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

// Rule is one independent check. Check must not modify anything reachable
// from the context.
type Rule struct {
	ID    RuleID
	Check func(*Context) []Violation
}

// DefaultRules returns every built-in rule.
func DefaultRules() []Rule {
	return []Rule{
		{RuleTraceClearance, checkTraceClearance},
		{RuleTraceWidth, checkTraceWidth},
		{RuleViaClearance, checkViaClearance},
		{RuleViaDrill, checkDrill},
		{RuleAnnularRing, checkAnnularRing},
		{RuleCourtyardOverlap, checkCourtyards},
		{RuleEdgeClearance, checkEdgeClearance},
		{RuleDanglingVia, checkDanglingVias},
		{RuleUnconnected, checkUnconnected},
	}
}

func clearanceViolation(rule RuleID, c *Context, a, b copper, layer string) (Violation, bool) {
	required := c.required(a, b)
	actual := geom.Clearance(a.prim, b.prim)
	if actual >= required {
		return Violation{}, false
	}
	return Violation{
		Rule:     rule,
		Items:    pair(a.item, b.item),
		At:       midpoint(a.box, b.box),
		Message:  fmt.Sprintf("%s and %s on %s are %s apart, need %s", a.item.Key, b.item.Key, layer, actual, required),
		Actual:   actual,
		Required: required,
	}, true
}

// checkTraceClearance covers pairs without a via: trace to trace, trace to
// pad and pad to pad.
func checkTraceClearance(c *Context) []Violation {
	var out []Violation
	c.pairs(func(a, b copper, layer string) {
		if a.kind == board.KindVia || b.kind == board.KindVia {
			return
		}
		if v, ok := clearanceViolation(RuleTraceClearance, c, a, b, layer); ok {
			out = append(out, v)
		}
	})
	return out
}

// checkViaClearance covers every pair with at least one via.
func checkViaClearance(c *Context) []Violation {
	var out []Violation
	c.pairs(func(a, b copper, layer string) {
		if a.kind != board.KindVia && b.kind != board.KindVia {
			return
		}
		if v, ok := clearanceViolation(RuleViaClearance, c, a, b, layer); ok {
			out = append(out, v)
		}
	})
	return out
}

func checkTraceWidth(c *Context) []Violation {
	var out []Violation
	for _, t := range c.Board.Traces() {
		class := c.Netlist.ClassFor(t.Net)
		mid := geom.Point{X: (t.Start.X + t.End.X) / 2, Y: (t.Start.Y + t.End.Y) / 2}
		switch {
		case class.MinTraceWidth > 0 && t.Width < class.MinTraceWidth:
			out = append(out, Violation{
				Rule:     RuleTraceWidth,
				Items:    [2]Item{traceItem(t.ID)},
				At:       mid,
				Message:  fmt.Sprintf("trace width %s is below the %s minimum of %s", t.Width, class.Name, class.MinTraceWidth),
				Actual:   t.Width,
				Required: class.MinTraceWidth,
			})
		case class.MaxTraceWidth > 0 && t.Width > class.MaxTraceWidth:
			out = append(out, Violation{
				Rule:     RuleTraceWidth,
				Items:    [2]Item{traceItem(t.ID)},
				At:       mid,
				Message:  fmt.Sprintf("trace width %s exceeds the %s maximum of %s", t.Width, class.Name, class.MaxTraceWidth),
				Actual:   t.Width,
				Required: class.MaxTraceWidth,
			})
		}
	}
	return out
}

// drilled is a via or plated hole reduced to what the hole rules need.
type drilled struct {
	item     Item
	net      netlist.NetID
	at       geom.Point
	drill    geom.Length
	diameter geom.Length
}

func (c *Context) drilled() []drilled {
	var out []drilled
	for _, v := range c.Board.Vias() {
		out = append(out, drilled{viaItem(v.ID), v.Net, v.At, v.Drill, v.Diameter})
	}
	for _, p := range c.Board.Pads() {
		if p.Drill <= 0 {
			continue
		}
		net, _ := c.Netlist.NetFor(p.Pin)
		bb := p.Shape.BBox(geom.Point{}, 0)
		out = append(out, drilled{padItem(p), net, p.At, p.Drill, min(bb.Width(), bb.Height())})
	}
	return out
}

func checkDrill(c *Context) []Violation {
	var out []Violation
	for _, d := range c.drilled() {
		if d.drill >= c.Rules.MinDrill {
			continue
		}
		out = append(out, Violation{
			Rule:     RuleViaDrill,
			Items:    [2]Item{d.item},
			At:       d.at,
			Message:  fmt.Sprintf("drill %s is below the minimum of %s", d.drill, c.Rules.MinDrill),
			Actual:   d.drill,
			Required: c.Rules.MinDrill,
		})
	}
	return out
}

// checkAnnularRing compares copper radius minus drill radius against the
// larger of the global and the net-class minimum. The comparison is done on
// diameters to stay exact in integer nanometres.
func checkAnnularRing(c *Context) []Violation {
	var out []Violation
	for _, d := range c.drilled() {
		required := max(c.Rules.MinAnnularRing, c.Netlist.ClassFor(d.net).MinAnnularRing)
		if d.diameter-d.drill >= 2*required {
			continue
		}
		ring := (d.diameter - d.drill) / 2
		out = append(out, Violation{
			Rule:     RuleAnnularRing,
			Items:    [2]Item{d.item},
			At:       d.at,
			Message:  fmt.Sprintf("annular ring %s is below the minimum of %s", ring, required),
			Actual:   ring,
			Required: required,
		})
	}
	return out
}

// checkCourtyards flags same-side components whose courtyards overlap or
// come closer than the configured gap.
func checkCourtyards(c *Context) []Violation {
	type yard struct {
		ref  string
		side board.Side
		poly []geom.Point
		box  geom.BBox
	}
	var yards []yard
	for _, pc := range c.Board.Components() {
		poly := c.Board.Courtyard(pc.Ref)
		if len(poly) < 3 {
			continue
		}
		side := pc.Side
		if side == "" {
			side = board.SideTop
		}
		yards = append(yards, yard{pc.Ref, side, poly, geom.PolygonBBox(poly)})
	}

	gap := c.Rules.CourtyardGap
	var out []Violation
	for i := range yards {
		if c.cancelled() {
			break
		}
		for j := i + 1; j < len(yards); j++ {
			a, b := yards[i], yards[j]
			if a.side != b.side || !a.box.Expand(gap).Intersects(b.box) {
				continue
			}
			var actual geom.Length
			if !geom.PolygonsOverlap(a.poly, b.poly) {
				actual = geom.Clearance(geom.PolygonPrimitive(a.poly, 0), geom.PolygonPrimitive(b.poly, 0))
				if actual >= gap {
					continue
				}
			}
			out = append(out, Violation{
				Rule:     RuleCourtyardOverlap,
				Items:    pair(componentItem(a.ref), componentItem(b.ref)),
				At:       midpoint(a.box, b.box),
				Message:  fmt.Sprintf("courtyards of %s and %s overlap", a.ref, b.ref),
				Actual:   actual,
				Required: gap,
			})
		}
	}
	return out
}

// checkEdgeClearance flags copper closer to the outline than allowed, and
// copper lying outside it.
func checkEdgeClearance(c *Context) []Violation {
	outline := c.Board.Outline()
	edges := outline.Edges()
	required := c.Rules.EdgeClearance
	var out []Violation
	for _, cu := range c.items {
		if c.cancelled() {
			break
		}
		actual := geom.Length(math.MaxInt64)
		for _, e := range edges {
			actual = min(actual, geom.Clearance(cu.prim, geom.SegmentPrimitive(e.A, e.B, 0)))
		}
		inside := outline.Contains(cu.prim.Core[0])
		if inside && actual >= required {
			continue
		}
		msg := fmt.Sprintf("%s is %s from the board edge, need %s", cu.item.Key, actual, required)
		if !inside {
			actual = 0
			msg = fmt.Sprintf("%s lies outside the board outline", cu.item.Key)
		}
		out = append(out, Violation{
			Rule:     RuleEdgeClearance,
			Items:    [2]Item{cu.item},
			At:       cu.box.Center(),
			Message:  msg,
			Actual:   max(actual, 0),
			Required: required,
		})
	}
	return out
}

// checkDanglingVias flags vias that join copper of their net on fewer than
// two layers.
func checkDanglingVias(c *Context) []Violation {
	var out []Violation
	for _, v := range c.Board.Vias() {
		if v.Net == "" {
			continue
		}
		via := c.items[c.byID[v.ID]]
		joined := make(map[string]bool)
		for _, id := range c.Board.Query(via.box, "") {
			j, ok := c.byID[id]
			if !ok || id == v.ID {
				continue
			}
			other := c.items[j]
			if other.net != v.Net || geom.Clearance(via.prim, other.prim) > 0 {
				continue
			}
			for _, l := range via.layers {
				if slices.Contains(other.layers, l) {
					joined[l] = true
				}
			}
		}
		if len(joined) >= 2 {
			continue
		}
		out = append(out, Violation{
			Rule:    RuleDanglingVia,
			Items:   [2]Item{via.item},
			At:      v.At,
			Message: fmt.Sprintf("via on net %s connects %d layer(s)", v.Net, len(joined)),
		})
	}
	return out
}
