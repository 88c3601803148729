package ratsnest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/copper/pkg/board"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

func testBoard(t *testing.T) (*board.Board, *netlist.Netlist) {
	t.Helper()
	b, err := board.New(board.CopperStack(2), board.RectOutline(geom.MM(50), geom.MM(40)))
	require.NoError(t, err)
	require.NoError(t, b.AddFootprint(board.Footprint{
		Name: "TP",
		Pads: []board.Pad{{Number: "1", Shape: geom.Circle(geom.MM(1))}},
	}))

	nl := netlist.New()
	require.NoError(t, nl.AddNet(netlist.Net{Name: "A"}))
	require.NoError(t, nl.AddNet(netlist.Net{Name: "B"}))
	place := func(ref string, at geom.Point, net netlist.NetID) {
		_, err := b.PlaceComponent(board.PlacedComponent{Ref: ref, Footprint: "TP", Position: at})
		require.NoError(t, err)
		require.NoError(t, nl.AddComponent(netlist.Component{Ref: ref, Pins: []netlist.Pin{{Number: "1"}}}))
		require.NoError(t, nl.Assign(netlist.PinRef{Component: ref, Pin: "1"}, net))
	}
	place("J1", geom.PtMM(10, 10), "A")
	place("J2", geom.PtMM(20, 10), "A")
	place("J3", geom.PtMM(30, 10), "A")
	place("K1", geom.PtMM(40, 30), "B")

	cmd := board.AddBatch(b, nl, []board.Trace{{
		Net: "A", Layer: "F.Cu", Start: geom.PtMM(10, 10), End: geom.PtMM(20, 10), Width: geom.MM(0.25),
	}}, nil)
	require.NoError(t, cmd.Apply())
	return b, nl
}

func TestCompute(t *testing.T) {
	b, nl := testBoard(t)
	nets := Compute(b.Snapshot(), nl)
	require.Len(t, nets, 2)

	a, ok := Find(nets, "A")
	require.True(t, ok)
	assert.Len(t, a.Islands, 2)
	require.Len(t, a.Airwires, 1)
	w := a.Airwires[0]
	assert.Equal(t, "pad:J2.1", w.From.Key)
	assert.Equal(t, "pad:J3.1", w.To.Key)
	assert.Equal(t, geom.MM(10), w.Length)
	assert.Equal(t, geom.MM(10), a.Unrouted())
	assert.False(t, a.Complete())

	k, ok := Find(nets, "B")
	require.True(t, ok)
	assert.True(t, k.Complete())

	_, ok = Find(nets, "C")
	assert.False(t, ok)
}

func TestComputeSpanningTree(t *testing.T) {
	b, nl := testBoard(t)
	// J4 sits closest to J3, so the tree runs J2-J3 then J3-J4.
	_, err := b.PlaceComponent(board.PlacedComponent{Ref: "J4", Footprint: "TP", Position: geom.PtMM(30, 14)})
	require.NoError(t, err)
	require.NoError(t, nl.AddComponent(netlist.Component{Ref: "J4", Pins: []netlist.Pin{{Number: "1"}}}))
	require.NoError(t, nl.Assign(netlist.PinRef{Component: "J4", Pin: "1"}, "A"))

	a, _ := Find(Compute(b.Snapshot(), nl), "A")
	require.Len(t, a.Airwires, 2)
	assert.Equal(t, geom.MM(4), a.Airwires[1].Length)
	assert.Equal(t, geom.MM(14), a.Unrouted())
}

func TestToDOT(t *testing.T) {
	b, nl := testBoard(t)
	nets := Compute(b.Snapshot(), nl)

	dot := ToDOT(nets, Options{})
	assert.True(t, strings.HasPrefix(dot, "graph ratsnest {"))
	assert.Contains(t, dot, `label="A"`)
	assert.NotContains(t, dot, `label="B"`, "complete nets are hidden by default")
	assert.Contains(t, dot, `"pad:J2.1" -- "pad:J3.1" [style=dashed, color=red, label="10mm"]`)

	all := ToDOT(nets, Options{All: true})
	assert.Contains(t, all, `label="B"`)
}

func TestRenderSVG(t *testing.T) {
	b, nl := testBoard(t)
	svg, err := RenderSVG(ToDOT(Compute(b.Snapshot(), nl), Options{}))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}
