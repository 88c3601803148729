package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

func testBoard(t *testing.T) (*Board, *netlist.Netlist) {
	t.Helper()
	b, err := New(CopperStack(4), RectOutline(geom.MM(50), geom.MM(40)))
	require.NoError(t, err)

	require.NoError(t, b.AddFootprint(Footprint{
		Name: "R0603",
		Pads: []Pad{
			{Number: "1", Shape: geom.Rect(geom.MM(0.8), geom.MM(0.9)), Offset: geom.PtMM(-0.8, 0)},
			{Number: "2", Shape: geom.Rect(geom.MM(0.8), geom.MM(0.9)), Offset: geom.PtMM(0.8, 0)},
		},
		Courtyard: geom.RectPolygon(geom.Point{}, geom.MM(3), geom.MM(1.5)),
	}))
	_, err = b.PlaceComponent(PlacedComponent{Ref: "R1", Footprint: "R0603", Position: geom.PtMM(10, 10)})
	require.NoError(t, err)

	nl := netlist.New()
	require.NoError(t, nl.AddComponent(netlist.Component{Ref: "R1", Pins: []netlist.Pin{{Number: "1"}, {Number: "2"}}}))
	require.NoError(t, nl.AddNet(netlist.Net{Name: "A"}))
	require.NoError(t, nl.AddNet(netlist.Net{Name: "B"}))
	require.NoError(t, nl.Assign(netlist.PinRef{Component: "R1", Pin: "1"}, "A"))
	return b, nl
}

func TestStack(t *testing.T) {
	s := CopperStack(4)
	assert.Equal(t, []string{"F.Cu", "In1.Cu", "In2.Cu", "B.Cu"}, s.Copper())
	assert.Equal(t, 2, s.IndexOf("In2.Cu"))
	assert.Equal(t, -1, s.IndexOf("Edge.Cuts"))
	assert.True(t, s.IsOuter("B.Cu"))
	assert.Equal(t, "In2.Cu", s.Flip("In1.Cu"))

	next, ok := s.NextLayer("B.Cu")
	require.True(t, ok)
	assert.Equal(t, "F.Cu", next)

	span, err := s.Span("B.Cu", "In1.Cu")
	require.NoError(t, err)
	assert.Equal(t, []string{"In1.Cu", "In2.Cu", "B.Cu"}, span)

	_, err = s.Span("F.Cu", "X")
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeInvalidLayer))

	_, err = NewStack(Layer{Name: "F.Cu"}, Layer{Name: "F.Cu"})
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeConflict))
	_, err = NewStack(Layer{Name: "F.Silk", Kind: LayerSilkscreen})
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeInvalidInput))
}

func TestViaSpan(t *testing.T) {
	s := CopperStack(4)
	tests := []struct {
		name string
		via  Via
		ok   bool
	}{
		{"through default", Via{Kind: ViaThrough}, true},
		{"through partial", Via{Kind: ViaThrough, From: "F.Cu", To: "In2.Cu"}, false},
		{"blind top", Via{Kind: ViaBlind, From: "F.Cu", To: "In1.Cu"}, true},
		{"blind bottom", Via{Kind: ViaBlind, From: "In2.Cu", To: "B.Cu"}, true},
		{"blind full", Via{Kind: ViaBlind, From: "F.Cu", To: "B.Cu"}, false},
		{"buried", Via{Kind: ViaBuried, From: "In1.Cu", To: "In2.Cu"}, true},
		{"buried outer", Via{Kind: ViaBuried, From: "F.Cu", To: "In2.Cu"}, false},
		{"micro adjacent", Via{Kind: ViaMicro, From: "F.Cu", To: "In1.Cu"}, true},
		{"micro skipping", Via{Kind: ViaMicro, From: "F.Cu", To: "In2.Cu"}, false},
		{"single layer", Via{Kind: ViaBlind, From: "F.Cu", To: "F.Cu"}, false},
		{"missing layer", Via{Kind: ViaBlind, From: "F.Cu", To: "In9.Cu"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.via.ValidateSpan(s)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, cerrors.Is(err, cerrors.ErrCodeConflict), "got %v", err)
			}
		})
	}

	assert.Equal(t, ViaThrough, KindForSpan(s, "B.Cu", "F.Cu"))
	assert.Equal(t, ViaBlind, KindForSpan(s, "F.Cu", "In1.Cu"))
	assert.Equal(t, ViaBuried, KindForSpan(s, "In1.Cu", "In2.Cu"))
}

func TestPlaceComponent(t *testing.T) {
	b, _ := testBoard(t)
	pad, ok := b.PadByPin(netlist.PinRef{Component: "R1", Pin: "2"})
	require.True(t, ok)
	assert.Equal(t, geom.PtMM(10.8, 10), pad.At)
	assert.Equal(t, []string{"F.Cu"}, pad.Layers)

	_, err := b.PlaceComponent(PlacedComponent{Ref: "R1", Footprint: "R0603"})
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeConflict))
	_, err = b.PlaceComponent(PlacedComponent{Ref: "R2", Footprint: "nope"})
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeNotFound))

	ids, err := b.PlaceComponent(PlacedComponent{
		Ref: "R2", Footprint: "R0603", Position: geom.PtMM(20, 10), Rotation: 90, Side: SideBottom,
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	p1, _ := b.Pad(ids[0])
	assert.Equal(t, geom.PtMM(20, 10.8), p1.At, "mirrored then rotated")
	assert.Equal(t, []string{"B.Cu"}, p1.Layers)
}

func TestHitTest(t *testing.T) {
	b, nl := testBoard(t)
	cmd := AddBatch(b, nl, []Trace{{
		Net: "A", Layer: "F.Cu", Start: geom.PtMM(9.2, 10), End: geom.PtMM(5, 10), Width: geom.MM(0.25),
	}}, nil)
	require.NoError(t, cmd.Apply())

	hits := b.HitTest(geom.PtMM(9.2, 10), "F.Cu")
	require.Len(t, hits, 2)
	assert.Equal(t, KindPad, hits[0].Kind)
	assert.Equal(t, "R1.1", hits[0].Pin.String())
	assert.Equal(t, KindTrace, hits[1].Kind)
	assert.Equal(t, netlist.NetID("A"), hits[1].Net)

	assert.Empty(t, b.HitTest(geom.PtMM(9.2, 10), "B.Cu"))
	assert.Empty(t, b.HitTest(geom.PtMM(30, 30), "F.Cu"))
}

func TestQuery(t *testing.T) {
	b, nl := testBoard(t)
	require.NoError(t, AddBatch(b, nl, []Trace{
		{Net: "A", Layer: "F.Cu", Start: geom.PtMM(0, 0), End: geom.PtMM(3, 0), Width: geom.MM(0.2)},
		{Net: "B", Layer: "B.Cu", Start: geom.PtMM(-5, -5), End: geom.PtMM(-3, -5), Width: geom.MM(0.2)},
	}, []Via{{Net: "A", At: geom.PtMM(3, 0), Drill: geom.MM(0.3), Diameter: geom.MM(0.6)}}).Apply())

	all := b.Query(geom.BBoxOf(geom.PtMM(-10, -10), geom.PtMM(1, 1)), "")
	assert.Len(t, all, 2)

	onBottom := b.Query(geom.BBoxOf(geom.PtMM(-10, -10), geom.PtMM(5, 5)), "B.Cu")
	assert.Len(t, onBottom, 2, "bottom trace and through via")
}

func TestAddBatchRejectsWithoutMutation(t *testing.T) {
	b, nl := testBoard(t)
	before := b.Fingerprint()
	n := b.Len()

	good := Trace{Net: "A", Layer: "F.Cu", Start: geom.PtMM(0, 0), End: geom.PtMM(1, 0), Width: geom.MM(0.2)}
	tests := []struct {
		name   string
		traces []Trace
		vias   []Via
		code   cerrors.Code
	}{
		{"bad layer", []Trace{good, {Net: "A", Layer: "X", Start: geom.PtMM(0, 0), End: geom.PtMM(1, 0), Width: 1}}, nil, cerrors.ErrCodeInvalidLayer},
		{"zero width", []Trace{good, {Net: "A", Layer: "F.Cu", Start: geom.PtMM(0, 0), End: geom.PtMM(1, 0)}}, nil, cerrors.ErrCodeInvalidInput},
		{"unknown net", []Trace{good, {Net: "Z", Layer: "F.Cu", Start: geom.PtMM(0, 0), End: geom.PtMM(1, 0), Width: 1}}, nil, cerrors.ErrCodeNotFound},
		{"bad span", []Trace{good}, []Via{{Net: "A", Kind: ViaBuried, From: "F.Cu", To: "B.Cu", Drill: 1, Diameter: 2}}, cerrors.ErrCodeConflict},
		{"drill too big", []Trace{good}, []Via{{Net: "A", Drill: 2, Diameter: 2}}, cerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AddBatch(b, nl, tt.traces, tt.vias).Apply()
			require.Error(t, err)
			assert.True(t, cerrors.Is(err, tt.code), "got %v", err)
			assert.Equal(t, before, b.Fingerprint())
			assert.Equal(t, n, b.Len())
		})
	}
}

func TestAddBatchUndoRedo(t *testing.T) {
	b, nl := testBoard(t)
	before := b.Fingerprint()

	cmd := AddBatch(b, nl, []Trace{
		{Net: "A", Layer: "F.Cu", Start: geom.PtMM(0, 0), End: geom.PtMM(1, 0), Width: geom.MM(0.2)},
		{Net: "A", Layer: "B.Cu", Start: geom.PtMM(1, 0), End: geom.PtMM(1, 1), Width: geom.MM(0.2)},
	}, []Via{{Net: "A", At: geom.PtMM(1, 0), Drill: geom.MM(0.3), Diameter: geom.MM(0.6)}})
	require.NoError(t, cmd.Apply())
	ids := cmd.IDs()
	require.Len(t, ids, 3)
	assert.Len(t, cmd.TraceIDs(), 2)
	assert.Equal(t, ids[2:], cmd.ViaIDs())
	after := b.Fingerprint()

	v, ok := b.Via(ids[2])
	require.True(t, ok)
	assert.Equal(t, ViaThrough, v.Kind)

	require.NoError(t, cmd.Revert())
	assert.Equal(t, before, b.Fingerprint())

	require.NoError(t, cmd.Apply())
	assert.Equal(t, ids, cmd.IDs(), "redo restores the same ids")
	assert.Equal(t, after, b.Fingerprint())

	assert.True(t, cerrors.IsFatal(cmd.Apply()))
}

func TestDeleteNeverTouchesNetlist(t *testing.T) {
	b, nl := testBoard(t)
	add := AddBatch(b, nl, []Trace{
		{Net: "A", Layer: "F.Cu", Start: geom.PtMM(0, 0), End: geom.PtMM(1, 0), Width: geom.MM(0.2)},
	}, nil)
	require.NoError(t, add.Apply())
	id := add.IDs()[0]
	withTrace := b.Fingerprint()

	del := DeleteTrace(b, id)
	require.NoError(t, del.Apply())
	_, ok := b.Trace(id)
	assert.False(t, ok)
	assert.True(t, nl.HasNet("A"))
	assert.Len(t, nl.PinsOf("A"), 1)

	assert.True(t, cerrors.Is(DeleteTrace(b, id).Apply(), cerrors.ErrCodeNotFound))
	assert.True(t, cerrors.Is(DeleteVia(b, id).Apply(), cerrors.ErrCodeNotFound))

	require.NoError(t, del.Revert())
	assert.Equal(t, withTrace, b.Fingerprint())
}

func TestZones(t *testing.T) {
	b, nl := testBoard(t)
	cmd := AddZone(b, nl, Zone{Net: "B", Layer: "In1.Cu", Polygon: geom.RectPolygon(geom.PtMM(25, 20), geom.MM(10), geom.MM(10))})
	require.NoError(t, cmd.Apply())
	z, ok := b.Zone(cmd.ZoneID())
	require.True(t, ok)
	assert.Equal(t, FillSolid, z.Fill)

	hits := b.HitTest(geom.PtMM(25, 20), "In1.Cu")
	require.Len(t, hits, 1)
	assert.Equal(t, KindZone, hits[0].Kind)

	del := DeleteZone(b, cmd.ZoneID())
	require.NoError(t, del.Apply())
	assert.Empty(t, b.Zones())
	require.NoError(t, del.Revert())
	assert.Len(t, b.Zones(), 1)

	bad := AddZone(b, nl, Zone{Net: "B", Layer: "In1.Cu", Polygon: geom.RectPolygon(geom.Point{}, 1, 1)[:2]})
	assert.True(t, cerrors.Is(bad.Apply(), cerrors.ErrCodeInvalidInput))
}

func TestSnapshotIsolation(t *testing.T) {
	b, nl := testBoard(t)
	snap := b.Snapshot()
	fp := snap.Fingerprint()

	require.NoError(t, AddBatch(b, nl, []Trace{
		{Net: "B", Layer: "F.Cu", Start: geom.PtMM(0, 0), End: geom.PtMM(1, 0), Width: geom.MM(0.2)},
	}, nil).Apply())

	assert.Empty(t, snap.Traces())
	assert.Equal(t, fp, snap.Fingerprint())
	assert.NotEqual(t, fp, b.Fingerprint())
	assert.Len(t, b.Snapshot().Traces(), 1)
}

func TestOutline(t *testing.T) {
	o := RectOutline(geom.MM(10), geom.MM(5))
	require.NoError(t, o.Validate())
	assert.Len(t, o.Edges(), 4)
	assert.True(t, o.Contains(geom.PtMM(5, 2)))
	assert.False(t, o.Contains(geom.PtMM(11, 2)))

	c := Outline{Kind: OutlineCircle, Width: geom.MM(10), Points: []geom.Point{geom.PtMM(5, 5)}}
	assert.True(t, c.Contains(geom.PtMM(9.9, 5)))
	assert.False(t, c.Contains(geom.PtMM(9.9, 9.9)))

	assert.Error(t, Outline{Kind: "hex"}.Validate())
}

func TestCourtyard(t *testing.T) {
	b, _ := testBoard(t)
	cy := b.Snapshot().Courtyard("R1")
	require.Len(t, cy, 4)
	assert.Equal(t, geom.PtMM(8.5, 9.25), cy[0])
	assert.Nil(t, b.Snapshot().Courtyard("R9"))
}

func TestRestoreKeepsSavedIDs(t *testing.T) {
	b, nl := testBoard(t)
	traces := []Trace{
		{Net: "A", Layer: "F.Cu", Start: geom.PtMM(20, 20), End: geom.PtMM(25, 20), Width: geom.MM(0.25)},
		{ID: 10, Net: "A", Layer: "F.Cu", Start: geom.PtMM(25, 20), End: geom.PtMM(25, 25), Width: geom.MM(0.25)},
	}
	vias := []Via{{ID: 12, Net: "A", At: geom.PtMM(25, 25), Drill: geom.MM(0.3), Diameter: geom.MM(0.6)}}
	zones := []Zone{{Net: "B", Layer: "B.Cu", Polygon: geom.RectPolygon(geom.PtMM(40, 30), geom.MM(4), geom.MM(4))}}
	require.NoError(t, b.Restore(nl, traces, vias, zones))

	got := b.Traces()
	require.Len(t, got, 2)
	assert.Equal(t, ElementID(10), got[0].ID)
	assert.Equal(t, ElementID(13), got[1].ID, "unsaved ids follow every saved one")
	v, ok := b.Via(12)
	require.True(t, ok)
	assert.Equal(t, ViaThrough, v.Kind)
	assert.Equal(t, ElementID(14), b.Zones()[0].ID)
	assert.Equal(t, FillSolid, b.Zones()[0].Fill)

	_, err := b.PlaceComponent(PlacedComponent{Ref: "R2", Footprint: "R0603", Position: geom.PtMM(30, 10)})
	require.NoError(t, err)
	assert.Greater(t, b.Pads()[3].ID, ElementID(14))
}

func TestRestoreRejectsWithoutMutation(t *testing.T) {
	b, nl := testBoard(t)
	before := b.Fingerprint()

	tests := []struct {
		name   string
		traces []Trace
		code   cerrors.Code
	}{
		{"pad id", []Trace{{ID: 1, Net: "A", Layer: "F.Cu", Start: geom.PtMM(20, 20), End: geom.PtMM(25, 20), Width: geom.MM(0.25)}}, cerrors.ErrCodeConflict},
		{"duplicate id", []Trace{
			{ID: 5, Net: "A", Layer: "F.Cu", Start: geom.PtMM(20, 20), End: geom.PtMM(25, 20), Width: geom.MM(0.25)},
			{ID: 5, Net: "A", Layer: "F.Cu", Start: geom.PtMM(25, 20), End: geom.PtMM(25, 25), Width: geom.MM(0.25)},
		}, cerrors.ErrCodeConflict},
		{"unknown net", []Trace{{Net: "Z", Layer: "F.Cu", Start: geom.PtMM(20, 20), End: geom.PtMM(25, 20), Width: geom.MM(0.25)}}, cerrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Restore(nl, tt.traces, nil, nil)
			assert.True(t, cerrors.Is(err, tt.code), "got %v", err)
			assert.Equal(t, before, b.Fingerprint())
		})
	}
}

func TestRemoveNetChecksCopper(t *testing.T) {
	b, nl := testBoard(t)
	cmd := AddBatch(b, nl, []Trace{{Net: "B", Layer: "F.Cu", Start: geom.PtMM(20, 20), End: geom.PtMM(25, 20), Width: geom.MM(0.25)}}, nil)
	require.NoError(t, cmd.Apply())

	assert.True(t, cerrors.Is(b.RemoveNet(nl, "B"), cerrors.ErrCodeConflict))
	assert.True(t, nl.HasNet("B"))

	require.NoError(t, DeleteTrace(b, cmd.TraceIDs()[0]).Apply())
	require.NoError(t, b.RemoveNet(nl, "B"))
	assert.False(t, nl.HasNet("B"))

	assert.True(t, cerrors.Is(b.RemoveNet(nl, "A"), cerrors.ErrCodeConflict), "pins still on A")
}
