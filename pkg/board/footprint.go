package board

import (
	"slices"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

// Pad is a copper land of a footprint, in footprint coordinates.
//
// Layers lists the copper layers the pad sits on. An empty list means every
// copper layer for a drilled pad and the top copper layer otherwise.
type Pad struct {
	Number   string      `json:"number" toml:"number"`
	Shape    geom.Shape  `json:"shape" toml:"shape"`
	Offset   geom.Point  `json:"offset" toml:"offset"`
	Rotation float64     `json:"rotation,omitempty" toml:"rotation,omitempty"`
	Layers   []string    `json:"layers,omitempty" toml:"layers,omitempty"`
	Drill    geom.Length `json:"drill,omitempty" toml:"drill,omitempty"`
}

// Footprint is a land pattern.
type Footprint struct {
	Name      string       `json:"name" toml:"name"`
	Pads      []Pad        `json:"pads" toml:"pads"`
	Courtyard []geom.Point `json:"courtyard,omitempty" toml:"courtyard,omitempty"`
}

// Validate checks pad numbers and shapes.
func (f Footprint) Validate() error {
	if err := cerrors.ValidateName("footprint", f.Name); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, p := range f.Pads {
		if err := cerrors.ValidatePinNumber(p.Number); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "footprint %s", f.Name)
		}
		if seen[p.Number] {
			return cerrors.New(cerrors.ErrCodeConflict, "footprint %s: duplicate pad %s", f.Name, p.Number)
		}
		seen[p.Number] = true
		if err := p.Shape.Validate(); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "footprint %s pad %s", f.Name, p.Number)
		}
		if p.Drill < 0 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "footprint %s pad %s: negative drill", f.Name, p.Number)
		}
	}
	if len(f.Courtyard) > 0 && len(f.Courtyard) < 3 {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "footprint %s: courtyard needs at least 3 points", f.Name)
	}
	return nil
}

// Side is the board side a component is mounted on.
type Side string

// Sides.
const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// PlacedComponent is a footprint instance on the board.
type PlacedComponent struct {
	Ref       string     `json:"ref" toml:"ref"`
	Footprint string     `json:"footprint" toml:"footprint"`
	Position  geom.Point `json:"position" toml:"position"`
	Rotation  float64    `json:"rotation,omitempty" toml:"rotation,omitempty"`
	Side      Side       `json:"side,omitempty" toml:"side,omitempty"`
}

// place maps a footprint-local point to board coordinates, mirroring in X for
// bottom-side parts.
func (c PlacedComponent) place(p geom.Point) geom.Point {
	if c.Side == SideBottom {
		p.X = -p.X
	}
	return p.Rotate(c.Rotation).Add(c.Position)
}

// PadInstance is a placed pad with absolute geometry.
type PadInstance struct {
	ID       ElementID      `json:"id"`
	Pin      netlist.PinRef `json:"pin"`
	Shape    geom.Shape     `json:"shape"`
	At       geom.Point     `json:"at"`
	Rotation float64        `json:"rotation"`
	Layers   []string       `json:"layers"`
	Drill    geom.Length    `json:"drill,omitempty"`
}

// Key returns the stable pad key, "REF.PIN".
func (p PadInstance) Key() string { return p.Pin.String() }

// Primitive returns the pad copper as a clearance primitive.
func (p PadInstance) Primitive() geom.Primitive { return p.Shape.Primitive(p.At, p.Rotation) }

// BBox returns the pad bounding box.
func (p PadInstance) BBox() geom.BBox { return p.Shape.BBox(p.At, p.Rotation) }

// OnLayer reports whether the pad has copper on layer.
func (p PadInstance) OnLayer(layer string) bool { return slices.Contains(p.Layers, layer) }

// PadNet resolves the net of a placed pad through the netlist.
func PadNet(nl *netlist.Netlist, p PadInstance) (netlist.NetID, bool) {
	return nl.NetFor(p.Pin)
}

// instantiate computes absolute pads for a placed component.
func instantiate(stack Stack, pc PlacedComponent, fp Footprint) []PadInstance {
	out := make([]PadInstance, 0, len(fp.Pads))
	for _, pad := range fp.Pads {
		layers := pad.Layers
		switch {
		case len(layers) == 0 && pad.Drill > 0:
			layers = stack.Copper()
		case len(layers) == 0:
			layers = []string{stack.Top()}
		}
		rot := pad.Rotation + pc.Rotation
		if pc.Side == SideBottom {
			flipped := make([]string, len(layers))
			for i, l := range layers {
				flipped[i] = stack.Flip(l)
			}
			layers = flipped
			rot = pc.Rotation - pad.Rotation
		}
		shape := pad.Shape
		if pc.Side == SideBottom && shape.Kind == geom.ShapePolygon {
			pts := make([]geom.Point, len(shape.Points))
			for i, p := range shape.Points {
				pts[i] = geom.Point{X: -p.X, Y: p.Y}
			}
			slices.Reverse(pts)
			shape.Points = pts
		}
		out = append(out, PadInstance{
			Pin:      netlist.PinRef{Component: pc.Ref, Pin: pad.Number},
			Shape:    shape,
			At:       pc.place(pad.Offset),
			Rotation: rot,
			Layers:   slices.Clone(layers),
			Drill:    pad.Drill,
		})
	}
	return out
}

// courtyard returns the component's courtyard polygon in board coordinates,
// or nil when the footprint has none.
func courtyard(pc PlacedComponent, fp Footprint) []geom.Point {
	if len(fp.Courtyard) < 3 {
		return nil
	}
	out := make([]geom.Point, len(fp.Courtyard))
	for i, p := range fp.Courtyard {
		out[i] = pc.place(p)
	}
	return out
}
