package board

import (
	"slices"
	"sync"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

// Board is the live, mutable layout. Reads take a shared lock; commands take
// the exclusive lock for their whole Apply or Revert, so no observer sees a
// partially applied change.
type Board struct {
	mu sync.RWMutex
	st *state
}

// New creates an empty board.
func New(stack Stack, outline Outline) (*Board, error) {
	if stack.Len() == 0 {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "board needs a layer stack")
	}
	if err := outline.Validate(); err != nil {
		return nil, err
	}
	return &Board{st: newState(stack, outline)}, nil
}

// AddFootprint registers a footprint so components can be placed with it.
// Registering the same name twice is a conflict.
func (b *Board) AddFootprint(fp Footprint) error {
	if err := fp.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.st.footprints[fp.Name]; ok {
		return cerrors.New(cerrors.ErrCodeConflict, "footprint %s already exists", fp.Name)
	}
	fp.Pads = slices.Clone(fp.Pads)
	fp.Courtyard = slices.Clone(fp.Courtyard)
	b.st.footprints[fp.Name] = fp
	return nil
}

// PlaceComponent places a component with a registered footprint and creates
// its pads. Placement is an import operation and is not undoable.
func (b *Board) PlaceComponent(pc PlacedComponent) ([]ElementID, error) {
	if err := cerrors.ValidateRef(pc.Ref); err != nil {
		return nil, err
	}
	if pc.Side == "" {
		pc.Side = SideTop
	}
	if pc.Side != SideTop && pc.Side != SideBottom {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "component %s: unknown side %q", pc.Ref, pc.Side)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.st.components[pc.Ref]; ok {
		return nil, cerrors.New(cerrors.ErrCodeConflict, "component %s already placed", pc.Ref)
	}
	fp, ok := b.st.footprints[pc.Footprint]
	if !ok {
		return nil, cerrors.New(cerrors.ErrCodeNotFound, "component %s: footprint %s not found", pc.Ref, pc.Footprint)
	}
	pads := instantiate(b.st.stack, pc, fp)
	for _, p := range pads {
		for _, l := range p.Layers {
			if !b.st.stack.Has(l) {
				return nil, cerrors.New(cerrors.ErrCodeInvalidLayer, "pad %s: layer %q is not in the stack", p.Pin, l)
			}
		}
	}
	b.st.components[pc.Ref] = pc
	ids := make([]ElementID, len(pads))
	for i, p := range pads {
		p.ID = b.st.alloc()
		b.st.putPad(p)
		ids[i] = p.ID
	}
	return ids, nil
}

// Restore inserts saved copper, keeping the ids it carries so violation
// fingerprints and exclusions stay bound to the same elements across loads.
// Elements without an id get fresh ones, in order, after every saved id.
// Nothing is inserted if any element is invalid or two share an id. Like
// placement, Restore is an import operation and is not undoable.
func (b *Board) Restore(nets *netlist.Netlist, traces []Trace, vias []Via, zones []Zone) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.st

	seen := make(map[ElementID]bool)
	claim := func(id ElementID) error {
		if id == 0 {
			return nil
		}
		if _, taken := s.kinds[id]; taken || seen[id] {
			return cerrors.New(cerrors.ErrCodeConflict, "element id %s is used twice", id)
		}
		seen[id] = true
		return nil
	}

	traces, vias, zones = slices.Clone(traces), slices.Clone(vias), slices.Clone(zones)
	for i, t := range traces {
		if err := validateTrace(s.stack, nets, t); err != nil {
			return cerrors.Wrap(cerrors.GetCode(err), err, "trace %d", i+1)
		}
		if err := claim(t.ID); err != nil {
			return err
		}
	}
	for i, v := range vias {
		if err := validateVia(s.stack, nets, v); err != nil {
			return cerrors.Wrap(cerrors.GetCode(err), err, "via %d", i+1)
		}
		if err := claim(v.ID); err != nil {
			return err
		}
		if v.Kind == "" {
			vias[i].Kind = ViaThrough
		}
	}
	for i, z := range zones {
		z, err := validateZone(s.stack, nets, z)
		if err != nil {
			return cerrors.Wrap(cerrors.GetCode(err), err, "zone %d", i+1)
		}
		if err := claim(z.ID); err != nil {
			return err
		}
		zones[i] = z
	}

	for id := range seen {
		s.nextID = max(s.nextID, id)
	}
	for _, t := range traces {
		if t.ID == 0 {
			t.ID = s.alloc()
		}
		s.putTrace(t)
	}
	for _, v := range vias {
		if v.ID == 0 {
			v.ID = s.alloc()
		}
		s.putVia(v)
	}
	for _, z := range zones {
		if z.ID == 0 {
			z.ID = s.alloc()
		}
		s.putZone(z)
	}
	return nil
}

// RemoveNet deletes net from nets once neither pins nor copper on the board
// use it. Copper still on the net is a CONFLICT; delete it first.
func (b *Board) RemoveNet(nets *netlist.Netlist, net netlist.NetID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, t := range b.st.traces {
		if t.Net == net {
			n++
		}
	}
	for _, v := range b.st.vias {
		if v.Net == net {
			n++
		}
	}
	for _, z := range b.st.zones {
		if z.Net == net {
			n++
		}
	}
	if n > 0 {
		return cerrors.New(cerrors.ErrCodeConflict, "net %s is still used by %d copper items", net, n)
	}
	return nets.RemoveNet(net)
}

// Snapshot returns an immutable copy of the board.
func (b *Board) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{state: b.st.clone()}
}

// Stack returns the layer stack.
func (b *Board) Stack() Stack { return b.st.stack }

// Outline returns the board outline.
func (b *Board) Outline() Outline { return b.st.outline }

// Trace returns a trace by id.
func (b *Board) Trace(id ElementID) (Trace, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Trace(id)
}

// Via returns a via by id.
func (b *Board) Via(id ElementID) (Via, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Via(id)
}

// Zone returns a zone by id.
func (b *Board) Zone(id ElementID) (Zone, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Zone(id)
}

// Pad returns a placed pad by id.
func (b *Board) Pad(id ElementID) (PadInstance, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Pad(id)
}

// PadByPin returns the placed pad for a pin.
func (b *Board) PadByPin(pin netlist.PinRef) (PadInstance, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.PadByPin(pin)
}

// Traces returns every trace ordered by id.
func (b *Board) Traces() []Trace {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Traces()
}

// Vias returns every via ordered by id.
func (b *Board) Vias() []Via {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Vias()
}

// Zones returns every zone ordered by id.
func (b *Board) Zones() []Zone {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Zones()
}

// Pads returns every placed pad ordered by id.
func (b *Board) Pads() []PadInstance {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Pads()
}

// Components returns placed components ordered by reference.
func (b *Board) Components() []PlacedComponent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Components()
}

// Footprints returns the registered footprints ordered by name.
func (b *Board) Footprints() []Footprint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Footprints()
}

// Len returns the number of elements.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Len()
}

// Query returns element ids on layer whose bounding boxes meet box.
func (b *Board) Query(box geom.BBox, layer string) []ElementID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Query(box, layer)
}

// HitTest returns the copper on layer under p.
func (b *Board) HitTest(p geom.Point, layer string) []Hit {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.HitTest(p, layer)
}

// Fingerprint returns the content hash of the board.
func (b *Board) Fingerprint() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Fingerprint()
}

// Equal reports whether two boards hold identical geometry under identical ids.
func (b *Board) Equal(o *Board) bool { return b.Fingerprint() == o.Fingerprint() }

// Snapshot is a frozen copy of a board. All read methods of [Board] are
// available without locking.
type Snapshot struct {
	*state
}
