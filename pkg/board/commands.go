package board

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/netlist"
)

// Command is an undoable board mutation. It matches history.Command.
type Command interface {
	ID() string
	Describe() string
	Apply() error
	Revert() error
}

type cmdID string

func (c cmdID) ID() string { return string(c) }

func newCmdID() cmdID { return cmdID(uuid.NewString()) }

// AddBatchCmd creates a set of traces and vias atomically.
type AddBatchCmd struct {
	cmdID
	board  *Board
	nets   *netlist.Netlist
	traces []Trace
	vias   []Via
	ids    []ElementID
	live   bool
}

// AddBatch returns a command creating traces and vias. Ids in the inputs are
// ignored; the board assigns them on the first Apply and reuses them on redo.
// An empty net marks copper as explicitly unrouted.
func AddBatch(b *Board, nets *netlist.Netlist, traces []Trace, vias []Via) *AddBatchCmd {
	return &AddBatchCmd{
		cmdID:  newCmdID(),
		board:  b,
		nets:   nets,
		traces: slices.Clone(traces),
		vias:   slices.Clone(vias),
	}
}

// Describe implements Command.
func (c *AddBatchCmd) Describe() string {
	return fmt.Sprintf("add %d traces, %d vias", len(c.traces), len(c.vias))
}

// IDs returns the ids created by the last Apply, traces first then vias.
func (c *AddBatchCmd) IDs() []ElementID { return slices.Clone(c.ids) }

// TraceIDs returns the ids of the created traces.
func (c *AddBatchCmd) TraceIDs() []ElementID {
	if c.ids == nil {
		return nil
	}
	return slices.Clone(c.ids[:len(c.traces)])
}

// ViaIDs returns the ids of the created vias.
func (c *AddBatchCmd) ViaIDs() []ElementID {
	if c.ids == nil {
		return nil
	}
	return slices.Clone(c.ids[len(c.traces):])
}

func (c *AddBatchCmd) validate(s *state) error {
	for i, t := range c.traces {
		if err := validateTrace(s.stack, c.nets, t); err != nil {
			return cerrors.Wrap(cerrors.GetCode(err), err, "trace %d", i)
		}
	}
	for i, v := range c.vias {
		if err := validateVia(s.stack, c.nets, v); err != nil {
			return cerrors.Wrap(cerrors.GetCode(err), err, "via %d", i)
		}
	}
	return nil
}

// Apply validates every element, then inserts them all.
func (c *AddBatchCmd) Apply() error {
	c.board.mu.Lock()
	defer c.board.mu.Unlock()
	s := c.board.st

	if c.live {
		return cerrors.Internal("batch %s applied twice", c.ID())
	}
	if err := c.validate(s); err != nil {
		return err
	}
	if c.ids == nil {
		c.ids = make([]ElementID, 0, len(c.traces)+len(c.vias))
		for range len(c.traces) + len(c.vias) {
			c.ids = append(c.ids, s.alloc())
		}
	} else {
		for _, id := range c.ids {
			if _, taken := s.kinds[id]; taken {
				return cerrors.Internal("element %s already exists on redo", id)
			}
		}
	}
	for i, t := range c.traces {
		t.ID = c.ids[i]
		s.putTrace(t)
	}
	for i, v := range c.vias {
		v.ID = c.ids[len(c.traces)+i]
		if v.Kind == "" {
			v.Kind = ViaThrough
		}
		s.putVia(v)
	}
	c.live = true
	return nil
}

// Revert removes the created elements.
func (c *AddBatchCmd) Revert() error {
	c.board.mu.Lock()
	defer c.board.mu.Unlock()
	s := c.board.st

	if !c.live {
		return cerrors.Internal("batch %s reverted before apply", c.ID())
	}
	for _, id := range c.ids {
		if _, ok := s.kinds[id]; !ok {
			return cerrors.Internal("element %s vanished before revert", id)
		}
	}
	for _, id := range c.ids {
		s.drop(id)
	}
	c.live = false
	return nil
}

func validateNet(nets *netlist.Netlist, net netlist.NetID) error {
	if net == "" || nets == nil {
		return nil
	}
	if !nets.HasNet(net) {
		return cerrors.New(cerrors.ErrCodeNotFound, "net %s not found", net)
	}
	return nil
}

func validateTrace(stack Stack, nets *netlist.Netlist, t Trace) error {
	if !stack.Has(t.Layer) {
		return cerrors.New(cerrors.ErrCodeInvalidLayer, "layer %q is not in the stack", t.Layer)
	}
	if t.Width <= 0 {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "trace width must be positive")
	}
	if t.Start == t.End {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "zero-length trace at %s", t.Start)
	}
	return validateNet(nets, t.Net)
}

func validateVia(stack Stack, nets *netlist.Netlist, v Via) error {
	if v.Drill <= 0 {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "via drill must be positive")
	}
	if v.Diameter <= v.Drill {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "via diameter %s must exceed drill %s", v.Diameter, v.Drill)
	}
	if err := v.ValidateSpan(stack); err != nil {
		return err
	}
	return validateNet(nets, v.Net)
}

// validateZone checks z and fills in the default fill style.
func validateZone(stack Stack, nets *netlist.Netlist, z Zone) (Zone, error) {
	if !stack.Has(z.Layer) {
		return z, cerrors.New(cerrors.ErrCodeInvalidLayer, "layer %q is not in the stack", z.Layer)
	}
	if len(z.Polygon) < 3 {
		return z, cerrors.New(cerrors.ErrCodeInvalidInput, "zone polygon needs at least 3 points")
	}
	if z.Clearance < 0 {
		return z, cerrors.New(cerrors.ErrCodeInvalidInput, "zone clearance must not be negative")
	}
	switch z.Fill {
	case "":
		z.Fill = FillSolid
	case FillSolid, FillHatched, FillNone:
	default:
		return z, cerrors.New(cerrors.ErrCodeInvalidInput, "unknown zone fill %q", z.Fill)
	}
	return z, validateNet(nets, z.Net)
}

// DeleteCmd removes one trace, via or zone.
type DeleteCmd struct {
	cmdID
	board *Board
	id    ElementID
	kind  Kind
	saved any
}

// DeleteTrace returns a command deleting a trace.
func DeleteTrace(b *Board, id ElementID) *DeleteCmd { return newDelete(b, id, KindTrace) }

// DeleteVia returns a command deleting a via.
func DeleteVia(b *Board, id ElementID) *DeleteCmd { return newDelete(b, id, KindVia) }

// DeleteZone returns a command deleting a zone.
func DeleteZone(b *Board, id ElementID) *DeleteCmd { return newDelete(b, id, KindZone) }

func newDelete(b *Board, id ElementID, kind Kind) *DeleteCmd {
	return &DeleteCmd{cmdID: newCmdID(), board: b, id: id, kind: kind}
}

// Describe implements Command.
func (c *DeleteCmd) Describe() string { return fmt.Sprintf("delete %s %s", c.kind, c.id) }

// Apply removes the element.
func (c *DeleteCmd) Apply() error {
	c.board.mu.Lock()
	defer c.board.mu.Unlock()
	s := c.board.st

	if k, ok := s.kinds[c.id]; !ok || k != c.kind {
		return cerrors.New(cerrors.ErrCodeNotFound, "%s %s not found", c.kind, c.id)
	}
	switch c.kind {
	case KindTrace:
		c.saved = s.traces[c.id]
	case KindVia:
		c.saved = s.vias[c.id]
	case KindZone:
		c.saved = s.zones[c.id]
	default:
		return cerrors.New(cerrors.ErrCodeUnsupported, "cannot delete %s elements", c.kind)
	}
	s.drop(c.id)
	return nil
}

// Revert restores the element under its original id.
func (c *DeleteCmd) Revert() error {
	c.board.mu.Lock()
	defer c.board.mu.Unlock()
	s := c.board.st

	if _, taken := s.kinds[c.id]; taken {
		return cerrors.Internal("element %s reappeared before revert", c.id)
	}
	switch e := c.saved.(type) {
	case Trace:
		s.putTrace(e)
	case Via:
		s.putVia(e)
	case Zone:
		s.putZone(e)
	default:
		return cerrors.Internal("delete %s reverted before apply", c.id)
	}
	c.saved = nil
	return nil
}

// AddZoneCmd creates a copper zone.
type AddZoneCmd struct {
	cmdID
	board *Board
	nets  *netlist.Netlist
	zone  Zone
	live  bool
}

// AddZone returns a command creating a zone.
func AddZone(b *Board, nets *netlist.Netlist, z Zone) *AddZoneCmd {
	z.Polygon = slices.Clone(z.Polygon)
	return &AddZoneCmd{cmdID: newCmdID(), board: b, nets: nets, zone: z}
}

// Describe implements Command.
func (c *AddZoneCmd) Describe() string {
	return fmt.Sprintf("add zone on %s for %s", c.zone.Layer, c.zone.Net)
}

// ZoneID returns the id assigned to the zone, zero before the first Apply.
func (c *AddZoneCmd) ZoneID() ElementID { return c.zone.ID }

// Apply validates and inserts the zone.
func (c *AddZoneCmd) Apply() error {
	c.board.mu.Lock()
	defer c.board.mu.Unlock()
	s := c.board.st

	if c.live {
		return cerrors.Internal("zone command %s applied twice", c.ID())
	}
	z, err := validateZone(s.stack, c.nets, c.zone)
	if err != nil {
		return err
	}
	if z.ID == 0 {
		z.ID = s.alloc()
	}
	s.putZone(z)
	c.zone = z
	c.live = true
	return nil
}

// Revert removes the zone.
func (c *AddZoneCmd) Revert() error {
	c.board.mu.Lock()
	defer c.board.mu.Unlock()
	if !c.live {
		return cerrors.Internal("zone command %s reverted before apply", c.ID())
	}
	c.board.st.drop(c.zone.ID)
	c.live = false
	return nil
}
