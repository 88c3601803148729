package netlist

import (
	"slices"
	"sort"

	cerrors "github.com/matzehuels/copper/pkg/errors"
)

// Netlist maps pins to nets and nets to classes.
//
// A Netlist is not safe for concurrent mutation. Concurrent readers are fine
// once population is finished; DRC works on a [Netlist.Clone].
type Netlist struct {
	components map[string]*Component
	nets       map[NetID]*Net
	classes    map[NetClassID]*NetClass
	pinNet     map[PinRef]NetID
	netPins    map[NetID]map[PinRef]struct{}
}

// New returns an empty netlist holding only the Default class.
func New() *Netlist {
	def := DefaultNetClass()
	return &Netlist{
		components: make(map[string]*Component),
		nets:       make(map[NetID]*Net),
		classes:    map[NetClassID]*NetClass{DefaultClass: &def},
		pinNet:     make(map[PinRef]NetID),
		netPins:    make(map[NetID]map[PinRef]struct{}),
	}
}

// AddComponent registers a component. Refs and pin numbers must be unique.
func (n *Netlist) AddComponent(c Component) error {
	if err := cerrors.ValidateRef(c.Ref); err != nil {
		return err
	}
	if _, ok := n.components[c.Ref]; ok {
		return cerrors.New(cerrors.ErrCodeConflict, "component %s already exists", c.Ref)
	}
	seen := make(map[string]bool, len(c.Pins))
	for _, p := range c.Pins {
		if err := cerrors.ValidatePinNumber(p.Number); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "component %s", c.Ref)
		}
		if seen[p.Number] {
			return cerrors.New(cerrors.ErrCodeConflict, "component %s: duplicate pin %s", c.Ref, p.Number)
		}
		if !p.Type.Valid() {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "component %s: pin %s has unknown type %q", c.Ref, p.Number, p.Type)
		}
		seen[p.Number] = true
	}
	c.Pins = slices.Clone(c.Pins)
	n.components[c.Ref] = &c
	return nil
}

// AddNet registers a net. An empty class means Default.
func (n *Netlist) AddNet(net Net) error {
	if err := cerrors.ValidateName("net", string(net.Name)); err != nil {
		return err
	}
	if _, ok := n.nets[net.Name]; ok {
		return cerrors.New(cerrors.ErrCodeConflict, "net %s already exists", net.Name)
	}
	if net.Class == "" {
		net.Class = DefaultClass
	}
	if _, ok := n.classes[net.Class]; !ok {
		return cerrors.New(cerrors.ErrCodeNotFound, "net %s: unknown class %s", net.Name, net.Class)
	}
	if net.Type == "" {
		net.Type = NetSignal
	}
	n.nets[net.Name] = &net
	n.netPins[net.Name] = make(map[PinRef]struct{})
	return nil
}

// AddClass registers a net class. Adding Default replaces the built-in
// values, which lets design files tune the default constraints.
func (n *Netlist) AddClass(c NetClass) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, ok := n.classes[c.Name]; ok && c.Name != DefaultClass {
		return cerrors.New(cerrors.ErrCodeConflict, "net class %s already exists", c.Name)
	}
	n.classes[c.Name] = &c
	return nil
}

// HasPin reports whether the pin exists on a registered component.
func (n *Netlist) HasPin(pin PinRef) bool {
	c, ok := n.components[pin.Component]
	if !ok {
		return false
	}
	_, ok = c.Pin(pin.Pin)
	return ok
}

// Assign puts pin on net. Assigning to the net it is already on is a no-op;
// assigning to a different net fails with CONFLICT.
func (n *Netlist) Assign(pin PinRef, net NetID) error {
	if !n.HasPin(pin) {
		return cerrors.New(cerrors.ErrCodeNotFound, "pin %s not found", pin)
	}
	if _, ok := n.nets[net]; !ok {
		return cerrors.New(cerrors.ErrCodeNotFound, "net %s not found", net)
	}
	if cur, ok := n.pinNet[pin]; ok {
		if cur == net {
			return nil
		}
		return cerrors.New(cerrors.ErrCodeConflict, "pin %s is already on net %s; detach it first", pin, cur)
	}
	n.pinNet[pin] = net
	n.netPins[net][pin] = struct{}{}
	return nil
}

// Detach removes pin from its net. It returns false if the pin had no net.
func (n *Netlist) Detach(pin PinRef) bool {
	net, ok := n.pinNet[pin]
	if !ok {
		return false
	}
	delete(n.pinNet, pin)
	delete(n.netPins[net], pin)
	return true
}

// SetClass moves net into class.
func (n *Netlist) SetClass(net NetID, class NetClassID) error {
	nt, ok := n.nets[net]
	if !ok {
		return cerrors.New(cerrors.ErrCodeNotFound, "net %s not found", net)
	}
	if class == "" {
		class = DefaultClass
	}
	if _, ok := n.classes[class]; !ok {
		return cerrors.New(cerrors.ErrCodeNotFound, "net class %s not found", class)
	}
	nt.Class = class
	return nil
}

// RemoveNet deletes a net that has no pins left. The netlist does not see
// board copper; when a board may still route the net, remove it through
// board.RemoveNet instead.
func (n *Netlist) RemoveNet(net NetID) error {
	pins, ok := n.netPins[net]
	if !ok {
		return cerrors.New(cerrors.ErrCodeNotFound, "net %s not found", net)
	}
	if len(pins) > 0 {
		return cerrors.New(cerrors.ErrCodeConflict, "net %s still has %d pins", net, len(pins))
	}
	delete(n.nets, net)
	delete(n.netPins, net)
	return nil
}

// NetFor returns the net a pin belongs to.
func (n *Netlist) NetFor(pin PinRef) (NetID, bool) {
	net, ok := n.pinNet[pin]
	return net, ok
}

// PinsOf returns the pins of net, sorted by reference then pin number.
func (n *Netlist) PinsOf(net NetID) []PinRef {
	set := n.netPins[net]
	pins := make([]PinRef, 0, len(set))
	for p := range set {
		pins = append(pins, p)
	}
	sortPins(pins)
	return pins
}

// ClassOf returns the class of net, or Default for unknown nets.
func (n *Netlist) ClassOf(net NetID) NetClassID {
	if nt, ok := n.nets[net]; ok && nt.Class != "" {
		return nt.Class
	}
	return DefaultClass
}

// ClassFor resolves the constraints that apply to net.
func (n *Netlist) ClassFor(net NetID) NetClass {
	if c, ok := n.classes[n.ClassOf(net)]; ok {
		return *c
	}
	return *n.classes[DefaultClass]
}

// Net returns a net by name.
func (n *Netlist) Net(id NetID) (Net, bool) {
	nt, ok := n.nets[id]
	if !ok {
		return Net{}, false
	}
	return *nt, true
}

// HasNet reports whether the net exists.
func (n *Netlist) HasNet(id NetID) bool {
	_, ok := n.nets[id]
	return ok
}

// Class returns a net class by name.
func (n *Netlist) Class(id NetClassID) (NetClass, bool) {
	c, ok := n.classes[id]
	if !ok {
		return NetClass{}, false
	}
	return *c, true
}

// Component returns a component by reference.
func (n *Netlist) Component(ref string) (Component, bool) {
	c, ok := n.components[ref]
	if !ok {
		return Component{}, false
	}
	out := *c
	out.Pins = slices.Clone(c.Pins)
	return out, true
}

// Nets returns all nets sorted by name.
func (n *Netlist) Nets() []Net {
	out := make([]Net, 0, len(n.nets))
	for _, nt := range n.nets {
		out = append(out, *nt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Classes returns all classes sorted by name.
func (n *Netlist) Classes() []NetClass {
	out := make([]NetClass, 0, len(n.classes))
	for _, c := range n.classes {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Components returns all components sorted by reference.
func (n *Netlist) Components() []Component {
	out := make([]Component, 0, len(n.components))
	for ref := range n.components {
		c, _ := n.Component(ref)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

// Clone returns a deep copy.
func (n *Netlist) Clone() *Netlist {
	c := &Netlist{
		components: make(map[string]*Component, len(n.components)),
		nets:       make(map[NetID]*Net, len(n.nets)),
		classes:    make(map[NetClassID]*NetClass, len(n.classes)),
		pinNet:     make(map[PinRef]NetID, len(n.pinNet)),
		netPins:    make(map[NetID]map[PinRef]struct{}, len(n.netPins)),
	}
	for k, v := range n.components {
		cp := *v
		cp.Pins = slices.Clone(v.Pins)
		c.components[k] = &cp
	}
	for k, v := range n.nets {
		cp := *v
		c.nets[k] = &cp
	}
	for k, v := range n.classes {
		cp := *v
		c.classes[k] = &cp
	}
	for k, v := range n.pinNet {
		c.pinNet[k] = v
	}
	for k, set := range n.netPins {
		cp := make(map[PinRef]struct{}, len(set))
		for p := range set {
			cp[p] = struct{}{}
		}
		c.netPins[k] = cp
	}
	return c
}

func sortPins(pins []PinRef) {
	sort.Slice(pins, func(i, j int) bool {
		if pins[i].Component != pins[j].Component {
			return pins[i].Component < pins[j].Component
		}
		return pins[i].Pin < pins[j].Pin
	})
}
