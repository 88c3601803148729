package netlist

import (
	"go.uber.org/multierr"

	cerrors "github.com/matzehuels/copper/pkg/errors"
)

// ValidatePair checks that a differential-pair class and its partner name
// each other.
func (n *Netlist) ValidatePair(class NetClassID) error {
	c, ok := n.classes[class]
	if !ok {
		return cerrors.New(cerrors.ErrCodeNotFound, "net class %s not found", class)
	}
	if c.DiffPairPartner == "" {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "net class %s is not a differential pair", class)
	}
	if c.DiffPairPartner == class {
		return cerrors.New(cerrors.ErrCodeConflict, "net class %s names itself as partner", class)
	}
	p, ok := n.classes[c.DiffPairPartner]
	if !ok {
		return cerrors.New(cerrors.ErrCodeConflict, "net class %s: partner %s does not exist", class, c.DiffPairPartner)
	}
	if p.DiffPairPartner != class {
		return cerrors.New(cerrors.ErrCodeConflict, "net class %s: partner %s does not reciprocate", class, c.DiffPairPartner)
	}
	return nil
}

// Validate checks the whole netlist and returns every problem found,
// combined with multierr.
func (n *Netlist) Validate() error {
	var errs error

	for _, net := range n.Nets() {
		if _, ok := n.classes[net.Class]; !ok {
			errs = multierr.Append(errs, cerrors.Internal("net %s references missing class %s", net.Name, net.Class))
		}
	}

	for pin, net := range n.pinNet {
		if _, ok := n.nets[net]; !ok {
			errs = multierr.Append(errs, cerrors.Internal("pin %s references missing net %s", pin, net))
			continue
		}
		if !n.HasPin(pin) {
			errs = multierr.Append(errs, cerrors.Internal("net %s references missing pin %s", net, pin))
		}
	}

	owner := make(map[PinRef]NetID)
	for net, pins := range n.netPins {
		for pin := range pins {
			if other, dup := owner[pin]; dup {
				errs = multierr.Append(errs, cerrors.Internal("pin %s is on both %s and %s", pin, other, net))
				continue
			}
			owner[pin] = net
			if n.pinNet[pin] != net {
				errs = multierr.Append(errs, cerrors.Internal("pin %s index mismatch for net %s", pin, net))
			}
		}
	}

	for _, c := range n.Classes() {
		if c.DiffPairPartner != "" {
			errs = multierr.Append(errs, n.ValidatePair(c.Name))
		}
	}
	return errs
}
