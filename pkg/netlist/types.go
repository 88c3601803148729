package netlist

import (
	"strings"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
)

// PinRef identifies a pin by reference designator and pin number, e.g. R1.2.
type PinRef struct {
	Component string `json:"component"`
	Pin       string `json:"pin"`
}

// String returns the "REF.PIN" form.
func (p PinRef) String() string { return p.Component + "." + p.Pin }

// MarshalText implements encoding.TextMarshaler.
func (p PinRef) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PinRef) UnmarshalText(b []byte) error {
	ref, err := ParsePinRef(string(b))
	if err != nil {
		return err
	}
	*p = ref
	return nil
}

// ParsePinRef parses "REF.PIN". The pin number follows the last dot.
func ParsePinRef(s string) (PinRef, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return PinRef{}, cerrors.New(cerrors.ErrCodeInvalidInput, "invalid pin reference %q (want REF.PIN)", s)
	}
	ref := PinRef{Component: s[:i], Pin: s[i+1:]}
	if err := cerrors.ValidateRef(ref.Component); err != nil {
		return PinRef{}, err
	}
	if err := cerrors.ValidatePinNumber(ref.Pin); err != nil {
		return PinRef{}, err
	}
	return ref, nil
}

// PinType is the electrical type of a pin.
type PinType string

// Pin types.
const (
	PinInput         PinType = "input"
	PinOutput        PinType = "output"
	PinBidirectional PinType = "bidirectional"
	PinPowerIn       PinType = "power_in"
	PinPowerOut      PinType = "power_out"
	PinGround        PinType = "ground"
	PinPassive       PinType = "passive"
	PinNoConnect     PinType = "no_connect"
	PinOpenCollector PinType = "open_collector"
	PinOpenEmitter   PinType = "open_emitter"
	PinTriState      PinType = "tri_state"
)

// Valid reports whether t is a known pin type. The empty type reads as passive.
func (t PinType) Valid() bool {
	switch t {
	case "", PinInput, PinOutput, PinBidirectional, PinPowerIn, PinPowerOut, PinGround,
		PinPassive, PinNoConnect, PinOpenCollector, PinOpenEmitter, PinTriState:
		return true
	}
	return false
}

// Pin is a terminal of a component.
type Pin struct {
	Number string  `json:"number" toml:"number"`
	Name   string  `json:"name,omitempty" toml:"name,omitempty"`
	Type   PinType `json:"type,omitempty" toml:"type,omitempty"`
}

// Component is a part instance in the netlist.
type Component struct {
	Ref       string `json:"ref" toml:"ref"`
	Value     string `json:"value,omitempty" toml:"value,omitempty"`
	Footprint string `json:"footprint,omitempty" toml:"footprint,omitempty"`
	Pins      []Pin  `json:"pins" toml:"pins"`
}

// Pin looks up a pin by number.
func (c *Component) Pin(number string) (Pin, bool) {
	for _, p := range c.Pins {
		if p.Number == number {
			return p, true
		}
	}
	return Pin{}, false
}

// NetID is the unique name of a net.
type NetID string

// NetType classifies a net.
type NetType string

// Net types.
const (
	NetSignal       NetType = "signal"
	NetPower        NetType = "power"
	NetGround       NetType = "ground"
	NetClock        NetType = "clock"
	NetDifferential NetType = "differential"
)

// Net is a named equivalence class of pins.
type Net struct {
	Name  NetID      `json:"name" toml:"name"`
	Type  NetType    `json:"type,omitempty" toml:"type,omitempty"`
	Class NetClassID `json:"class,omitempty" toml:"class,omitempty"`
}

// NetClassID is the name of a net class.
type NetClassID string

// DefaultClass is the class every net belongs to unless assigned another.
const DefaultClass NetClassID = "Default"

// NetClass is a bundle of routing and manufacturing constraints.
type NetClass struct {
	Name           NetClassID  `json:"name" toml:"name"`
	Clearance      geom.Length `json:"clearance" toml:"clearance"`
	TraceWidth     geom.Length `json:"trace_width" toml:"trace_width"`
	MinTraceWidth  geom.Length `json:"min_trace_width" toml:"min_trace_width"`
	MaxTraceWidth  geom.Length `json:"max_trace_width,omitempty" toml:"max_trace_width,omitempty"`
	ViaDrill       geom.Length `json:"via_drill" toml:"via_drill"`
	ViaDiameter    geom.Length `json:"via_diameter" toml:"via_diameter"`
	MinAnnularRing geom.Length `json:"min_annular_ring,omitempty" toml:"min_annular_ring,omitempty"`

	// DiffPairPartner names the class holding the other half of a
	// differential pair. Both classes must name each other.
	DiffPairPartner NetClassID  `json:"diff_pair_partner,omitempty" toml:"diff_pair_partner,omitempty"`
	DiffPairGap     geom.Length `json:"diff_pair_gap,omitempty" toml:"diff_pair_gap,omitempty"`
}

// DefaultNetClass returns the built-in Default class.
func DefaultNetClass() NetClass {
	return NetClass{
		Name:          DefaultClass,
		Clearance:     geom.MM(0.2),
		TraceWidth:    geom.MM(0.25),
		MinTraceWidth: geom.MM(0.15),
		ViaDrill:      geom.MM(0.3),
		ViaDiameter:   geom.MM(0.6),
	}
}

// Validate checks the class for non-negative sizes and a sane via.
func (c NetClass) Validate() error {
	if err := cerrors.ValidateName("net class", string(c.Name)); err != nil {
		return err
	}
	for _, l := range []geom.Length{c.Clearance, c.TraceWidth, c.MinTraceWidth, c.MaxTraceWidth,
		c.ViaDrill, c.ViaDiameter, c.MinAnnularRing, c.DiffPairGap} {
		if l < 0 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "net class %s: negative size %s", c.Name, l)
		}
	}
	if c.MaxTraceWidth > 0 && c.MaxTraceWidth < c.MinTraceWidth {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "net class %s: max trace width below min", c.Name)
	}
	if c.ViaDiameter > 0 && c.ViaDiameter <= c.ViaDrill {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "net class %s: via diameter must exceed drill", c.Name)
	}
	return nil
}
