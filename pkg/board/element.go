package board

import (
	"strconv"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

// ElementID is the stable arena id of a pad, trace, via or zone.
// Zero is never allocated.
type ElementID uint64

// String returns the decimal id.
func (id ElementID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Kind is the element kind stored under an id.
type Kind uint8

// Element kinds.
const (
	KindPad Kind = iota + 1
	KindTrace
	KindVia
	KindZone
)

func (k Kind) String() string {
	switch k {
	case KindPad:
		return "pad"
	case KindTrace:
		return "trace"
	case KindVia:
		return "via"
	case KindZone:
		return "zone"
	default:
		return "unknown"
	}
}

// Trace is a straight copper segment on one layer.
type Trace struct {
	ID    ElementID     `json:"id" toml:"id,omitempty"`
	Net   netlist.NetID `json:"net" toml:"net"`
	Layer string        `json:"layer" toml:"layer"`
	Start geom.Point    `json:"start" toml:"start"`
	End   geom.Point    `json:"end" toml:"end"`
	Width geom.Length   `json:"width" toml:"width"`
}

// Segment returns the trace centreline.
func (t Trace) Segment() geom.Segment { return geom.Seg(t.Start, t.End) }

// Primitive returns the trace copper.
func (t Trace) Primitive() geom.Primitive { return geom.SegmentPrimitive(t.Start, t.End, t.Width) }

// BBox returns the bounding box of the trace copper.
func (t Trace) BBox() geom.BBox { return t.Primitive().BBox() }

// Length returns the centreline length.
func (t Trace) Length() geom.Length { return geom.Length(t.Segment().Length() + 0.5) }

// ViaKind is the drilling style of a via.
type ViaKind string

// Via kinds.
const (
	ViaThrough ViaKind = "through"
	ViaBlind   ViaKind = "blind"
	ViaBuried  ViaKind = "buried"
	ViaMicro   ViaKind = "micro"
)

// Via is a plated hole joining copper layers From through To.
type Via struct {
	ID       ElementID     `json:"id" toml:"id,omitempty"`
	Net      netlist.NetID `json:"net" toml:"net"`
	Kind     ViaKind       `json:"kind" toml:"kind"`
	At       geom.Point    `json:"at" toml:"at"`
	Drill    geom.Length   `json:"drill" toml:"drill"`
	Diameter geom.Length   `json:"diameter" toml:"diameter"`
	From     string        `json:"from,omitempty" toml:"from,omitempty"`
	To       string        `json:"to,omitempty" toml:"to,omitempty"`
}

// Primitive returns the via pad copper.
func (v Via) Primitive() geom.Primitive { return geom.PointPrimitive(v.At, v.Diameter) }

// BBox returns the bounding box of the via pad.
func (v Via) BBox() geom.BBox { return v.Primitive().BBox() }

// Span returns the copper layers the via connects. Through vias with no
// explicit ends span the whole stack.
func (v Via) Span(s Stack) ([]string, error) {
	from, to := v.From, v.To
	if v.Kind == ViaThrough || v.Kind == "" {
		if from == "" {
			from = s.Top()
		}
		if to == "" {
			to = s.Bottom()
		}
	}
	return s.Span(from, to)
}

// OnLayer reports whether the via has copper on layer.
func (v Via) OnLayer(s Stack, layer string) bool {
	span, err := v.Span(s)
	if err != nil {
		return false
	}
	for _, l := range span {
		if l == layer {
			return true
		}
	}
	return false
}

// ValidateSpan checks the via kind against its layer span. Through vias must
// reach both outer layers. Blind and micro vias must touch exactly one outer
// layer. Buried vias must touch neither.
func (v Via) ValidateSpan(s Stack) error {
	span, err := v.Span(s)
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeConflict, err, "via at %s has an invalid span", v.At)
	}
	if len(span) < 2 && s.Len() > 1 {
		return cerrors.New(cerrors.ErrCodeConflict, "via at %s spans a single layer", v.At)
	}
	top := span[0] == s.Top()
	bottom := span[len(span)-1] == s.Bottom()
	switch v.Kind {
	case ViaThrough, "":
		if !top || !bottom {
			return cerrors.New(cerrors.ErrCodeConflict, "through via at %s must span %s to %s", v.At, s.Top(), s.Bottom())
		}
	case ViaBlind, ViaMicro:
		if top == bottom {
			return cerrors.New(cerrors.ErrCodeConflict, "%s via at %s must touch exactly one outer layer", v.Kind, v.At)
		}
		if v.Kind == ViaMicro && len(span) != 2 {
			return cerrors.New(cerrors.ErrCodeConflict, "micro via at %s must join adjacent layers", v.At)
		}
	case ViaBuried:
		if top || bottom {
			return cerrors.New(cerrors.ErrCodeConflict, "buried via at %s must not reach an outer layer", v.At)
		}
	default:
		return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown via kind %q", v.Kind)
	}
	return nil
}

// KindForSpan picks the via kind for a span from one layer to another.
func KindForSpan(s Stack, from, to string) ViaKind {
	a, b := s.IndexOf(from), s.IndexOf(to)
	if a > b {
		a, b = b, a
	}
	last := s.Len() - 1
	switch {
	case a == 0 && b == last:
		return ViaThrough
	case a == 0 || b == last:
		return ViaBlind
	default:
		return ViaBuried
	}
}

// ZoneFill is the fill style of a copper zone.
type ZoneFill string

// Zone fills.
const (
	FillSolid   ZoneFill = "solid"
	FillHatched ZoneFill = "hatched"
	FillNone    ZoneFill = "none"
)

// Zone is a copper pour on one layer.
type Zone struct {
	ID        ElementID     `json:"id" toml:"id,omitempty"`
	Net       netlist.NetID `json:"net" toml:"net"`
	Layer     string        `json:"layer" toml:"layer"`
	Polygon   []geom.Point  `json:"polygon" toml:"polygon"`
	Priority  int           `json:"priority,omitempty" toml:"priority,omitempty"`
	Fill      ZoneFill      `json:"fill,omitempty" toml:"fill,omitempty"`
	Clearance geom.Length   `json:"clearance,omitempty" toml:"clearance,omitempty"`
}

// Primitive returns the zone outline as a filled polygon.
func (z Zone) Primitive() geom.Primitive { return geom.PolygonPrimitive(z.Polygon, 0) }

// BBox returns the zone bounding box.
func (z Zone) BBox() geom.BBox { return geom.PolygonBBox(z.Polygon) }

// Hit is an element found under a point.
type Hit struct {
	ID   ElementID      `json:"id"`
	Kind Kind           `json:"kind"`
	Net  netlist.NetID  `json:"net,omitempty"`
	Pin  netlist.PinRef `json:"pin,omitempty"`
}
