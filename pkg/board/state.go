package board

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"maps"
	"slices"
	"sort"

	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

// state is the arena shared by Board (behind a lock) and Snapshot (frozen).
// Stored values are never modified in place; mutations replace them.
type state struct {
	stack      Stack
	outline    Outline
	footprints map[string]Footprint
	components map[string]PlacedComponent
	pads       map[ElementID]PadInstance
	padByPin   map[netlist.PinRef]ElementID
	traces     map[ElementID]Trace
	vias       map[ElementID]Via
	zones      map[ElementID]Zone
	kinds      map[ElementID]Kind
	nextID     ElementID
	index      *grid
}

func newState(stack Stack, outline Outline) *state {
	return &state{
		stack:      stack,
		outline:    outline,
		footprints: make(map[string]Footprint),
		components: make(map[string]PlacedComponent),
		pads:       make(map[ElementID]PadInstance),
		padByPin:   make(map[netlist.PinRef]ElementID),
		traces:     make(map[ElementID]Trace),
		vias:       make(map[ElementID]Via),
		zones:      make(map[ElementID]Zone),
		kinds:      make(map[ElementID]Kind),
		index:      newGrid(defaultCell),
	}
}

func (s *state) clone() *state {
	return &state{
		stack:      s.stack,
		outline:    s.outline,
		footprints: maps.Clone(s.footprints),
		components: maps.Clone(s.components),
		pads:       maps.Clone(s.pads),
		padByPin:   maps.Clone(s.padByPin),
		traces:     maps.Clone(s.traces),
		vias:       maps.Clone(s.vias),
		zones:      maps.Clone(s.zones),
		kinds:      maps.Clone(s.kinds),
		nextID:     s.nextID,
		index:      s.index.clone(),
	}
}

func (s *state) alloc() ElementID {
	s.nextID++
	return s.nextID
}

func (s *state) putPad(p PadInstance) {
	s.pads[p.ID] = p
	s.padByPin[p.Pin] = p.ID
	s.kinds[p.ID] = KindPad
	s.index.insert(p.ID, p.BBox(), p.Layers)
}

func (s *state) putTrace(t Trace) {
	s.traces[t.ID] = t
	s.kinds[t.ID] = KindTrace
	s.index.insert(t.ID, t.BBox(), []string{t.Layer})
}

func (s *state) putVia(v Via) {
	s.vias[v.ID] = v
	s.kinds[v.ID] = KindVia
	span, _ := v.Span(s.stack)
	s.index.insert(v.ID, v.BBox(), span)
}

func (s *state) putZone(z Zone) {
	z.Polygon = slices.Clone(z.Polygon)
	s.zones[z.ID] = z
	s.kinds[z.ID] = KindZone
	s.index.insert(z.ID, z.BBox(), []string{z.Layer})
}

func (s *state) drop(id ElementID) {
	switch s.kinds[id] {
	case KindTrace:
		delete(s.traces, id)
	case KindVia:
		delete(s.vias, id)
	case KindZone:
		delete(s.zones, id)
	case KindPad:
		delete(s.padByPin, s.pads[id].Pin)
		delete(s.pads, id)
	}
	delete(s.kinds, id)
	s.index.remove(id)
}

// Stack returns the layer stack.
func (s *state) Stack() Stack { return s.stack }

// Outline returns the board outline.
func (s *state) Outline() Outline { return s.outline }

// Kind returns the kind of element id.
func (s *state) Kind(id ElementID) (Kind, bool) {
	k, ok := s.kinds[id]
	return k, ok
}

// Trace returns a trace by id.
func (s *state) Trace(id ElementID) (Trace, bool) {
	t, ok := s.traces[id]
	return t, ok
}

// Via returns a via by id.
func (s *state) Via(id ElementID) (Via, bool) {
	v, ok := s.vias[id]
	return v, ok
}

// Zone returns a zone by id.
func (s *state) Zone(id ElementID) (Zone, bool) {
	z, ok := s.zones[id]
	z.Polygon = slices.Clone(z.Polygon)
	return z, ok
}

// Pad returns a placed pad by id.
func (s *state) Pad(id ElementID) (PadInstance, bool) {
	p, ok := s.pads[id]
	p.Layers = slices.Clone(p.Layers)
	return p, ok
}

// PadByPin returns the placed pad for a pin.
func (s *state) PadByPin(pin netlist.PinRef) (PadInstance, bool) {
	id, ok := s.padByPin[pin]
	if !ok {
		return PadInstance{}, false
	}
	return s.Pad(id)
}

// Traces returns every trace ordered by id.
func (s *state) Traces() []Trace {
	out := make([]Trace, 0, len(s.traces))
	for _, id := range sortedKeys(s.traces) {
		out = append(out, s.traces[id])
	}
	return out
}

// Vias returns every via ordered by id.
func (s *state) Vias() []Via {
	out := make([]Via, 0, len(s.vias))
	for _, id := range sortedKeys(s.vias) {
		out = append(out, s.vias[id])
	}
	return out
}

// Zones returns every zone ordered by id.
func (s *state) Zones() []Zone {
	out := make([]Zone, 0, len(s.zones))
	for _, id := range sortedKeys(s.zones) {
		z, _ := s.Zone(id)
		out = append(out, z)
	}
	return out
}

// Pads returns every placed pad ordered by id.
func (s *state) Pads() []PadInstance {
	out := make([]PadInstance, 0, len(s.pads))
	for _, id := range sortedKeys(s.pads) {
		p, _ := s.Pad(id)
		out = append(out, p)
	}
	return out
}

// Components returns the placed components ordered by reference.
func (s *state) Components() []PlacedComponent {
	out := slices.Collect(maps.Values(s.components))
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

// Footprint returns a registered footprint.
func (s *state) Footprint(name string) (Footprint, bool) {
	fp, ok := s.footprints[name]
	return fp, ok
}

// Footprints returns the registered footprints ordered by name.
func (s *state) Footprints() []Footprint {
	out := make([]Footprint, 0, len(s.footprints))
	for _, name := range slices.Sorted(maps.Keys(s.footprints)) {
		out = append(out, s.footprints[name])
	}
	return out
}

// Courtyard returns the board-space courtyard of a placed component, or nil.
func (s *state) Courtyard(ref string) []geom.Point {
	pc, ok := s.components[ref]
	if !ok {
		return nil
	}
	return courtyard(pc, s.footprints[pc.Footprint])
}

// Len returns the number of elements in the arena.
func (s *state) Len() int { return len(s.kinds) }

// Query returns the ids of elements on layer whose bounding boxes intersect
// box, sorted. An empty layer matches all layers.
func (s *state) Query(box geom.BBox, layer string) []ElementID {
	return s.index.query(box, layer)
}

// HitTest returns the pads, vias, traces and zones on layer whose copper
// covers p. Pads come first, then traces, vias and zones, each by id.
func (s *state) HitTest(p geom.Point, layer string) []Hit {
	var hits []Hit
	for _, id := range s.index.query(geom.BBoxOf(p), layer) {
		switch s.kinds[id] {
		case KindPad:
			pad := s.pads[id]
			if pad.Primitive().Contains(p) {
				hits = append(hits, Hit{ID: id, Kind: KindPad, Pin: pad.Pin})
			}
		case KindVia:
			v := s.vias[id]
			if v.Primitive().Contains(p) {
				hits = append(hits, Hit{ID: id, Kind: KindVia, Net: v.Net})
			}
		case KindTrace:
			t := s.traces[id]
			if t.Primitive().Contains(p) {
				hits = append(hits, Hit{ID: id, Kind: KindTrace, Net: t.Net})
			}
		case KindZone:
			z := s.zones[id]
			if geom.PointInPolygon(p, z.Polygon) {
				hits = append(hits, Hit{ID: id, Kind: KindZone, Net: z.Net})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Kind < hits[j].Kind })
	return hits
}

// fingerprintDoc is the canonical content hashed by Fingerprint.
type fingerprintDoc struct {
	Copper     []string          `json:"copper"`
	Outline    Outline           `json:"outline"`
	Components []PlacedComponent `json:"components"`
	Pads       []PadInstance     `json:"pads"`
	Traces     []Trace           `json:"traces"`
	Vias       []Via             `json:"vias"`
	Zones      []Zone            `json:"zones"`
}

// Fingerprint returns a SHA-256 content hash of the board geometry. Two
// boards with the same elements under the same ids hash equal.
func (s *state) Fingerprint() string {
	doc := fingerprintDoc{
		Copper:     s.stack.Copper(),
		Outline:    s.outline,
		Components: s.Components(),
		Pads:       s.Pads(),
		Traces:     s.Traces(),
		Vias:       s.Vias(),
		Zones:      s.Zones(),
	}
	data, _ := json.Marshal(doc)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sortedKeys[V any](m map[ElementID]V) []ElementID {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
