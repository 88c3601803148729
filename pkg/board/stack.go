package board

import (
	"slices"
	"strconv"

	cerrors "github.com/matzehuels/copper/pkg/errors"
)

// LayerKind is the function of a layer in the stackup.
type LayerKind string

// Layer kinds.
const (
	LayerCopper      LayerKind = "copper"
	LayerDielectric  LayerKind = "dielectric"
	LayerSolderMask  LayerKind = "solder_mask"
	LayerSilkscreen  LayerKind = "silkscreen"
	LayerPaste       LayerKind = "paste"
	LayerCourtyard   LayerKind = "courtyard"
	LayerFabrication LayerKind = "fabrication"
)

// Layer is one sheet of the stackup.
type Layer struct {
	Name  string    `json:"name" toml:"name"`
	Kind  LayerKind `json:"kind" toml:"kind"`
	Index int       `json:"index" toml:"-"`
}

// Stack is the ordered layer stackup, top to bottom. Index on copper layers
// counts copper only, starting at 0 for the top copper layer.
type Stack struct {
	layers []Layer
	copper []string
}

// NewStack builds a stack. Names must be unique and at least one copper layer
// is required.
func NewStack(layers ...Layer) (Stack, error) {
	var s Stack
	seen := make(map[string]bool)
	for _, l := range layers {
		if err := cerrors.ValidateName("layer", l.Name); err != nil {
			return Stack{}, err
		}
		if seen[l.Name] {
			return Stack{}, cerrors.New(cerrors.ErrCodeConflict, "duplicate layer %s", l.Name)
		}
		seen[l.Name] = true
		if l.Kind == "" {
			l.Kind = LayerCopper
		}
		l.Index = -1
		if l.Kind == LayerCopper {
			l.Index = len(s.copper)
			s.copper = append(s.copper, l.Name)
		}
		s.layers = append(s.layers, l)
	}
	if len(s.copper) == 0 {
		return Stack{}, cerrors.New(cerrors.ErrCodeInvalidInput, "layer stack has no copper layers")
	}
	return s, nil
}

// CopperStack builds a stack of n copper layers named F.Cu, In1.Cu … B.Cu.
func CopperStack(n int) Stack {
	if n < 1 {
		n = 1
	}
	layers := make([]Layer, 0, n)
	layers = append(layers, Layer{Name: "F.Cu", Kind: LayerCopper})
	for i := 1; i < n-1; i++ {
		layers = append(layers, Layer{Name: "In" + strconv.Itoa(i) + ".Cu", Kind: LayerCopper})
	}
	if n > 1 {
		layers = append(layers, Layer{Name: "B.Cu", Kind: LayerCopper})
	}
	s, _ := NewStack(layers...)
	return s
}

// Layers returns every layer, top to bottom.
func (s Stack) Layers() []Layer { return slices.Clone(s.layers) }

// Copper returns the copper layer names, top to bottom.
func (s Stack) Copper() []string { return slices.Clone(s.copper) }

// Len returns the number of copper layers.
func (s Stack) Len() int { return len(s.copper) }

// IndexOf returns the copper index of name, or -1.
func (s Stack) IndexOf(name string) int { return slices.Index(s.copper, name) }

// Has reports whether name is a copper layer.
func (s Stack) Has(name string) bool { return s.IndexOf(name) >= 0 }

// Top returns the top copper layer.
func (s Stack) Top() string { return s.copper[0] }

// Bottom returns the bottom copper layer.
func (s Stack) Bottom() string { return s.copper[len(s.copper)-1] }

// IsOuter reports whether name is the top or bottom copper layer.
func (s Stack) IsOuter(name string) bool {
	return len(s.copper) > 0 && (name == s.Top() || name == s.Bottom())
}

// Flip maps a copper layer to its mirror on the other side of the board.
func (s Stack) Flip(name string) string {
	i := s.IndexOf(name)
	if i < 0 {
		return name
	}
	return s.copper[len(s.copper)-1-i]
}

// NextLayer returns the copper layer after current, wrapping to the top.
func (s Stack) NextLayer(current string) (string, bool) {
	i := s.IndexOf(current)
	if i < 0 {
		return "", false
	}
	return s.copper[(i+1)%len(s.copper)], true
}

// Span returns the copper layers from one layer to another inclusive, in
// stack order. The result is contiguous by construction.
func (s Stack) Span(from, to string) ([]string, error) {
	a, b := s.IndexOf(from), s.IndexOf(to)
	if a < 0 {
		return nil, cerrors.New(cerrors.ErrCodeInvalidLayer, "layer %q is not a copper layer", from)
	}
	if b < 0 {
		return nil, cerrors.New(cerrors.ErrCodeInvalidLayer, "layer %q is not a copper layer", to)
	}
	if a > b {
		a, b = b, a
	}
	return slices.Clone(s.copper[a : b+1]), nil
}

// Between reports whether layer lies within the span from..to.
func (s Stack) Between(layer, from, to string) bool {
	i, a, b := s.IndexOf(layer), s.IndexOf(from), s.IndexOf(to)
	if i < 0 || a < 0 || b < 0 {
		return false
	}
	if a > b {
		a, b = b, a
	}
	return i >= a && i <= b
}
