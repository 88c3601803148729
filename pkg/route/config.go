package route

import (
	"slices"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
)

// Mode constrains segment directions.
type Mode string

// Routing modes.
const (
	// ModeMixed accepts any direction, diagonals included.
	ModeMixed Mode = "mixed"
	// ModeOrthogonal emits an axis-aligned leg first, then the remainder.
	ModeOrthogonal Mode = "orthogonal"
)

// Corner is the style applied where two segments meet.
type Corner string

// Corner styles.
const (
	CornerSharp   Corner = "sharp"
	CornerMitered Corner = "mitered45"
	CornerRounded Corner = "rounded"
)

// Config holds routing defaults. Net classes override width and via size.
type Config struct {
	TraceWidth   geom.Length   `toml:"trace_width" json:"trace_width"`
	ViaDrill     geom.Length   `toml:"via_drill" json:"via_drill"`
	ViaDiameter  geom.Length   `toml:"via_diameter" json:"via_diameter"`
	Grid         geom.Length   `toml:"grid" json:"grid"`
	SnapToGrid   bool          `toml:"snap_to_grid" json:"snap_to_grid"`
	Mode         Mode          `toml:"mode" json:"mode"`
	Corner       Corner        `toml:"corner" json:"corner"`
	WidthPresets []geom.Length `toml:"width_presets" json:"width_presets"`
}

// DefaultConfig returns the stock routing configuration: 0.25mm traces,
// 0.3/0.6mm vias, a 0.1mm grid, orthogonal-first routing with mitered
// corners.
func DefaultConfig() Config {
	return Config{
		TraceWidth:  geom.MM(0.25),
		ViaDrill:    geom.MM(0.3),
		ViaDiameter: geom.MM(0.6),
		Grid:        geom.MM(0.1),
		SnapToGrid:  true,
		Mode:        ModeOrthogonal,
		Corner:      CornerMitered,
		WidthPresets: []geom.Length{
			geom.MM(0.15), geom.MM(0.2), geom.MM(0.25), geom.MM(0.3),
			geom.MM(0.4), geom.MM(0.5), geom.MM(0.8), geom.MM(1.0),
		},
	}
}

// ValidateAndSetDefaults fills zero fields from DefaultConfig and rejects
// unsupported settings, including the rounded corner style.
func (c *Config) ValidateAndSetDefaults() error {
	def := DefaultConfig()
	if c.TraceWidth == 0 {
		c.TraceWidth = def.TraceWidth
	}
	if c.ViaDrill == 0 {
		c.ViaDrill = def.ViaDrill
	}
	if c.ViaDiameter == 0 {
		c.ViaDiameter = def.ViaDiameter
	}
	if c.Grid == 0 {
		c.Grid = def.Grid
	}
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if c.Corner == "" {
		c.Corner = def.Corner
	}
	if c.WidthPresets == nil {
		c.WidthPresets = def.WidthPresets
	}

	if c.TraceWidth < 0 || c.ViaDrill < 0 || c.ViaDiameter < 0 || c.Grid < 0 {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "routing sizes must not be negative")
	}
	if c.ViaDiameter <= c.ViaDrill {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "via diameter %s must exceed drill %s", c.ViaDiameter, c.ViaDrill)
	}
	switch c.Mode {
	case ModeMixed, ModeOrthogonal:
	default:
		return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown routing mode %q", c.Mode)
	}
	switch c.Corner {
	case CornerSharp, CornerMitered:
	case CornerRounded:
		return cerrors.New(cerrors.ErrCodeInvalidInput, "corner style %q is not supported; use %q or %q", c.Corner, CornerSharp, CornerMitered)
	default:
		return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown corner style %q", c.Corner)
	}
	for _, w := range c.WidthPresets {
		if w <= 0 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "width preset %s must be positive", w)
		}
	}
	c.WidthPresets = slices.Clone(c.WidthPresets)
	slices.Sort(c.WidthPresets)
	return nil
}

// nextPreset returns the preset after cur, wrapping. An unknown current width
// behaves like the first preset.
func nextPreset(presets []geom.Length, cur geom.Length) geom.Length {
	if len(presets) == 0 {
		return cur
	}
	i := max(slices.Index(presets, cur), 0)
	return presets[(i+1)%len(presets)]
}

// prevPreset returns the preset before cur, wrapping.
func prevPreset(presets []geom.Length, cur geom.Length) geom.Length {
	if len(presets) == 0 {
		return cur
	}
	i := max(slices.Index(presets, cur), 0)
	if i == 0 {
		return presets[len(presets)-1]
	}
	return presets[i-1]
}

// snap rounds p to the nearest grid point.
func snap(p geom.Point, grid geom.Length) geom.Point {
	if grid <= 0 {
		return p
	}
	return geom.Point{X: snapLen(p.X, grid), Y: snapLen(p.Y, grid)}
}

func snapLen(v, g geom.Length) geom.Length {
	if v < 0 {
		return -snapLen(-v, g)
	}
	return (v + g/2) / g * g
}
