package board

import (
	"slices"

	"github.com/matzehuels/copper/pkg/geom"
)

// defaultCell is the grid cell size. Typical pads and trace segments span a
// handful of cells.
const defaultCell = geom.Millimeter

type cellKey struct{ x, y int64 }

type indexEntry struct {
	box    geom.BBox
	layers []string // nil means every layer
}

// grid is a uniform spatial hash over element bounding boxes.
type grid struct {
	cell    geom.Length
	cells   map[cellKey][]ElementID
	entries map[ElementID]indexEntry
}

func newGrid(cell geom.Length) *grid {
	if cell <= 0 {
		cell = defaultCell
	}
	return &grid{
		cell:    cell,
		cells:   make(map[cellKey][]ElementID),
		entries: make(map[ElementID]indexEntry),
	}
}

func (g *grid) floor(v geom.Length) int64 {
	q := int64(v / g.cell)
	if v < 0 && v%g.cell != 0 {
		q--
	}
	return q
}

func (g *grid) span(b geom.BBox, fn func(cellKey)) {
	x0, x1 := g.floor(b.Min.X), g.floor(b.Max.X)
	y0, y1 := g.floor(b.Min.Y), g.floor(b.Max.Y)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			fn(cellKey{x, y})
		}
	}
}

func (g *grid) insert(id ElementID, box geom.BBox, layers []string) {
	g.entries[id] = indexEntry{box: box, layers: layers}
	g.span(box, func(k cellKey) {
		g.cells[k] = append(g.cells[k], id)
	})
}

func (g *grid) remove(id ElementID) {
	e, ok := g.entries[id]
	if !ok {
		return
	}
	delete(g.entries, id)
	g.span(e.box, func(k cellKey) {
		ids := g.cells[k]
		if i := slices.Index(ids, id); i >= 0 {
			ids = slices.Delete(ids, i, i+1)
		}
		if len(ids) == 0 {
			delete(g.cells, k)
		} else {
			g.cells[k] = ids
		}
	})
}

// query returns the ids whose boxes intersect box and which sit on layer.
// An empty layer matches every element. Results are sorted.
func (g *grid) query(box geom.BBox, layer string) []ElementID {
	seen := make(map[ElementID]bool)
	var out []ElementID
	g.span(box, func(k cellKey) {
		for _, id := range g.cells[k] {
			if seen[id] {
				continue
			}
			seen[id] = true
			e := g.entries[id]
			if !e.box.Intersects(box) {
				continue
			}
			if layer != "" && e.layers != nil && !slices.Contains(e.layers, layer) {
				continue
			}
			out = append(out, id)
		}
	})
	slices.Sort(out)
	return out
}

func (g *grid) clone() *grid {
	c := &grid{
		cell:    g.cell,
		cells:   make(map[cellKey][]ElementID, len(g.cells)),
		entries: make(map[ElementID]indexEntry, len(g.entries)),
	}
	for k, ids := range g.cells {
		c.cells[k] = slices.Clone(ids)
	}
	for id, e := range g.entries {
		e.layers = slices.Clone(e.layers)
		c.entries[id] = e
	}
	return c
}
