package io

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/matzehuels/copper/pkg/board"
	"github.com/matzehuels/copper/pkg/drc"
	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
	"github.com/matzehuels/copper/pkg/route"
)

// DefaultCopperLayers is used when a file names neither a copper count nor
// explicit layers.
const DefaultCopperLayers = 2

// Design is a loaded design file.
type Design struct {
	Name       string
	Board      *board.Board
	Netlist    *netlist.Netlist
	Rules      drc.Ruleset
	Route      route.Config
	Exclusions *drc.Exclusions
}

type designFile struct {
	Board      boardSection       `toml:"board"`
	Footprints []board.Footprint  `toml:"footprints,omitempty"`
	Components []componentEntry   `toml:"components,omitempty"`
	Classes    []netlist.NetClass `toml:"classes,omitempty"`
	Nets       []netEntry         `toml:"nets,omitempty"`
	Traces     []board.Trace      `toml:"traces,omitempty"`
	Vias       []board.Via        `toml:"vias,omitempty"`
	Zones      []board.Zone       `toml:"zones,omitempty"`
	Rules      drc.Ruleset        `toml:"rules"`
	Route      route.Config       `toml:"route"`
	Exclusions []drc.Exclusion    `toml:"exclusions,omitempty"`
}

type boardSection struct {
	Name    string        `toml:"name,omitempty"`
	Copper  int           `toml:"copper,omitempty"`
	Layers  []board.Layer `toml:"layers,omitempty"`
	Outline board.Outline `toml:"outline"`
}

type componentEntry struct {
	Ref       string        `toml:"ref"`
	Footprint string        `toml:"footprint"`
	Value     string        `toml:"value,omitempty"`
	Position  geom.Point    `toml:"position"`
	Rotation  float64       `toml:"rotation,omitempty"`
	Side      board.Side    `toml:"side,omitempty"`
	Pins      []netlist.Pin `toml:"pins,omitempty"`
}

type netEntry struct {
	Name  netlist.NetID      `toml:"name"`
	Type  netlist.NetType    `toml:"type,omitempty"`
	Class netlist.NetClassID `toml:"class,omitempty"`
	Pins  []netlist.PinRef   `toml:"pins,omitempty"`
}

// Read decodes a design from r.
func Read(r io.Reader) (*Design, error) {
	f := designFile{Rules: drc.DefaultRuleset(), Route: route.DefaultConfig()}
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "decode design")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "unknown design key %q", keys[0].String())
	}
	return f.build()
}

// Load reads the design file at path.
func Load(path string) (*Design, error) {
	if path == "" {
		return nil, cerrors.New(cerrors.ErrCodeInvalidPath, "design path cannot be empty")
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()
	d, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (f *designFile) stack() (board.Stack, error) {
	if len(f.Board.Layers) > 0 {
		return board.NewStack(f.Board.Layers...)
	}
	n := f.Board.Copper
	if n == 0 {
		n = DefaultCopperLayers
	}
	if n < 1 {
		return board.Stack{}, cerrors.New(cerrors.ErrCodeInvalidInput, "copper layer count must be positive, got %d", n)
	}
	return board.CopperStack(n), nil
}

func (f *designFile) build() (*Design, error) {
	if err := f.Rules.Validate(); err != nil {
		return nil, err
	}
	if err := f.Route.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	stack, err := f.stack()
	if err != nil {
		return nil, err
	}
	b, err := board.New(stack, f.Board.Outline)
	if err != nil {
		return nil, err
	}

	footprints := make(map[string]board.Footprint, len(f.Footprints))
	for _, fp := range f.Footprints {
		if err := b.AddFootprint(fp); err != nil {
			return nil, fmt.Errorf("footprint %s: %w", fp.Name, err)
		}
		footprints[fp.Name] = fp
	}

	nl, err := f.netlist(footprints)
	if err != nil {
		return nil, err
	}

	// Copper first, so placing another component never shifts the ids of
	// traces, vias or zones written without one.
	if err := b.Restore(nl, f.Traces, f.Vias, f.Zones); err != nil {
		return nil, fmt.Errorf("copper: %w", err)
	}
	for _, c := range f.Components {
		pc := board.PlacedComponent{Ref: c.Ref, Footprint: c.Footprint, Position: c.Position, Rotation: c.Rotation, Side: c.Side}
		if _, err := b.PlaceComponent(pc); err != nil {
			return nil, fmt.Errorf("component %s: %w", c.Ref, err)
		}
	}

	return &Design{
		Name:       f.Board.Name,
		Board:      b,
		Netlist:    nl,
		Rules:      f.Rules,
		Route:      f.Route,
		Exclusions: drc.NewExclusions(f.Exclusions...),
	}, nil
}

// netlist builds the connectivity model, collecting every problem. A
// component without explicit pins gets one per footprint pad.
func (f *designFile) netlist(footprints map[string]board.Footprint) (*netlist.Netlist, error) {
	nl := netlist.New()
	var errs error
	for _, c := range f.Components {
		pins := c.Pins
		if len(pins) == 0 {
			fp, ok := footprints[c.Footprint]
			if !ok {
				errs = multierr.Append(errs, cerrors.New(cerrors.ErrCodeNotFound, "component %s: footprint %q not defined", c.Ref, c.Footprint))
				continue
			}
			for _, pad := range fp.Pads {
				pins = append(pins, netlist.Pin{Number: pad.Number})
			}
		}
		comp := netlist.Component{Ref: c.Ref, Value: c.Value, Footprint: c.Footprint, Pins: pins}
		errs = multierr.Append(errs, nl.AddComponent(comp))
	}
	for _, cl := range f.Classes {
		errs = multierr.Append(errs, nl.AddClass(cl))
	}
	for _, n := range f.Nets {
		if err := nl.AddNet(netlist.Net{Name: n.Name, Type: n.Type, Class: n.Class}); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, pin := range n.Pins {
			errs = multierr.Append(errs, nl.Assign(pin, n.Name))
		}
	}
	if errs != nil {
		return nil, errs
	}
	if err := nl.Validate(); err != nil {
		return nil, err
	}
	return nl, nil
}

// Write encodes d as TOML.
func Write(d *Design, w io.Writer) error {
	f := designFile{
		Board: boardSection{
			Name:    d.Name,
			Layers:  d.Board.Stack().Layers(),
			Outline: d.Board.Outline(),
		},
		Footprints: d.Board.Footprints(),
		Classes:    d.Netlist.Classes(),
		Traces:     d.Board.Traces(),
		Vias:       d.Board.Vias(),
		Zones:      d.Board.Zones(),
		Rules:      d.Rules,
		Route:      d.Route,
		Exclusions: d.Exclusions.List(),
	}
	for _, pc := range d.Board.Components() {
		entry := componentEntry{Ref: pc.Ref, Footprint: pc.Footprint, Position: pc.Position, Rotation: pc.Rotation, Side: pc.Side}
		if c, ok := d.Netlist.Component(pc.Ref); ok {
			entry.Value = c.Value
			entry.Pins = c.Pins
		}
		f.Components = append(f.Components, entry)
	}
	for _, n := range d.Netlist.Nets() {
		f.Nets = append(f.Nets, netEntry{Name: n.Name, Type: n.Type, Class: n.Class, Pins: d.Netlist.PinsOf(n.Name)})
	}

	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Save writes d to path.
func Save(d *Design, path string) error {
	if path == "" {
		return cerrors.New(cerrors.ErrCodeInvalidPath, "design path cannot be empty")
	}
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(d, fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
