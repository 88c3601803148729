package route

import (
	"io"

	"github.com/BurntSushi/toml"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
)

// Step operations in a route script.
const (
	OpTo     = "to"     // extend to At
	OpVia    = "via"    // insert a via to Layer
	OpWidth  = "width"  // set Width
	OpToggle = "toggle" // toggle orthogonal leg order
	OpUndo   = "undo"   // drop the last element
)

// Script is a batch of routes replayed through an Engine, the
// non-interactive form of a routing session:
//
//	[[routes]]
//	layer = "F.Cu"
//	from = { x = "10mm", y = "10mm" }
//	steps = [
//	  { op = "to", at = { x = "15mm", y = "10mm" } },
//	  { op = "via", layer = "B.Cu" },
//	  { op = "to", at = { x = "20mm", y = "20mm" } },
//	]
type Script struct {
	Routes []ScriptRoute `toml:"routes"`
}

// ScriptRoute is one route from start to commit.
type ScriptRoute struct {
	Layer string     `toml:"layer"`
	From  geom.Point `toml:"from"`
	Steps []Step     `toml:"steps"`
}

// Step is one routing operation.
type Step struct {
	Op    string      `toml:"op"`
	At    geom.Point  `toml:"at,omitempty"`
	Layer string      `toml:"layer,omitempty"`
	Width geom.Length `toml:"width,omitempty"`
}

// ReadScript decodes a route script.
func ReadScript(r io.Reader) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "decode route script")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "unknown route script key %q", keys[0].String())
	}
	return &s, nil
}

// Play routes r from start to commit. Any failure cancels the route, so
// the board is either extended by the whole route or left untouched.
func (e *Engine) Play(r ScriptRoute) (*Result, error) {
	if err := e.Start(r.From, r.Layer); err != nil {
		return nil, err
	}
	for i, st := range r.Steps {
		if err := e.step(st); err != nil {
			_ = e.Cancel()
			code := cerrors.GetCode(err)
			if code == "" {
				code = cerrors.ErrCodeInternal
			}
			return nil, cerrors.Wrap(code, err, "step %d (%s)", i+1, st.Op)
		}
	}
	res, err := e.Commit()
	if err != nil {
		_ = e.Cancel()
		return nil, err
	}
	return res, nil
}

func (e *Engine) step(st Step) error {
	switch st.Op {
	case OpTo:
		return e.Extend(st.At)
	case OpVia:
		return e.InsertVia(st.Layer)
	case OpWidth:
		return e.SetWidth(st.Width)
	case OpToggle:
		e.ToggleOrientation()
		return nil
	case OpUndo:
		return e.UndoSegment()
	default:
		return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown step %q", st.Op)
	}
}
