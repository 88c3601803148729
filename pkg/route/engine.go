package route

import (
	"io"
	"math"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/copper/pkg/board"
	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/history"
	"github.com/matzehuels/copper/pkg/netlist"
	"github.com/matzehuels/copper/pkg/observability"
)

// State is the routing state.
type State uint8

// States. Committed and Cancelled are reported by LastOutcome; the engine
// itself rests in Idle after either.
const (
	Idle State = iota
	Routing
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Routing:
		return "routing"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result describes a committed route.
type Result struct {
	Net       netlist.NetID     `json:"net"`
	CommandID string            `json:"command_id"`
	TraceIDs  []board.ElementID `json:"trace_ids"`
	ViaIDs    []board.ElementID `json:"via_ids"`
	Length    geom.Length       `json:"length"`
}

// Engine is the interactive router for one session. Its methods are safe for
// concurrent use, but a session only ever has one route in progress.
type Engine struct {
	mu      sync.Mutex
	id      string
	session *history.Session
	cfg     Config
	logger  *log.Logger

	state         State
	outcome       State
	net           netlist.NetID
	layer         string
	start         geom.Point
	width         geom.Length
	viaDrill      geom.Length
	viaDiameter   geom.Length
	verticalFirst bool
	elems         []Element
}

// New creates an engine for s. A nil logger discards output.
func New(s *history.Session, cfg Config, logger *log.Logger) (*Engine, error) {
	if s == nil || s.Board == nil || s.Netlist == nil {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "routing needs a session with a board and netlist")
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		id:      uuid.NewString(),
		session: s,
		cfg:     cfg,
		logger:  logger,
		width:   cfg.TraceWidth,
	}, nil
}

func (e *Engine) reject(op string, err error) error {
	observability.Routing().OnRouteRejected(op, string(cerrors.GetCode(err)))
	e.logger.Debug("routing operation rejected", "op", op, "err", err)
	return err
}

func (e *Engine) requireRouting(op string) error {
	if e.state != Routing {
		return e.reject(op, cerrors.New(cerrors.ErrCodeNotRouting, "no route in progress"))
	}
	return nil
}

// netAt returns the net of the first pad, trace or via on layer under p.
// Zones are not routing anchors.
func (e *Engine) netAt(p geom.Point, layer string) (netlist.NetID, bool) {
	for _, h := range e.session.Board.HitTest(p, layer) {
		switch h.Kind {
		case board.KindPad:
			if net, ok := e.session.Netlist.NetFor(h.Pin); ok {
				return net, true
			}
		case board.KindTrace, board.KindVia:
			if h.Net != "" {
				return h.Net, true
			}
		}
	}
	return "", false
}

// connects reports whether copper of net sits on layer under p.
func (e *Engine) connects(p geom.Point, layer string, net netlist.NetID) bool {
	for _, h := range e.session.Board.HitTest(p, layer) {
		switch h.Kind {
		case board.KindPad:
			if n, ok := e.session.Netlist.NetFor(h.Pin); ok && n == net {
				return true
			}
		case board.KindTrace, board.KindVia:
			if h.Net == net {
				return true
			}
		}
	}
	return false
}

// Start begins a route at p on layer. The point must lie on a pad, trace or
// via that belongs to a net; the route is bound to that net.
func (e *Engine) Start(p geom.Point, layer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Routing {
		return e.reject("start", cerrors.New(cerrors.ErrCodeBusyRouting, "a route on net %s is already in progress", e.net))
	}
	if !e.session.Board.Stack().Has(layer) {
		return e.reject("start", cerrors.New(cerrors.ErrCodeInvalidLayer, "layer %q is not in the stack", layer))
	}
	net, ok := e.netAt(p, layer)
	if !ok {
		return e.reject("start", cerrors.New(cerrors.ErrCodeNoNetAtPoint, "no net at %s on %s", p, layer))
	}
	if !e.session.Netlist.HasNet(net) {
		return e.reject("start", cerrors.Internal("copper at %s references unknown net %s", p, net))
	}
	if !e.session.ClaimRouter(e.id) {
		return e.reject("start", cerrors.New(cerrors.ErrCodeBusyRouting, "another route is active in this session"))
	}

	class := e.session.Netlist.ClassFor(net)
	e.state = Routing
	e.net = net
	e.layer = layer
	e.start = p
	e.elems = nil
	e.width = pick(class.TraceWidth, e.cfg.TraceWidth)
	e.viaDrill = pick(class.ViaDrill, e.cfg.ViaDrill)
	e.viaDiameter = pick(class.ViaDiameter, e.cfg.ViaDiameter)
	if e.viaDiameter <= e.viaDrill {
		e.viaDrill, e.viaDiameter = e.cfg.ViaDrill, e.cfg.ViaDiameter
	}

	observability.Routing().OnRouteStart(string(net), layer)
	e.logger.Debug("route started", "net", net, "layer", layer, "at", p, "width", e.width)
	return nil
}

func pick(v, fallback geom.Length) geom.Length {
	if v > 0 {
		return v
	}
	return fallback
}

// cursor returns the current end of the route.
func (e *Engine) cursor() geom.Point {
	if len(e.elems) == 0 {
		return e.start
	}
	return e.elems[len(e.elems)-1].End
}

// Extend routes from the current end to p. Orthogonal mode emits an
// axis-aligned leg first, horizontal unless the orientation was toggled.
// Extending to the current end is ignored.
func (e *Engine) Extend(p geom.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireRouting("extend"); err != nil {
		return err
	}
	if e.cfg.SnapToGrid {
		p = snap(p, e.cfg.Grid)
	}
	from := e.cursor()
	if p == from {
		return nil
	}

	var legs []geom.Segment
	switch e.cfg.Mode {
	case ModeOrthogonal:
		legs = orthogonalLegs(from, p, e.verticalFirst)
	default:
		legs = []geom.Segment{geom.Seg(from, p)}
	}
	for _, leg := range legs {
		e.appendSegment(leg)
	}
	e.logger.Debug("route extended", "net", e.net, "to", p, "elements", len(e.elems))
	return nil
}

func (e *Engine) appendSegment(seg geom.Segment) {
	last := len(e.elems) - 1
	if e.cfg.Corner == CornerMitered && last >= 0 &&
		e.elems[last].Kind == KindSegment && e.elems[last].Layer == e.layer {
		prev := e.elems[last]
		a, chamfer, b, ok := miter(geom.Seg(prev.Start, prev.End), seg, e.cfg.Grid)
		if ok {
			e.elems[last].End = a.B
			e.elems = append(e.elems, Element{
				Kind: KindSegment, Layer: e.layer, Start: chamfer.A, End: chamfer.B, Width: e.width,
				corner: prev.End, chamfer: true,
			})
			seg = b
		}
	}
	e.elems = append(e.elems, Element{
		Kind: KindSegment, Layer: e.layer, Start: seg.A, End: seg.B, Width: e.width,
	})
}

// InsertVia drops a via at the current end and continues on layer.
func (e *Engine) InsertVia(layer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireRouting("via"); err != nil {
		return err
	}
	stack := e.session.Board.Stack()
	if !stack.Has(layer) {
		return e.reject("via", cerrors.New(cerrors.ErrCodeInvalidLayer, "layer %q is not in the stack", layer))
	}
	if layer == e.layer {
		return e.reject("via", cerrors.New(cerrors.ErrCodeInvalidLayer, "already routing on %s", layer))
	}
	at := e.cursor()
	e.elems = append(e.elems, Element{
		Kind: KindVia, Layer: e.layer, To: layer, Start: at, End: at,
		Drill: e.viaDrill, Diameter: e.viaDiameter,
	})
	e.logger.Debug("via inserted", "net", e.net, "at", at, "from", e.layer, "to", layer)
	e.layer = layer
	return nil
}

// SetWidth changes the width of segments appended from now on.
func (e *Engine) SetWidth(w geom.Length) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireRouting("width"); err != nil {
		return err
	}
	if w <= 0 {
		return e.reject("width", cerrors.New(cerrors.ErrCodeInvalidInput, "trace width must be positive, got %s", w))
	}
	e.width = w
	return nil
}

// NextWidth switches to the next width preset and returns it.
func (e *Engine) NextWidth() (geom.Length, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRouting("width"); err != nil {
		return 0, err
	}
	e.width = nextPreset(e.cfg.WidthPresets, e.width)
	return e.width, nil
}

// PrevWidth switches to the previous width preset and returns it.
func (e *Engine) PrevWidth() (geom.Length, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRouting("width"); err != nil {
		return 0, err
	}
	e.width = prevPreset(e.cfg.WidthPresets, e.width)
	return e.width, nil
}

// ToggleOrientation swaps horizontal-first and vertical-first legs in
// orthogonal mode.
func (e *Engine) ToggleOrientation() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.verticalFirst = !e.verticalFirst
}

// UndoSegment removes the most recent segment or via. Removing a via returns
// to the layer it was placed from, and removing a miter chamfer extends the
// trimmed segment back to its corner. It does nothing when the chain is
// already empty, and ends the route when it removes the last element.
func (e *Engine) UndoSegment() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Routing || len(e.elems) == 0 {
		return nil
	}
	last := e.elems[len(e.elems)-1]
	e.elems = e.elems[:len(e.elems)-1]
	switch {
	case last.Kind == KindVia:
		e.layer = last.Layer
	case last.chamfer && len(e.elems) > 0:
		e.elems[len(e.elems)-1].End = last.corner
	}
	if len(e.elems) == 0 {
		e.finish(Cancelled)
		e.logger.Debug("route emptied", "net", e.net)
	}
	return nil
}

// Cancel discards the route in progress.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireRouting("cancel"); err != nil {
		return err
	}
	n := len(e.elems)
	net := e.net
	e.finish(Cancelled)
	observability.Routing().OnRouteCancel(string(net), n)
	e.logger.Debug("route cancelled", "net", net, "elements", n)
	return nil
}

// Commit writes the route to the board as one undoable command. The route
// must end on a pad, trace or via of its own net on the current layer;
// otherwise DANGLING_ROUTE is returned and routing continues.
func (e *Engine) Commit() (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireRouting("commit"); err != nil {
		return nil, err
	}
	if len(e.elems) == 0 {
		return nil, e.reject("commit", cerrors.New(cerrors.ErrCodeInvalidInput, "nothing to commit"))
	}
	end := e.cursor()
	if !e.connects(end, e.layer, e.net) {
		return nil, e.reject("commit", cerrors.New(cerrors.ErrCodeDanglingRoute,
			"route ends at %s on %s without reaching net %s", end, e.layer, e.net))
	}

	stack := e.session.Board.Stack()
	var traces []board.Trace
	var vias []board.Via
	for _, el := range e.elems {
		switch el.Kind {
		case KindSegment:
			traces = append(traces, board.Trace{
				Net: e.net, Layer: el.Layer, Start: el.Start, End: el.End, Width: el.Width,
			})
		case KindVia:
			vias = append(vias, board.Via{
				Net: e.net, Kind: board.KindForSpan(stack, el.Layer, el.To), At: el.Start,
				Drill: el.Drill, Diameter: el.Diameter, From: el.Layer, To: el.To,
			})
		}
	}

	cmd := board.AddBatch(e.session.Board, e.session.Netlist, traces, vias)
	if err := e.session.Do(cmd); err != nil {
		return nil, e.reject("commit", err)
	}

	res := &Result{
		Net:       e.net,
		CommandID: cmd.ID(),
		TraceIDs:  cmd.TraceIDs(),
		ViaIDs:    cmd.ViaIDs(),
		Length:    e.length(),
	}
	e.finish(Committed)
	observability.Routing().OnRouteCommit(string(res.Net), len(res.TraceIDs), len(res.ViaIDs), float64(res.Length))
	e.logger.Info("route committed", "net", res.Net, "traces", len(res.TraceIDs), "vias", len(res.ViaIDs), "length", res.Length)
	return res, nil
}

func (e *Engine) finish(outcome State) {
	e.session.ReleaseRouter(e.id)
	e.state = Idle
	e.outcome = outcome
	e.elems = nil
	e.net = ""
}

func (e *Engine) length() geom.Length {
	var total float64
	for _, el := range e.elems {
		total += el.Length()
	}
	return geom.Length(math.Round(total))
}

// State returns Idle or Routing.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastOutcome returns Committed or Cancelled for the most recently finished
// route, or Idle if none has finished yet.
func (e *Engine) LastOutcome() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

// Net returns the net being routed, empty when idle.
func (e *Engine) Net() netlist.NetID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net
}

// Layer returns the layer new segments go on.
func (e *Engine) Layer() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layer
}

// Width returns the width of the next segment.
func (e *Engine) Width() geom.Length {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width
}

// Cursor returns the current end of the route.
func (e *Engine) Cursor() geom.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor()
}

// Elements returns a copy of the accumulated route.
func (e *Engine) Elements() []Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.elems)
}

// Length returns the total centreline length routed so far.
func (e *Engine) Length() geom.Length {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.length()
}

// CopperLayers lists the layers a route may use, top to bottom.
func (e *Engine) CopperLayers() []string { return e.session.Board.Stack().Copper() }

// NextLayer returns the copper layer after the current one, wrapping.
func (e *Engine) NextLayer() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Board.Stack().NextLayer(e.layer)
}
