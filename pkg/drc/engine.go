package drc

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/copper/pkg/board"
	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/netlist"
	"github.com/matzehuels/copper/pkg/observability"
)

// Engine runs rules over board snapshots. It holds no per-run state, so one
// engine may serve concurrent runs.
type Engine struct {
	Rules  []Rule
	Logger *log.Logger
	// Limit caps the number of rules evaluated at once. Zero means no limit.
	Limit int
}

// NewEngine returns an engine with the built-in rules. A nil logger
// discards output.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{Rules: DefaultRules(), Logger: logger}
}

// Run checks snap against rs and applies excl, which may be nil. It returns
// a CANCELLED error if ctx ends before every rule has finished; rules poll
// the context between items, so cancellation takes effect promptly.
func (e *Engine) Run(ctx context.Context, snap *board.Snapshot, nl *netlist.Netlist, rs Ruleset, excl *Exclusions) (*Report, error) {
	if snap == nil || nl == nil {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "drc needs a board snapshot and a netlist")
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	var rules []Rule
	for _, r := range e.Rules {
		if rs.Enabled(r.ID) {
			rules = append(rules, r)
		}
	}

	hooks := observability.DRC()
	start := time.Now()
	hooks.OnRunStart(ctx, len(rules))
	e.Logger.Debug("drc run started", "rules", len(rules), "elements", snap.Len())

	c := newContext(ctx, snap, nl, rs)
	results := make([][]Violation, len(rules))
	g, gctx := errgroup.WithContext(ctx)
	if e.Limit > 0 {
		g.SetLimit(e.Limit)
	}
	c.ctx = gctx
	for i, r := range rules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			vs := r.Check(c)
			if err := gctx.Err(); err != nil {
				return err
			}
			sev := rs.SeverityOf(r.ID)
			for j := range vs {
				vs[j].Severity = sev
			}
			results[i] = vs
			hooks.OnRuleComplete(gctx, string(r.ID), len(vs), time.Since(t))
			e.Logger.Debug("rule checked", "rule", r.ID, "violations", len(vs), "duration", time.Since(t))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		err = cerrors.Wrap(cerrors.ErrCodeCancelled, err, "drc run cancelled")
		hooks.OnRunComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}

	rep := &Report{Board: snap.Fingerprint(), Duration: time.Since(start)}
	for i, vs := range results {
		rep.Rules = append(rep.Rules, rules[i].ID)
		rep.Violations = append(rep.Violations, vs...)
	}
	if rep.Violations == nil {
		rep.Violations = []Violation{}
	}
	sortViolations(rep.Violations)
	if excl != nil {
		excl.Apply(rep)
	} else {
		rep.recount()
	}

	hooks.OnRunComplete(ctx, len(rep.Violations), rep.Duration, nil)
	e.Logger.Info("drc finished",
		"errors", rep.Counts[SeverityError],
		"warnings", rep.Counts[SeverityWarning],
		"excluded", rep.Excluded,
		"duration", rep.Duration)
	return rep, nil
}

// Run checks snap with a default engine.
func Run(ctx context.Context, snap *board.Snapshot, nl *netlist.Netlist, rs Ruleset, excl *Exclusions) (*Report, error) {
	return NewEngine(nil).Run(ctx, snap, nl, rs, excl)
}
