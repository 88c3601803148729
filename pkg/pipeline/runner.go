package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"

	"github.com/matzehuels/copper/pkg/board"
	"github.com/matzehuels/copper/pkg/cache"
	"github.com/matzehuels/copper/pkg/drc"
	cerrors "github.com/matzehuels/copper/pkg/errors"
	designio "github.com/matzehuels/copper/pkg/io"
	"github.com/matzehuels/copper/pkg/netlist"
	"github.com/matzehuels/copper/pkg/observability"
	"github.com/matzehuels/copper/pkg/render/ratsnest"
	"github.com/matzehuels/copper/pkg/store"
)

// Runner encapsulates check execution with caching.
// The CLI and the HTTP server both use it.
//
// The Runner keeps no results, only its cache, store and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Store supplies exclusions kept outside the design file. Optional.
	Store store.Store
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads the design and checks it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Key: opts.Key}

	loadStart := time.Now()
	d, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Design = d
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Nets = len(d.Netlist.Nets())

	r.Logger.Info("loaded design",
		"design", opts.Key,
		"elements", d.Board.Snapshot().Len(),
		"nets", result.Stats.Nets,
		"duration", result.Stats.LoadTime)

	checkStart := time.Now()
	snap := d.Board.Snapshot()
	rep, hit, err := r.CheckWithCacheInfo(ctx, snap, d, opts)
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}
	excl, err := r.Exclusions(ctx, d, opts.Key)
	if err != nil {
		return nil, fmt.Errorf("exclusions: %w", err)
	}
	excl.Apply(rep)

	result.Report = rep
	result.BoardHash = snap.Fingerprint()
	result.Stale = excl.Stale(rep)
	result.Stats.Elements = snap.Len()
	result.Stats.Violations = len(rep.Violations)
	result.Stats.CheckTime = time.Since(checkStart)
	result.CacheInfo.ReportHit = hit

	r.Logger.Info("checked design",
		"violations", len(rep.Active()),
		"excluded", rep.Excluded,
		"cached", hit,
		"duration", result.Stats.CheckTime)

	return result, nil
}

// Load returns opts.Design or reads opts.Path.
func (r *Runner) Load(opts Options) (*designio.Design, error) {
	if opts.Design != nil {
		return opts.Design, nil
	}
	return designio.Load(opts.Path)
}

// CheckWithCacheInfo runs DRC on snap with caching and returns cache hit
// info. The report carries no exclusions.
func (r *Runner) CheckWithCacheInfo(ctx context.Context, snap *board.Snapshot, d *designio.Design, opts Options) (*drc.Report, bool, error) {
	key, err := r.reportKey(snap, d)
	if err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			rep, err := drc.ReadReport(bytes.NewReader(data))
			if err == nil {
				hooks.OnCacheHit(ctx, "report")
				r.Logger.Debug("report cache hit", "key", key)
				return rep, true, nil
			}
			r.Logger.Warn("discarding unreadable cached report", "key", key, "error", err)
		}
		hooks.OnCacheMiss(ctx, "report")
	}

	rep, err := drc.NewEngine(r.Logger).Run(ctx, snap, d.Netlist, d.Rules, nil)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := rep.WriteJSON(&buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.ReportTTL); err != nil {
			r.Logger.Warn("caching report failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, "report", buf.Len())
		}
	}
	return rep, false, nil
}

// Check is a convenience wrapper that discards the cache hit info.
func (r *Runner) Check(ctx context.Context, snap *board.Snapshot, d *designio.Design, opts Options) (*drc.Report, error) {
	rep, _, err := r.CheckWithCacheInfo(ctx, snap, d, opts)
	return rep, err
}

func (r *Runner) reportKey(snap *board.Snapshot, d *designio.Design) (string, error) {
	nlHash, err := netlistHash(d.Netlist)
	if err != nil {
		return "", err
	}
	rsHash, err := cache.HashJSON(d.Rules)
	if err != nil {
		return "", fmt.Errorf("hash ruleset: %w", err)
	}
	return r.Keyer.ReportKey(snap.Fingerprint(), cache.ReportKeyOpts{
		NetlistHash: nlHash,
		RulesetHash: rsHash,
	}), nil
}

// netlistHash covers everything DRC reads from the netlist, pin
// assignments included.
func netlistHash(nl *netlist.Netlist) (string, error) {
	nets := nl.Nets()
	pins := make(map[netlist.NetID][]netlist.PinRef, len(nets))
	for _, n := range nets {
		pins[n.Name] = nl.PinsOf(n.Name)
	}
	h, err := cache.HashJSON(struct {
		Components []netlist.Component
		Nets       []netlist.Net
		Pins       map[netlist.NetID][]netlist.PinRef
		Classes    []netlist.NetClass
	}{nl.Components(), nets, pins, nl.Classes()})
	if err != nil {
		return "", fmt.Errorf("hash netlist: %w", err)
	}
	return h, nil
}

// Exclusions merges the design's inline exclusions with those in the
// store. Stored records win on equal fingerprints.
func (r *Runner) Exclusions(ctx context.Context, d *designio.Design, key string) (*drc.Exclusions, error) {
	excl := drc.NewExclusions(d.Exclusions.List()...)
	if r.Store == nil {
		return excl, nil
	}
	stored, err := r.Store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	for _, x := range stored {
		excl.Put(x)
	}
	return excl, nil
}

// RatsnestWithCacheInfo renders the ratsnest of d and returns cache hit
// info.
func (r *Runner) RatsnestWithCacheInfo(ctx context.Context, d *designio.Design, opts RatsnestOptions) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	snap := d.Board.Snapshot()
	nlHash, err := netlistHash(d.Netlist)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.RatsnestKey(snap.Fingerprint(), cache.RatsnestKeyOpts{
		NetlistHash: nlHash,
		Format:      opts.Format,
		Net:         string(opts.Net),
		All:         opts.All,
	})
	hooks := observability.Cache()

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, "ratsnest")
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, "ratsnest")

	nets := ratsnest.Compute(snap, d.Netlist)
	if opts.Net != "" {
		n, ok := ratsnest.Find(nets, opts.Net)
		if !ok {
			return nil, false, cerrors.New(cerrors.ErrCodeNotFound, "net %q has no copper", opts.Net)
		}
		nets = []ratsnest.Net{n}
	}

	var data []byte
	switch opts.Format {
	case FormatJSON:
		data, err = json.MarshalIndent(nets, "", "  ")
	case FormatSVG:
		data, err = ratsnest.RenderSVG(ratsnest.ToDOT(nets, ratsnest.Options{All: opts.All}))
	default:
		data = []byte(ratsnest.ToDOT(nets, ratsnest.Options{All: opts.All}))
	}
	if err != nil {
		return nil, false, fmt.Errorf("render ratsnest: %w", err)
	}

	if err := r.Cache.Set(ctx, key, data, cache.RatsnestTTL); err == nil {
		hooks.OnCacheSet(ctx, "ratsnest", len(data))
	}
	return data, false, nil
}

// Ratsnest is a convenience wrapper that discards the cache hit info.
func (r *Runner) Ratsnest(ctx context.Context, d *designio.Design, opts RatsnestOptions) ([]byte, error) {
	data, _, err := r.RatsnestWithCacheInfo(ctx, d, opts)
	return data, err
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = multierr.Append(err, r.Cache.Close())
	}
	if r.Store != nil {
		err = multierr.Append(err, r.Store.Close())
	}
	return err
}
