// Package pipeline runs design checks the same way for every entry point.
//
// # Architecture
//
// A run has two stages:
//
//  1. Load: read a TOML design file into a board, netlist and ruleset
//  2. Check: snapshot the board and run DRC, reusing a cached report when
//     the board, netlist and ruleset are unchanged
//
// Exclusions are applied after the cache, so accepting a violation never
// invalidates a cached report. They come from the design file and, when the
// runner has one, from an exclusion [store.Store].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Path: "board.toml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, v := range result.Report.Active() {
//	    fmt.Println(v)
//	}
//
// The ratsnest stage is separate and shares the cache:
//
//	svg, hit, err := runner.RatsnestWithCacheInfo(ctx, design, pipeline.RatsnestOptions{Format: "svg"})
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/copper/pkg/drc"
	designio "github.com/matzehuels/copper/pkg/io"
	"github.com/matzehuels/copper/pkg/netlist"
)

// Ratsnest output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported ratsnest formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a ratsnest format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// Options configures a check run.
type Options struct {
	// Path is the design file. Ignored when Design is set.
	Path string `json:"path,omitempty"`

	// Design is an already loaded design.
	Design *designio.Design `json:"-"`

	// Key names the design in the exclusion store. Defaults to the design
	// name, then to the file name without extension.
	Key string `json:"key,omitempty"`

	// Refresh skips the cached report.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Design == nil && o.Path == "" {
		return fmt.Errorf("design path is required")
	}
	if o.Key == "" {
		o.Key = DesignKey(o.Design, o.Path)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// DesignKey derives the exclusion store key of a design.
func DesignKey(d *designio.Design, path string) string {
	if d != nil && d.Name != "" {
		return d.Name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RatsnestOptions selects a ratsnest rendering.
type RatsnestOptions struct {
	Format string        `json:"format,omitempty"`
	Net    netlist.NetID `json:"net,omitempty"`
	All    bool          `json:"all,omitempty"`
}

// ValidateAndSetDefaults defaults the format to DOT.
func (o *RatsnestOptions) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = FormatDOT
	}
	return ValidateFormat(o.Format)
}

// Result contains the outputs of a check run.
type Result struct {
	Design *designio.Design

	// Key is the exclusion store key used.
	Key string

	// BoardHash is the content hash of the checked board.
	BoardHash string

	Report *drc.Report

	// Stale lists exclusions that matched nothing in this run.
	Stale []drc.Exclusion

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Elements   int
	Nets       int
	Violations int
	LoadTime   time.Duration
	CheckTime  time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	ReportHit bool
}
