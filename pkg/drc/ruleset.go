package drc

import (
	"maps"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
)

// RuleID names a rule.
type RuleID string

// Rule ids.
const (
	RuleTraceClearance   RuleID = "trace_clearance"
	RuleTraceWidth       RuleID = "trace_width"
	RuleViaClearance     RuleID = "via_clearance"
	RuleViaDrill         RuleID = "via_drill"
	RuleAnnularRing      RuleID = "annular_ring"
	RuleCourtyardOverlap RuleID = "courtyard_overlap"
	RuleEdgeClearance    RuleID = "edge_clearance"
	RuleDanglingVia      RuleID = "dangling_via"
	RuleUnconnected      RuleID = "unconnected_items"
)

// Severity is how a violation is reported.
type Severity string

// Severities, most severe first.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityIgnore  Severity = "ignore"
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityIgnore:
		return true
	}
	return false
}

var defaultSeverity = map[RuleID]Severity{
	RuleTraceClearance:   SeverityError,
	RuleTraceWidth:       SeverityError,
	RuleViaClearance:     SeverityError,
	RuleViaDrill:         SeverityError,
	RuleAnnularRing:      SeverityError,
	RuleCourtyardOverlap: SeverityError,
	RuleEdgeClearance:    SeverityError,
	RuleDanglingVia:      SeverityWarning,
	RuleUnconnected:      SeverityWarning,
}

// Ruleset holds the board-wide limits. Net classes may tighten clearance and
// annular ring per net.
type Ruleset struct {
	GlobalClearance geom.Length         `toml:"clearance" json:"clearance"`
	MinDrill        geom.Length         `toml:"min_drill" json:"min_drill"`
	MinAnnularRing  geom.Length         `toml:"min_annular_ring" json:"min_annular_ring"`
	EdgeClearance   geom.Length         `toml:"edge_clearance" json:"edge_clearance"`
	CourtyardGap    geom.Length         `toml:"courtyard_gap" json:"courtyard_gap"`
	Severity        map[RuleID]Severity `toml:"severity,omitempty" json:"severity,omitempty"`
	Disabled        map[RuleID]bool     `toml:"disabled,omitempty" json:"disabled,omitempty"`
}

// DefaultRuleset returns 0.2mm clearance, 0.2mm minimum drill, 0.15mm annular
// ring and 0.3mm edge clearance.
func DefaultRuleset() Ruleset {
	return Ruleset{
		GlobalClearance: geom.MM(0.2),
		MinDrill:        geom.MM(0.2),
		MinAnnularRing:  geom.MM(0.15),
		EdgeClearance:   geom.MM(0.3),
	}
}

// Rules lists every known rule id in evaluation order.
func Rules() []RuleID {
	return []RuleID{
		RuleTraceClearance, RuleTraceWidth, RuleViaClearance, RuleViaDrill,
		RuleAnnularRing, RuleCourtyardOverlap, RuleEdgeClearance, RuleDanglingVia,
		RuleUnconnected,
	}
}

// Validate rejects negative limits and unknown rule ids or severities.
func (r Ruleset) Validate() error {
	for name, v := range map[string]geom.Length{
		"clearance":        r.GlobalClearance,
		"min_drill":        r.MinDrill,
		"min_annular_ring": r.MinAnnularRing,
		"edge_clearance":   r.EdgeClearance,
		"courtyard_gap":    r.CourtyardGap,
	} {
		if v < 0 {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "%s must not be negative, got %s", name, v)
		}
	}
	for id, sev := range r.Severity {
		if _, ok := defaultSeverity[id]; !ok {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown rule %q", id)
		}
		if !sev.Valid() {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "rule %s: unknown severity %q", id, sev)
		}
	}
	for id := range r.Disabled {
		if _, ok := defaultSeverity[id]; !ok {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "unknown rule %q", id)
		}
	}
	return nil
}

// SeverityOf returns the configured severity of a rule.
func (r Ruleset) SeverityOf(id RuleID) Severity {
	if s, ok := r.Severity[id]; ok {
		return s
	}
	return defaultSeverity[id]
}

// Enabled reports whether a rule runs at all.
func (r Ruleset) Enabled(id RuleID) bool {
	return !r.Disabled[id] && r.SeverityOf(id) != SeverityIgnore
}

// WithSeverity returns a copy of r with one rule's severity changed.
func (r Ruleset) WithSeverity(id RuleID, s Severity) Ruleset {
	r.Severity = maps.Clone(r.Severity)
	if r.Severity == nil {
		r.Severity = make(map[RuleID]Severity)
	}
	r.Severity[id] = s
	return r
}
