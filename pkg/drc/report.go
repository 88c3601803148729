package drc

import (
	"encoding/json"
	"io"
	"slices"
	"time"
)

// Report is the result of one DRC run. It is fully determined by the board,
// netlist, ruleset and exclusions it was computed from.
type Report struct {
	Board      string           `json:"board"`
	Rules      []RuleID         `json:"rules"`
	Violations []Violation      `json:"violations"`
	Counts     map[Severity]int `json:"counts"`
	Excluded   int              `json:"excluded"`
	Duration   time.Duration    `json:"-"`
}

// Active returns the violations that are not excluded.
func (r *Report) Active() []Violation {
	out := make([]Violation, 0, len(r.Violations))
	for _, v := range r.Violations {
		if !v.Excluded {
			out = append(out, v)
		}
	}
	return out
}

// Find returns the violation with the given fingerprint.
func (r *Report) Find(fingerprint string) (Violation, bool) {
	i := slices.IndexFunc(r.Violations, func(v Violation) bool { return v.Fingerprint() == fingerprint })
	if i < 0 {
		return Violation{}, false
	}
	return r.Violations[i], true
}

// Errors returns the number of active violations at error severity.
func (r *Report) Errors() int { return r.Counts[SeverityError] }

// Passed reports whether no active error remains.
func (r *Report) Passed() bool { return r.Errors() == 0 }

// recount refreshes Counts and Excluded from the violation flags.
func (r *Report) recount() {
	r.Counts = map[Severity]int{SeverityError: 0, SeverityWarning: 0}
	r.Excluded = 0
	for _, v := range r.Violations {
		if v.Excluded {
			r.Excluded++
			continue
		}
		r.Counts[v.Severity]++
	}
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ReadReport decodes a report written by WriteJSON.
func ReadReport(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
