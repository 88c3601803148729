package drc

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Exclusion suppresses one violation by fingerprint. The note, author and
// time are kept for audit.
type Exclusion struct {
	Fingerprint string    `json:"fingerprint" toml:"fingerprint" bson:"fingerprint"`
	Rule        RuleID    `json:"rule" toml:"rule" bson:"rule"`
	Note        string    `json:"note,omitempty" toml:"note,omitempty" bson:"note,omitempty"`
	Author      string    `json:"author,omitempty" toml:"author,omitempty" bson:"author,omitempty"`
	Created     time.Time `json:"created,omitzero" toml:"created,omitempty" bson:"created"`
}

// Exclusions is a set of exclusions keyed by fingerprint. The zero value is
// empty and ready to use. It is safe for concurrent use.
type Exclusions struct {
	mu    sync.RWMutex
	items map[string]Exclusion
}

// NewExclusions returns a set holding list.
func NewExclusions(list ...Exclusion) *Exclusions {
	e := &Exclusions{}
	for _, x := range list {
		e.Put(x)
	}
	return e
}

// Put adds or replaces an exclusion.
func (e *Exclusions) Put(x Exclusion) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.items == nil {
		e.items = make(map[string]Exclusion)
	}
	e.items[x.Fingerprint] = x
}

// Exclude records an exclusion for v.
func (e *Exclusions) Exclude(v Violation, note, author string) Exclusion {
	x := Exclusion{
		Fingerprint: v.Fingerprint(),
		Rule:        v.Rule,
		Note:        note,
		Author:      author,
		Created:     time.Now().UTC(),
	}
	e.Put(x)
	return x
}

// Remove drops the exclusion for fingerprint and reports whether it existed.
func (e *Exclusions) Remove(fingerprint string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.items[fingerprint]
	delete(e.items, fingerprint)
	return ok
}

// Has reports whether fingerprint is excluded.
func (e *Exclusions) Has(fingerprint string) bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.items[fingerprint]
	return ok
}

// Len returns the number of exclusions.
func (e *Exclusions) Len() int {
	if e == nil {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.items)
}

// List returns the exclusions sorted by fingerprint.
func (e *Exclusions) List() []Exclusion {
	if e == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Exclusion, 0, len(e.items))
	for _, k := range slices.Sorted(maps.Keys(e.items)) {
		out = append(out, e.items[k])
	}
	return out
}

// Apply marks the report's violations that match an exclusion. Matching
// depends only on fingerprints, never on report position. Unmatched
// exclusions are kept; they may apply again after a later edit.
func (e *Exclusions) Apply(r *Report) {
	for i := range r.Violations {
		r.Violations[i].Excluded = e.Has(r.Violations[i].Fingerprint())
	}
	r.recount()
}

// Stale returns the exclusions that match nothing in r.
func (e *Exclusions) Stale(r *Report) []Exclusion {
	live := make(map[string]bool, len(r.Violations))
	for _, v := range r.Violations {
		live[v.Fingerprint()] = true
	}
	var out []Exclusion
	for _, x := range e.List() {
		if !live[x.Fingerprint] {
			out = append(out, x)
		}
	}
	return out
}
