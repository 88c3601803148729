package drc

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/copper/pkg/board"
	"github.com/matzehuels/copper/pkg/geom"
)

// Item identifies one offending object. Key is stable across runs: pads and
// components use their reference designators, routed copper its element id.
type Item struct {
	ID  board.ElementID `json:"id,omitempty"`
	Key string          `json:"key"`
}

// Violation is one failed check.
type Violation struct {
	Rule     RuleID      `json:"rule"`
	Severity Severity    `json:"severity"`
	Items    [2]Item     `json:"items"`
	At       geom.Point  `json:"at"`
	Message  string      `json:"message"`
	Actual   geom.Length `json:"actual"`
	Required geom.Length `json:"required"`
	Excluded bool        `json:"excluded,omitempty"`
}

// Fingerprint identifies the violation independent of report order and of
// which item was found first.
func (v Violation) Fingerprint() string {
	if v.Items[1].Key == "" {
		return string(v.Rule) + ":" + v.Items[0].Key
	}
	return string(v.Rule) + ":" + v.Items[0].Key + "|" + v.Items[1].Key
}

// String formats the violation for terminal output.
func (v Violation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s at %s: %s", v.Severity, v.Rule, v.At, v.Message)
	if v.Excluded {
		b.WriteString(" (excluded)")
	}
	return b.String()
}

func padItem(p board.PadInstance) Item {
	return Item{ID: p.ID, Key: "pad:" + p.Pin.String()}
}

func traceItem(id board.ElementID) Item {
	return Item{ID: id, Key: "trace:" + id.String()}
}

func viaItem(id board.ElementID) Item {
	return Item{ID: id, Key: "via:" + id.String()}
}

func zoneItem(id board.ElementID) Item {
	return Item{ID: id, Key: "zone:" + id.String()}
}

func componentItem(ref string) Item {
	return Item{Key: "component:" + ref}
}

// pair puts two items in canonical order.
func pair(a, b Item) [2]Item {
	if b.Key < a.Key {
		a, b = b, a
	}
	return [2]Item{a, b}
}

func sortViolations(vs []Violation) {
	slices.SortFunc(vs, func(a, b Violation) int {
		return cmp.Or(
			cmp.Compare(a.Rule, b.Rule),
			cmp.Compare(a.Severity.rank(), b.Severity.rank()),
			cmp.Compare(a.Fingerprint(), b.Fingerprint()),
		)
	})
}
