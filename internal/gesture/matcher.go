// Package gesture turns hand models into sign labels using an ordered rule
// table of finger curl patterns and fingertip proximity checks.
package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/render"
)

// Result is one classified hand.
type Result struct {
	Label       string       `json:"label"`
	Handedness  string       `json:"handedness"`
	Anchor      render.Point `json:"anchor"`
	Angle       float64      `json:"angle"`
	Scale       float64      `json:"scale"`
	PalmForward bool         `json:"palm_forward"`
	Curls       Curls        `json:"curls"`
}

// Annotation returns what a renderer needs to draw this result.
func (r Result) Annotation() render.Annotation {
	return render.Annotation{
		Label:      r.Label,
		Anchor:     r.Anchor,
		Angle:      r.Angle,
		Scale:      r.Scale,
		Handedness: r.Handedness,
	}
}

// Matcher evaluates an ordered rule table. It holds no per-frame state and is
// safe for concurrent use once built.
type Matcher struct {
	rules []Rule
}

// NewMatcher creates a Matcher over rules. A nil or empty table uses DefaultRules.
func NewMatcher(rules []Rule) *Matcher {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &Matcher{rules: r}
}

// Rules returns a copy of the rule table in evaluation order.
func (mt *Matcher) Rules() []Rule {
	r := make([]Rule, len(mt.rules))
	copy(r, mt.rules)
	return r
}

// Labels returns every label the table can produce, in rule order without
// repeats, followed by Unrecognized.
func (mt *Matcher) Labels() []string {
	seen := make(map[string]bool, len(mt.rules))
	labels := make([]string, 0, len(mt.rules)+1)
	for _, r := range mt.rules {
		if !seen[r.Label] {
			seen[r.Label] = true
			labels = append(labels, r.Label)
		}
	}
	if !seen[Unrecognized] {
		labels = append(labels, Unrecognized)
	}
	return labels
}

// Knows reports whether label is one of Labels.
func (mt *Matcher) Knows(label string) bool {
	for _, l := range mt.Labels() {
		if l == label {
			return true
		}
	}
	return false
}

// Match returns the label of the first rule whose pattern equals curls and
// whose predicate holds for m, or Unrecognized. When m is nil, rules with a
// predicate never match.
func (mt *Matcher) Match(curls Curls, m *hand.Model) (string, error) {
	for _, r := range mt.rules {
		if r.When != nil && m == nil {
			continue
		}
		ok, err := r.matches(curls, m)
		if err != nil {
			return Unrecognized, fmt.Errorf("rule %s: %w", r.Label, err)
		}
		if ok {
			return r.Label, nil
		}
	}
	return Unrecognized, nil
}

// Classify computes the curl state of m and matches it.
func (mt *Matcher) Classify(m *hand.Model) (Result, error) {
	byFinger, err := m.Curled()
	if err != nil {
		return Result{}, err
	}
	curls := CurlsOf(byFinger)

	label, err := mt.Match(curls, m)
	if err != nil {
		return Result{}, err
	}

	handedness := detector.HandLeft
	if m.IsRightHand() {
		handedness = detector.HandRight
	}

	anchor := m.Anchor()
	return Result{
		Label:       label,
		Handedness:  handedness,
		Anchor:      render.Point{X: anchor.X(), Y: anchor.Y()},
		Angle:       m.Angle(),
		Scale:       m.Scale().Len(),
		PalmForward: m.PalmForward(),
		Curls:       curls,
	}, nil
}
