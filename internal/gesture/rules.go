package gesture

import (
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/hand"
)

// Labels produced by the default rule table.
const (
	LabelZero    = "0"
	LabelOne     = "1"
	LabelTwo     = "2"
	LabelThree   = "3"
	LabelFour    = "4"
	LabelFive    = "5"
	LabelI       = "I"
	LabelL       = "L"
	LabelU       = "U"
	LabelY       = "Y"
	LabelB       = "B"
	LabelLoveYou = "🤟"
	LabelHorns   = "🤘"
	LabelOk      = "Ok"

	// Unrecognized is returned when no rule matches.
	Unrecognized = "?"
)

// ringPinkyTouchRatio is the looser proximity ratio the B rule uses for ring
// and pinky, which rarely press together as tightly as the other pairs.
const ringPinkyTouchRatio = 0.4

// Curls is the curl state of a hand in rule order: index, middle, ring,
// pinky, thumb. True means curled.
type Curls [5]bool

// CurlsOf reorders a per-finger curl array, indexed by hand.Finger, into rule order.
func CurlsOf(byFinger [5]bool) Curls {
	return Curls{
		byFinger[hand.Index],
		byFinger[hand.Middle],
		byFinger[hand.Ring],
		byFinger[hand.Pinky],
		byFinger[hand.Thumb],
	}
}

// String renders curls as five T/F letters, e.g. "FTTTF".
func (c Curls) String() string {
	var b strings.Builder
	for _, v := range c {
		if v {
			b.WriteByte('T')
		} else {
			b.WriteByte('F')
		}
	}
	return b.String()
}

// ParseCurls parses the five-letter T/F form produced by String.
func ParseCurls(s string) (Curls, error) {
	var c Curls
	s = strings.ToUpper(strings.ReplaceAll(s, ",", ""))
	if len(s) != len(c) {
		return c, fmt.Errorf("curl pattern %q: want %d letters", s, len(c))
	}
	for i, r := range s {
		switch r {
		case 'T':
			c[i] = true
		case 'F':
		default:
			return c, fmt.Errorf("curl pattern %q: unexpected %q", s, r)
		}
	}
	return c, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Curls) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Curls) UnmarshalText(text []byte) error {
	parsed, err := ParseCurls(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Predicate is an extra condition a rule places on the hand geometry.
type Predicate func(m *hand.Model) (bool, error)

// Rule maps curl patterns and an optional predicate to a label.
// A rule without patterns matches any curl state; its predicate decides alone.
type Rule struct {
	Label    string
	Patterns []Curls
	When     Predicate
}

func (r Rule) matches(c Curls, m *hand.Model) (bool, error) {
	if len(r.Patterns) > 0 {
		found := false
		for _, p := range r.Patterns {
			if p == c {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	if r.When == nil {
		return true, nil
	}
	return r.When(m)
}

// TipPair names two fingertips that must touch at the given ratio of hand scale.
type TipPair struct {
	A, B  hand.Finger
	Ratio float64
}

// Touching returns a predicate that holds when every pair of tips touches.
func Touching(pairs ...TipPair) Predicate {
	return func(m *hand.Model) (bool, error) {
		for _, p := range pairs {
			ok, err := m.TouchingTips(p.A, p.B, p.Ratio)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Extended returns a predicate that holds when none of the fingers is curled.
func Extended(fingers ...hand.Finger) Predicate {
	return func(m *hand.Model) (bool, error) {
		for _, f := range fingers {
			curled, err := m.IsFingerCurled(f)
			if err != nil || curled {
				return false, err
			}
		}
		return true, nil
	}
}

// All combines predicates; it holds when every one of them holds.
func All(preds ...Predicate) Predicate {
	return func(m *hand.Model) (bool, error) {
		for _, p := range preds {
			ok, err := p(m)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

func pattern(s string) Curls {
	c, err := ParseCurls(s)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultRules returns the standard rule table using DefaultTouchRatio.
func DefaultRules() []Rule {
	return RuleTable(hand.DefaultTouchRatio)
}

// RuleTable returns the standard rule table with the given touch ratio for
// fingertip proximity. Order matters: the first matching rule wins, so rows
// sharing a pattern with an earlier, predicate-free row are never reached.
func RuleTable(touchRatio float64) []Rule {
	touch := func(a, b hand.Finger) TipPair {
		return TipPair{A: a, B: b, Ratio: touchRatio}
	}

	return []Rule{
		{Label: LabelL, Patterns: []Curls{pattern("FTTTF")}},
		{Label: LabelI, Patterns: []Curls{pattern("TTTFT")}},
		{Label: LabelU, Patterns: []Curls{pattern("FFTTT")}, When: Touching(touch(hand.Index, hand.Middle))},
		{Label: LabelY, Patterns: []Curls{pattern("TTTFF")}},
		{Label: LabelB, Patterns: []Curls{pattern("FFFFT")}, When: Touching(
			touch(hand.Index, hand.Middle),
			touch(hand.Middle, hand.Ring),
			TipPair{A: hand.Ring, B: hand.Pinky, Ratio: ringPinkyTouchRatio},
		)},
		{Label: LabelLoveYou, Patterns: []Curls{pattern("FTTFF")}},
		{Label: LabelHorns, Patterns: []Curls{pattern("FTTFT")}},
		{Label: LabelOne, Patterns: []Curls{pattern("FTTTT")}},
		{Label: LabelTwo, Patterns: []Curls{pattern("FFTTT")}},
		{Label: LabelThree, Patterns: []Curls{pattern("FFFTT"), pattern("FFTTF")}},
		{Label: LabelFour, Patterns: []Curls{pattern("FFFFT")}},
		{Label: LabelFive, Patterns: []Curls{pattern("FFFFF")}},
		{Label: LabelZero, Patterns: []Curls{pattern("TTTTT")}},
		{Label: LabelOk, When: All(
			Extended(hand.Middle, hand.Ring, hand.Pinky),
			Touching(touch(hand.Thumb, hand.Index)),
		)},
	}
}
