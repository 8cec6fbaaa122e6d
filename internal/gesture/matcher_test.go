package gesture

import (
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/hand"
)

// pose curls are ordered thumb, index, middle, ring, pinky
var (
	T = true
	F = false
)

type signCase struct {
	name  string
	curls [5]bool
	pinch []int
	want  string
}

var signCases = []signCase{
	{"L", [5]bool{F, F, T, T, T}, nil, LabelL},
	{"I", [5]bool{T, T, T, T, F}, nil, LabelI},
	{"U", [5]bool{T, F, F, T, T}, []int{detector.IndexTip, detector.MiddleTip}, LabelU},
	{"Y", [5]bool{F, T, T, T, F}, nil, LabelY},
	{"B", [5]bool{T, F, F, F, F}, []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}, LabelB},
	{"love you", [5]bool{F, F, T, T, F}, nil, LabelLoveYou},
	{"horns", [5]bool{T, F, T, T, F}, nil, LabelHorns},
	{"one", [5]bool{T, F, T, T, T}, nil, LabelOne},
	{"two", [5]bool{T, F, F, T, T}, nil, LabelTwo},
	{"three with pinky", [5]bool{T, F, F, F, T}, nil, LabelThree},
	{"three with thumb", [5]bool{F, F, F, T, T}, nil, LabelThree},
	{"four", [5]bool{T, F, F, F, F}, nil, LabelFour},
	{"five", [5]bool{F, F, F, F, F}, nil, LabelFive},
	{"zero", [5]bool{T, T, T, T, T}, nil, LabelZero},
	{"ok", [5]bool{T, T, F, F, F}, []int{detector.ThumbTip, detector.IndexTip}, LabelOk},
	{"unrecognized", [5]bool{T, T, F, T, T}, nil, Unrecognized},
}

func buildHand(t *testing.T, pose detector.Pose, pinch []int) *hand.Model {
	t.Helper()
	h := detector.SyntheticHand(pose)
	detector.PinchTips(&h, pinch...)

	m, err := hand.FromLandmarks(h, hand.DefaultConfig())
	if err != nil {
		t.Fatalf("FromLandmarks: %v", err)
	}
	return m
}

func TestMatcher_Classify(t *testing.T) {
	matcher := NewMatcher(nil)

	variants := []struct {
		name       string
		handedness string
		tilt       float64
	}{
		{"right", detector.HandRight, 0},
		{"left", detector.HandLeft, 0},
		{"right tilted", detector.HandRight, 20},
		{"left tilted", detector.HandLeft, -20},
	}

	for _, tt := range signCases {
		for _, v := range variants {
			t.Run(tt.name+"/"+v.name, func(t *testing.T) {
				m := buildHand(t, detector.Pose{Handedness: v.handedness, Curled: tt.curls, Tilt: v.tilt}, tt.pinch)

				res, err := matcher.Classify(m)
				if err != nil {
					t.Fatalf("Classify: %v", err)
				}
				if res.Label != tt.want {
					t.Errorf("expected %q, got %q (curls %s)", tt.want, res.Label, res.Curls)
				}
				if res.Handedness != v.handedness {
					t.Errorf("expected handedness %q, got %q", v.handedness, res.Handedness)
				}
			})
		}
	}
}

func TestMatcher_Classify_ResultGeometry(t *testing.T) {
	m := buildHand(t, detector.Pose{Tilt: 15}, nil)

	res, err := NewMatcher(nil).Classify(m)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if res.Angle != m.Angle() {
		t.Errorf("expected angle %f, got %f", m.Angle(), res.Angle)
	}
	if res.Anchor.X != m.Anchor().X() || res.Anchor.Y != m.Anchor().Y() {
		t.Errorf("anchor mismatch: %+v vs %v", res.Anchor, m.Anchor())
	}
	if res.Scale != m.Scale().Len() {
		t.Errorf("expected scale %f, got %f", m.Scale().Len(), res.Scale)
	}
	if !res.PalmForward {
		t.Error("expected palm forward")
	}

	a := res.Annotation()
	if a.Label != res.Label || a.Angle != res.Angle || a.Anchor != res.Anchor {
		t.Errorf("annotation does not mirror result: %+v", a)
	}
}

func TestMatcher_Match(t *testing.T) {
	matcher := NewMatcher(nil)

	t.Run("predicate-free rows match without a model", func(t *testing.T) {
		tests := map[string]string{
			"FTTTT": LabelOne,
			"TTTTT": LabelZero,
			"FFFFF": LabelFive,
			"FTTTF": LabelL,
		}
		for p, want := range tests {
			label, err := matcher.Match(pattern(p), nil)
			if err != nil {
				t.Fatalf("Match(%s): %v", p, err)
			}
			if label != want {
				t.Errorf("Match(%s) = %q, want %q", p, label, want)
			}
		}
	})

	t.Run("predicate rows are skipped without a model", func(t *testing.T) {
		label, _ := matcher.Match(pattern("FFTTT"), nil)
		if label != LabelTwo {
			t.Errorf("expected %q, got %q", LabelTwo, label)
		}
		label, _ = matcher.Match(pattern("TFFFT"), nil)
		if label != Unrecognized {
			t.Errorf("expected %q, got %q", Unrecognized, label)
		}
	})

	t.Run("earlier rule wins", func(t *testing.T) {
		rules := []Rule{
			{Label: "first", Patterns: []Curls{pattern("FFFFF")}},
			{Label: "second", Patterns: []Curls{pattern("FFFFF")}},
		}
		label, _ := NewMatcher(rules).Match(pattern("FFFFF"), nil)
		if label != "first" {
			t.Errorf("expected first, got %q", label)
		}
	})

	t.Run("predicate errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		rules := []Rule{{Label: "x", When: func(*hand.Model) (bool, error) { return false, boom }}}
		m := buildHand(t, detector.Pose{}, nil)

		label, err := NewMatcher(rules).Match(pattern("FFFFF"), m)
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if label != Unrecognized {
			t.Errorf("expected %q on error, got %q", Unrecognized, label)
		}
	})
}

func TestDefaultRules_Order(t *testing.T) {
	want := []string{
		LabelL, LabelI, LabelU, LabelY, LabelB, LabelLoveYou, LabelHorns,
		LabelOne, LabelTwo, LabelThree, LabelFour, LabelFive, LabelZero, LabelOk,
	}

	rules := NewMatcher(nil).Rules()
	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, r := range rules {
		if r.Label != want[i] {
			t.Errorf("rule %d: expected %q, got %q", i, want[i], r.Label)
		}
	}
}

func TestRuleTable_TouchRatio(t *testing.T) {
	// spread index and middle tips sit 0.0728 apart on a 0.2 hand
	m := buildHand(t, detector.Pose{Curled: [5]bool{T, F, F, T, T}}, nil)

	label, err := NewMatcher(RuleTable(0.4)).Match(pattern("FFTTT"), m)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if label != LabelU {
		t.Errorf("expected %q with a wide touch ratio, got %q", LabelU, label)
	}
}

func TestCurls(t *testing.T) {
	t.Run("CurlsOf reorders to index first", func(t *testing.T) {
		byFinger := [5]bool{T, F, F, F, F} // thumb curled
		if got := CurlsOf(byFinger); got != pattern("FFFFT") {
			t.Errorf("expected FFFFT, got %s", got)
		}
	})

	t.Run("parse and format", func(t *testing.T) {
		c, err := ParseCurls("f,t,t,t,f")
		if err != nil {
			t.Fatalf("ParseCurls: %v", err)
		}
		if c.String() != "FTTTF" {
			t.Errorf("expected FTTTF, got %s", c)
		}
	})

	t.Run("rejects bad patterns", func(t *testing.T) {
		for _, s := range []string{"", "FTT", "FTTTX", "FTTTFF"} {
			if _, err := ParseCurls(s); err == nil {
				t.Errorf("expected error for %q", s)
			}
		}
	})

	t.Run("text round trip", func(t *testing.T) {
		want := pattern("TFTFT")
		text, _ := want.MarshalText()
		var got Curls
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText: %v", err)
		}
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}

func TestMatcher_Labels(t *testing.T) {
	labels := NewMatcher(nil).Labels()

	want := []string{
		LabelL, LabelI, LabelU, LabelY, LabelB, LabelLoveYou, LabelHorns,
		LabelOne, LabelTwo, LabelThree, LabelFour, LabelFive, LabelZero, LabelOk,
		Unrecognized,
	}
	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %d: %v", len(want), len(labels), labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d: expected %q, got %q", i, want[i], labels[i])
		}
	}

	m := NewMatcher(nil)
	if !m.Knows(LabelOk) || !m.Knows(Unrecognized) || m.Knows("Z") {
		t.Error("unexpected Knows result")
	}
}
