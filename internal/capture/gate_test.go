package capture

import (
	"testing"
	"time"
)

func TestGate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewGate(5, 15, 2*time.Second)

	if g.Active() || g.FPS() != 5 {
		t.Fatalf("gate should start idle at 5 fps")
	}
	if g.Interval() != 200*time.Millisecond {
		t.Errorf("idle interval = %s", g.Interval())
	}

	steps := []struct {
		name        string
		moved       bool
		at          time.Duration
		wantChanged bool
		wantActive  bool
	}{
		{"still while idle", false, 0, false, false},
		{"motion activates", true, 100 * time.Millisecond, true, true},
		{"more motion keeps active", true, 500 * time.Millisecond, false, true},
		{"quiet within timeout", false, 2 * time.Second, false, true},
		{"quiet past timeout", false, 2600 * time.Millisecond, true, false},
		{"still idle", false, 5 * time.Second, false, false},
	}

	for _, s := range steps {
		changed := g.Observe(s.moved, start.Add(s.at))
		if changed != s.wantChanged || g.Active() != s.wantActive {
			t.Errorf("%s: changed=%v active=%v, want %v %v", s.name, changed, g.Active(), s.wantChanged, s.wantActive)
		}
	}
}

func TestGate_ActiveInterval(t *testing.T) {
	g := NewGate(5, 20, time.Second)
	g.Observe(true, time.Now())

	if g.FPS() != 20 || g.Interval() != 50*time.Millisecond {
		t.Errorf("active gate: fps=%d interval=%s", g.FPS(), g.Interval())
	}
}

func TestGate_ZeroFPSFallsBack(t *testing.T) {
	g := NewGate(0, 0, time.Second)
	if g.Interval() != time.Second/DefaultFPS {
		t.Errorf("interval = %s", g.Interval())
	}
}
