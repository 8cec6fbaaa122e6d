package capture

import "time"

// Gate switches between an idle and an active frame rate. Motion makes it
// active at once; it drops back to idle after IdleTimeout without motion.
type Gate struct {
	IdleFPS     int
	ActiveFPS   int
	IdleTimeout time.Duration

	active     bool
	lastMotion time.Time
}

// NewGate creates a Gate in idle mode.
func NewGate(idleFPS, activeFPS int, idleTimeout time.Duration) *Gate {
	return &Gate{IdleFPS: idleFPS, ActiveFPS: activeFPS, IdleTimeout: idleTimeout}
}

// Observe records one motion reading taken at now and reports whether the
// mode changed.
func (g *Gate) Observe(moved bool, now time.Time) bool {
	if moved {
		g.lastMotion = now
		if !g.active {
			g.active = true
			return true
		}
		return false
	}

	if g.active && now.Sub(g.lastMotion) > g.IdleTimeout {
		g.active = false
		return true
	}
	return false
}

// Active reports whether the gate is in active mode.
func (g *Gate) Active() bool { return g.active }

// FPS returns the frame rate for the current mode.
func (g *Gate) FPS() int {
	if g.active {
		return g.ActiveFPS
	}
	return g.IdleFPS
}

// Interval returns the time between frames for the current mode.
func (g *Gate) Interval() time.Duration {
	fps := g.FPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}
