package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Pose describes a synthetic hand: which fingers are folded and how the whole
// hand is tilted in the image plane. Curled is indexed thumb, index, middle,
// ring, pinky.
type Pose struct {
	Handedness string
	Curled     [5]bool
	Tilt       float64 // degrees, clockwise on screen, about the wrist
}

// fingerLayout holds the knuckle position of each finger for an upright right
// hand with the palm towards the camera in a mirrored view.
var fingerLayout = [5]struct {
	base Point3D
	// extended and curled are offsets of the three upper joints from the base.
	extended [3]Point3D
	curled   [3]Point3D
}{
	{ // thumb: CMC is the base
		base:     Point3D{X: 0.44, Y: 0.75},
		extended: [3]Point3D{{X: -0.05, Y: -0.05}, {X: -0.07, Y: -0.11}, {X: -0.07, Y: -0.17}},
		curled:   [3]Point3D{{X: -0.05, Y: -0.05}, {X: -0.04, Y: -0.09, Z: -0.02}, {X: 0.00, Y: -0.05, Z: -0.03}},
	},
	{base: Point3D{X: 0.43, Y: 0.62}},
	{base: Point3D{X: 0.50, Y: 0.60}},
	{base: Point3D{X: 0.57, Y: 0.62}},
	{base: Point3D{X: 0.64, Y: 0.65}},
}

var (
	extendedFinger = [3]Point3D{{Y: -0.10}, {Y: -0.17}, {Y: -0.23}}
	curledFinger   = [3]Point3D{{Y: -0.06, Z: -0.03}, {Y: -0.02, Z: -0.05}, {Y: 0.03, Z: -0.04}}
)

// SyntheticHand builds landmarks for the given pose. The hand is upright with
// the wrist at (0.5, 0.8) and a wrist-to-middle-knuckle length of 0.2. Extended
// fingertips point straight up the hand; curled fingertips point back down.
// Left hands are the horizontal mirror image of right hands.
func SyntheticHand(p Pose) HandLandmarks {
	handedness := p.Handedness
	if handedness == "" {
		handedness = HandRight
	}

	h := HandLandmarks{Handedness: handedness, Score: 0.95}
	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	for f, layout := range fingerLayout {
		first := 1 + 4*f
		h.Points[first] = layout.base

		offsets := extendedFinger
		if f == 0 {
			offsets = layout.extended
		}
		if p.Curled[f] {
			offsets = curledFinger
			if f == 0 {
				offsets = layout.curled
			}
		}

		for j, off := range offsets {
			h.Points[first+1+j] = Point3D{
				X: layout.base.X + off.X,
				Y: layout.base.Y + off.Y,
				Z: layout.base.Z + off.Z,
			}
		}
	}

	if h.Handedness == HandLeft {
		h = h.Mirrored()
	}
	if p.Tilt != 0 {
		h = tilted(h, p.Tilt)
	}
	return h
}

// tilted rotates every landmark about the wrist by deg degrees. With y growing
// downward a positive angle turns the hand clockwise on screen.
func tilted(h HandLandmarks, deg float64) HandLandmarks {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	w := h.Points[Wrist]
	for i, p := range h.Points {
		dx, dy := p.X-w.X, p.Y-w.Y
		h.Points[i].X = w.X + dx*cos - dy*sin
		h.Points[i].Y = w.Y + dx*sin + dy*cos
	}
	return h
}

// PinchTips moves the last segment of each listed fingertip so all the tips
// meet at their common centroid. Segment directions are preserved.
func PinchTips(h *HandLandmarks, tips ...int) {
	if len(tips) == 0 {
		return
	}

	var c Point3D
	for _, t := range tips {
		c.X += h.Points[t].X
		c.Y += h.Points[t].Y
		c.Z += h.Points[t].Z
	}
	n := float64(len(tips))
	c = Point3D{X: c.X / n, Y: c.Y / n, Z: c.Z / n}

	for _, t := range tips {
		dx := c.X - h.Points[t].X
		dy := c.Y - h.Points[t].Y
		dz := c.Z - h.Points[t].Z
		for _, i := range []int{t - 1, t} {
			h.Points[i].X += dx
			h.Points[i].Y += dy
			h.Points[i].Z += dz
		}
	}
}

// FistLandmarks returns a right hand with every finger curled.
func FistLandmarks() HandLandmarks {
	return SyntheticHand(Pose{Curled: [5]bool{true, true, true, true, true}})
}

// OpenPalmLandmarks returns a right hand with every finger extended.
func OpenPalmLandmarks() HandLandmarks {
	return SyntheticHand(Pose{})
}

// PointingLandmarks returns a right hand with only the index finger extended.
func PointingLandmarks() HandLandmarks {
	return SyntheticHand(Pose{Curled: [5]bool{true, false, true, true, true}})
}
