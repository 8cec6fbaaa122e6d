// Package hand builds a geometric model of one tracked hand: finger directions,
// orientation, palm facing, scale and a label anchor. A Model is built per hand
// per frame and is immutable once constructed.
package hand

import (
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/vector"
)

var (
	// ErrInvalidLandmark is returned when a landmark coordinate is NaN or infinite.
	ErrInvalidLandmark = errors.New("invalid landmark")

	// ErrUnknownHandedness is returned when a handedness label is neither left nor right.
	ErrUnknownHandedness = errors.New("unknown handedness")
)

// DefaultTouchRatio is the fraction of the hand scale under which two fingertips touch.
const DefaultTouchRatio = 0.3

// up is the reference direction. Landmark y grows downward, so (0,1) points from
// the fingertips of an upright hand towards its wrist.
var up = vector.New2(0, 1)

// Config holds the fixed thresholds used by curl classification.
type Config struct {
	// CurlWindow is the angle in degrees beyond which a fingertip counts as curled.
	CurlWindow float64 `yaml:"curl_window" mapstructure:"curl_window"`

	// ThumbRotation is the extra rotation in degrees applied to the thumb's reference direction.
	ThumbRotation float64 `yaml:"thumb_rotation" mapstructure:"thumb_rotation"`

	// ThumbWindowOffset widens (or narrows) the curl window for the thumb only.
	ThumbWindowOffset float64 `yaml:"thumb_window_offset" mapstructure:"thumb_window_offset"`

	// InvertThumbRotation swaps which handedness/palm combination rotates the
	// thumb reference clockwise.
	InvertThumbRotation bool `yaml:"invert_thumb_rotation" mapstructure:"invert_thumb_rotation"`
}

// DefaultConfig returns the standard thresholds: a 45° curl window and a 30° thumb rotation.
func DefaultConfig() Config {
	return Config{
		CurlWindow:    45,
		ThumbRotation: 30,
	}
}

// Model is the derived geometry of one hand in one frame.
type Model struct {
	cfg         Config
	points      [detector.NumLandmarks]vector.Vector
	right       bool
	directions  [numFingers][3]vector.Vector
	palmForward bool
	angle       float64
	scale       vector.Vector
	anchor      vector.Vector
}

// FromLandmarks builds a Model from tracker output, resolving the handedness label.
func FromLandmarks(h detector.HandLandmarks, cfg Config) (*Model, error) {
	isRight, ok := h.IsRight()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandedness, h.Handedness)
	}
	return New(h.Points, isRight, cfg)
}

// New builds a Model from 21 landmark points.
//
// Each finger gets three unit vectors, one per joint pair, pointing from the
// outer joint back towards the palm. The orientation angle is the rotation that
// takes the reference direction onto the wrist−middle-knuckle direction.
func New(points [detector.NumLandmarks]detector.Point3D, isRightHand bool, cfg Config) (*Model, error) {
	m := &Model{cfg: cfg, right: isRightHand}

	for i, p := range points {
		if !p.Finite() {
			return nil, fmt.Errorf("%w: point %d: (%g, %g, %g)", ErrInvalidLandmark, i, p.X, p.Y, p.Z)
		}
		m.points[i] = vector.FromPoint(p)
	}

	for _, f := range Fingers {
		joints := fingerJoints[f]
		for i := 1; i < len(joints); i++ {
			seg, err := m.points[joints[i-1]].Sub(m.points[joints[i]])
			if err != nil {
				return nil, err
			}
			dir, err := seg.Normalize()
			if err != nil {
				return nil, fmt.Errorf("%s segment %d-%d: %w", f, joints[i-1], joints[i], err)
			}
			m.directions[f][i-1] = dir
		}
	}

	thumbBase := m.points[detector.ThumbCMC].X()
	pinkyBase := m.points[detector.PinkyMCP].X()
	if isRightHand {
		m.palmForward = thumbBase < pinkyBase
	} else {
		m.palmForward = thumbBase > pinkyBase
	}

	wrist := m.points[detector.Wrist]
	middleBase := m.points[detector.MiddleMCP]

	scale, err := wrist.Sub(middleBase)
	if err != nil {
		return nil, err
	}
	m.scale = scale

	angle, err := scale.XY().AngleTo(up)
	if err != nil {
		return nil, fmt.Errorf("hand orientation: %w", err)
	}
	if middleBase.X() > wrist.X() {
		angle = -angle
	}
	m.angle = -angle

	ringBase := m.points[detector.RingMCP]
	m.anchor = vector.New2(
		(wrist.X()+middleBase.X()+ringBase.X())/3,
		(wrist.Y()+middleBase.Y()+ringBase.Y())/3,
	)

	return m, nil
}

// IsRightHand reports the handedness the model was built with.
func (m *Model) IsRightHand() bool { return m.right }

// PalmForward reports whether the palm faces the viewer.
func (m *Model) PalmForward() bool { return m.palmForward }

// Angle returns the hand orientation in degrees.
func (m *Model) Angle() float64 { return m.angle }

// Scale returns the wrist−middle-knuckle vector. Its length tracks hand size.
func (m *Model) Scale() vector.Vector { return m.scale }

// Anchor returns the 2D label placement point.
func (m *Model) Anchor() vector.Vector { return m.anchor }

// Config returns the thresholds the model classifies with.
func (m *Model) Config() Config { return m.cfg }

// Point returns landmark i as a 3D vector.
func (m *Model) Point(i int) (vector.Vector, error) {
	if i < 0 || i >= detector.NumLandmarks {
		return vector.Vector{}, fmt.Errorf("landmark index %d out of range", i)
	}
	return m.points[i], nil
}

// Directions returns the finger's three unit segment vectors, base segment first.
func (m *Model) Directions(f Finger) ([3]vector.Vector, error) {
	if !f.Valid() {
		return [3]vector.Vector{}, fmt.Errorf("%w: %d", ErrUnknownFinger, int(f))
	}
	return m.directions[f], nil
}

// ThumbRotation returns the signed extra rotation applied to the thumb's
// reference direction. It is positive when exactly one of right hand and palm
// forward holds.
func (m *Model) ThumbRotation() float64 {
	rot := m.cfg.ThumbRotation
	if m.right == m.palmForward {
		rot = -rot
	}
	if m.cfg.InvertThumbRotation {
		rot = -rot
	}
	return rot
}

// reference returns the direction an extended finger's tip segment points in,
// and the curl window for that finger.
func (m *Model) reference(f Finger) (vector.Vector, float64, error) {
	ref, err := up.Rotate(m.angle)
	if err != nil {
		return vector.Vector{}, 0, err
	}
	window := m.cfg.CurlWindow

	if f == Thumb {
		ref, err = ref.Rotate(m.ThumbRotation())
		if err != nil {
			return vector.Vector{}, 0, err
		}
		window += m.cfg.ThumbWindowOffset
	}
	return ref, window, nil
}

// TipAngle returns the angle in degrees between the finger's tip segment,
// projected onto the image plane, and its reference direction.
func (m *Model) TipAngle(f Finger) (float64, error) {
	if !f.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownFinger, int(f))
	}

	tip, err := m.directions[f][2].XY().Normalize()
	if err != nil {
		return 0, fmt.Errorf("%s tip points along the camera axis: %w", f, err)
	}

	ref, _, err := m.reference(f)
	if err != nil {
		return 0, err
	}
	return tip.AngleTo(ref)
}

// IsFingerCurled reports whether the finger is folded towards the palm.
func (m *Model) IsFingerCurled(f Finger) (bool, error) {
	angle, err := m.TipAngle(f)
	if err != nil {
		return false, err
	}
	_, window, err := m.reference(f)
	if err != nil {
		return false, err
	}
	return angle > window, nil
}

// Curled classifies every finger, indexed by Finger.
func (m *Model) Curled() ([numFingers]bool, error) {
	var out [numFingers]bool
	for _, f := range Fingers {
		c, err := m.IsFingerCurled(f)
		if err != nil {
			return out, err
		}
		out[f] = c
	}
	return out, nil
}

// TouchingTips reports whether two fingertips are closer than ratio times the
// hand scale length. The comparison uses raw 3D landmark positions.
func (m *Model) TouchingTips(a, b Finger, ratio float64) (bool, error) {
	ta, err := a.Tip()
	if err != nil {
		return false, err
	}
	tb, err := b.Tip()
	if err != nil {
		return false, err
	}

	d, err := m.points[ta].Distance(m.points[tb])
	if err != nil {
		return false, err
	}
	return d < ratio*m.scale.Len(), nil
}
