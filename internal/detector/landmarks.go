// Package detector provides hand detection interfaces and landmark types.
package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the tracker.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// x and y are normalized to the image (y grows downward); z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ErrLandmarkCount is returned when decoded hand data does not hold exactly
// NumLandmarks points.
var ErrLandmarkCount = errors.New("hand must have exactly 21 landmarks")

// HandLandmarks represents the 21 hand landmarks detected for one hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// UnmarshalJSON decodes a hand and rejects any points list that is not
// exactly NumLandmarks long, rather than zero-filling the missing landmarks.
func (h *HandLandmarks) UnmarshalJSON(data []byte) error {
	var raw jsonHand
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Points) != NumLandmarks {
		return fmt.Errorf("%w, got %d", ErrLandmarkCount, len(raw.Points))
	}
	*h = raw.toHandLandmarks()
	return nil
}

// IsRight reports whether the handedness label names a right hand.
// The second return value is false when the label is neither left nor right.
func (h *HandLandmarks) IsRight() (isRight bool, ok bool) {
	switch {
	case strings.EqualFold(h.Handedness, HandRight):
		return true, true
	case strings.EqualFold(h.Handedness, HandLeft):
		return false, true
	default:
		return false, false
	}
}

// Validate checks that every coordinate is a finite number.
func (h *HandLandmarks) Validate() error {
	for i, p := range h.Points {
		if !p.Finite() {
			return fmt.Errorf("landmark %d has non-finite coordinate (%g, %g, %g)", i, p.X, p.Y, p.Z)
		}
	}
	return nil
}

// Mirrored returns a copy flipped horizontally in normalized image space.
// Handedness is kept; the tracker already reports it for the mirrored view.
func (h HandLandmarks) Mirrored() HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X = 1 - out.Points[i].X
	}
	return out
}

// Finite reports whether every coordinate is a real number.
func (p Point3D) Finite() bool {
	return finite(p.X) && finite(p.Y) && finite(p.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
