package hand

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// ErrUnknownFinger is returned for finger values or names outside the five fingers.
var ErrUnknownFinger = errors.New("unknown finger")

// Finger identifies one of the five fingers.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	numFingers
)

// Fingers lists every finger in landmark order.
var Fingers = [numFingers]Finger{Thumb, Index, Middle, Ring, Pinky}

// fingerJoints maps each finger to its four landmarks, base to tip.
var fingerJoints = [numFingers][4]int{
	Thumb:  {detector.ThumbCMC, detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip},
	Index:  {detector.IndexMCP, detector.IndexPIP, detector.IndexDIP, detector.IndexTip},
	Middle: {detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip},
	Ring:   {detector.RingMCP, detector.RingPIP, detector.RingDIP, detector.RingTip},
	Pinky:  {detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip},
}

var fingerNames = [numFingers]string{"thumb", "index", "middle", "ring", "pinky"}

// Valid reports whether f is one of the five fingers.
func (f Finger) Valid() bool {
	return f >= Thumb && f < numFingers
}

// String returns the lowercase finger name.
func (f Finger) String() string {
	if !f.Valid() {
		return fmt.Sprintf("finger(%d)", int(f))
	}
	return fingerNames[f]
}

// Joints returns the finger's landmark indices, base to tip.
func (f Finger) Joints() ([4]int, error) {
	if !f.Valid() {
		return [4]int{}, fmt.Errorf("%w: %d", ErrUnknownFinger, int(f))
	}
	return fingerJoints[f], nil
}

// Tip returns the landmark index of the fingertip.
func (f Finger) Tip() (int, error) {
	j, err := f.Joints()
	if err != nil {
		return 0, err
	}
	return j[3], nil
}

// ParseFinger converts a finger name such as "index" into a Finger.
func ParseFinger(name string) (Finger, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, fn := range fingerNames {
		if fn == n {
			return Finger(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFinger, name)
}
