// Package vector provides fixed-size 2D and 3D vectors for hand geometry.
package vector

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/mudra/internal/detector"
)

var (
	// ErrDimensionMismatch is returned when an operation combines vectors of different sizes,
	// or when a 2D-only operation receives a 3D vector.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInsufficientDimensions is returned when an axis beyond the vector size is requested.
	ErrInsufficientDimensions = errors.New("vector has insufficient dimensions")

	// ErrDegenerateVector is returned when a zero-length vector is normalized or used in an angle.
	ErrDegenerateVector = errors.New("degenerate zero-length vector")
)

// Axis identifies a vector component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Vector is an immutable 2D or 3D vector. Operations return new values.
type Vector struct {
	c [3]float64
	n int
}

// New2 creates a 2D vector.
func New2(x, y float64) Vector {
	return Vector{c: [3]float64{x, y, 0}, n: 2}
}

// New3 creates a 3D vector.
func New3(x, y, z float64) Vector {
	return Vector{c: [3]float64{x, y, z}, n: 3}
}

// FromPoint converts a landmark point into a 3D vector.
func FromPoint(p detector.Point3D) Vector {
	return New3(p.X, p.Y, p.Z)
}

// Dimensions returns the number of components.
func (v Vector) Dimensions() int {
	return v.n
}

// Components returns a copy of the components.
func (v Vector) Components() []float64 {
	out := make([]float64, v.n)
	copy(out, v.c[:v.n])
	return out
}

// At returns the component on the given axis.
func (v Vector) At(axis Axis) (float64, error) {
	if axis < AxisX || int(axis) >= v.n {
		return 0, fmt.Errorf("%w: %s on %dD vector", ErrInsufficientDimensions, axis, v.n)
	}
	return v.c[axis], nil
}

// X returns the first component. Every vector has at least two.
func (v Vector) X() float64 { return v.c[0] }

// Y returns the second component.
func (v Vector) Y() float64 { return v.c[1] }

// XY projects the vector onto the xy plane, dropping z.
func (v Vector) XY() Vector {
	return New2(v.c[0], v.c[1])
}

func (v Vector) slice() []float64 {
	return v.c[:v.n]
}

func (v Vector) sameSize(o Vector, op string) error {
	if v.n != o.n {
		return fmt.Errorf("%w: %s of %dD and %dD vectors", ErrDimensionMismatch, op, v.n, o.n)
	}
	return nil
}

// Add returns v + o.
func (v Vector) Add(o Vector) (Vector, error) {
	if err := v.sameSize(o, "add"); err != nil {
		return Vector{}, err
	}
	out := Vector{n: v.n}
	floats.AddTo(out.c[:v.n], v.slice(), o.slice())
	return out, nil
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) (Vector, error) {
	if err := v.sameSize(o, "subtract"); err != nil {
		return Vector{}, err
	}
	out := Vector{n: v.n}
	floats.SubTo(out.c[:v.n], v.slice(), o.slice())
	return out, nil
}

// Scale returns v multiplied by k.
func (v Vector) Scale(k float64) Vector {
	out := Vector{n: v.n}
	floats.ScaleTo(out.c[:v.n], k, v.slice())
	return out
}

// Len returns the Euclidean norm.
func (v Vector) Len() float64 {
	return floats.Norm(v.slice(), 2)
}

// Normalize returns the unit vector pointing the same way as v.
func (v Vector) Normalize() (Vector, error) {
	l := v.Len()
	if l == 0 {
		return Vector{}, ErrDegenerateVector
	}
	return v.Scale(1 / l), nil
}

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) (float64, error) {
	if err := v.sameSize(o, "dot product"); err != nil {
		return 0, err
	}
	return floats.Dot(v.slice(), o.slice()), nil
}

// Distance returns the Euclidean distance between v and o.
func (v Vector) Distance(o Vector) (float64, error) {
	d, err := v.Sub(o)
	if err != nil {
		return 0, err
	}
	return d.Len(), nil
}

// Rotate rotates a 2D vector counterclockwise by the given angle in degrees
// using the standard rotation matrix.
func (v Vector) Rotate(degrees float64) (Vector, error) {
	if v.n != 2 {
		return Vector{}, fmt.Errorf("%w: rotate needs a 2D vector, got %dD", ErrDimensionMismatch, v.n)
	}
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	x, y := v.c[0], v.c[1]
	return New2(x*cos-y*sin, x*sin+y*cos), nil
}

// AngleTo returns the angle between v and o in degrees, within [0, 180].
// It uses atan2 of the cross and dot products, which stays exact for
// parallel and antiparallel vectors where acos of the cosine drifts.
func (v Vector) AngleTo(o Vector) (float64, error) {
	dot, err := v.Dot(o)
	if err != nil {
		return 0, err
	}
	if v.Len() == 0 || o.Len() == 0 {
		return 0, ErrDegenerateVector
	}
	a, b := v.c, o.c
	cross := []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
	return math.Atan2(floats.Norm(cross, 2), dot) * 180 / math.Pi, nil
}

// String formats the vector as a tuple.
func (v Vector) String() string {
	if v.n == 2 {
		return fmt.Sprintf("(%g, %g)", v.c[0], v.c[1])
	}
	return fmt.Sprintf("(%g, %g, %g)", v.c[0], v.c[1], v.c[2])
}
