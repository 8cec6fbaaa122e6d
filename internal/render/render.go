// Package render defines the drawing capability recognized hands are handed to.
package render

import (
	"errors"
	"sync"
)

// Point is a 2D position in normalized image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Annotation is everything needed to label one hand on screen.
type Annotation struct {
	Label      string  `json:"label"`
	Anchor     Point   `json:"anchor"`
	Angle      float64 `json:"angle"` // degrees
	Scale      float64 `json:"scale"` // wrist to middle knuckle length
	Handedness string  `json:"handedness,omitempty"`
}

// Renderer draws annotations onto some surface.
type Renderer interface {
	Render(a Annotation) error
}

// Func adapts an ordinary function to the Renderer interface.
type Func func(a Annotation) error

// Render calls f(a).
func (f Func) Render(a Annotation) error {
	return f(a)
}

// Multi fans every annotation out to each renderer in order.
// All renderers are called even if one fails.
type Multi []Renderer

// Render implements Renderer.
func (m Multi) Render(a Annotation) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Render(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every annotation it is given.
type Recorder struct {
	mu          sync.Mutex
	annotations []Annotation
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Render implements Renderer.
func (r *Recorder) Render(a Annotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.annotations = append(r.annotations, a)
	return nil
}

// Annotations returns a copy of everything recorded so far.
func (r *Recorder) Annotations() []Annotation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Annotation, len(r.annotations))
	copy(out, r.annotations)
	return out
}

// Reset drops all recorded annotations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.annotations = nil
}
