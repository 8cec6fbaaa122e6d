package render

import (
	"errors"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// ErrNoFrame is returned when the overlay has no frame to draw on.
var ErrNoFrame = errors.New("overlay has no frame")

// Overlay font sizing limits.
const (
	minFontScale = 0.6
	maxFontScale = 3.0
)

// asciiLabels maps labels the Hershey fonts cannot draw to printable text.
var asciiLabels = map[string]string{
	"🤟": "ILY",
	"🤘": "ROCK",
}

// Overlay draws annotations onto a BGR video frame: a dot at the anchor, a tick
// pointing where the fingers point, and the label on a filled background.
type Overlay struct {
	frame     *gocv.Mat
	Color     color.RGBA
	TextColor color.RGBA
}

// NewOverlay creates an Overlay drawing onto frame.
func NewOverlay(frame *gocv.Mat) *Overlay {
	return &Overlay{
		frame:     frame,
		Color:     color.RGBA{R: 0, G: 160, B: 255, A: 0},
		TextColor: color.RGBA{R: 255, G: 255, B: 255, A: 0},
	}
}

// SetFrame switches the overlay to a new frame.
func (o *Overlay) SetFrame(frame *gocv.Mat) {
	o.frame = frame
}

// Render implements Renderer.
func (o *Overlay) Render(a Annotation) error {
	if o.frame == nil || o.frame.Empty() {
		return ErrNoFrame
	}

	w, h := float64(o.frame.Cols()), float64(o.frame.Rows())
	anchor := image.Pt(int(a.Anchor.X*w), int(a.Anchor.Y*h))

	// fingertips point along (0,-1) rotated by the hand angle
	sin, cos := math.Sincos(a.Angle * math.Pi / 180)
	tickLen := a.Scale * h * 0.5
	tickEnd := image.Pt(anchor.X+int(sin*tickLen), anchor.Y-int(cos*tickLen))

	gocv.Circle(o.frame, anchor, 4, o.Color, -1)
	gocv.Line(o.frame, anchor, tickEnd, o.Color, 2)

	text := DisplayLabel(a.Label)
	fontScale := math.Max(minFontScale, math.Min(maxFontScale, a.Scale*6))
	thickness := 2
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, fontScale, thickness)

	origin := image.Pt(anchor.X-size.X/2, anchor.Y+size.Y/2)
	background := image.Rect(origin.X-4, origin.Y-size.Y-4, origin.X+size.X+4, origin.Y+6)

	gocv.Rectangle(o.frame, background, o.Color, -1) // thickness -1 == filled
	gocv.PutText(o.frame, text, origin, gocv.FontHersheySimplex, fontScale, o.TextColor, thickness)

	return nil
}

// DisplayLabel returns a printable form of label for fonts without emoji glyphs.
func DisplayLabel(label string) string {
	if s, ok := asciiLabels[label]; ok {
		return s
	}
	return label
}
