package capture

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoFrames is returned by a MockCamera that was given no frames.
var ErrNoFrames = errors.New("no frames available")

// MockCamera plays back a fixed frame sequence.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	fps     int
	mu      sync.Mutex
	running bool
}

// NewMockCamera creates a MockCamera. With loop set, playback restarts after
// the last frame; otherwise ReadFrame returns ErrEndOfStream.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop, fps: DefaultFPS}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// ReadFrame returns a clone of the next frame.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return nil, ErrNoFrames
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrEndOfStream
		}
		c.index = 0
	}

	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the frame sequence and rewinds.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// SyntheticFrames draws n dark frames with a bright square sweeping across
// them, enough change between neighbours to trip the motion detector. The
// caller owns the returned Mats.
func SyntheticFrames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	side := height / 4
	step := 0
	if n > 1 {
		step = (width - side) / (n - 1)
	}

	for i := range frames {
		mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(20, 20, 20, 0), height, width, gocv.MatTypeCV8UC3)
		x := i * step
		y := (height - side) / 2
		gocv.Rectangle(&mat, image.Rect(x, y, x+side, y+side), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
		frames[i] = &mat
	}
	return frames
}

// CloseFrames closes every Mat in frames.
func CloseFrames(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
