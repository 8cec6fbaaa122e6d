// Package capture reads frames for the live recognizer: a gocv camera or video
// file, a mock frame source, frame-difference motion detection and the
// idle/active rate gate driven by it.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/logger"
)

// Default capture settings.
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrEmptyFrame is returned when the device delivers no image data.
	ErrEmptyFrame = errors.New("captured frame is empty")

	// ErrEndOfStream is returned by finite sources once every frame has been read.
	ErrEndOfStream = errors.New("no more frames")
)

// Camera is a source of BGR frames.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller owns and must close it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Options selects and sizes a capture source.
type Options struct {
	// Device is the camera index, used when Path is empty.
	Device int
	// Path plays back a video file instead of a live device.
	Path   string
	Width  int
	Height int
	FPS    int
}

// source returns what gocv.OpenVideoCapture should open.
func (o Options) source() any {
	if o.Path != "" {
		return o.Path
	}
	return o.Device
}

func (o Options) String() string {
	if o.Path != "" {
		return o.Path
	}
	return fmt.Sprintf("device %d", o.Device)
}

type gocvCamera struct {
	opts    Options
	capture *gocv.VideoCapture
	mu      sync.Mutex
	fps     int
}

// NewCamera creates a Camera for the given options. Zero sizes and rates use
// the defaults.
func NewCamera(opts Options) Camera {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	return &gocvCamera{opts: opts, fps: opts.FPS}
}

func (c *gocvCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.opts.source())
	if err != nil {
		return fmt.Errorf("open %s: %w", c.opts, err)
	}

	if c.opts.Path == "" {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}
	c.capture = capture

	logger.Info("camera opened",
		zap.Stringer("source", c.opts),
		zap.Float64("width", capture.Get(gocv.VideoCaptureFrameWidth)),
		zap.Float64("height", capture.Get(gocv.VideoCaptureFrameHeight)))
	return nil
}

func (c *gocvCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	return err
}

func (c *gocvCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		if c.opts.Path != "" {
			return nil, ErrEndOfStream
		}
		return nil, fmt.Errorf("read from %s failed", c.opts)
	}

	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	return &mat, nil
}

// SetFPS changes the capture rate. Values less than or equal to 0 are ignored.
func (c *gocvCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil && c.opts.Path == "" {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *gocvCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *gocvCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
