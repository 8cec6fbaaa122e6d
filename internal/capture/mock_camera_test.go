package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	frames := SyntheticFrames(2, 64, 48)
	defer CloseFrames(frames)

	cam := NewMockCamera(frames, false)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen before Open, got %v", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		if f.Cols() != 64 || f.Rows() != 48 {
			t.Errorf("unexpected frame size %dx%d", f.Cols(), f.Rows())
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream after all frames consumed, got %v", err)
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frames := SyntheticFrames(1, 64, 48)
	defer CloseFrames(frames)

	cam := NewMockCamera(frames, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_NoFrames(t *testing.T) {
	cam := NewMockCamera(nil, true)
	cam.Open()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}

	frames := SyntheticFrames(1, 32, 32)
	defer CloseFrames(frames)
	cam.SetFrames(frames)

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after SetFrames error = %v", err)
	}
	f.Close()
}

func TestMockCamera_FrameIsCloned(t *testing.T) {
	frames := SyntheticFrames(1, 32, 32)
	defer CloseFrames(frames)

	cam := NewMockCamera(frames, true)
	cam.Open()

	f, _ := cam.ReadFrame()
	f.SetTo(gocv.NewScalar(0, 0, 0, 0))
	f.Close()

	if gocv.CountNonZero(grayOf(t, frames[0])) == 0 {
		t.Error("clearing a read frame must not touch the source frame")
	}
}

func TestMockCamera_SetFPS(t *testing.T) {
	cam := NewMockCamera(nil, false)
	cam.SetFPS(15)
	cam.SetFPS(0)
	if cam.FPS() != 15 {
		t.Errorf("FPS() = %d, want 15", cam.FPS())
	}
}

func grayOf(t *testing.T, m *gocv.Mat) gocv.Mat {
	t.Helper()
	gray := gocv.NewMat()
	t.Cleanup(func() { gray.Close() })
	gocv.CvtColor(*m, &gray, gocv.ColorBGRToGray)
	return gray
}
