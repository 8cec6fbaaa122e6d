package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func solidFrame(v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 480, 640, gocv.MatTypeCV8UC3)
}

func TestNewMotionDetector(t *testing.T) {
	for _, threshold := range []float64{0.5, 1.0, 5.0} {
		md := NewMotionDetector(threshold)
		if md.Threshold() != threshold {
			t.Errorf("Threshold() = %f, want %f", md.Threshold(), threshold)
		}
		if md.primed {
			t.Error("motion detector should not be primed initially")
		}
		md.Close()
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := solidFrame(0)
	defer frame1.Close()
	frame2 := solidFrame(0)
	defer frame2.Close()

	detected, changed := md.Detect(&frame1)
	if detected || changed != 0 {
		t.Errorf("first frame should only prime, got %v %f", detected, changed)
	}

	if detected, changed = md.Detect(&frame2); detected {
		t.Errorf("identical frames should not detect motion, changed = %f", changed)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := solidFrame(0)
	defer black.Close()
	white := solidFrame(255)
	defer white.Close()

	md.Detect(&black)
	detected, changed := md.Detect(&white)
	if !detected {
		t.Errorf("black to white should detect motion, changed = %f", changed)
	}
	if changed < 50.0 {
		t.Errorf("changed = %f, expected > 50%% for black to white", changed)
	}
}

func TestMotionDetector_SyntheticFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frames := SyntheticFrames(4, 320, 240)
	defer CloseFrames(frames)

	md := NewMotionDetector(1.0)
	defer md.Close()

	md.Detect(frames[0])
	for i := 1; i < len(frames); i++ {
		if detected, changed := md.Detect(frames[i]); !detected {
			t.Errorf("frame %d: expected motion, changed = %f", i, changed)
		}
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := solidFrame(0)
	defer black.Close()
	white := solidFrame(255)
	defer white.Close()

	md.Detect(&black)
	if !md.primed {
		t.Error("detector should be primed after first Detect")
	}

	md.Reset()
	if detected, _ := md.Detect(&white); detected {
		t.Error("first frame after Reset should not detect motion")
	}
}

func TestMotionDetector_SizeChangeReprimes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	big := solidFrame(0)
	defer big.Close()
	small := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer small.Close()

	md.Detect(&big)
	if detected, _ := md.Detect(&small); detected {
		t.Error("a frame of a different size should prime, not compare")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	if md.Threshold() != 5.0 {
		t.Errorf("threshold = %f, want 5.0", md.Threshold())
	}

	md.SetThreshold(-1.0)
	if md.Threshold() != 5.0 {
		t.Errorf("negative threshold should be ignored, got %f", md.Threshold())
	}
}

func TestMotionDetector_NilAndEmpty(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, _ := md.Detect(nil); detected {
		t.Error("nil frame should not detect motion")
	}
	empty := gocv.NewMat()
	defer empty.Close()
	if detected, _ := md.Detect(&empty); detected {
		t.Error("empty frame should not detect motion")
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)
	md.Close()
	md.Close()
}
