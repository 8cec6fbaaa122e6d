package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	blurKernel    = 21
	diffThreshold = 25
)

// MotionDetector reports whether enough of the picture changed between
// consecutive frames. Frames are grayscaled and blurred before differencing so
// sensor noise does not count as motion.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	primed    bool
	mu        sync.Mutex
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage of
// pixels that must change, e.g. 1.0 for 1%.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect compares frame with the previous one and returns whether motion was
// seen and the changed-pixel percentage. The first frame only primes the
// detector and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(blurKernel, blurKernel), 0, 0, gocv.BorderDefault)

	if !m.primed || m.prev.Rows() != blurred.Rows() || m.prev.Cols() != blurred.Cols() {
		blurred.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100
	blurred.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// Reset forgets the previous frame; the next Detect primes again.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primed = false
}

// Threshold returns the changed-pixel percentage that counts as motion.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// SetThreshold changes the motion threshold. Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Close releases the stored frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prev.Close()
	m.prev = gocv.NewMat()
	m.primed = false
}
