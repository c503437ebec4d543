package capture

import (
	"image"

	"gocv.io/x/gocv"
)

const (
	// blurSize is the Gaussian kernel applied before differencing.
	blurSize = 21
	// pixelDelta is the grey-level change counted as a changed pixel.
	pixelDelta = 25
)

// MotionDetector compares consecutive frames by blurred grey-level
// differencing. It is owned by one capture loop and not safe for concurrent
// use.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector creates a MotionDetector that reports motion when more
// than threshold percent of the pixels change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Detect compares frame with the previous one and returns whether it moved
// and the percentage of changed pixels. The first frame only sets the
// baseline.
func (m *MotionDetector) Detect(frame gocv.Mat) (bool, float64) {
	if frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Pt(blurSize, blurSize), 0, 0, gocv.BorderDefault)

	if !m.primed || m.prev.Rows() != gray.Rows() || m.prev.Cols() != gray.Cols() {
		gray.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prev, &diff)
	gocv.Threshold(diff, &diff, pixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	gray.CopyTo(&m.prev)
	return changed > m.threshold, changed
}

// Threshold returns the changed-pixel percentage that counts as motion.
func (m *MotionDetector) Threshold() float64 { return m.threshold }

// Reset drops the baseline.
func (m *MotionDetector) Reset() { m.primed = false }

// Close releases the baseline frame.
func (m *MotionDetector) Close() {
	m.prev.Close()
	m.primed = false
}
