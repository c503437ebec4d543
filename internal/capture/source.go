// Package capture provides the frame sources used by the swaramctl client:
// a webcam, a playback loop for recorded frames, motion detection to pace
// the upload rate and JPEG encoding at a chosen quality.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default webcam settings.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrNotOpen is returned when reading from a source that is not open.
	ErrNotOpen = errors.New("capture source is not open")
	// ErrExhausted is returned by a non-looping Playback after its last frame.
	ErrExhausted = errors.New("no more frames")
)

// Source yields frames. The caller owns and must close every returned Mat.
type Source interface {
	Open() error
	Read() (gocv.Mat, error)
	Close() error
}

// Webcam reads frames from a camera device.
type Webcam struct {
	device        int
	width, height int

	mu      sync.Mutex
	capture *gocv.VideoCapture
}

// NewWebcam creates a Webcam for device. Zero dimensions use 640x480.
func NewWebcam(device, width, height int) *Webcam {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return &Webcam{device: device, width: width, height: height}
}

// Open starts capturing. Opening an open webcam is a no-op.
func (w *Webcam) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture != nil {
		return nil
	}
	vc, err := gocv.OpenVideoCapture(w.device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", w.device, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(w.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(w.height))
	w.capture = vc
	return nil
}

// Read grabs the next frame.
func (w *Webcam) Read() (gocv.Mat, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return gocv.Mat{}, ErrNotOpen
	}
	mat := gocv.NewMat()
	if ok := w.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("camera %d returned no frame", w.device)
	}
	return mat, nil
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return nil
	}
	err := w.capture.Close()
	w.capture = nil
	return err
}

// IsOpen reports whether the device is capturing.
func (w *Webcam) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.capture != nil
}

// Playback replays a fixed set of frames, optionally looping.
type Playback struct {
	frames []gocv.Mat
	loop   bool

	mu    sync.Mutex
	index int
	open  bool
}

// NewPlayback creates a Playback over frames. The frames stay owned by the
// caller; Read returns clones.
func NewPlayback(frames []gocv.Mat, loop bool) *Playback {
	return &Playback{frames: frames, loop: loop}
}

// Open rewinds and starts playback.
func (p *Playback) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.index = 0
	return nil
}

// Read returns a clone of the next frame.
func (p *Playback) Read() (gocv.Mat, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return gocv.Mat{}, ErrNotOpen
	}
	if len(p.frames) == 0 {
		return gocv.Mat{}, ErrExhausted
	}
	if p.index >= len(p.frames) {
		if !p.loop {
			return gocv.Mat{}, ErrExhausted
		}
		p.index = 0
	}
	f := p.frames[p.index].Clone()
	p.index++
	return f, nil
}

// Close stops playback.
func (p *Playback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	return nil
}

// EncodeJPEG encodes frame as JPEG. quality is in (0, 1]; values outside
// are clamped.
func EncodeJPEG(frame gocv.Mat, quality float64) ([]byte, error) {
	q := int(quality*100 + 0.5)
	q = max(1, min(100, q))

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{gocv.IMWriteJpegQuality, q})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
