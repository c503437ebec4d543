package gesture

import "github.com/ayusman/swaram/internal/detector"

// Window keeps the most recent feature vectors in arrival order.
type Window struct {
	size   int
	frames [][]float64
}

// NewWindow creates a window holding at most size vectors.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{size: size, frames: make([][]float64, 0, size)}
}

// Push appends v, evicting the oldest vector once the window is full.
// Zero vectors are pushed like any other.
func (w *Window) Push(v detector.FeatureVector) {
	if len(w.frames) == w.size {
		copy(w.frames, w.frames[1:])
		w.frames = w.frames[:w.size-1]
	}
	w.frames = append(w.frames, v)
}

// Ready reports whether the window holds size vectors.
func (w *Window) Ready() bool { return len(w.frames) == w.size }

// Len returns the number of buffered vectors.
func (w *Window) Len() int { return len(w.frames) }

// Size returns the capacity of the window.
func (w *Window) Size() int { return w.size }

// Snapshot returns a copy of the buffered vectors, oldest first, that stays
// valid after further pushes.
func (w *Window) Snapshot() [][]float64 {
	out := make([][]float64, len(w.frames))
	copy(out, w.frames)
	return out
}

// Reset empties the window.
func (w *Window) Reset() { w.frames = w.frames[:0] }
