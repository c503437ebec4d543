package capture

import (
	"errors"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func solid(v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 480, 640, gocv.MatTypeCV8UC3)
}

func TestNewWebcam(t *testing.T) {
	w := NewWebcam(0, 0, 0)
	if w.width != DefaultWidth || w.height != DefaultHeight {
		t.Errorf("default size = %dx%d, want %dx%d", w.width, w.height, DefaultWidth, DefaultHeight)
	}
	if w.IsOpen() {
		t.Error("webcam should not be open initially")
	}
	if _, err := w.Read(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Read() before Open error = %v, want ErrNotOpen", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() on closed webcam error = %v", err)
	}
}

func TestPlayback(t *testing.T) {
	black, white := solid(0), solid(255)
	defer black.Close()
	defer white.Close()

	t.Run("not open", func(t *testing.T) {
		p := NewPlayback([]gocv.Mat{black}, false)
		if _, err := p.Read(); !errors.Is(err, ErrNotOpen) {
			t.Errorf("Read() error = %v, want ErrNotOpen", err)
		}
	})

	t.Run("once", func(t *testing.T) {
		p := NewPlayback([]gocv.Mat{black, white}, false)
		p.Open()
		for i := 0; i < 2; i++ {
			f, err := p.Read()
			if err != nil {
				t.Fatalf("Read() %d error = %v", i, err)
			}
			f.Close()
		}
		if _, err := p.Read(); !errors.Is(err, ErrExhausted) {
			t.Errorf("Read() past end error = %v, want ErrExhausted", err)
		}
	})

	t.Run("loop", func(t *testing.T) {
		p := NewPlayback([]gocv.Mat{white}, true)
		p.Open()
		for i := 0; i < 3; i++ {
			f, err := p.Read()
			if err != nil {
				t.Fatalf("Read() %d error = %v", i, err)
			}
			if f.Empty() {
				t.Error("expected a frame")
			}
			f.Close()
		}
	})

	t.Run("empty", func(t *testing.T) {
		p := NewPlayback(nil, true)
		p.Open()
		if _, err := p.Read(); !errors.Is(err, ErrExhausted) {
			t.Errorf("Read() error = %v, want ErrExhausted", err)
		}
	})
}

func TestEncodeJPEG(t *testing.T) {
	frame := solid(128)
	defer frame.Close()

	high, err := EncodeJPEG(frame, 1.0)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if len(high) < 2 || high[0] != 0xFF || high[1] != 0xD8 {
		t.Fatal("expected a JPEG start-of-image marker")
	}

	decoded, err := gocv.IMDecode(high, gocv.IMReadColor)
	if err != nil {
		t.Fatalf("IMDecode() error = %v", err)
	}
	defer decoded.Close()
	if decoded.Cols() != 640 || decoded.Rows() != 480 {
		t.Errorf("decoded size = %dx%d", decoded.Cols(), decoded.Rows())
	}

	if _, err := EncodeJPEG(frame, -3); err != nil {
		t.Errorf("EncodeJPEG() with clamped quality error = %v", err)
	}
}

func TestMotionDetector(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black, white := solid(0), solid(255)
	defer black.Close()
	defer white.Close()

	md := NewMotionDetector(1.0)
	defer md.Close()

	if moved, pct := md.Detect(black); moved || pct != 0 {
		t.Errorf("first frame = (%v, %f), want baseline only", moved, pct)
	}
	if moved, pct := md.Detect(black); moved {
		t.Errorf("identical frames detected motion, changed = %f", pct)
	}
	moved, pct := md.Detect(white)
	if !moved || pct < 50 {
		t.Errorf("black to white = (%v, %f), want motion over 50%%", moved, pct)
	}

	md.Reset()
	if moved, _ := md.Detect(black); moved {
		t.Error("first frame after Reset should only set the baseline")
	}

	empty := gocv.NewMat()
	defer empty.Close()
	if moved, _ := md.Detect(empty); moved {
		t.Error("empty frame should not detect motion")
	}
}

func TestPacer(t *testing.T) {
	p := NewPacer(2, 15, time.Second)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := p.Observe(false, start); got != 500*time.Millisecond {
		t.Errorf("idle interval = %v, want 500ms", got)
	}
	if got := p.Observe(true, start); got != time.Second/15 {
		t.Errorf("active interval = %v, want %v", got, time.Second/15)
	}
	if got := p.FPS(start.Add(900 * time.Millisecond)); got != 15 {
		t.Errorf("FPS within hold = %d, want 15", got)
	}
	if got := p.FPS(start.Add(time.Second)); got != 2 {
		t.Errorf("FPS after hold = %d, want 2", got)
	}

	p.SetActiveFPS(1)
	if p.ActiveFPS != 1 || p.IdleFPS != 1 {
		t.Errorf("SetActiveFPS(1) = active %d idle %d", p.ActiveFPS, p.IdleFPS)
	}
	p.SetActiveFPS(0)
	if p.ActiveFPS != 1 {
		t.Error("non-positive recommendation should be ignored")
	}

	if q := NewPacer(0, -1, 0); q.IdleFPS != 1 || q.ActiveFPS != 1 {
		t.Errorf("NewPacer clamps rates, got %d/%d", q.IdleFPS, q.ActiveFPS)
	}
}
