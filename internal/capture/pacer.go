package capture

import "time"

// Pacer picks the upload rate: IdleFPS while nothing moves, ActiveFPS from
// the first motion until Hold has passed without any.
type Pacer struct {
	IdleFPS   int
	ActiveFPS int
	Hold      time.Duration

	lastMotion time.Time
}

// NewPacer creates a Pacer. Non-positive rates are raised to 1 fps.
func NewPacer(idleFPS, activeFPS int, hold time.Duration) *Pacer {
	return &Pacer{IdleFPS: max(1, idleFPS), ActiveFPS: max(1, activeFPS), Hold: hold}
}

// Observe records whether the latest frame moved and returns the delay
// before the next frame.
func (p *Pacer) Observe(moving bool, now time.Time) time.Duration {
	if moving {
		p.lastMotion = now
	}
	return time.Second / time.Duration(p.FPS(now))
}

// FPS returns the current rate.
func (p *Pacer) FPS(now time.Time) int {
	if !p.lastMotion.IsZero() && now.Sub(p.lastMotion) < p.Hold {
		return p.ActiveFPS
	}
	return p.IdleFPS
}

// SetActiveFPS applies a server recommendation. The idle rate never exceeds
// the active one.
func (p *Pacer) SetActiveFPS(fps int) {
	if fps <= 0 {
		return
	}
	p.ActiveFPS = fps
	p.IdleFPS = min(p.IdleFPS, fps)
}
