package session

import "time"

// Stats tracks the per-connection throughput reported once per second.
type Stats struct {
	optimizer *Optimizer

	windowStart time.Time
	windowCount int
	fps         float64
}

// NewStats creates a Stats tracker for the target latency.
func NewStats(target time.Duration) *Stats {
	return &Stats{optimizer: NewOptimizer(target)}
}

// Record notes a processed frame and its latency.
func (s *Stats) Record(now time.Time, latency time.Duration) {
	if s.windowStart.IsZero() {
		s.windowStart = now
	}
	s.windowCount++
	s.optimizer.Record(latency)
}

// Due reports whether a second has passed since the last report and, if so,
// rolls the measured fps forward.
func (s *Stats) Due(now time.Time) bool {
	if s.windowStart.IsZero() {
		return false
	}
	elapsed := now.Sub(s.windowStart)
	if elapsed < time.Second {
		return false
	}
	s.fps = float64(s.windowCount) / elapsed.Seconds()
	s.windowStart = now
	s.windowCount = 0
	return true
}

// FPS returns the frame rate measured over the last report interval.
func (s *Stats) FPS() float64 { return s.fps }

// Optimizer returns the latency optimizer.
func (s *Stats) Optimizer() *Optimizer { return s.optimizer }
