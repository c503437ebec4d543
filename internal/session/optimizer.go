package session

import "time"

const (
	latencyHistory = 100
	minSamples     = 10

	minFPS  = 15
	maxFPS  = 30
	fpsStep = 5

	// quality is kept in tenths to avoid float drift.
	minQuality = 5
	maxQuality = 10
)

// Optimizer recommends a client frame rate and JPEG quality from the
// observed processing latency. Above 120% of the target it lowers the frame
// rate first, then the quality; below 80% it raises the quality first, then
// the frame rate.
type Optimizer struct {
	target  time.Duration
	history []time.Duration
	next    int
	fps     int
	quality int
}

// NewOptimizer creates an Optimizer for the target latency, starting at
// full frame rate and quality.
func NewOptimizer(target time.Duration) *Optimizer {
	if target <= 0 {
		target = 100 * time.Millisecond
	}
	return &Optimizer{
		target:  target,
		history: make([]time.Duration, 0, latencyHistory),
		fps:     maxFPS,
		quality: maxQuality,
	}
}

// Record adds a latency sample and adjusts the recommendation once enough
// samples have been seen.
func (o *Optimizer) Record(latency time.Duration) {
	if len(o.history) < latencyHistory {
		o.history = append(o.history, latency)
	} else {
		o.history[o.next] = latency
		o.next = (o.next + 1) % latencyHistory
	}
	if len(o.history) >= minSamples {
		o.adjust()
	}
}

func (o *Optimizer) adjust() {
	avg := o.Average()
	switch {
	case avg*10 > o.target*12:
		if o.fps > minFPS {
			o.fps = max(minFPS, o.fps-fpsStep)
		} else if o.quality > minQuality {
			o.quality--
		}
	case avg*10 < o.target*8:
		if o.quality < maxQuality {
			o.quality++
		} else if o.fps < maxFPS {
			o.fps = min(maxFPS, o.fps+fpsStep)
		}
	}
}

// Average returns the mean of the recorded latencies.
func (o *Optimizer) Average() time.Duration {
	if len(o.history) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range o.history {
		sum += d
	}
	return sum / time.Duration(len(o.history))
}

// FPS returns the recommended frame rate.
func (o *Optimizer) FPS() int { return o.fps }

// Quality returns the recommended JPEG quality in [0.5, 1.0].
func (o *Optimizer) Quality() float64 { return float64(o.quality) / 10 }
