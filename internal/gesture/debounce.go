package gesture

// DebounceConfig tunes the vote engine.
type DebounceConfig struct {
	History   int     // number of raw labels kept for voting
	Majority  int     // votes the leading label needs
	Cooldown  int     // frames before the same label may fire again
	Threshold float64 // raw confidence must exceed this
}

// DefaultDebounceConfig returns the sign-mode tuning.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{History: 10, Majority: 5, Cooldown: 20, Threshold: 0.85}
}

// Event is a prediction that survived debouncing.
type Event struct {
	Label      string
	Confidence float64
	Votes      int
}

// Debouncer turns a noisy stream of per-window predictions into discrete
// events using majority voting and a cooldown.
type Debouncer struct {
	cfg       DebounceConfig
	history   []string
	lastLabel string
	cooldown  int
}

// NewDebouncer creates a Debouncer with cfg.
func NewDebouncer(cfg DebounceConfig) *Debouncer {
	if cfg.History < 1 {
		cfg.History = 1
	}
	return &Debouncer{cfg: cfg, history: make([]string, 0, cfg.History)}
}

// SetThreshold changes the confidence threshold, used when the mode changes.
func (d *Debouncer) SetThreshold(t float64) { d.cfg.Threshold = t }

// Threshold returns the current confidence threshold.
func (d *Debouncer) Threshold() float64 { return d.cfg.Threshold }

// Tick advances the cooldown for a frame that produced no prediction.
func (d *Debouncer) Tick() {
	if d.cooldown > 0 {
		d.cooldown--
	}
}

// Observe records one raw prediction and returns an Event when it fires.
//
// The cooldown is decremented first. The label then joins the vote history
// and an event fires when the majority label has enough votes, confidence
// exceeds the threshold, and the label either differs from the last fired
// one or the cooldown has run out. Empty labels never fire.
func (d *Debouncer) Observe(label string, confidence float64) *Event {
	d.Tick()

	if len(d.history) == d.cfg.History {
		copy(d.history, d.history[1:])
		d.history = d.history[:d.cfg.History-1]
	}
	d.history = append(d.history, label)

	majority, votes := d.Majority()
	if majority == "" || votes < d.cfg.Majority || confidence <= d.cfg.Threshold {
		return nil
	}
	if majority == d.lastLabel && d.cooldown > 0 {
		return nil
	}

	d.lastLabel = majority
	d.cooldown = d.cfg.Cooldown
	return &Event{Label: majority, Confidence: confidence, Votes: votes}
}

// Majority returns the most frequent label in the history and its count.
// On a tie the label that reached the top count first, scanning oldest to
// newest, wins.
func (d *Debouncer) Majority() (string, int) {
	counts := make(map[string]int, len(d.history))
	best, bestCount := "", 0
	for _, l := range d.history {
		counts[l]++
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	return best, bestCount
}

// Cooldown returns the frames remaining before the last label may repeat.
func (d *Debouncer) Cooldown() int { return d.cooldown }

// LastLabel returns the most recently fired label.
func (d *Debouncer) LastLabel() string { return d.lastLabel }

// Reset clears the vote history, cooldown and last label.
func (d *Debouncer) Reset() {
	d.history = d.history[:0]
	d.lastLabel = ""
	d.cooldown = 0
}
