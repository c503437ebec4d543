// Package session holds the per-connection translation state: the control
// state machine, the feature window, the vote engine and the pending
// utterance. A Session is owned by a single goroutine and is not safe for
// concurrent use.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/swaram/internal/classifier"
	"github.com/ayusman/swaram/internal/config"
	"github.com/ayusman/swaram/internal/detector"
	"github.com/ayusman/swaram/internal/gesture"
)

// State is the control state of a session.
type State string

const (
	StateIdle   State = "IDLE"
	StateActive State = "ACTIVE"
	StatePaused State = "PAUSED"
)

// Command is a client control command.
type Command string

const (
	CommandStart  Command = "start"
	CommandStop   Command = "stop"
	CommandPause  Command = "pause"
	CommandResume Command = "resume"
)

var (
	// ErrUnknownCommand is returned for control commands outside start/stop/pause/resume.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidTransition is returned when a command does not apply to the current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Config tunes a session.
type Config struct {
	WindowSize     int
	VoteHistory    int
	VoteMajority   int
	CooldownFrames int
	IdleFlush      time.Duration
	Thresholds     map[detector.Mode]float64
	TargetLatency  time.Duration
}

// ConfigFrom derives a session Config from the pipeline settings.
func ConfigFrom(p config.PipelineConfig) Config {
	return Config{
		WindowSize:     p.WindowSize,
		VoteHistory:    p.VoteHistory,
		VoteMajority:   p.VoteMajority,
		CooldownFrames: p.CooldownFrames,
		IdleFlush:      p.IdleFlush,
		Thresholds: map[detector.Mode]float64{
			detector.ModeSign: p.Thresholds.Sign,
			detector.ModeLip:  p.Thresholds.Lip,
			detector.ModeBoth: p.Thresholds.Both,
		},
		TargetLatency: p.TargetLatency,
	}
}

// DefaultConfig returns the session tuning of the default configuration.
func DefaultConfig() Config {
	return ConfigFrom(config.Default().Pipeline)
}

// Word is a fired prediction.
type Word struct {
	Label      string
	Confidence float64
	Kind       string
	Votes      int
}

// Sentence is a flushed utterance.
type Sentence struct {
	Text       string
	Words      []string
	Confidence float64
	Kind       string
}

// Session is the translation state of one connection.
type Session struct {
	ID string

	cfg       Config
	state     State
	mode      detector.Mode
	window    *gesture.Window
	debouncer *gesture.Debouncer
	utterance *gesture.Utterance

	// confidence and kind of each pending word, parallel to the utterance.
	confidences []float64
	lastKind    string

	frames int
}

// New creates an idle session in sign mode.
func New(id string, cfg Config) *Session {
	s := &Session{
		ID:        id,
		cfg:       cfg,
		state:     StateIdle,
		mode:      detector.ModeSign,
		window:    gesture.NewWindow(cfg.WindowSize),
		utterance: gesture.NewUtterance(cfg.IdleFlush),
	}
	s.debouncer = gesture.NewDebouncer(gesture.DebounceConfig{
		History:   cfg.VoteHistory,
		Majority:  cfg.VoteMajority,
		Cooldown:  cfg.CooldownFrames,
		Threshold: cfg.Thresholds[s.mode],
	})
	return s
}

// State returns the control state.
func (s *Session) State() State { return s.state }

// Mode returns the extraction mode.
func (s *Session) Mode() detector.Mode { return s.mode }

// Active reports whether frames update the prediction state.
func (s *Session) Active() bool { return s.state == StateActive }

// Frames returns the number of frames received.
func (s *Session) Frames() int { return s.frames }

// CountFrame records a received frame, whatever the state.
func (s *Session) CountFrame() { s.frames++ }

// SetMode switches the extraction mode. Feature vectors of different modes
// have different lengths, so a change clears the window and vote history;
// pending words are kept.
func (s *Session) SetMode(m detector.Mode) bool {
	if m == s.mode {
		return false
	}
	s.mode = m
	s.window.Reset()
	s.debouncer.Reset()
	s.debouncer.SetThreshold(s.cfg.Thresholds[m])
	return true
}

// Control applies a command and returns the status reported to the client.
func (s *Session) Control(cmd Command) (string, error) {
	switch cmd {
	case CommandStart:
		s.Reset()
		s.state = StateActive
		return "started", nil
	case CommandStop:
		s.state = StateIdle
		return "stopped", nil
	case CommandPause:
		if s.state != StateActive {
			return "", fmt.Errorf("%w: pause from %s", ErrInvalidTransition, s.state)
		}
		s.state = StatePaused
		return "paused", nil
	case CommandResume:
		if s.state != StatePaused {
			return "", fmt.Errorf("%w: resume from %s", ErrInvalidTransition, s.state)
		}
		s.state = StateActive
		return "resumed", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

// Reset returns the prediction state to its initial values. The mode, the
// control state and the frame counter are untouched.
func (s *Session) Reset() {
	s.window.Reset()
	s.debouncer.Reset()
	s.utterance.Reset()
	s.confidences = s.confidences[:0]
	s.lastKind = ""
}

// Push appends a feature vector and reports whether the window is full.
func (s *Session) Push(v detector.FeatureVector) bool {
	s.window.Push(v)
	return s.window.Ready()
}

// Window returns a copy of the buffered features for classification.
func (s *Session) Window() [][]float64 { return s.window.Snapshot() }

// BufferFill returns the number of buffered feature vectors.
func (s *Session) BufferFill() int { return s.window.Len() }

// Observe feeds a raw prediction to the vote engine and returns the word
// when it fires.
func (s *Session) Observe(p classifier.Prediction) *Word {
	ev := s.debouncer.Observe(p.Label, p.Confidence)
	if ev == nil {
		return nil
	}
	s.utterance.Add(ev.Label)
	s.confidences = append(s.confidences, ev.Confidence)
	s.lastKind = p.Kind
	return &Word{Label: ev.Label, Confidence: ev.Confidence, Kind: p.Kind, Votes: ev.Votes}
}

// Skip advances the cooldown for a frame that was not classified.
func (s *Session) Skip() { s.debouncer.Tick() }

// Presence records whether the frame contained landmarks and returns the
// pending sentence once the signer has paused long enough.
func (s *Session) Presence(present bool, now time.Time) *Sentence {
	words := s.utterance.Words()
	text, ok := s.utterance.OnFrameProcessed(present, now)
	if !ok {
		return nil
	}
	sentence := &Sentence{Text: text, Words: words, Confidence: mean(s.confidences), Kind: s.lastKind}
	s.confidences = s.confidences[:0]
	return sentence
}

// Pending reports whether words are waiting to be flushed.
func (s *Session) Pending() bool { return s.utterance.Pending() }

// Words returns the words waiting to be flushed.
func (s *Session) Words() []string { return s.utterance.Words() }

// Cooldown returns the frames left before the last word may repeat.
func (s *Session) Cooldown() int { return s.debouncer.Cooldown() }

// LastLabel returns the last fired word.
func (s *Session) LastLabel() string { return s.debouncer.LastLabel() }

// Threshold returns the confidence threshold of the current mode.
func (s *Session) Threshold() float64 { return s.debouncer.Threshold() }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
