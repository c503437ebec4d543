package detector

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Mode selects which landmark families are extracted from a frame.
type Mode string

const (
	// ModeSign extracts hand landmarks only.
	ModeSign Mode = "sign"
	// ModeLip extracts lip landmarks only.
	ModeLip Mode = "lip"
	// ModeBoth extracts hand and lip landmarks.
	ModeBoth Mode = "both"
)

// Modes lists every supported mode in the order advertised to clients.
var Modes = []Mode{ModeSign, ModeLip, ModeBoth}

// ParseMode converts s into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSign, ModeLip, ModeBoth:
		return m, nil
	}
	return "", fmt.Errorf("invalid mode %q", s)
}

// Hands reports whether the mode needs hand landmarks.
func (m Mode) Hands() bool { return m == ModeSign || m == ModeBoth }

// Lips reports whether the mode needs lip landmarks.
func (m Mode) Lips() bool { return m == ModeLip || m == ModeBoth }

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks the mode asks for.
	// An empty Detection is returned when nothing is found.
	Detect(frame *gocv.Mat, mode Mode) (*Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Script overrides the location of mediapipe_service.py.
	Script string

	// Python overrides the interpreter used to run the script.
	Python string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.3,
	}
}
