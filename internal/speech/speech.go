// Package speech synthesizes audio for flushed sentences.
package speech

import (
	"context"
	"errors"
)

// FormatWAV is the only audio container produced by the synthesizers.
const FormatWAV = "wav"

// ErrEmptyText is returned when asked to speak an empty sentence.
var ErrEmptyText = errors.New("speech: empty text")

// Audio is a synthesized utterance.
type Audio struct {
	Data     []byte
	Format   string
	Language string
}

// Synthesizer turns text into speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (Audio, error)

	// Name identifies the backend in logs and the health endpoint.
	Name() string
}
