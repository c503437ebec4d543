package speech

import (
	"context"
	"unicode/utf8"
)

const (
	stubSampleRate = 16000
	stubPerRune    = 80 // milliseconds of silence per character
	stubMinimum    = 300
)

// Stub produces silence whose length grows with the text, so clients can
// exercise playback without a speech engine.
type Stub struct{}

// NewStub creates a Stub synthesizer.
func NewStub() *Stub { return &Stub{} }

// Synthesize implements Synthesizer.
func (s *Stub) Synthesize(ctx context.Context, text, lang string) (Audio, error) {
	if text == "" {
		return Audio{}, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return Audio{}, err
	}
	ms := max(stubMinimum, utf8.RuneCountInString(text)*stubPerRune)
	samples := make([]int, stubSampleRate*ms/1000)
	data, err := EncodeWAV(samples, stubSampleRate)
	if err != nil {
		return Audio{}, err
	}
	return Audio{Data: data, Format: FormatWAV, Language: lang}, nil
}

// Name implements Synthesizer.
func (s *Stub) Name() string { return "stub" }
