package speech

import (
	"context"
	"errors"
	"log/slog"
)

// Fallback tries each synthesizer in order and returns the first success.
type Fallback struct {
	chain []Synthesizer
}

// Compile-time interface assertion.
var _ Synthesizer = (*Fallback)(nil)

// NewFallback creates a Fallback with primary as the preferred backend.
func NewFallback(primary Synthesizer, rest ...Synthesizer) *Fallback {
	return &Fallback{chain: append([]Synthesizer{primary}, rest...)}
}

// Synthesize implements Synthesizer.
func (f *Fallback) Synthesize(ctx context.Context, text, lang string) (Audio, error) {
	var errs []error
	for _, s := range f.chain {
		a, err := s.Synthesize(ctx, text, lang)
		if err == nil {
			return a, nil
		}
		if errors.Is(err, ErrEmptyText) || ctx.Err() != nil {
			return Audio{}, err
		}
		slog.Warn("speech backend failed, trying next", "backend", s.Name(), "err", err)
		errs = append(errs, err)
	}
	return Audio{}, errors.Join(errs...)
}

// Name implements Synthesizer.
func (f *Fallback) Name() string { return f.chain[0].Name() }
