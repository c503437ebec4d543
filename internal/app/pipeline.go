package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/swaram/internal/classifier"
	"github.com/ayusman/swaram/internal/detector"
	"github.com/ayusman/swaram/internal/session"
	"github.com/ayusman/swaram/internal/speech"
	"github.com/ayusman/swaram/internal/store"
)

// Extraction is the landmark result for one frame.
type Extraction struct {
	Detection *detector.Detection
	Features  detector.FeatureVector
}

// Extract decodes an encoded frame, downscales it and runs landmark
// detection on a worker. Decode failures wrap detector.ErrDecode.
func (a *App) Extract(ctx context.Context, data []byte, mode detector.Mode) (*Extraction, error) {
	return Submit(ctx, a.pool, func(ctx context.Context) (*Extraction, error) {
		img, err := detector.Decode(data)
		if err != nil {
			return nil, err
		}
		defer img.Close()

		frame := img
		if small, resized := detector.Downscale(img, a.settings.Detector.MaxWidth); resized {
			defer small.Close()
			frame = small
		}

		det, err := a.detector.Detect(&frame, mode)
		if err != nil {
			return nil, fmt.Errorf("detect landmarks: %w", err)
		}
		return &Extraction{Detection: det, Features: det.Features(mode)}, nil
	})
}

// Classify runs the current classifiers over a window on a worker.
func (a *App) Classify(ctx context.Context, mode detector.Mode, window [][]float64) (classifier.Prediction, error) {
	set := a.classifiers.Load()
	return Submit(ctx, a.pool, func(ctx context.Context) (classifier.Prediction, error) {
		return set.Classify(ctx, mode, window)
	})
}

// Speak synthesizes text in the configured language.
func (a *App) Speak(ctx context.Context, text string) (speech.Audio, error) {
	start := time.Now()
	audio, err := a.speech.Synthesize(ctx, text, a.settings.Speech.Language)
	a.metrics.RecordSynthesis(ctx, a.speech.Name(), time.Since(start))
	if err != nil {
		a.metrics.RecordError(ctx, "speech")
		return speech.Audio{}, err
	}
	return audio, nil
}

// RecordFrame records the outcome of one frame.
func (a *App) RecordFrame(ctx context.Context, mode detector.Mode, status string, d time.Duration) {
	a.metrics.RecordFrame(ctx, string(mode), status, d)
}

// RecordWord records a fired prediction.
func (a *App) RecordWord(ctx context.Context, w *session.Word) {
	a.metrics.RecordPrediction(ctx, w.Label, w.Kind)
}

// RecordSentence stores a flushed sentence in the translation history.
func (a *App) RecordSentence(ctx context.Context, sessionID string, mode detector.Mode, s *session.Sentence) {
	a.metrics.RecordFlush(ctx)
	text := s.Text
	a.lastSentence.Store(&text)

	if a.store == nil {
		return
	}
	err := a.store.Translations().Create(&store.Translation{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Text:       s.Text,
		Confidence: s.Confidence,
		Kind:       s.Kind,
		Mode:       string(mode),
	})
	if err != nil {
		slog.Warn("failed to store translation", "session_id", sessionID, "err", err)
	}
}

// OpenSession records a connection in the store.
func (a *App) OpenSession(id, remote string) {
	if a.store == nil {
		return
	}
	if err := a.store.Sessions().Create(&store.Session{ID: id, RemoteAddr: remote}); err != nil {
		slog.Warn("failed to store session", "session_id", id, "err", err)
	}
}

// IdentifySession records the client's handshake.
func (a *App) IdentifySession(id, client, platform string) {
	if a.store == nil {
		return
	}
	if err := a.store.Sessions().SetClient(id, client, platform); err != nil {
		slog.Warn("failed to store handshake", "session_id", id, "err", err)
	}
}

// CloseSession marks a connection ended.
func (a *App) CloseSession(id string, frames int) {
	if a.store == nil {
		return
	}
	if err := a.store.Sessions().End(id, frames); err != nil {
		slog.Warn("failed to close session", "session_id", id, "err", err)
	}
}
