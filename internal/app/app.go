// Package app wires the store, landmark detector, classifiers and speech
// backend into the translation pipeline shared by all connections.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ayusman/swaram/internal/classifier"
	"github.com/ayusman/swaram/internal/config"
	"github.com/ayusman/swaram/internal/detector"
	"github.com/ayusman/swaram/internal/gesture"
	"github.com/ayusman/swaram/internal/observe"
	"github.com/ayusman/swaram/internal/plugin"
	"github.com/ayusman/swaram/internal/speech"
	"github.com/ayusman/swaram/internal/store"
)

// Version is reported to clients in the welcome message.
const Version = "1.0.0"

// Config holds the collaborators of an App. Nil fields are built from
// Settings.
type Config struct {
	Settings *config.Config
	Store    *store.Store
	Detector detector.Detector
	Speech   speech.Synthesizer
	Metrics  *observe.Metrics
}

// App owns the components shared by every session.
type App struct {
	settings    *config.Config
	store       *store.Store
	detector    detector.Detector
	speech      speech.Synthesizer
	metrics     *observe.Metrics
	pool        *Pool
	classifiers atomic.Pointer[classifier.Set]
	labels      atomic.Pointer[[]string]

	start        time.Time
	sessions     atomic.Int64
	enabled      atomic.Bool
	lastSentence atomic.Pointer[string]
}

// New builds an App and loads the classifiers.
func New(cfg Config) (*App, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}

	a := &App{
		settings: settings,
		store:    cfg.Store,
		detector: cfg.Detector,
		speech:   cfg.Speech,
		metrics:  cfg.Metrics,
		pool:     NewPool(settings.Pipeline.Workers),
		start:    time.Now(),
	}
	a.enabled.Store(true)

	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	if a.detector == nil {
		a.detector = newDetector(settings.Detector)
	}

	if a.speech == nil {
		s, err := newSynthesizer(settings.Speech)
		if err != nil {
			return nil, err
		}
		a.speech = s
	}

	if err := a.Reload(); err != nil {
		return nil, err
	}
	return a, nil
}

// newDetector prefers the MediaPipe service and falls back to a mock that
// never detects anything.
func newDetector(cfg config.DetectorConfig) detector.Detector {
	mp, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinConfidence,
		MinTrackingConf: cfg.MinTrackingConf,
		Script:          cfg.Script,
		Python:          cfg.Python,
	})
	if err != nil {
		slog.Warn("MediaPipe not available, frames will carry no landmarks", "err", err)
		return detector.NewMockDetector()
	}
	slog.Info("using MediaPipe landmark detection")
	return mp
}

// newSynthesizer builds the configured speech backend with the stub as the
// last resort.
func newSynthesizer(cfg config.SpeechConfig) (speech.Synthesizer, error) {
	stub := speech.NewStub()

	switch cfg.Provider {
	case config.SpeechCoqui:
		c, err := speech.NewCoqui(cfg.URL, speech.WithTimeout(cfg.Timeout))
		if err != nil {
			return nil, fmt.Errorf("speech: %w", err)
		}
		return speech.NewFallback(c, stub), nil

	case config.SpeechCommand:
		dir := cfg.PluginDir
		if dir == "" {
			dir = filepath.Join(DataDir(), "plugins")
		}
		mgr := plugin.NewManager(dir)
		if err := mgr.Discover(); err != nil {
			slog.Warn("plugin discovery failed", "dir", dir, "err", err)
		}
		c, err := speech.NewCommand(mgr, cfg.Command, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return speech.NewFallback(c, stub), nil
	}
	return stub, nil
}

// DataDir returns ~/.swaram, or .swaram when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".swaram"
	}
	return filepath.Join(home, ".swaram")
}

// Reload rebuilds the vocabulary and the classifiers from the model assets
// and the stored templates, then swaps them in for new frames.
func (a *App) Reload() error {
	labels, err := a.vocabulary()
	if err != nil {
		return err
	}

	var stored map[store.SignMode][]*gesture.Template
	if a.store != nil {
		stored, err = a.storedTemplates()
		if err != nil {
			return err
		}
	}

	set := &classifier.Set{
		Sign: classifier.Select(classifier.KindSign, classifier.Sources{
			AssetPath: a.settings.Models.SignModel,
			Stored:    stored[store.SignModeHands],
		}, labels),
		Lip: classifier.Select(classifier.KindLip, classifier.Sources{
			AssetPath: a.settings.Models.LipModel,
			Stored:    stored[store.SignModeLips],
		}, labels),
	}
	a.classifiers.Store(set)
	a.labels.Store(&labels)
	return nil
}

// vocabulary returns the stored sign labels, then the configured labels,
// then the built-in list.
func (a *App) vocabulary() ([]string, error) {
	if a.store != nil {
		labels, err := a.store.Signs().Labels()
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		if len(labels) > 0 {
			return labels, nil
		}
	}
	if len(a.settings.Models.Labels) > 0 {
		return a.settings.Models.Labels, nil
	}
	return config.DefaultLabels, nil
}

func (a *App) storedTemplates() (map[store.SignMode][]*gesture.Template, error) {
	out := make(map[store.SignMode][]*gesture.Template)
	for _, mode := range []store.SignMode{store.SignModeHands, store.SignModeLips} {
		templates, err := a.store.Templates().ListByMode(mode)
		if err != nil {
			return nil, fmt.Errorf("load %s templates: %w", mode, err)
		}
		for _, t := range templates {
			out[mode] = append(out[mode], &gesture.Template{
				ID:        t.SignID,
				Label:     t.Label,
				Mode:      string(t.Mode),
				Frames:    t.Frames,
				Tolerance: t.Tolerance,
			})
		}
	}
	return out, nil
}

// Labels returns the current vocabulary.
func (a *App) Labels() []string {
	if l := a.labels.Load(); l != nil {
		return append([]string(nil), (*l)...)
	}
	return nil
}

// Models reports which classifier variant serves each family.
func (a *App) Models() map[string]string {
	return a.classifiers.Load().Names()
}

// Settings returns the configuration.
func (a *App) Settings() *config.Config { return a.settings }

// Store returns the database, or nil when running without one.
func (a *App) Store() *store.Store { return a.store }

// Metrics returns the metric instruments.
func (a *App) Metrics() *observe.Metrics { return a.metrics }

// Uptime returns the time since New.
func (a *App) Uptime() time.Duration { return time.Since(a.start) }

// QueueDepth returns the number of jobs waiting for a worker.
func (a *App) QueueDepth() int { return a.pool.Queued() }

// SetEnabled toggles whether frames are processed.
func (a *App) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
	slog.Info("frame processing toggled", "enabled", enabled)
}

// IsEnabled reports whether frames are processed.
func (a *App) IsEnabled() bool { return a.enabled.Load() }

// SessionOpened registers a new connection.
func (a *App) SessionOpened(ctx context.Context) {
	a.sessions.Add(1)
	a.metrics.ActiveSessions.Add(ctx, 1)
}

// SessionClosed unregisters a connection.
func (a *App) SessionClosed(ctx context.Context) {
	a.sessions.Add(-1)
	a.metrics.ActiveSessions.Add(ctx, -1)
}

// Sessions returns the number of open connections.
func (a *App) Sessions() int { return int(a.sessions.Load()) }

// LastSentence returns the most recent flushed sentence of any session.
func (a *App) LastSentence() string {
	if s := a.lastSentence.Load(); s != nil {
		return *s
	}
	return ""
}

// Close stops the worker pool and the detector.
func (a *App) Close() error {
	a.pool.Close()
	var errs []error
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	return errors.Join(errs...)
}
