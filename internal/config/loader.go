package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path on top of [Default] and
// returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and validates
// the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.MaxFrameBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_frame_bytes must be positive, got %d", cfg.Server.MaxFrameBytes))
	}
	if cfg.Server.InboxSize <= 0 {
		errs = append(errs, fmt.Errorf("server.inbox_size must be positive, got %d", cfg.Server.InboxSize))
	}

	p := cfg.Pipeline
	if p.WindowSize <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.window_size must be positive, got %d", p.WindowSize))
	}
	if p.VoteHistory <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.vote_history must be positive, got %d", p.VoteHistory))
	}
	if p.VoteMajority <= 0 || p.VoteMajority > p.VoteHistory {
		errs = append(errs, fmt.Errorf("pipeline.vote_majority %d must be in [1, vote_history=%d]", p.VoteMajority, p.VoteHistory))
	}
	if p.CooldownFrames < 0 {
		errs = append(errs, fmt.Errorf("pipeline.cooldown_frames must not be negative, got %d", p.CooldownFrames))
	}
	if p.IdleFlush <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.idle_flush must be positive, got %s", p.IdleFlush))
	}
	if p.Workers <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.workers must be positive, got %d", p.Workers))
	}
	for name, v := range map[string]float64{"sign": p.Thresholds.Sign, "lip": p.Thresholds.Lip, "both": p.Thresholds.Both} {
		if v < 0 || v >= 1 {
			errs = append(errs, fmt.Errorf("pipeline.thresholds.%s %.2f is out of range [0, 1)", name, v))
		}
	}

	if !cfg.Speech.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("speech.provider %q is invalid; valid values: stub, coqui, command", cfg.Speech.Provider))
	}
	if cfg.Speech.Provider == SpeechCoqui && cfg.Speech.URL == "" {
		errs = append(errs, errors.New("speech.url is required when speech.provider is coqui"))
	}
	if cfg.Speech.Provider == SpeechCommand && cfg.Speech.Command == "" {
		errs = append(errs, errors.New("speech.command is required when speech.provider is command"))
	}

	if cfg.Detector.MaxHands <= 0 || cfg.Detector.MaxHands > 2 {
		slog.Warn("detector.max_hands outside [1, 2]; feature vectors only carry two hands", "max_hands", cfg.Detector.MaxHands)
	}

	return errors.Join(errs...)
}
