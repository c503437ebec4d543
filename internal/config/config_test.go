package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/swaram/internal/config"
)

func TestLoadFromReader_Empty(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	def := config.Default()
	if cfg.Pipeline.WindowSize != 30 {
		t.Errorf("WindowSize = %d, want 30", cfg.Pipeline.WindowSize)
	}
	if cfg.Pipeline.VoteHistory != 10 || cfg.Pipeline.VoteMajority != 5 {
		t.Errorf("vote = %d/%d, want 5/10", cfg.Pipeline.VoteMajority, cfg.Pipeline.VoteHistory)
	}
	if cfg.Pipeline.CooldownFrames != 20 {
		t.Errorf("CooldownFrames = %d, want 20", cfg.Pipeline.CooldownFrames)
	}
	if cfg.Pipeline.IdleFlush != 2*time.Second {
		t.Errorf("IdleFlush = %s, want 2s", cfg.Pipeline.IdleFlush)
	}
	if cfg.Server.MaxFrameBytes != 1<<20 {
		t.Errorf("MaxFrameBytes = %d, want 1MiB", cfg.Server.MaxFrameBytes)
	}
	if cfg.Pipeline.Thresholds != def.Pipeline.Thresholds {
		t.Errorf("Thresholds = %+v, want %+v", cfg.Pipeline.Thresholds, def.Pipeline.Thresholds)
	}
}

func TestLoadFromReader_Overrides(t *testing.T) {
	yaml := `
server:
  listen_addr: ":9000"
  log_level: debug
pipeline:
  idle_flush: 1500ms
  thresholds:
    lip: 0.6
speech:
  provider: coqui
  url: http://localhost:5002
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q, want :9000", cfg.Server.ListenAddr)
	}
	if cfg.Pipeline.IdleFlush != 1500*time.Millisecond {
		t.Errorf("IdleFlush = %s, want 1.5s", cfg.Pipeline.IdleFlush)
	}
	if cfg.Pipeline.Thresholds.Lip != 0.6 {
		t.Errorf("Thresholds.Lip = %f, want 0.6", cfg.Pipeline.Thresholds.Lip)
	}
	// Untouched keys keep their defaults.
	if cfg.Pipeline.Thresholds.Sign != 0.85 {
		t.Errorf("Thresholds.Sign = %f, want 0.85", cfg.Pipeline.Thresholds.Sign)
	}
	if cfg.Speech.Language != "ml" {
		t.Errorf("Speech.Language = %q, want ml", cfg.Speech.Language)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader("server:\n  listen_adr: \":1\"\n"))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad log level", "server:\n  log_level: loud\n", "log_level"},
		{"majority above history", "pipeline:\n  vote_majority: 11\n", "vote_majority"},
		{"zero workers", "pipeline:\n  workers: 0\n", "workers"},
		{"threshold out of range", "pipeline:\n  thresholds:\n    sign: 1.5\n", "thresholds.sign"},
		{"coqui without url", "speech:\n  provider: coqui\n", "speech.url"},
		{"command without command", "speech:\n  provider: command\n", "speech.command"},
		{"unknown speech provider", "speech:\n  provider: gtts\n", "speech.provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swaram.yaml")
	if err := os.WriteFile(path, []byte("server:\n  auto_start: true\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Server.AutoStart {
		t.Error("AutoStart = false, want true")
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
