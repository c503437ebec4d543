// Package config provides the configuration schema and loader for the Swaram
// translation server.
package config

import "time"

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SpeechProvider selects the text-to-speech backend.
type SpeechProvider string

const (
	// SpeechStub produces silent audio of a plausible length.
	SpeechStub SpeechProvider = "stub"
	// SpeechCoqui calls a Coqui TTS server over HTTP.
	SpeechCoqui SpeechProvider = "coqui"
	// SpeechCommand runs an external executable speaking the JSON stdin protocol.
	SpeechCommand SpeechProvider = "command"
)

// IsValid reports whether p is a recognised speech provider.
func (p SpeechProvider) IsValid() bool {
	switch p {
	case SpeechStub, SpeechCoqui, SpeechCommand:
		return true
	}
	return false
}

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Models   ModelsConfig   `yaml:"models"`
	Detector DetectorConfig `yaml:"detector"`
	Speech   SpeechConfig   `yaml:"speech"`
	Store    StoreConfig    `yaml:"store"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8765").
	ListenAddr string `yaml:"listen_addr"`

	LogLevel LogLevel `yaml:"log_level"`

	// StaticDir is served at "/" when set.
	StaticDir string `yaml:"static_dir"`

	// MaxFrameBytes is the largest frame payload accepted before it is
	// rejected with an error message.
	MaxFrameBytes int `yaml:"max_frame_bytes"`

	// HealthInterval is the period of the health broadcast to all clients.
	HealthInterval time.Duration `yaml:"health_interval"`

	// InboxSize is the number of messages that may queue per connection
	// before frames are dropped.
	InboxSize int `yaml:"inbox_size"`

	// AutoStart puts new sessions straight into the active state.
	AutoStart bool `yaml:"auto_start"`
}

// Thresholds holds the per-mode confidence a prediction must exceed to fire.
type Thresholds struct {
	Sign float64 `yaml:"sign"`
	Lip  float64 `yaml:"lip"`
	Both float64 `yaml:"both"`
}

// PipelineConfig tunes the windowing and debounce logic.
type PipelineConfig struct {
	WindowSize     int           `yaml:"window_size"`
	VoteHistory    int           `yaml:"vote_history"`
	VoteMajority   int           `yaml:"vote_majority"`
	CooldownFrames int           `yaml:"cooldown_frames"`
	IdleFlush      time.Duration `yaml:"idle_flush"`
	Workers        int           `yaml:"workers"`
	Thresholds     Thresholds    `yaml:"thresholds"`

	// TargetLatency drives the fps/quality recommendation sent in stats.
	TargetLatency time.Duration `yaml:"target_latency"`
}

// ModelsConfig points at the classifier assets. A missing file selects the
// stub classifier for that mode.
type ModelsConfig struct {
	SignModel string   `yaml:"sign_model"`
	LipModel  string   `yaml:"lip_model"`
	Labels    []string `yaml:"labels"`
}

// DetectorConfig configures the MediaPipe landmark service.
type DetectorConfig struct {
	Script          string  `yaml:"script"`
	Python          string  `yaml:"python"`
	MaxHands        int     `yaml:"max_hands"`
	MinConfidence   float64 `yaml:"min_confidence"`
	MinTrackingConf float64 `yaml:"min_tracking_conf"`
	MaxWidth        int     `yaml:"max_width"`
}

// SpeechConfig configures text-to-speech.
type SpeechConfig struct {
	Provider SpeechProvider `yaml:"provider"`
	URL      string         `yaml:"url"`
	Command  string         `yaml:"command"`
	Language string         `yaml:"language"`
	Timeout  time.Duration  `yaml:"timeout"`

	// PluginDir is searched for speech plugins. Empty means ~/.swaram/plugins.
	PluginDir string `yaml:"plugin_dir"`
}

// StoreConfig configures the SQLite database.
type StoreConfig struct {
	// Path is the database file. Empty means ~/.swaram/swaram.db.
	Path string `yaml:"path"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultMaxFrameBytes is the frame payload limit, 1 MiB.
const DefaultMaxFrameBytes = 1 << 20

// DefaultLabels is the sign vocabulary used when neither the model asset nor
// the store provides one.
var DefaultLabels = []string{"നമസ്കാരം", "നന്ദി", "സഹായം", "ആശുപത്രി", "വീട്"}

// Default returns a Config populated with the values the server was tuned for.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:     ":8765",
			LogLevel:       LogInfo,
			MaxFrameBytes:  DefaultMaxFrameBytes,
			HealthInterval: 30 * time.Second,
			InboxSize:      32,
		},
		Pipeline: PipelineConfig{
			WindowSize:     30,
			VoteHistory:    10,
			VoteMajority:   5,
			CooldownFrames: 20,
			IdleFlush:      2 * time.Second,
			Workers:        4,
			Thresholds: Thresholds{
				Sign: 0.85,
				Lip:  0.7,
				Both: 0.85,
			},
			TargetLatency: 100 * time.Millisecond,
		},
		Models: ModelsConfig{
			SignModel: "models/sign_templates.json",
			LipModel:  "models/lip_templates.json",
		},
		Detector: DetectorConfig{
			MaxHands:        2,
			MinConfidence:   0.5,
			MinTrackingConf: 0.3,
			MaxWidth:        640,
		},
		Speech: SpeechConfig{
			Provider: SpeechStub,
			Language: "ml",
			Timeout:  15 * time.Second,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}
