package server

import (
	"encoding/json"
	"time"

	"github.com/ayusman/swaram/internal/detector"
)

// Message types exchanged over /ws.
const (
	TypePing            = "ping"
	TypePong            = "pong"
	TypeHandshake       = "handshake"
	TypeHandshakeAck    = "handshake_ack"
	TypeMode            = "mode"
	TypeModeChanged     = "mode_changed"
	TypeControl         = "control"
	TypeControlResponse = "control_response"
	TypeFrame           = "frame"
	TypeWelcome         = "welcome"
	TypeDetection       = "detection"
	TypeTranslation     = "translation"
	TypeStats           = "stats"
	TypeStatus          = "status"
	TypeHealth          = "health"
	TypeError           = "error"
)

// Translation kinds carried in translation.data.type.
const (
	TranslationWord     = "word"
	TranslationSentence = "sentence"
)

// inbound is the union of every client message. Fields not used by a type
// are left empty.
type inbound struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`

	Client   string `json:"client,omitempty"`
	Platform string `json:"platform,omitempty"`

	Mode    string `json:"mode,omitempty"`
	Command string `json:"command,omitempty"`

	Frame   string          `json:"frame,omitempty"`
	FrameID json.RawMessage `json:"frame_id,omitempty"`
}

// timestamp is the wall clock in fractional Unix seconds.
func timestamp() float64 {
	return float64(time.Now().UnixMicro()) / 1e6
}

type welcomeMessage struct {
	Type           string          `json:"type"`
	Message        string          `json:"message"`
	SessionID      string          `json:"session_id"`
	Labels         []string        `json:"labels"`
	SupportedModes []detector.Mode `json:"supported_modes"`
	ServerVersion  string          `json:"server_version"`
	Timestamp      float64         `json:"timestamp"`
}

type pongMessage struct {
	Type            string          `json:"type"`
	ClientTimestamp json.RawMessage `json:"client_timestamp,omitempty"`
	Timestamp       float64         `json:"timestamp"`
}

type clientInfo struct {
	Client   string `json:"client"`
	Platform string `json:"platform"`
}

type handshakeAckMessage struct {
	Type       string     `json:"type"`
	Message    string     `json:"message"`
	ClientInfo clientInfo `json:"client_info"`
	Timestamp  float64    `json:"timestamp"`
}

type modeChangedMessage struct {
	Type      string        `json:"type"`
	Mode      detector.Mode `json:"mode"`
	Message   string        `json:"message"`
	Timestamp float64       `json:"timestamp"`
}

type controlResponseMessage struct {
	Type      string  `json:"type"`
	Command   string  `json:"command"`
	Status    string  `json:"status"`
	State     string  `json:"state"`
	Message   string  `json:"message"`
	Timestamp float64 `json:"timestamp"`
}

type detectionMessage struct {
	Type      string           `json:"type"`
	Detection detector.Summary `json:"detection"`
	Mode      detector.Mode    `json:"mode"`
	FrameID   json.RawMessage  `json:"frame_id,omitempty"`
	Timestamp float64          `json:"timestamp"`
}

type translationData struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Type       string   `json:"type"`
	Kind       string   `json:"kind"`
	Words      []string `json:"words"`
}

type audioData struct {
	Audio  string `json:"audio"`
	Format string `json:"format"`
	Lang   string `json:"lang"`
}

type translationMessage struct {
	Type      string          `json:"type"`
	Data      translationData `json:"data"`
	Audio     *audioData      `json:"audio"`
	FrameID   json.RawMessage `json:"frame_id,omitempty"`
	Timestamp float64         `json:"timestamp"`
}

type statsMessage struct {
	Type string  `json:"type"`
	FPS  float64 `json:"fps"`

	// Latency is the average processing time in milliseconds.
	Latency            float64 `json:"latency"`
	BufferFill         int     `json:"buffer_fill"`
	QueueSize          int     `json:"queue_size"`
	RecommendedFPS     int     `json:"recommended_fps"`
	RecommendedQuality float64 `json:"recommended_quality"`
	Timestamp          float64 `json:"timestamp"`
}

type statusMessage struct {
	Type       string          `json:"type"`
	Message    string          `json:"message"`
	State      string          `json:"state"`
	BufferFill int             `json:"buffer_fill"`
	FrameID    json.RawMessage `json:"frame_id,omitempty"`
	Timestamp  float64         `json:"timestamp"`
}

type healthMessage struct {
	Type        string  `json:"type"`
	Connections int     `json:"connections"`
	QueueSize   int     `json:"queue_size"`
	Status      string  `json:"status"`
	Timestamp   float64 `json:"timestamp"`
}

type errorMessage struct {
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	FrameID   json.RawMessage `json:"frame_id,omitempty"`
	Timestamp float64         `json:"timestamp"`
}

func newError(message string, frameID json.RawMessage) errorMessage {
	return errorMessage{Type: TypeError, Message: message, FrameID: frameID, Timestamp: timestamp()}
}
