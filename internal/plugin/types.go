// Package plugin discovers and runs external speech plugins. A plugin is an
// executable that reads one JSON request on stdin and writes one JSON
// response on stdout.
package plugin

// ActionSpeak asks a plugin to synthesize speech for a sentence.
const ActionSpeak = "speak"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
	Languages   []string `json:"languages,omitempty"`
}

// Supports reports whether the plugin declares action. A manifest without
// actions accepts everything.
func (m Manifest) Supports(action string) bool {
	if len(m.Actions) == 0 {
		return true
	}
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action   string `json:"action"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Response represents the response from a plugin execution.
// Audio is base64 in the JSON encoding.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Audio   []byte `json:"audio,omitempty"`
	Format  string `json:"format,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
