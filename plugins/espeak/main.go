// Package main provides a speech plugin backed by espeak-ng.
// It reads a speak request on stdin and answers with WAV audio.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-audio/wav"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action   string `json:"action"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Audio   []byte `json:"audio,omitempty"`
	Format  string `json:"format,omitempty"`
}

// voices maps request languages to espeak-ng voices.
var voices = map[string]string{
	"ml": "ml",
	"en": "en-us",
	"ta": "ta",
	"hi": "hi",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Action != "speak" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeErrorResponse("text is required")
		return
	}

	audio, err := speak(req.Text, voice(req.Language))
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Audio: audio, Format: "wav"})
}

func voice(lang string) string {
	if v, ok := voices[lang]; ok {
		return v
	}
	if lang != "" {
		return lang
	}
	return "ml"
}

// speak runs espeak-ng and checks that it produced a playable WAV file.
func speak(text, voice string) ([]byte, error) {
	cmd := exec.Command("espeak-ng", "-v", voice, "--stdout", text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("espeak-ng: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	dec := wav.NewDecoder(bytes.NewReader(out))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("espeak-ng produced invalid wav (%d bytes)", len(out))
	}
	return out, nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}
