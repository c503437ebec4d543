package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

const (
	coquiTTSEndpoint    = "/api/tts"
	coquiDefaultTimeout = 30 * time.Second
)

// CoquiOption configures a Coqui synthesizer.
type CoquiOption func(*Coqui)

// WithSpeaker selects a speaker on multi-speaker models.
func WithSpeaker(id string) CoquiOption {
	return func(c *Coqui) { c.speaker = id }
}

// WithTimeout sets the HTTP timeout for a synthesis request.
func WithTimeout(d time.Duration) CoquiOption {
	return func(c *Coqui) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) CoquiOption {
	return func(c *Coqui) { c.httpClient = hc }
}

// Coqui calls the standard Coqui TTS server API, GET /api/tts, which answers
// with a WAV body.
type Coqui struct {
	serverURL  string
	speaker    string
	httpClient *http.Client
}

// NewCoqui creates a Coqui synthesizer for serverURL.
func NewCoqui(serverURL string, opts ...CoquiOption) (*Coqui, error) {
	if serverURL == "" {
		return nil, errors.New("coqui: serverURL must not be empty")
	}
	c := &Coqui{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: coquiDefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Synthesize implements Synthesizer.
func (c *Coqui) Synthesize(ctx context.Context, text, lang string) (Audio, error) {
	if text == "" {
		return Audio{}, ErrEmptyText
	}

	params := url.Values{}
	params.Set("text", text)
	if c.speaker != "" {
		params.Set("speaker_id", c.speaker)
	}
	if lang != "" {
		params.Set("language_id", lang)
	}

	reqURL := c.serverURL + coquiTTSEndpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Audio{}, fmt.Errorf("coqui: create tts request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("coqui: GET %s: %w", coquiTTSEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Audio{}, fmt.Errorf("coqui: GET %s returned status %d: %s", coquiTTSEndpoint, resp.StatusCode, bytes.TrimSpace(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Audio{}, fmt.Errorf("coqui: read tts response: %w", err)
	}
	if !wav.NewDecoder(bytes.NewReader(data)).IsValidFile() {
		return Audio{}, errors.New("coqui: response is not a wav file")
	}

	return Audio{Data: data, Format: FormatWAV, Language: lang}, nil
}

// Name implements Synthesizer.
func (c *Coqui) Name() string { return "coqui" }
