package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ayusman/swaram/internal/gesture"
)

// Asset is the on-disk model format: a set of templates for one mode.
type Asset struct {
	Mode      string              `json:"mode"`
	Labels    []string            `json:"labels"`
	Templates []*gesture.Template `json:"templates"`
}

// Trained is a nearest-template classifier over DTW distance.
type Trained struct {
	kind    string
	matcher *gesture.SequenceMatcher
}

// NewTrained builds a classifier of the given kind from templates.
// It returns ErrModelUnavailable when templates is empty.
func NewTrained(kind string, templates []*gesture.Template) (*Trained, error) {
	m := gesture.NewSequenceMatcher()
	for _, t := range templates {
		m.AddTemplate(t)
	}
	if m.Len() == 0 {
		return nil, fmt.Errorf("%s: no templates: %w", kind, ErrModelUnavailable)
	}
	return &Trained{kind: kind, matcher: m}, nil
}

// LoadAsset reads a model asset file. A missing file is reported as
// ErrModelUnavailable.
func LoadAsset(path string) (*Asset, error) {
	if path == "" {
		return nil, fmt.Errorf("no model path: %w", ErrModelUnavailable)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrModelUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	var asset Asset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return &asset, nil
}

// Classify returns the label of the closest template, or an empty prediction
// when nothing is within tolerance.
func (c *Trained) Classify(ctx context.Context, window [][]float64) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	p := Prediction{Kind: c.kind}
	matches := c.matcher.Match(window)
	if len(matches) == 0 {
		return p, nil
	}
	p.Label = matches[0].Template.Label
	p.Confidence = matches[0].Score
	return p, nil
}

// Name implements Classifier.
func (c *Trained) Name() string { return "trained" }

// Labels returns the labels this classifier can produce.
func (c *Trained) Labels() []string { return c.matcher.Labels() }
