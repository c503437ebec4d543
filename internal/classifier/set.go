package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ayusman/swaram/internal/detector"
	"github.com/ayusman/swaram/internal/gesture"
)

// Set holds one classifier per landmark family and dispatches by mode.
type Set struct {
	Sign Classifier
	Lip  Classifier
}

// Classify runs the classifier for mode. In both mode each frame is split
// into its hand and lip parts and the two predictions are fused.
func (s *Set) Classify(ctx context.Context, mode detector.Mode, window [][]float64) (Prediction, error) {
	switch mode {
	case detector.ModeSign:
		return s.Sign.Classify(ctx, window)
	case detector.ModeLip:
		return s.Lip.Classify(ctx, window)
	case detector.ModeBoth:
		hands := make([][]float64, len(window))
		lips := make([][]float64, len(window))
		for i, f := range window {
			if len(f) < detector.HandFeatureSize {
				return Prediction{}, fmt.Errorf("frame %d has %d features, want %d", i, len(f), detector.FeatureSize(mode))
			}
			hands[i] = f[:detector.HandFeatureSize]
			lips[i] = f[detector.HandFeatureSize:]
		}
		sign, err := s.Sign.Classify(ctx, hands)
		if err != nil {
			return Prediction{}, err
		}
		lip, err := s.Lip.Classify(ctx, lips)
		if err != nil {
			return Prediction{}, err
		}
		return Fuse(sign, lip), nil
	}
	return Prediction{}, fmt.Errorf("classify: unsupported mode %q", mode)
}

// Names reports which variant serves each family.
func (s *Set) Names() map[string]string {
	return map[string]string{KindSign: s.Sign.Name(), KindLip: s.Lip.Name()}
}

// Sources locates the templates for one family.
type Sources struct {
	AssetPath string
	Stored    []*gesture.Template
}

// Select builds the classifier for one family from its asset file and stored
// templates, falling back to a Stub when neither provides any.
func Select(kind string, src Sources, labels []string) Classifier {
	var templates []*gesture.Template

	asset, err := LoadAsset(src.AssetPath)
	switch {
	case err == nil:
		templates = append(templates, asset.Templates...)
	case errors.Is(err, ErrModelUnavailable):
		slog.Debug("model asset missing", "kind", kind, "path", src.AssetPath)
	default:
		slog.Warn("model asset unreadable", "kind", kind, "path", src.AssetPath, "err", err)
	}
	templates = append(templates, src.Stored...)

	c, err := NewTrained(kind, templates)
	if err != nil {
		slog.Warn("using stub classifier", "kind", kind, "reason", err)
		return NewStub(kind, labels)
	}
	slog.Info("loaded trained classifier", "kind", kind, "templates", len(templates), "labels", c.Labels())
	return c
}
