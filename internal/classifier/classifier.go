// Package classifier maps a window of feature vectors to a label and a
// confidence. Trained classifiers match recorded templates; the stub keeps the
// server usable when no model asset exists.
package classifier

import (
	"context"
	"errors"
)

// ErrModelUnavailable is returned when no model asset or stored template is
// available for a mode. Callers fall back to a [Stub].
var ErrModelUnavailable = errors.New("classifier: model unavailable")

// Prediction kinds reported to clients.
const (
	KindSign   = "sign"
	KindLip    = "lip"
	KindFusion = "fusion"
)

// Prediction is a single raw classification of a window.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Kind       string  `json:"kind"`
}

// Classifier classifies a full window, oldest frame first.
// Implementations are read-only after construction and safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, window [][]float64) (Prediction, error)

	// Name identifies the variant in logs and the health endpoint.
	Name() string
}
