package classifier

import (
	"context"

	"github.com/ayusman/swaram/internal/detector"
)

const stubConfidence = 0.9

// poseOrder maps recognised hand poses onto vocabulary positions.
var poseOrder = map[detector.Pose]int{
	detector.PoseOpenHand: 0,
	detector.PoseFist:     1,
	detector.PoseVictory:  2,
	detector.PoseThumbsUp: 3,
	detector.PosePointing: 4,
}

// Stub is the degraded classifier used when no model is available.
// In sign mode it reads the hand pose of the newest frame and maps it onto the
// vocabulary; in lip mode it never produces a label.
type Stub struct {
	kind   string
	labels []string
}

// NewStub creates a stub classifier of the given kind over labels.
func NewStub(kind string, labels []string) *Stub {
	return &Stub{kind: kind, labels: append([]string(nil), labels...)}
}

// Classify implements Classifier.
func (s *Stub) Classify(ctx context.Context, window [][]float64) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	p := Prediction{Kind: s.kind}
	if s.kind != KindSign || len(window) == 0 || len(s.labels) == 0 {
		return p, nil
	}

	hand, ok := handFromFeatures(window[len(window)-1])
	if !ok {
		return p, nil
	}
	idx, ok := poseOrder[hand.Pose()]
	if !ok {
		return p, nil
	}
	p.Label = s.labels[idx%len(s.labels)]
	p.Confidence = stubConfidence
	return p, nil
}

// Name implements Classifier.
func (s *Stub) Name() string { return "stub" }

// handFromFeatures rebuilds the first non-empty hand slot of a sign vector.
// Normalization only translates and scales, so finger order along Y survives.
func handFromFeatures(v []float64) (*detector.HandLandmarks, bool) {
	const slot = detector.NumLandmarks * 3
	for s := 0; s < 2 && (s+1)*slot <= len(v); s++ {
		part := v[s*slot : (s+1)*slot]
		if allZero(part) {
			continue
		}
		h := &detector.HandLandmarks{}
		for i := range h.Points {
			h.Points[i] = detector.Point3D{X: part[i*3], Y: part[i*3+1], Z: part[i*3+2]}
		}
		return h, true
	}
	return nil, false
}

func allZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
