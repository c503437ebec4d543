package gesture

import (
	"encoding/json"
	"fmt"
)

// Trainer processes recorded samples into templates.
type Trainer struct{}

// NewTrainer creates a new Trainer instance.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// Sample is one recorded performance of a sign: a feature vector per frame.
type Sample struct {
	Mode      string      `json:"mode"`
	Frames    [][]float64 `json:"frames"`
	Timestamp int64       `json:"timestamp"`
}

// Train averages multiple samples into a single template sequence.
// Every sample is resampled to the first sample's length before averaging.
func (t *Trainer) Train(samples []json.RawMessage) ([][]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	var all [][][]float64
	for i, raw := range samples {
		var sample Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("failed to parse sample %d: %w", i, err)
		}
		if len(sample.Frames) < 2 {
			return nil, fmt.Errorf("sample %d has insufficient frames", i)
		}
		all = append(all, sample.Frames)
	}

	width := len(all[0][0])
	for i, seq := range all {
		for j, f := range seq {
			if len(f) != width {
				return nil, fmt.Errorf("sample %d frame %d has %d features, expected %d", i, j, len(f), width)
			}
		}
	}

	targetLength := len(all[0])
	averaged := make([][]float64, targetLength)
	for i := range averaged {
		averaged[i] = make([]float64, width)
	}

	for _, seq := range all {
		resampled := resample(seq, targetLength)
		for i, f := range resampled {
			for k, v := range f {
				averaged[i][k] += v
			}
		}
	}

	n := float64(len(all))
	for _, f := range averaged {
		for k := range f {
			f[k] /= n
		}
	}

	return averaged, nil
}

// Tolerance suggests a match tolerance for a template: the largest DTW
// distance from any training sample to it, with headroom.
func (t *Trainer) Tolerance(template [][]float64, samples []json.RawMessage) float64 {
	var worst float64
	for _, raw := range samples {
		var sample Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			continue
		}
		if d := DTWDistance(sample.Frames, template); d > worst {
			worst = d
		}
	}
	return worst*1.5 + 0.05
}

// resample resamples a sequence to have exactly targetLength frames.
// Uses linear interpolation between neighbouring frames.
func resample(seq [][]float64, targetLength int) [][]float64 {
	if len(seq) == 0 {
		return nil
	}

	if len(seq) == 1 || targetLength <= 1 {
		return [][]float64{seq[0]}
	}

	result := make([][]float64, targetLength)

	for i := 0; i < targetLength; i++ {
		// Map index i to a position in the original sequence
		t := float64(i) / float64(targetLength-1)
		pos := t * float64(len(seq)-1)

		idx := int(pos)
		if idx >= len(seq)-1 {
			idx = len(seq) - 2
		}
		frac := pos - float64(idx)

		a, b := seq[idx], seq[idx+1]
		f := make([]float64, len(a))
		for k := range f {
			f[k] = a[k] + frac*(b[k]-a[k])
		}
		result[i] = f
	}

	return result
}
