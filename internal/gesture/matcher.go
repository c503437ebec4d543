// Package gesture turns per-frame feature vectors into debounced sign
// predictions.
package gesture

import (
	"math"
	"sort"
	"sync"
)

// Template is a reference feature sequence for one label.
type Template struct {
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	Mode      string      `json:"mode"`
	Frames    [][]float64 `json:"frames"`
	Tolerance float64     `json:"tolerance"` // maximum DTW distance for a match
}

// Match represents a matching result between input and a template.
type Match struct {
	Template *Template // The matched template
	Score    float64   // Match score (0-1, higher is better)
	Distance float64   // DTW distance between input and template
}

// SequenceMatcher matches feature sequences against registered templates
// using DTW. It is safe for concurrent use.
type SequenceMatcher struct {
	mu        sync.RWMutex
	templates []*Template
}

// NewSequenceMatcher creates a new SequenceMatcher instance.
func NewSequenceMatcher() *SequenceMatcher {
	return &SequenceMatcher{
		templates: make([]*Template, 0),
	}
}

// AddTemplate adds a template to the matcher.
func (m *SequenceMatcher) AddTemplate(t *Template) {
	if t == nil || len(t.Frames) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates = append(m.templates, t)
}

// Len returns the number of registered templates.
func (m *SequenceMatcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.templates)
}

// Labels returns the distinct template labels in registration order.
func (m *SequenceMatcher) Labels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var labels []string
	for _, t := range m.templates {
		if !seen[t.Label] {
			seen[t.Label] = true
			labels = append(labels, t.Label)
		}
	}
	return labels
}

// Match finds templates close to seq.
// Returns matches sorted by score in descending order (best matches first).
// A sequence with no signal at all matches nothing.
func (m *SequenceMatcher) Match(seq [][]float64) []Match {
	if len(seq) == 0 || isZero(seq) {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for _, template := range m.templates {
		distance := DTWDistance(seq, template.Frames)
		if math.IsInf(distance, 1) {
			continue
		}

		// Only include if distance is within tolerance
		if template.Tolerance > 0 && distance > template.Tolerance {
			continue
		}

		matches = append(matches, Match{
			Template: template,
			Score:    1.0 / (1.0 + distance),
			Distance: distance,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}
