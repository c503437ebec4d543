package detector

const (
	handPadding = 0.05
	lipPadding  = 0.02

	handConfidence  = 0.8
	lipConfidence   = 0.7
	floorConfidence = 0.6
)

// Detection is the landmark result for a single frame.
type Detection struct {
	Hands []HandLandmarks
	Lips  *LipLandmarks
}

// Present reports whether any hand or lip landmarks were found.
func (d *Detection) Present() bool {
	return d != nil && (len(d.Hands) > 0 || d.Lips != nil)
}

// Summary is the per-frame detection payload sent to clients.
type Summary struct {
	HandLandmarks   []Point3D    `json:"handLandmarks"`
	LipLandmarks    []Point3D    `json:"lipLandmarks"`
	HandConnections [][2]int     `json:"handConnections"`
	HandBoundingBox *BoundingBox `json:"handBoundingBox"`
	LipBoundingBox  *BoundingBox `json:"lipBoundingBox"`
	HandCount       int          `json:"handCount"`
	LipDetected     bool         `json:"lipDetected"`
	Confidence      float64      `json:"confidence"`
	Gesture         Pose         `json:"gesture"`
}

// Summarize flattens the detection into the client payload. The hand box
// encloses the first hand and the gesture is taken from the last one.
func (d *Detection) Summarize() Summary {
	s := Summary{
		HandLandmarks:   []Point3D{},
		LipLandmarks:    []Point3D{},
		HandConnections: HandConnections,
		Gesture:         PoseUnknown,
	}
	if d == nil {
		return s
	}

	s.HandCount = len(d.Hands)
	for i := range d.Hands {
		h := &d.Hands[i]
		s.HandLandmarks = append(s.HandLandmarks, h.Points[:]...)
		if s.HandBoundingBox == nil {
			s.HandBoundingBox = Bounds(h.Points[:], handPadding)
		}
		s.Gesture = h.Pose()
		s.Confidence = handConfidence
	}

	if d.Lips != nil {
		s.LipDetected = true
		s.LipLandmarks = append(s.LipLandmarks, d.Lips.Points[:]...)
		s.LipBoundingBox = Bounds(d.Lips.Points[:], lipPadding)
		if s.Confidence < lipConfidence {
			s.Confidence = lipConfidence
		}
	}

	if d.Present() && s.Confidence < floorConfidence {
		s.Confidence = floorConfidence
	}
	return s
}
