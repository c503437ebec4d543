package detector

// Pose is a coarse static hand shape recognised from finger extension.
type Pose string

const (
	PoseOpenHand Pose = "open_hand"
	PoseFist     Pose = "fist"
	PoseVictory  Pose = "victory"
	PoseThumbsUp Pose = "thumbs_up"
	PosePointing Pose = "pointing"
	PoseUnknown  Pose = "unknown"
)

// Pose classifies the hand by comparing each fingertip with the joint below it.
// Image Y grows downward, so a tip above its joint counts as extended.
func (h *HandLandmarks) Pose() Pose {
	if h == nil {
		return PoseUnknown
	}
	p := h.Points

	thumb := p[ThumbTip].Y < p[ThumbIP].Y
	index := p[IndexTip].Y < p[IndexPIP].Y
	middle := p[MiddleTip].Y < p[MiddlePIP].Y
	ring := p[RingTip].Y < p[RingPIP].Y
	pinky := p[PinkyTip].Y < p[PinkyPIP].Y

	if thumb && index && middle && ring && pinky {
		return PoseOpenHand
	}

	closed := p[ThumbTip].Y > p[ThumbIP].Y &&
		p[IndexTip].Y > p[IndexPIP].Y &&
		p[MiddleTip].Y > p[MiddlePIP].Y &&
		p[RingTip].Y > p[RingPIP].Y &&
		p[PinkyTip].Y > p[PinkyPIP].Y
	if closed {
		return PoseFist
	}

	switch {
	case index && middle && !ring && !pinky:
		return PoseVictory
	case thumb && !index && !middle && !ring && !pinky:
		return PoseThumbsUp
	case index && !middle && !ring && !pinky:
		return PosePointing
	}
	return PoseUnknown
}
