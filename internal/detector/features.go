package detector

// HandFeatureSize is the length of the sign-mode vector: two hand slots of
// 21 landmarks with three coordinates each.
const HandFeatureSize = 2 * NumLandmarks * 3

// LipFeatureSize is the length of the lip-mode vector.
const LipFeatureSize = NumLipLandmarks * 3

// FeatureVector is one frame's flattened keypoints.
type FeatureVector []float64

// FeatureSize returns the vector length produced for mode.
func FeatureSize(mode Mode) int {
	switch mode {
	case ModeSign:
		return HandFeatureSize
	case ModeLip:
		return LipFeatureSize
	case ModeBoth:
		return HandFeatureSize + LipFeatureSize
	}
	return 0
}

// Features flattens the detection into a fixed-length vector for mode.
// Hands are wrist-normalized and placed in the left slot then the right slot;
// a hand without handedness takes the first free slot. Missing parts stay zero.
func (d *Detection) Features(mode Mode) FeatureVector {
	v := make(FeatureVector, FeatureSize(mode))
	if d == nil {
		return v
	}

	if mode.Hands() {
		var used [2]bool
		for i := range d.Hands {
			slot := handSlot(d.Hands[i].Handedness, used)
			if slot < 0 {
				continue
			}
			used[slot] = true
			n := d.Hands[i].Normalize()
			writePoints(v[slot*NumLandmarks*3:], n.Points[:])
		}
	}

	if mode.Lips() && d.Lips != nil {
		off := 0
		if mode == ModeBoth {
			off = HandFeatureSize
		}
		writePoints(v[off:], d.Lips.Points[:])
	}
	return v
}

func handSlot(handedness string, used [2]bool) int {
	switch handedness {
	case "Left":
		if !used[0] {
			return 0
		}
	case "Right":
		if !used[1] {
			return 1
		}
	}
	for i, u := range used {
		if !u {
			return i
		}
	}
	return -1
}

func writePoints(dst []float64, pts []Point3D) {
	for i, p := range pts {
		dst[i*3] = p.X
		dst[i*3+1] = p.Y
		dst[i*3+2] = p.Z
	}
}
