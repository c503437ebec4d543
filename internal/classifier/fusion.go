package classifier

// fusionFloor is the confidence both predictions need before they may fuse.
const fusionFloor = 0.5

// Fuse combines sign and lip predictions for the same window. When both are
// confident and agree the result is a fusion prediction carrying the higher
// confidence; otherwise the more confident prediction wins, sign on a tie.
func Fuse(sign, lip Prediction) Prediction {
	if sign.Confidence > fusionFloor && lip.Confidence > fusionFloor && sign.Label == lip.Label && sign.Label != "" {
		return Prediction{
			Label:      sign.Label,
			Confidence: max(sign.Confidence, lip.Confidence),
			Kind:       KindFusion,
		}
	}
	if sign.Confidence >= lip.Confidence {
		return sign
	}
	return lip
}
