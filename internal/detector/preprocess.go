package detector

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// ErrDecode is returned when frame bytes are not a decodable image.
var ErrDecode = errors.New("frame decode failed")

// Decode decodes an encoded image (JPEG or PNG) into a BGR Mat. The caller
// owns the returned Mat.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrDecode
	}
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		mat.Close()
		return gocv.NewMat(), errors.Join(ErrDecode, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), ErrDecode
	}
	return mat, nil
}

// Downscale returns a copy of frame no wider than maxWidth, preserving aspect
// ratio. When no resize is needed it returns false and the caller keeps using
// frame; otherwise the caller owns the returned Mat.
func Downscale(frame gocv.Mat, maxWidth int) (gocv.Mat, bool) {
	if maxWidth <= 0 || frame.Cols() <= maxWidth {
		return frame, false
	}
	height := frame.Rows() * maxWidth / frame.Cols()
	dst := gocv.NewMat()
	gocv.Resize(frame, &dst, image.Pt(maxWidth, height), 0, 0, gocv.InterpolationLinear)
	return dst, true
}
