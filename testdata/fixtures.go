// Package testdata builds encoded frames for tests that exercise the real
// decode path.
package testdata

import (
	"encoding/base64"
	"fmt"

	"gocv.io/x/gocv"
)

// Gray is the fill value of generated frames.
const Gray = 128

// JPEG encodes a solid gray width x height frame.
func JPEG(width, height int) ([]byte, error) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(Gray, Gray, Gray, 0), height, width, gocv.MatTypeCV8UC3)
	defer frame.Close()

	buf, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory freed by Close.
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Base64Frame returns a 640x480 JPEG as standard base64.
func Base64Frame() (string, error) {
	data, err := JPEG(640, 480)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DataURLFrame returns a 640x480 JPEG wrapped in a data URL.
func DataURLFrame() (string, error) {
	b64, err := Base64Frame()
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + b64, nil
}
