package testdata

import (
	"encoding/base64"
	"strings"
	"testing"

	"gocv.io/x/gocv"
)

func TestJPEG_Decodes(t *testing.T) {
	data, err := JPEG(320, 240)
	if err != nil {
		t.Fatalf("JPEG() failed: %v", err)
	}
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		t.Fatalf("IMDecode() failed: %v", err)
	}
	defer mat.Close()
	if mat.Cols() != 320 || mat.Rows() != 240 {
		t.Errorf("expected 320x240, got %dx%d", mat.Cols(), mat.Rows())
	}
}

func TestDataURLFrame(t *testing.T) {
	url, err := DataURLFrame()
	if err != nil {
		t.Fatalf("DataURLFrame() failed: %v", err)
	}
	payload, ok := strings.CutPrefix(url, "data:image/jpeg;base64,")
	if !ok {
		t.Fatalf("missing data URL prefix: %.40s", url)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		t.Errorf("payload is not base64: %v", err)
	}
}
