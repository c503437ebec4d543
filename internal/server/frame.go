package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/swaram/internal/detector"
)

var (
	// ErrFrameTooLarge is returned for frame payloads over the size limit.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrProtocol is returned for malformed or unexpected client messages.
	ErrProtocol = errors.New("protocol error")
	// ErrDecode is returned when a frame is not valid base64 or not an image.
	ErrDecode = detector.ErrDecode
)

// decodeFrame turns a frame payload into encoded image bytes. The size limit
// applies to the payload as received; a data URL prefix is stripped before
// base64 decoding.
func decodeFrame(payload string, maxBytes int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: no frame data provided", ErrProtocol)
	}
	if maxBytes > 0 && len(payload) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFrameTooLarge, len(payload), maxBytes)
	}

	if strings.HasPrefix(payload, "data:") {
		i := strings.IndexByte(payload, ',')
		if i < 0 {
			return nil, fmt.Errorf("%w: data URL without payload", ErrDecode)
		}
		payload = payload[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return data, nil
}
