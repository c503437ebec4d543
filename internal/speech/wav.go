package speech

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth       = 16
	numChannels    = 1
	audioFormatPCM = 1
)

// memFile is an in-memory io.WriteSeeker for the WAV encoder, which patches
// the header sizes on Close.
type memFile struct {
	buf []byte
	pos int
}

func (f *memFile) Write(p []byte) (int, error) {
	end := f.pos + len(p)
	if end > len(f.buf) {
		f.buf = append(f.buf, make([]byte, end-len(f.buf))...)
	}
	copy(f.buf[f.pos:], p)
	f.pos = end
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(f.pos) + offset
	case io.SeekEnd:
		next = int64(len(f.buf)) + offset
	default:
		return 0, errors.New("memfile: invalid whence")
	}
	if next < 0 {
		return 0, errors.New("memfile: negative position")
	}
	f.pos = int(next)
	return next, nil
}

// EncodeWAV encodes mono 16-bit samples as a WAV file.
func EncodeWAV(samples []int, sampleRate int) ([]byte, error) {
	f := &memFile{}
	e := wav.NewEncoder(f, sampleRate, bitDepth, numChannels, audioFormatPCM)
	if err := e.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}); err != nil {
		return nil, fmt.Errorf("speech: write wav: %w", err)
	}
	if err := e.Close(); err != nil {
		return nil, fmt.Errorf("speech: close wav: %w", err)
	}
	return f.buf, nil
}

// Duration returns the approximate playback length of a WAV file.
func Duration(data []byte) (time.Duration, error) {
	if !wav.NewDecoder(bytes.NewReader(data)).IsValidFile() {
		return 0, errors.New("speech: not a valid wav file")
	}
	return wav.NewDecoder(bytes.NewReader(data)).Duration()
}
