// Command swaramctl is a command-line client for the Swaram server. It
// performs the handshake, selects a mode, starts a session and streams
// frames from a webcam, an image file or a synthetic pattern, printing the
// server's replies.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/swaram/internal/capture"
)

func main() {
	os.Exit(run())
}

func run() int {
	url := flag.String("url", "ws://localhost:8765/ws", "server WebSocket URL")
	mode := flag.String("mode", "sign", "recognition mode: sign, lip or both")
	camera := flag.Int("camera", -1, "camera device to stream; negative uses -image or a synthetic pattern")
	image := flag.String("image", "", "image file streamed in a loop when no camera is used")
	frames := flag.Int("frames", 10, "frames to send; 0 streams until interrupted")
	quality := flag.Float64("quality", 0.8, "initial JPEG quality in (0, 1]")
	idleFPS := flag.Int("idle-fps", 2, "upload rate while nothing moves")
	activeFPS := flag.Int("active-fps", 15, "upload rate while the scene moves")
	threshold := flag.Float64("motion", 1.0, "percentage of changed pixels that counts as motion")
	verbose := flag.Bool("v", false, "log every message")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, cleanup, err := openSource(*camera, *image)
	if err != nil {
		slog.Error("failed to open frame source", "err", err)
		return 1
	}
	defer cleanup()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	c, welcome, err := Dial(dialCtx, *url)
	if err != nil {
		slog.Error("connection failed", "url", *url, "err", err)
		return 1
	}
	defer c.Close()
	fmt.Printf("connected: %s\nvocabulary: %v\n", welcome.Message, welcome.Labels)

	if _, err := c.Call(ctx, map[string]any{"type": "handshake", "client": "swaramctl", "platform": runtime.GOOS}, "handshake_ack"); err != nil {
		slog.Error("handshake failed", "err", err)
		return 1
	}
	if _, err := c.Call(ctx, map[string]any{"type": "mode", "mode": *mode}, "mode_changed"); err != nil {
		slog.Error("mode change failed", "err", err)
		return 1
	}
	if r, err := c.Call(ctx, map[string]any{"type": "control", "command": "start"}, "control_response"); err != nil {
		slog.Error("start failed", "err", err)
		return 1
	} else {
		fmt.Printf("session %s\n", r.Status)
	}

	err = c.Stream(ctx, src, StreamConfig{
		Mode:      *mode,
		Frames:    *frames,
		Quality:   *quality,
		IdleFPS:   *idleFPS,
		ActiveFPS: *activeFPS,
		Motion:    *threshold,
		Hold:      2 * time.Second,
	}, printReply)
	if err != nil {
		slog.Error("streaming failed", "err", err)
		return 1
	}
	return 0
}

// openSource picks the webcam, the image file or a synthetic pattern.
func openSource(camera int, image string) (capture.Source, func(), error) {
	if camera >= 0 {
		return capture.NewWebcam(camera, 0, 0), func() {}, nil
	}

	var frames []gocv.Mat
	if image != "" {
		img := gocv.IMRead(image, gocv.IMReadColor)
		if img.Empty() {
			img.Close()
			return nil, nil, fmt.Errorf("cannot read image %q", image)
		}
		frames = append(frames, img)
	} else {
		frames = syntheticFrames()
	}
	cleanup := func() {
		for _, f := range frames {
			f.Close()
		}
	}
	return capture.NewPlayback(frames, true), cleanup, nil
}

// syntheticFrames alternates two gray levels so the motion detector sees
// activity.
func syntheticFrames() []gocv.Mat {
	var frames []gocv.Mat
	for _, v := range []float64{64, 192} {
		frames = append(frames, gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0),
			capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3))
	}
	return frames
}

func printReply(r reply) {
	switch r.Type {
	case "translation":
		if r.Data == nil {
			return
		}
		audio := "no audio"
		if r.Audio != nil {
			audio = fmt.Sprintf("%s audio, %d base64 bytes", r.Audio.Format, len(r.Audio.Audio))
		}
		fmt.Printf("%s: %s (%.2f, %s) [%s]\n", r.Data.Type, r.Data.Text, r.Data.Confidence, r.Data.Kind, audio)
	case "stats":
		fmt.Printf("stats: %.1f fps, %.1f ms, buffer %d, recommended %d fps q%.1f\n",
			r.FPS, r.Latency, r.BufferFill, r.RecommendedFPS, r.RecommendedQuality)
	case "error":
		fmt.Printf("error: %s\n", r.Message)
	case "control_response":
		fmt.Printf("session %s\n", r.Status)
	case "status":
		fmt.Printf("status: %s\n", r.Message)
	case "health":
		fmt.Printf("health: %d connections\n", r.Connections)
	default:
		slog.Debug("reply", "type", r.Type)
	}
}
