package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/swaram/internal/capture"
)

// reply holds the server message fields the client reads.
type reply struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Status  string   `json:"status"`
	Mode    string   `json:"mode"`
	Labels  []string `json:"labels"`

	Data *struct {
		Text       string   `json:"text"`
		Confidence float64  `json:"confidence"`
		Type       string   `json:"type"`
		Kind       string   `json:"kind"`
		Words      []string `json:"words"`
	} `json:"data"`
	Audio *struct {
		Audio  string `json:"audio"`
		Format string `json:"format"`
		Lang   string `json:"lang"`
	} `json:"audio"`

	FPS                float64 `json:"fps"`
	Latency            float64 `json:"latency"`
	BufferFill         int     `json:"buffer_fill"`
	RecommendedFPS     int     `json:"recommended_fps"`
	RecommendedQuality float64 `json:"recommended_quality"`
	Connections        int     `json:"connections"`
}

// Client speaks the /ws protocol.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to url and waits for the welcome message.
func Dial(ctx context.Context, url string) (*Client, reply, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, reply{}, fmt.Errorf("dial %s: %w", url, err)
	}
	// frames are small but translations carry audio
	conn.SetReadLimit(16 << 20)

	c := &Client{conn: conn}
	welcome, err := c.Expect(ctx, "welcome")
	if err != nil {
		conn.Close(websocket.StatusProtocolError, "no welcome")
		return nil, reply{}, err
	}
	return c, welcome, nil
}

// Send writes msg as JSON.
func (c *Client) Send(ctx context.Context, msg any) error {
	return wsjson.Write(ctx, c.conn, msg)
}

// Receive reads the next server message.
func (c *Client) Receive(ctx context.Context) (reply, error) {
	var r reply
	err := wsjson.Read(ctx, c.conn, &r)
	return r, err
}

// Expect reads until a message of type typ arrives. An error message from
// the server fails the wait.
func (c *Client) Expect(ctx context.Context, typ string) (reply, error) {
	for {
		r, err := c.Receive(ctx)
		if err != nil {
			return reply{}, err
		}
		switch r.Type {
		case typ:
			return r, nil
		case "error":
			return reply{}, fmt.Errorf("server error: %s", r.Message)
		}
	}
}

// Call sends msg and waits for the reply of type typ.
func (c *Client) Call(ctx context.Context, msg map[string]any, typ string) (reply, error) {
	if err := c.Send(ctx, msg); err != nil {
		return reply{}, err
	}
	return c.Expect(ctx, typ)
}

// Close ends the connection normally.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

// StreamConfig controls frame upload.
type StreamConfig struct {
	Mode      string
	Frames    int // 0 streams until the context ends or the source runs dry
	Quality   float64
	IdleFPS   int
	ActiveFPS int
	Motion    float64
	Hold      time.Duration
}

// tuning is shared between the sender and the receiver, which applies the
// server's recommendations.
type tuning struct {
	mu      sync.Mutex
	pacer   *capture.Pacer
	quality float64
}

// Stream uploads frames from src until the frame budget is spent, the
// source runs dry or ctx ends, then stops the session and waits for the
// remaining replies. onReply, when set, sees every reply.
func (c *Client) Stream(ctx context.Context, src capture.Source, cfg StreamConfig, onReply func(reply)) error {
	if err := src.Open(); err != nil {
		return err
	}
	defer src.Close()

	tune := &tuning{
		pacer:   capture.NewPacer(cfg.IdleFPS, cfg.ActiveFPS, cfg.Hold),
		quality: cfg.Quality,
	}
	motion := capture.NewMotionDetector(cfg.Motion)
	defer motion.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.send(gctx, src, motion, tune, cfg); err != nil {
			return err
		}
		// replies arrive in order, so the stop acknowledgement is the last
		return c.Send(gctx, map[string]any{"type": "control", "command": "stop"})
	})
	g.Go(func() error {
		for {
			r, err := c.Receive(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return err
			}
			if r.Type == "stats" && r.RecommendedFPS > 0 {
				tune.mu.Lock()
				tune.pacer.SetActiveFPS(r.RecommendedFPS)
				tune.quality = r.RecommendedQuality
				tune.mu.Unlock()
			}
			if onReply != nil {
				onReply(r)
			}
			if r.Type == "control_response" && r.Status == "stopped" {
				return nil
			}
		}
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Client) send(ctx context.Context, src capture.Source, motion *capture.MotionDetector, tune *tuning, cfg StreamConfig) error {
	for i := 0; cfg.Frames == 0 || i < cfg.Frames; i++ {
		frame, err := src.Read()
		if errors.Is(err, capture.ErrExhausted) {
			return nil
		}
		if err != nil {
			return err
		}
		moving, _ := motion.Detect(frame)

		tune.mu.Lock()
		quality := tune.quality
		wait := tune.pacer.Observe(moving, time.Now())
		tune.mu.Unlock()

		data, err := capture.EncodeJPEG(frame, quality)
		frame.Close()
		if err != nil {
			return err
		}

		msg := map[string]any{
			"type":      "frame",
			"frame":     base64.StdEncoding.EncodeToString(data),
			"mode":      cfg.Mode,
			"frame_id":  i,
			"timestamp": float64(time.Now().UnixMilli()) / 1000,
		}
		if err := c.Send(ctx, msg); err != nil {
			return err
		}
		slog.Debug("frame sent", "frame_id", i, "bytes", len(data), "moving", moving, "quality", quality)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
	return nil
}
