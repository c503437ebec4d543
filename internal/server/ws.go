package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/swaram/internal/app"
	"github.com/ayusman/swaram/internal/config"
	"github.com/ayusman/swaram/internal/detector"
	"github.com/ayusman/swaram/internal/session"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients send no matching Origin
	},
}

// errConnectionClosed ends a connection's goroutines. It is logged, never
// reported to the client.
var errConnectionClosed = errors.New("connection closed")

// TranslatorHandler serves the /ws translation protocol. Each connection
// gets a reader, a writer and a session loop; the loop owns the session
// state and handles messages strictly in arrival order.
type TranslatorHandler struct {
	app        *app.App
	cfg        config.ServerConfig
	sessionCfg session.Config

	mu    sync.RWMutex
	conns map[*wsConn]struct{}
}

// NewTranslatorHandler creates a TranslatorHandler backed by a.
func NewTranslatorHandler(a *app.App) *TranslatorHandler {
	settings := a.Settings()
	return &TranslatorHandler{
		app:        a,
		cfg:        settings.Server,
		sessionCfg: session.ConfigFrom(settings.Pipeline),
		conns:      make(map[*wsConn]struct{}),
	}
}

// wsConn is one client connection.
type wsConn struct {
	ws     *websocket.Conn
	id     string
	log    *slog.Logger
	cancel context.CancelFunc

	// limit caps the bytes of one client message kept in memory.
	limit int64

	inbox chan inbound
	out   chan any

	// owned by the session loop
	sess  *session.Session
	stats *session.Stats
}

// Count returns the number of open connections.
func (h *TranslatorHandler) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast queues msg on every connection. Connections whose outbound
// queue is full miss the message.
func (h *TranslatorHandler) Broadcast(msg any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		select {
		case c.out <- msg:
		default:
			c.log.Debug("outbound queue full, broadcast dropped")
		}
	}
}

// CloseAll ends every open connection.
func (h *TranslatorHandler) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		c.cancel()
	}
}

func (h *TranslatorHandler) add(c *wsConn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *TranslatorHandler) remove(c *wsConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and runs the connection until either side
// closes it.
func (h *TranslatorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inboxSize := h.cfg.InboxSize
	if inboxSize <= 0 {
		inboxSize = 32
	}

	id := uuid.New().String()
	c := &wsConn{
		ws:     ws,
		id:     id,
		log:    slog.With("session_id", id, "remote", r.RemoteAddr),
		cancel: cancel,
		limit:  messageLimit(h.cfg.MaxFrameBytes),
		inbox:  make(chan inbound, inboxSize),
		out:    make(chan any, inboxSize*4),
		sess:   session.New(id, h.sessionCfg),
		stats:  session.NewStats(h.sessionCfg.TargetLatency),
	}

	h.add(c)
	defer h.remove(c)
	h.app.SessionOpened(ctx)
	defer h.app.SessionClosed(context.WithoutCancel(ctx))
	h.app.OpenSession(id, r.RemoteAddr)
	c.log.Info("client connected", "connections", h.Count())

	if h.cfg.AutoStart {
		c.sess.Control(session.CommandStart)
	}

	c.out <- welcomeMessage{
		Type:           TypeWelcome,
		Message:        "Connected to Malayalam Sign Language & Lip Reading Server",
		SessionID:      id,
		Labels:         h.app.Labels(),
		SupportedModes: detector.Modes,
		ServerVersion:  app.Version,
		Timestamp:      timestamp(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.read(gctx, c) })
	g.Go(func() error { return c.write(gctx) })
	g.Go(func() error { return h.loop(gctx, c) })
	g.Go(func() error {
		<-gctx.Done()
		// unblocks the reader
		ws.Close()
		return nil
	})

	err = g.Wait()
	h.app.CloseSession(id, c.sess.Frames())
	if err != nil && !errors.Is(err, errConnectionClosed) && !errors.Is(err, context.Canceled) {
		c.log.Warn("connection ended with error", "err", err, "frames", c.sess.Frames())
		return
	}
	c.log.Info("client disconnected", "frames", c.sess.Frames())
}

// messageLimit returns the largest client message read into memory. It
// sits well above the frame limit so an oversized frame still reaches the
// frame size check and gets its frame_id echoed back.
func messageLimit(maxFrameBytes int) int64 {
	if maxFrameBytes <= 0 {
		maxFrameBytes = config.DefaultMaxFrameBytes
	}
	return int64(maxFrameBytes)*4 + 64<<10
}

// read parses client messages into the inbox. Frames are dropped when the
// inbox is full; other messages wait for room. Messages over the read
// limit are drained and answered with an error; the connection stays open.
func (h *TranslatorHandler) read(ctx context.Context, c *wsConn) error {
	for {
		_, r, err := c.ws.NextReader()
		if err != nil {
			if ctx.Err() != nil {
				return errConnectionClosed
			}
			return fmt.Errorf("%w: %v", errConnectionClosed, err)
		}

		data, err := io.ReadAll(io.LimitReader(r, c.limit+1))
		if err == nil && int64(len(data)) > c.limit {
			_, err = io.Copy(io.Discard, r)
			if err == nil {
				c.log.Debug("message over read limit discarded", "limit", c.limit)
				h.app.Metrics().RecordError(ctx, "frame_too_large")
				c.send(ctx, newError(fmt.Sprintf("Frame too large: %v: message exceeds %d bytes", ErrFrameTooLarge, c.limit), nil))
				continue
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return errConnectionClosed
			}
			return fmt.Errorf("%w: read: %v", errConnectionClosed, err)
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(ctx, newError(fmt.Sprintf("Invalid JSON: %v", err), nil))
			continue
		}

		if msg.Type == TypeFrame {
			select {
			case c.inbox <- msg:
			default:
				c.log.Debug("inbox full, frame dropped")
			}
			continue
		}

		select {
		case c.inbox <- msg:
		case <-ctx.Done():
			return errConnectionClosed
		}
	}
}

// write is the only goroutine writing to the websocket.
func (c *wsConn) write(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			c.ws.SetWriteDeadline(time.Now().Add(time.Second))
			c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case msg := <-c.out:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				return fmt.Errorf("%w: write: %v", errConnectionClosed, err)
			}
		}
	}
}

// send queues msg for the writer.
func (c *wsConn) send(ctx context.Context, msg any) {
	select {
	case c.out <- msg:
	case <-ctx.Done():
	}
}

func (h *TranslatorHandler) loop(ctx context.Context, c *wsConn) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-c.inbox:
			h.handle(ctx, c, msg)
		}
	}
}

func (h *TranslatorHandler) handle(ctx context.Context, c *wsConn, msg inbound) {
	switch msg.Type {
	case TypePing:
		c.send(ctx, pongMessage{Type: TypePong, ClientTimestamp: msg.Timestamp, Timestamp: timestamp()})

	case TypeHandshake:
		h.app.IdentifySession(c.id, msg.Client, msg.Platform)
		c.log.Info("handshake", "client", msg.Client, "platform", msg.Platform)
		c.send(ctx, handshakeAckMessage{
			Type:       TypeHandshakeAck,
			Message:    "Handshake received",
			ClientInfo: clientInfo{Client: msg.Client, Platform: msg.Platform},
			Timestamp:  timestamp(),
		})

	case TypeMode:
		mode, err := detector.ParseMode(msg.Mode)
		if err != nil {
			c.send(ctx, newError(err.Error(), nil))
			return
		}
		if c.sess.SetMode(mode) {
			c.log.Info("mode changed", "mode", mode)
		}
		c.send(ctx, modeChangedMessage{
			Type:      TypeModeChanged,
			Mode:      mode,
			Message:   "Processing mode changed to " + string(mode),
			Timestamp: timestamp(),
		})

	case TypeControl:
		cmd := session.Command(strings.ToLower(msg.Command))
		if cmd == session.CommandStop && c.sess.Pending() {
			c.log.Info("stopped before pause, words not flushed", "words", c.sess.Words())
		}
		status, err := c.sess.Control(cmd)
		if err != nil {
			c.send(ctx, newError(err.Error(), nil))
			return
		}
		c.log.Info("control", "command", cmd, "state", c.sess.State())
		c.send(ctx, controlResponseMessage{
			Type:      TypeControlResponse,
			Command:   string(cmd),
			Status:    status,
			State:     string(c.sess.State()),
			Message:   "Processing " + status,
			Timestamp: timestamp(),
		})

	case TypeFrame:
		h.handleFrame(ctx, c, msg)

	default:
		c.log.Debug("unknown message type", "type", msg.Type)
		c.send(ctx, newError(fmt.Sprintf("%v: unknown message type: %q", ErrProtocol, msg.Type), nil))
	}
}

// handleFrame runs one frame through the pipeline. Well-formed frames
// received while the session is not active, or while processing is
// disabled, only get a status reply.
func (h *TranslatorHandler) handleFrame(ctx context.Context, c *wsConn, msg inbound) {
	start := time.Now()

	// A payload that fails the size or encoding checks is an error in
	// every state and never reaches the session.
	data, err := decodeFrame(msg.Frame, h.cfg.MaxFrameBytes)
	if err != nil {
		h.reject(ctx, c, c.sess.Mode(), err, msg.FrameID)
		return
	}
	c.sess.CountFrame()

	if !h.app.IsEnabled() {
		h.app.RecordFrame(ctx, c.sess.Mode(), "disabled", 0)
		c.send(ctx, c.status("Frame processing is disabled", msg.FrameID))
		return
	}
	if !c.sess.Active() {
		h.app.RecordFrame(ctx, c.sess.Mode(), "ignored", 0)
		c.send(ctx, c.status("Session not active, send control start", msg.FrameID))
		return
	}

	if msg.Mode != "" {
		mode, err := detector.ParseMode(msg.Mode)
		if err != nil {
			c.send(ctx, newError(err.Error(), msg.FrameID))
			return
		}
		if c.sess.SetMode(mode) {
			c.log.Info("mode changed by frame", "mode", mode)
		}
	}
	mode := c.sess.Mode()

	ext, err := h.app.Extract(ctx, data, mode)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.reject(ctx, c, mode, err, msg.FrameID)
		return
	}

	present := ext.Detection.Present()
	c.send(ctx, detectionMessage{
		Type:      TypeDetection,
		Detection: ext.Detection.Summarize(),
		Mode:      mode,
		FrameID:   msg.FrameID,
		Timestamp: timestamp(),
	})

	var word *session.Word
	if c.sess.Push(ext.Features) {
		p, err := h.app.Classify(ctx, mode, c.sess.Window())
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			c.log.Warn("classification failed", "err", err)
			h.app.Metrics().RecordError(ctx, "classify")
			c.sess.Skip()
		default:
			word = c.sess.Observe(p)
		}
	} else {
		c.sess.Skip()
	}

	if word != nil {
		h.app.RecordWord(ctx, word)
		c.log.Info("word detected", "label", word.Label, "confidence", word.Confidence, "kind", word.Kind)
		h.translate(ctx, c, translationData{
			Text:       word.Label,
			Confidence: word.Confidence,
			Type:       TranslationWord,
			Kind:       word.Kind,
			Words:      []string{word.Label},
		}, msg.FrameID)
	}

	now := time.Now()
	if sentence := c.sess.Presence(present, now); sentence != nil {
		h.app.RecordSentence(ctx, c.id, mode, sentence)
		c.log.Info("sentence flushed", "text", sentence.Text, "words", len(sentence.Words))
		h.translate(ctx, c, translationData{
			Text:       sentence.Text,
			Confidence: sentence.Confidence,
			Type:       TranslationSentence,
			Kind:       sentence.Kind,
			Words:      sentence.Words,
		}, msg.FrameID)
	}

	latency := time.Since(start)
	h.app.RecordFrame(ctx, mode, "processed", latency)
	c.stats.Record(now, latency)
	if c.stats.Due(now) {
		opt := c.stats.Optimizer()
		c.send(ctx, statsMessage{
			Type:               TypeStats,
			FPS:                c.stats.FPS(),
			Latency:            float64(opt.Average().Microseconds()) / 1000,
			BufferFill:         c.sess.BufferFill(),
			QueueSize:          h.app.QueueDepth(),
			RecommendedFPS:     opt.FPS(),
			RecommendedQuality: opt.Quality(),
			Timestamp:          timestamp(),
		})
	}
}

// reject reports a frame that could not be processed. The session state is
// untouched.
func (h *TranslatorHandler) reject(ctx context.Context, c *wsConn, mode detector.Mode, err error, frameID json.RawMessage) {
	var kind, message string
	switch {
	case errors.Is(err, ErrFrameTooLarge):
		kind, message = "frame_too_large", "Frame too large: "+err.Error()
	case errors.Is(err, ErrDecode):
		kind, message = "decode", "Frame decoding failed: "+err.Error()
	case errors.Is(err, ErrProtocol):
		kind, message = "protocol", err.Error()
	default:
		kind, message = "processing", "Frame processing error: "+err.Error()
	}
	c.log.Debug("frame rejected", "kind", kind, "err", err)
	h.app.Metrics().RecordError(ctx, kind)
	h.app.RecordFrame(ctx, mode, "rejected", 0)
	c.send(ctx, newError(message, frameID))
}

// translate synthesizes text and sends the translation. A synthesis failure
// still delivers the text, without audio.
func (h *TranslatorHandler) translate(ctx context.Context, c *wsConn, data translationData, frameID json.RawMessage) {
	msg := translationMessage{
		Type:      TypeTranslation,
		Data:      data,
		FrameID:   frameID,
		Timestamp: timestamp(),
	}

	audio, err := h.app.Speak(ctx, data.Text)
	if err != nil {
		c.log.Warn("speech synthesis failed", "text", data.Text, "err", err)
	} else {
		msg.Audio = &audioData{
			Audio:  base64.StdEncoding.EncodeToString(audio.Data),
			Format: audio.Format,
			Lang:   audio.Language,
		}
	}
	c.send(ctx, msg)
}

func (c *wsConn) status(message string, frameID json.RawMessage) statusMessage {
	return statusMessage{
		Type:       TypeStatus,
		Message:    message,
		State:      string(c.sess.State()),
		BufferFill: c.sess.BufferFill(),
		FrameID:    frameID,
		Timestamp:  timestamp(),
	}
}
