// Package server provides the HTTP and WebSocket server for the Swaram
// translation backend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/swaram/internal/app"
	"github.com/ayusman/swaram/internal/observe"
	"github.com/ayusman/swaram/internal/server/api"
)

const shutdownTimeout = 5 * time.Second

// Config holds the server configuration.
type Config struct {
	// App serves /ws and the vocabulary API. Without it only health and
	// static files are served.
	App       *app.App
	StaticDir string

	// Metrics exposes the Prometheus endpoint at /metrics.
	Metrics bool

	// HealthInterval is the period of the health broadcast. Zero means 30s.
	HealthInterval time.Duration
}

// Server represents the HTTP server for the Swaram application.
type Server struct {
	config Config
	mux    *http.ServeMux
	ws     *TranslatorHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.HealthInterval <= 0 {
		config.HealthInterval = 30 * time.Second
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		s.ws = NewTranslatorHandler(a)
		s.mux.Handle("/ws", s.ws)

		if st := a.Store(); st != nil {
			signHandler := api.NewSignHandler(st, a)
			samplesHandler := api.NewSamplesHandler(st, a)

			// /api/signs/{id}/samples and /api/signs/{id}/train go to the
			// samples handler, everything else to the sign handler.
			signRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if strings.HasSuffix(r.URL.Path, "/samples") || strings.HasSuffix(r.URL.Path, "/train") {
					samplesHandler.ServeHTTP(w, r)
					return
				}
				signHandler.ServeHTTP(w, r)
			})

			s.mux.Handle("/api/signs", signRouter)
			s.mux.Handle("/api/signs/", signRouter)
			s.mux.Handle("/api/translations", api.NewTranslationsHandler(st))
		}
	}

	if s.config.Metrics {
		s.mux.Handle("/metrics", observe.Handler())
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Connections returns the number of open /ws connections.
func (s *Server) Connections() int {
	if s.ws == nil {
		return 0
	}
	return s.ws.Count()
}

type healthResponse struct {
	Status      string            `json:"status"`
	Uptime      string            `json:"uptime"`
	Connections int               `json:"connections"`
	QueueSize   int               `json:"queue_size"`
	Enabled     bool              `json:"enabled"`
	Models      map[string]string `json:"models,omitempty"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status:      "ok",
		Uptime:      time.Since(s.start).Round(time.Second).String(),
		Connections: s.Connections(),
		Enabled:     true,
	}
	if a := s.config.App; a != nil {
		response.QueueSize = a.QueueDepth()
		response.Enabled = a.IsEnabled()
		response.Models = a.Models()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and broadcasts health messages until ctx
// is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if s.ws != nil {
			s.ws.CloseAll()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.broadcastHealth(gctx)
		return nil
	})
	return g.Wait()
}

// broadcastHealth sends a health message to every client each interval.
func (s *Server) broadcastHealth(ctx context.Context) {
	if s.ws == nil {
		return
	}
	ticker := time.NewTicker(s.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ws.Broadcast(s.health())
		}
	}
}

func (s *Server) health() healthMessage {
	status := "healthy"
	if !s.config.App.IsEnabled() {
		status = "disabled"
	}
	return healthMessage{
		Type:        TypeHealth,
		Connections: s.ws.Count(),
		QueueSize:   s.config.App.QueueDepth(),
		Status:      status,
		Timestamp:   timestamp(),
	}
}
