// Command swaram runs the sign language and lip reading translation server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/swaram/internal/app"
	"github.com/ayusman/swaram/internal/config"
	"github.com/ayusman/swaram/internal/observe"
	"github.com/ayusman/swaram/internal/server"
	"github.com/ayusman/swaram/internal/store"
	"github.com/ayusman/swaram/internal/tray"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults are used when empty)")
	addr := flag.String("addr", "", "listen address, overrides server.listen_addr")
	withTray := flag.Bool("tray", false, "show a system tray icon")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "swaram: %v\n", err)
			return 1
		}
	}
	if *addr != "" {
		cfg.Server.ListenAddr = *addr
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))
	slog.Info("swaram starting",
		"version", app.Version,
		"listen_addr", cfg.Server.ListenAddr,
		"speech", cfg.Speech.Provider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "swaram", ServiceVersion: app.Version})
		if err != nil {
			slog.Error("failed to initialise metrics", "err", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("metrics shutdown error", "err", err)
			}
		}()
	}

	st, err := openStore(cfg.Store.Path)
	if err != nil {
		slog.Error("failed to initialise store", "err", err)
		return 1
	}
	defer st.Close()
	slog.Info("store opened", "path", st.Path())

	application, err := app.New(app.Config{Settings: cfg, Store: st})
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}
	defer application.Close()
	slog.Info("classifiers loaded", "models", application.Models(), "labels", len(application.Labels()))

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		slog.Info("serving static files", "dir", staticDir)
	}

	srv := server.New(server.Config{
		App:            application,
		StaticDir:      staticDir,
		Metrics:        cfg.Metrics.Enabled,
		HealthInterval: cfg.Server.HealthInterval,
	})

	if !*withTray {
		if err := srv.Run(ctx, cfg.Server.ListenAddr); err != nil {
			slog.Error("server failed", "err", err)
			return 1
		}
		slog.Info("goodbye")
		return 0
	}

	// The tray must own the main goroutine.
	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx, cfg.Server.ListenAddr) }()

	t := tray.New()
	t.OnToggle(application.SetEnabled)
	t.OnOpen(func() { openBrowser(localURL(cfg.Server.ListenAddr)) })
	t.OnQuit(stop)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				t.Update(tray.Status{
					Enabled:      application.IsEnabled(),
					Connections:  srv.Connections(),
					LastSentence: application.LastSentence(),
				})
			}
		}
	}()
	t.Run()

	stop()
	if err := <-errc; err != nil {
		slog.Error("server failed", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openStore opens the database at path, or ~/.swaram/swaram.db.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		dir := app.DataDir()
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		path = filepath.Join(dir, "swaram.db")
	}
	return store.New(path)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.swaram/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(app.DataDir(), "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func localURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("failed to open browser", "url", url, "err", err)
		return
	}
	go cmd.Wait()
}
