// Package tray provides a system tray interface for the Swaram translation
// server.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

const maxSentenceRunes = 32

// Status is the server state shown in the menu.
type Status struct {
	Enabled      bool
	Connections  int
	LastSentence string
}

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuConnections *systray.MenuItem
	menuLast        *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when frame processing is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback function to be called when the web UI item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Swaram")
	systray.SetTooltip("Swaram sign language translation server")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Accept or ignore incoming frames")
	systray.AddSeparator()

	t.menuConnections = systray.AddMenuItem(connectionsTitle(0), "Connected clients")
	t.menuConnections.Disable()
	t.menuLast = systray.AddMenuItem(lastTitle(""), "Last translated sentence")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Web UI...", "Open the web interface in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Stop the server and quit")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handle(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handle(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.menuToggle.SetTitle(toggleTitle(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// outside the lock; the callback may call back into the tray
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handle(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Update refreshes the menu from s. It is a no-op before the tray is ready.
func (t *Tray) Update(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = s.Enabled
	if t.menuToggle == nil {
		return
	}
	t.menuToggle.SetTitle(toggleTitle(s.Enabled))
	t.menuConnections.SetTitle(connectionsTitle(s.Connections))
	t.menuLast.SetTitle(lastTitle(s.LastSentence))
	systray.SetTooltip(fmt.Sprintf("Swaram: %s", connectionsTitle(s.Connections)))
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Accepting frames"
	}
	return "○ Paused"
}

func connectionsTitle(n int) string {
	if n == 1 {
		return "1 client connected"
	}
	return fmt.Sprintf("%d clients connected", n)
}

func lastTitle(sentence string) string {
	if sentence == "" {
		return "Last: none"
	}
	r := []rune(sentence)
	if len(r) > maxSentenceRunes {
		sentence = string(r[:maxSentenceRunes]) + "…"
	}
	return "Last: " + sentence
}
