// Package tray provides a macOS system tray interface for bird.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/bird/internal/hand"
)

// Tray represents the macOS system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onViewer func()
	onQuit   func()
	enabled  bool
	hands    []hand.Chirality
	status   map[hand.Chirality]string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuHands  map[hand.Chirality]*systray.MenuItem
}

// New creates a Tray showing one status line per hand, enabled by default.
func New(hands ...hand.Chirality) *Tray {
	status := make(map[hand.Chirality]string, len(hands))
	for _, h := range hands {
		status[h] = "lost"
	}
	return &Tray{
		enabled:   true,
		hands:     hands,
		status:    status,
		menuHands: make(map[hand.Chirality]*systray.MenuItem, len(hands)),
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnViewer sets the callback for the "Open Viewer" item.
func (t *Tray) OnViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

func (t *Tray) onReady() {
	systray.SetTitle("Bird")
	systray.SetTooltip("Bird hand cursor")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()

	for _, h := range t.hands {
		item := systray.AddMenuItem(StatusLine(h, t.status[h]), "Cursor status")
		item.Disable()
		t.menuHands[h] = item
	}
	t.mu.Unlock()
	systray.AddSeparator()

	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the cursor viewer in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Bird")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuViewer.ClickedCh:
				t.handleViewer()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	enabled, callback := t.toggle()
	if callback != nil {
		callback(enabled)
	}
}

// toggle flips the enabled state and returns it with the callback to run
// outside the lock.
func (t *Tray) toggle() (bool, func(bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = !t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(t.enabled))
	}
	return t.enabled, t.onToggle
}

func (t *Tray) handleViewer() {
	t.mu.RLock()
	callback := t.onViewer
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the status line of hand h, e.g. "selected".
func (t *Tray) SetStatus(h hand.Chirality, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.status[h]; !ok {
		return
	}
	t.status[h] = status
	if item := t.menuHands[h]; item != nil {
		item.SetTitle(StatusLine(h, status))
	}
}

// Status returns the status shown for hand h.
func (t *Tray) Status(h hand.Chirality) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status[h]
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// StatusLine formats a hand's menu line, e.g. "Left: selected".
func StatusLine(h hand.Chirality, status string) string {
	return h.String() + ": " + status
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}
