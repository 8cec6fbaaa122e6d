// Package tray provides the system tray menu: a recognition toggle, the last
// recognized label, a shortcut to the web UI and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/logger"
)

const (
	titleEnabled  = "● Enabled"
	titleDisabled = "○ Disabled"
	noLabel       = "Last: none"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool) error
	onSettings func()
	onQuit     func()
	enabled    bool
	lastLabel  string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuLastLabel *systray.MenuItem
}

// New creates a new Tray reflecting the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback run when the enabled state is toggled. If it
// returns an error the toggle is reverted.
func (t *Tray) OnToggle(fn func(enabled bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops a running tray.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand sign recognition")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle recognition")
	systray.AddSeparator()

	t.menuLastLabel = systray.AddMenuItem(lastTitle(t.lastLabel), "Last recognized label")
	t.menuLastLabel.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle flips the enabled state. The callback runs outside the lock.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	enabled := !t.enabled
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		if err := callback(enabled); err != nil {
			logger.Warn("toggle failed", zap.Bool("enabled", enabled), zap.Error(err))
			return
		}
	}
	t.SetEnabled(enabled)
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
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

// SetEnabled updates the displayed enabled state, e.g. after it was changed
// over HTTP.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetLastLabel updates the last label display in the menu.
func (t *Tray) SetLastLabel(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastLabel = label
	if t.menuLastLabel != nil {
		t.menuLastLabel.SetTitle(lastTitle(label))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastLabel returns the last label shown.
func (t *Tray) LastLabel() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastLabel
}

func toggleTitle(enabled bool) string {
	if enabled {
		return titleEnabled
	}
	return titleDisabled
}

func lastTitle(label string) string {
	if label == "" {
		return noLabel
	}
	return "Last: " + label
}
