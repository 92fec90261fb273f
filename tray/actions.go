package tray

import (
	"os"

	"github.com/rs/zerolog"
)

// MainWindow is the logical name of the application's top-level window.
const MainWindow = "main"

// Window is a top-level window the controller can show or hide.
type Window interface {
	Show()
	Hide()
	Focus() error
}

// WindowLookup finds windows by logical name.
type WindowLookup interface {
	Window(name string) (Window, bool)
}

// Actions are the window-visibility primitives shared by the event router and
// the frontend command surface.
type Actions struct {
	windows  WindowLookup
	platform Platform
	exit     func(code int)
	logger   zerolog.Logger
}

// NewActions returns Actions that terminate the process with os.Exit.
func NewActions(windows WindowLookup, platform Platform, logger zerolog.Logger) *Actions {
	return &Actions{
		windows:  windows,
		platform: platform,
		exit:     os.Exit,
		logger:   logger,
	}
}

// ShowMainWindow makes the main window visible and focuses it. A missing
// window is a no-op.
func (a *Actions) ShowMainWindow() {
	w, ok := a.windows.Window(MainWindow)
	if !ok {
		a.logger.Debug().Str("window", MainWindow).Msg("Show requested before window exists")
		return
	}
	w.Show()
	if err := w.Focus(); err != nil {
		a.logger.Debug().Err(err).Msg("Failed to focus main window")
	}
}

// HideMainWindow hides the main window without destroying it. A missing
// window is a no-op.
func (a *Actions) HideMainWindow() {
	w, ok := a.windows.Window(MainWindow)
	if !ok {
		a.logger.Debug().Str("window", MainWindow).Msg("Hide requested before window exists")
		return
	}
	w.Hide()
}

// QuitApplication removes the tray icon and terminates the process with code.
func (a *Actions) QuitApplication(code int) {
	a.logger.Info().Int("code", code).Msg("Quitting application")
	if a.platform != nil {
		a.platform.Remove()
	}
	a.exit(code)
}
