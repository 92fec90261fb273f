package tray

import "github.com/rs/zerolog"

// MouseButton identifies the button of a tray click.
type MouseButton int

// Mouse buttons.
const (
	ButtonPrimary MouseButton = iota
	ButtonSecondary
	ButtonMiddle
)

func (b MouseButton) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// ButtonPhase is the phase of a tray click.
type ButtonPhase int

// Button phases.
const (
	PhasePressed ButtonPhase = iota
	PhaseReleased
	PhaseDoubleClick
)

// Event is an inbound tray, menu or window event.
type Event interface {
	kind() string
}

// TrayClick is an interaction with the tray icon.
type TrayClick struct {
	Button MouseButton
	Phase  ButtonPhase
}

// MenuCommand is a selection of a tray menu entry.
type MenuCommand struct {
	ID string
}

// WindowCloseRequested is a user request to close the main window.
type WindowCloseRequested struct{}

func (TrayClick) kind() string            { return "tray_click" }
func (MenuCommand) kind() string          { return "menu_command" }
func (WindowCloseRequested) kind() string { return "window_close" }

// Router dispatches events to window-visibility actions. It keeps no state
// between events.
type Router struct {
	actions  *Actions
	recorder Recorder
	logger   zerolog.Logger
}

// NewRouter returns a router driving actions.
func NewRouter(actions *Actions, recorder Recorder, logger zerolog.Logger) *Router {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Router{actions: actions, recorder: recorder, logger: logger}
}

// Dispatch handles ev. It returns true when the platform's default behaviour
// must be suppressed, which only happens for window close requests.
func (r *Router) Dispatch(ev Event) bool {
	if ev == nil {
		return false
	}
	r.recorder.Event(ev.kind())

	switch e := ev.(type) {
	case TrayClick:
		if e.Phase != PhaseReleased {
			return false
		}
		switch e.Button {
		case ButtonPrimary:
			r.actions.ShowMainWindow()
		case ButtonSecondary:
			r.logger.Debug().Msg("Right click on tray")
		}
	case MenuCommand:
		switch e.ID {
		case MenuQuit:
			r.actions.QuitApplication(0)
		case MenuShow:
			r.actions.ShowMainWindow()
		case MenuHide:
			r.actions.HideMainWindow()
		default:
			r.logger.Debug().Str("id", e.ID).Msg("Ignoring unknown menu command")
		}
	case WindowCloseRequested:
		r.actions.HideMainWindow()
		return true
	}
	return false
}
