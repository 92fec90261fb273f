// Package tray implements the tray presentation controller: it owns the single
// live tray icon, keeps its title in sync with what the frontend requests, and
// routes tray, menu and window events to window-visibility actions.
package tray

// Platform is the OS tray binding the controller drives.
type Platform interface {
	// NewMenu allocates native menu primitives for entries.
	NewMenu(entries []MenuEntry) (NativeMenu, error)

	// NewTray makes a tray icon visible in the OS shell.
	NewTray(opts TrayOptions) (Handle, error)

	// TitleOnly reports whether a tray icon may be shown without an image.
	TitleOnly() bool

	// Icon returns the image attached to tray icons when TitleOnly is false.
	Icon() []byte

	// Remove takes the tray out of the OS shell ahead of process exit.
	Remove()
}

// NativeMenu is a menu allocated by a Platform.
type NativeMenu interface {
	Len() int
}

// Handle is the platform side of one live tray icon.
type Handle interface {
	// SetTitle changes the displayed title in place.
	SetTitle(title string) error

	// Release drops the platform object. Safe to call more than once.
	Release()
}

// TrayOptions configures a new tray icon.
type TrayOptions struct {
	ID      string
	Title   string
	Tooltip string
	Icon    []byte
	Menu    NativeMenu
	OnEvent func(Event)
}
