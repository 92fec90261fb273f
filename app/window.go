package app

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"popomomo/tray"
)

// wailsWindows resolves the main window once Wails has handed the app its
// runtime context.
type wailsWindows struct {
	ctx func() context.Context
}

func (w *wailsWindows) Window(name string) (tray.Window, bool) {
	if name != tray.MainWindow {
		return nil, false
	}
	ctx := w.ctx()
	if ctx == nil {
		return nil, false
	}
	return mainWindow{ctx: ctx}, true
}

// mainWindow is the Wails application window.
type mainWindow struct {
	ctx context.Context
}

func (m mainWindow) Show() {
	wailsruntime.WindowShow(m.ctx)
	wailsruntime.WindowUnminimise(m.ctx)
}

func (m mainWindow) Hide() {
	wailsruntime.WindowHide(m.ctx)
}

// Focus raises the window above others without pinning it there.
func (m mainWindow) Focus() error {
	wailsruntime.WindowSetAlwaysOnTop(m.ctx, true)
	wailsruntime.WindowSetAlwaysOnTop(m.ctx, false)
	return nil
}
