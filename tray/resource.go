package tray

import (
	"errors"
	"fmt"
)

// TrayID identifies the tray icon across rebuilds.
const TrayID = "main-tray"

// Resource is the single live tray icon.
type Resource struct {
	ID      string
	Title   string
	Tooltip string
	Icon    []byte
	Menu    *Menu

	handle   Handle
	released bool
}

// BuildTray constructs a tray icon showing title, with menu attached and onEvent
// registered for its interaction events. The icon is visible on return.
func BuildTray(p Platform, title string, menu *Menu, onEvent func(Event)) (*Resource, error) {
	if menu == nil {
		return nil, fmt.Errorf("%w: no menu", ErrConstruction)
	}
	if menu.attached {
		return nil, fmt.Errorf("%w: menu already attached to another tray", ErrConstruction)
	}

	var icon []byte
	if !p.TitleOnly() {
		icon = p.Icon()
		if len(icon) == 0 {
			return nil, fmt.Errorf("%w: %w", ErrConstruction, ErrIconRequired)
		}
	}

	handle, err := p.NewTray(TrayOptions{
		ID:      TrayID,
		Title:   title,
		Tooltip: title,
		Icon:    icon,
		Menu:    menu.native,
		OnEvent: onEvent,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	menu.attached = true

	return &Resource{
		ID:      TrayID,
		Title:   title,
		Tooltip: title,
		Icon:    icon,
		Menu:    menu,
		handle:  handle,
	}, nil
}

// SetTitle updates the displayed title in place. The tooltip keeps its
// previous value.
func (r *Resource) SetTitle(title string) error {
	if r.released {
		return fmt.Errorf("%w: %w", ErrPlatformUpdate, errors.New("resource released"))
	}
	if err := r.handle.SetTitle(title); err != nil {
		return fmt.Errorf("%w: %w", ErrPlatformUpdate, err)
	}
	r.Title = title
	return nil
}

// Release drops the platform handle.
func (r *Resource) Release() {
	if r.released {
		return
	}
	r.released = true
	r.handle.Release()
}

// Live reports whether the platform handle is still held.
func (r *Resource) Live() bool {
	return !r.released
}
