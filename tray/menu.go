package tray

import "fmt"

// Menu command ids.
const (
	MenuShow = "show"
	MenuHide = "hide"
	MenuQuit = "quit"
)

// MenuEntry is one row of the tray menu.
type MenuEntry struct {
	ID        string
	Label     string
	Enabled   bool
	Separator bool
}

// DefaultMenuEntries returns the tray menu layout: show, hide, separator, quit.
func DefaultMenuEntries() []MenuEntry {
	return []MenuEntry{
		{ID: MenuShow, Label: "Show", Enabled: true},
		{ID: MenuHide, Label: "Hide", Enabled: true},
		{Separator: true},
		{ID: MenuQuit, Label: "Quit", Enabled: true},
	}
}

// Menu is a menu built for exactly one tray resource.
type Menu struct {
	entries  []MenuEntry
	native   NativeMenu
	attached bool
}

// Entries returns a copy of the menu layout.
func (m *Menu) Entries() []MenuEntry {
	out := make([]MenuEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// BuildMenu allocates a fresh tray menu on p.
func BuildMenu(p Platform) (*Menu, error) {
	entries := DefaultMenuEntries()
	native, err := p.NewMenu(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: menu: %w", ErrConstruction, err)
	}
	return &Menu{entries: entries, native: native}, nil
}
