package app

import (
	"github.com/energye/systray"
)

// trayBackend abstracts the process-wide systray calls so the platform can be
// driven without an OS shell in tests.
type trayBackend interface {
	Run(onReady, onExit func())
	Quit()
	SetIcon(icon []byte)
	SetTitle(title string)
	SetTooltip(tooltip string)
	ResetMenu()
	AddMenuItem(title, tooltip string) menuItem
	AddSeparator()
	SetOnClick(fn func(menu systray.IMenu))
	SetOnRClick(fn func(menu systray.IMenu))
	SetOnDClick(fn func(menu systray.IMenu))
}

// menuItem is the subset of *systray.MenuItem the platform uses.
type menuItem interface {
	Click(fn func())
	Disable()
}

// energyeBackend calls github.com/energye/systray.
type energyeBackend struct{}

func (energyeBackend) Run(onReady, onExit func()) { systray.Run(onReady, onExit) }
func (energyeBackend) Quit()                      { systray.Quit() }
func (energyeBackend) SetIcon(icon []byte)        { systray.SetIcon(icon) }
func (energyeBackend) SetTitle(title string)      { systray.SetTitle(title) }
func (energyeBackend) SetTooltip(tooltip string)  { systray.SetTooltip(tooltip) }
func (energyeBackend) ResetMenu()                 { systray.ResetMenu() }
func (energyeBackend) AddSeparator()              { systray.AddSeparator() }

func (energyeBackend) AddMenuItem(title, tooltip string) menuItem {
	return systray.AddMenuItem(title, tooltip)
}

func (energyeBackend) SetOnClick(fn func(menu systray.IMenu))  { systray.SetOnClick(fn) }
func (energyeBackend) SetOnRClick(fn func(menu systray.IMenu)) { systray.SetOnRClick(fn) }
func (energyeBackend) SetOnDClick(fn func(menu systray.IMenu)) { systray.SetOnDClick(fn) }
