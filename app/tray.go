package app

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/energye/systray"
	"github.com/rs/zerolog"

	"popomomo/tray"
)

var (
	errTrayNotReady  = errors.New("system tray did not become ready")
	errStaleHandle   = errors.New("tray handle no longer current")
	errTrayNotActive = errors.New("system tray loop not running")
)

// systrayPlatform implements tray.Platform on top of the systray loop. The
// loop owns a single OS icon; each tray.Handle is a generation of it.
type systrayPlatform struct {
	backend      trayBackend
	icon         []byte
	titleOnly    bool
	readyTimeout time.Duration
	logger       zerolog.Logger

	mu      sync.Mutex
	running bool
	ready   chan struct{}
	exited  chan struct{}
	gen     uint64 // generation of the live handle, 0 when none
	nextGen uint64
	removed bool
}

func newSystrayPlatform(backend trayBackend, icon []byte, readyTimeout time.Duration, logger zerolog.Logger) *systrayPlatform {
	return &systrayPlatform{
		backend:      backend,
		icon:         icon,
		titleOnly:    runtime.GOOS == "darwin",
		readyTimeout: readyTimeout,
		logger:       logger.With().Str("component", "systray").Logger(),
	}
}

// systrayMenu is the validated layout attached to the OS menu in NewTray.
type systrayMenu struct {
	entries []tray.MenuEntry
}

func (m *systrayMenu) Len() int { return len(m.entries) }

// NewMenu validates entries. Items are created when the menu is attached
// because the OS menu belongs to the single tray icon.
func (p *systrayPlatform) NewMenu(entries []tray.MenuEntry) (tray.NativeMenu, error) {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.Separator {
			continue
		}
		if e.ID == "" || e.Label == "" {
			return nil, fmt.Errorf("menu entry %d has no id or label", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate menu id %q", e.ID)
		}
		seen[e.ID] = true
	}

	out := make([]tray.MenuEntry, len(entries))
	copy(out, entries)
	return &systrayMenu{entries: out}, nil
}

// NewTray starts the systray loop if needed and configures the icon.
func (p *systrayPlatform) NewTray(opts tray.TrayOptions) (tray.Handle, error) {
	menu, ok := opts.Menu.(*systrayMenu)
	if !ok {
		return nil, fmt.Errorf("unsupported menu type %T", opts.Menu)
	}

	if err := p.ensureRunning(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil, errTrayNotActive
	}

	p.nextGen++
	gen := p.nextGen
	p.gen = gen

	b := p.backend
	b.ResetMenu()
	if len(opts.Icon) > 0 {
		b.SetIcon(opts.Icon)
	}
	b.SetTitle(opts.Title)
	b.SetTooltip(opts.Tooltip)

	for _, e := range menu.entries {
		if e.Separator {
			b.AddSeparator()
			continue
		}
		item := b.AddMenuItem(e.Label, e.Label)
		if !e.Enabled {
			item.Disable()
		}
		id := e.ID
		item.Click(func() {
			p.dispatch(gen, opts.OnEvent, tray.MenuCommand{ID: id})
		})
	}

	b.SetOnClick(func(systray.IMenu) {
		p.dispatch(gen, opts.OnEvent, tray.TrayClick{Button: tray.ButtonPrimary, Phase: tray.PhaseReleased})
	})
	b.SetOnRClick(func(m systray.IMenu) {
		if m != nil {
			if err := m.ShowMenu(); err != nil {
				p.logger.Debug().Err(err).Msg("Failed to show tray menu")
			}
		}
		p.dispatch(gen, opts.OnEvent, tray.TrayClick{Button: tray.ButtonSecondary, Phase: tray.PhaseReleased})
	})
	b.SetOnDClick(func(systray.IMenu) {
		p.dispatch(gen, opts.OnEvent, tray.TrayClick{Button: tray.ButtonPrimary, Phase: tray.PhaseDoubleClick})
	})

	p.logger.Debug().Uint64("generation", gen).Str("title", opts.Title).Msg("Tray icon configured")
	return &systrayHandle{p: p, gen: gen}, nil
}

// ensureRunning starts the systray loop and waits for it to become ready.
// systray quits at most once per process, so a loop started after an exit
// returns at once and is reported as errTrayNotActive.
func (p *systrayPlatform) ensureRunning() error {
	p.mu.Lock()
	if p.removed {
		p.mu.Unlock()
		return errTrayNotActive
	}
	if !p.running {
		p.running = true
		p.ready = make(chan struct{})
		p.exited = make(chan struct{})
		ready, exited := p.ready, p.exited
		go func() {
			defer close(exited)
			p.backend.Run(func() { close(ready) }, p.onExit)
		}()
		p.logger.Info().Msg("System tray loop started")
	}
	ready, exited := p.ready, p.exited
	p.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-exited:
		return fmt.Errorf("%w: loop exited before it became ready", errTrayNotActive)
	case <-time.After(p.readyTimeout):
		return fmt.Errorf("%w after %s", errTrayNotReady, p.readyTimeout)
	}
}

// onExit runs when the systray loop ends; every handle becomes stale.
func (p *systrayPlatform) onExit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.gen = 0
	p.logger.Info().Msg("System tray loop exited")
}

// dispatch forwards ev when gen is still the live handle. It must not hold
// p.mu while calling onEvent: the quit command calls back into Remove.
func (p *systrayPlatform) dispatch(gen uint64, onEvent func(tray.Event), ev tray.Event) {
	p.mu.Lock()
	current := p.running && p.gen == gen
	p.mu.Unlock()

	if !current || onEvent == nil {
		return
	}
	onEvent(ev)
}

func (p *systrayPlatform) TitleOnly() bool { return p.titleOnly }

func (p *systrayPlatform) Icon() []byte { return p.icon }

// Remove ends the systray loop so the icon leaves the shell.
func (p *systrayPlatform) Remove() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removed {
		return
	}
	p.removed = true
	p.gen = 0
	if p.running {
		p.backend.Quit()
	}
}

// systrayHandle is one generation of the OS tray icon.
type systrayHandle struct {
	p   *systrayPlatform
	gen uint64
}

func (h *systrayHandle) SetTitle(title string) error {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()

	if !h.p.running {
		return errTrayNotActive
	}
	if h.p.gen != h.gen {
		return errStaleHandle
	}
	h.p.backend.SetTitle(title)
	return nil
}

// Release detaches the menu and click handlers from the OS icon. The icon
// itself stays until the next generation configures it or Remove quits the
// loop.
func (h *systrayHandle) Release() {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()

	if h.p.gen != h.gen {
		return
	}
	h.p.gen = 0
	if h.p.running {
		h.p.backend.ResetMenu()
	}
}
