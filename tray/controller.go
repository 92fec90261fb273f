package tray

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Controller ties the tray store, the event router and the window actions to
// one platform binding.
type Controller struct {
	platform Platform
	store    *Store
	actions  *Actions
	router   *Router
	recorder Recorder
	logger   zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithRecorder reports controller activity to r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithExit replaces os.Exit as the process terminator used by the quit command.
func WithExit(exit func(code int)) Option {
	return func(c *Controller) {
		c.actions.exit = exit
	}
}

// NewController creates a controller with an empty store.
func NewController(platform Platform, windows WindowLookup, opts ...Option) *Controller {
	c := &Controller{
		platform: platform,
		store:    NewStore(),
		recorder: nopRecorder{},
		logger:   zerolog.Nop(),
	}
	c.actions = NewActions(windows, platform, c.logger)
	for _, opt := range opts {
		opt(c)
	}
	c.actions.logger = c.logger.With().Str("component", "window-actions").Logger()
	c.router = NewRouter(c.actions, c.recorder, c.logger.With().Str("component", "tray-router").Logger())
	return c
}

// Setup builds the initial tray icon and installs it. A failure here is fatal
// for application launch.
func (c *Controller) Setup(title string) error {
	return c.store.With(func(slot *Slot) error {
		if slot.Resource() != nil {
			return ErrAlreadyInstalled
		}

		menu, err := BuildMenu(c.platform)
		if err != nil {
			return err
		}
		res, err := BuildTray(c.platform, title, menu, c.route)
		if err != nil {
			return err
		}
		slot.Put(res)

		c.logger.Info().Str("id", res.ID).Str("title", title).Msg("Tray icon installed")
		return nil
	})
}

// UpdateTitle shows title in the tray. It first updates the live icon in
// place and falls back to rebuilding the icon and its menu when the platform
// rejects that.
func (c *Controller) UpdateTitle(title string) error {
	err := c.store.With(func(slot *Slot) error {
		res := slot.Resource()
		if res == nil && !slot.Degraded() {
			c.recorder.TitleUpdate(PathNoop)
			return nil
		}

		if res != nil {
			err := res.SetTitle(title)
			if err == nil {
				c.recorder.TitleUpdate(PathInPlace)
				return nil
			}
			if !errors.Is(err, ErrPlatformUpdate) {
				return err
			}
			c.logger.Warn().Err(err).Msg("In-place title update failed, rebuilding tray")
		}

		if err := c.rebuild(slot, title); err != nil {
			return err
		}
		c.recorder.TitleUpdate(PathRebuild)
		return nil
	})
	if err != nil {
		c.recorder.TitleUpdate(PathError)
		return fmt.Errorf("update tray title: %w", err)
	}
	return nil
}

// rebuild replaces the live resource with a new one showing title. The old
// platform handle is released before the new icon is created so the shell
// never shows two icons.
func (c *Controller) rebuild(slot *Slot, title string) error {
	c.recorder.Rebuild()

	menu, menuErr := BuildMenu(c.platform)

	if old := slot.Take(); old != nil {
		old.Release()
	}

	if menuErr != nil {
		slot.MarkDegraded()
		c.logger.Error().Err(menuErr).Msg("Tray rebuild failed")
		return menuErr
	}

	res, err := BuildTray(c.platform, title, menu, c.route)
	if err != nil {
		slot.MarkDegraded()
		c.logger.Error().Err(err).Msg("Tray rebuild failed")
		return err
	}
	slot.Put(res)

	c.logger.Info().Str("title", title).Msg("Tray icon rebuilt")
	return nil
}

// Dispatch routes ev and reports whether default platform behaviour must be
// suppressed.
func (c *Controller) Dispatch(ev Event) bool {
	return c.router.Dispatch(ev)
}

// route is the event callback registered on tray icons, which have no
// default behaviour to suppress.
func (c *Controller) route(ev Event) {
	c.Dispatch(ev)
}

// Actions returns the window-visibility actions.
func (c *Controller) Actions() *Actions {
	return c.actions
}

// Snapshot describes the live tray resource.
type Snapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Tooltip  string `json:"tooltip"`
	HasIcon  bool   `json:"has_icon"`
	Live     bool   `json:"live"`
	Degraded bool   `json:"degraded"`
}

// Snapshot returns the state of the live tray resource.
func (c *Controller) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := c.store.With(func(slot *Slot) error {
		snap.Degraded = slot.Degraded()
		res := slot.Resource()
		if res == nil {
			return nil
		}
		snap.ID = res.ID
		snap.Title = res.Title
		snap.Tooltip = res.Tooltip
		snap.HasIcon = len(res.Icon) > 0
		snap.Live = res.Live()
		return nil
	})
	return snap, err
}
