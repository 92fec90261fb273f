// Package app provides the main application logic for the Popomomo desktop
// shell: window lifecycle, the tray icon and the commands bound to the
// frontend.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"popomomo/config"
	"popomomo/db"
	"popomomo/logging"
	"popomomo/metrics"
	"popomomo/tray"
	"popomomo/trayfmt"
	"popomomo/watcher"
)

// App represents the main application.
type App struct {
	mu  sync.RWMutex
	ctx context.Context

	logger  zerolog.Logger
	cfg     *config.Config
	dataDir string
	exit    func(code int)

	platform   tray.Platform
	windows    tray.WindowLookup
	controller *tray.Controller
	metrics    *metrics.Metrics
	metricsSrv *metrics.Server
	db         *db.Database
	watcher    *watcher.Watcher
}

// Option configures an App.
type Option func(*App)

// WithPlatform replaces the systray binding.
func WithPlatform(p tray.Platform) Option {
	return func(a *App) {
		a.platform = p
	}
}

// WithWindows replaces the Wails window lookup.
func WithWindows(w tray.WindowLookup) Option {
	return func(a *App) {
		a.windows = w
	}
}

// WithExit replaces os.Exit.
func WithExit(exit func(code int)) Option {
	return func(a *App) {
		a.exit = exit
	}
}

// WithDataDir sets the directory holding the database.
func WithDataDir(dir string) Option {
	return func(a *App) {
		a.dataDir = dir
	}
}

// New creates a new App. icon is the tray image used on platforms that
// require one.
func New(cfg *config.Config, icon []byte, logger zerolog.Logger, opts ...Option) *App {
	a := &App{
		logger:  logger.With().Str("component", "app").Logger(),
		cfg:     cfg,
		exit:    os.Exit,
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.platform == nil {
		timeout := time.Duration(cfg.GetTrayReadyTimeoutMs()) * time.Millisecond
		a.platform = newSystrayPlatform(energyeBackend{}, icon, timeout, logger)
	}
	if a.windows == nil {
		a.windows = &wailsWindows{ctx: a.context}
	}

	a.controller = tray.NewController(a.platform, a.windows,
		tray.WithLogger(logger),
		tray.WithRecorder(a.metrics),
		tray.WithExit(a.exit),
	)
	return a
}

func (a *App) context() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ctx
}

// Startup is called when the app starts. A tray setup failure terminates the
// process.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	var g errgroup.Group
	g.Go(a.openDatabase)
	g.Go(a.startWatcher)
	if err := g.Wait(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start background services")
	}

	if addr := a.cfg.GetMetricsAddr(); addr != "" {
		srv := metrics.NewServer(a.metrics, a.logger)
		if err := srv.Start(addr); err != nil {
			a.logger.Error().Err(err).Str("addr", addr).Msg("Failed to start metrics server")
		} else {
			a.mu.Lock()
			a.metricsSrv = srv
			a.mu.Unlock()
		}
	}

	if err := a.controller.Setup(a.cfg.GetInitialTitle()); err != nil {
		a.logger.Error().Err(err).Msg("Failed to set up tray icon")
		a.exit(1)
		return
	}

	a.logger.Info().Msg("Application started")
}

func (a *App) openDatabase() error {
	dir := a.dataDir
	if dir == "" {
		var err error
		if dir, err = config.GetDataDir(); err != nil {
			return fmt.Errorf("data dir: %w", err)
		}
	}

	database, err := db.Open(dir, a.cfg.GetDatabaseName())
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.db = database
	a.mu.Unlock()

	a.logger.Info().Str("path", database.Path()).Msg("Database opened")
	return nil
}

func (a *App) startWatcher() error {
	path := a.cfg.Path()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config dir: %w", err)
	}

	w, err := watcher.New(watcher.DefaultConfig(path), a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}

	a.mu.Lock()
	a.watcher = w
	a.mu.Unlock()

	go a.watchConfig(w)
	return nil
}

// watchConfig applies config file edits until the watcher stops.
func (a *App) watchConfig(w *watcher.Watcher) {
	events, errs := w.Events(), w.Errors()
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			a.reloadConfig(ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.logger.Warn().Err(err).Msg("Config watcher error")
		}
	}
}

func (a *App) reloadConfig(ev watcher.Event) {
	if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
		a.logger.Debug().Str("op", ev.Op.String()).Msg("Config file moved away, keeping current settings")
		return
	}

	fresh, err := config.LoadFrom(ev.Path)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Ignoring invalid config change")
		return
	}
	if restart := a.cfg.Reload(fresh); len(restart) > 0 {
		a.logger.Warn().Strs("fields", restart).Msg("Changed settings take effect after restart")
	}
	logging.SetLevel(a.cfg.GetDebugLogging())

	a.logger.Info().Bool("debug", a.cfg.GetDebugLogging()).Msg("Configuration reloaded")
}

// DomReady is called after the frontend is loaded.
func (a *App) DomReady(ctx context.Context) {
	a.logger.Debug().Msg("DOM ready")
}

// BeforeClose is called when the user closes the window. The window is hidden
// and the close is vetoed so the app keeps running in the tray.
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return a.controller.Dispatch(tray.WindowCloseRequested{})
}

// Shutdown is called when the app is shutting down.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	w, database, srv := a.watcher, a.db, a.metricsSrv
	a.watcher, a.db, a.metricsSrv = nil, nil, nil
	a.mu.Unlock()

	if w != nil {
		if err := w.Stop(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to stop config watcher")
		}
	}
	if srv != nil {
		sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := srv.Shutdown(sctx); err != nil {
			a.logger.Warn().Err(err).Msg("Metrics server shutdown")
		}
		cancel()
	}
	if database != nil {
		if err := database.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
	a.platform.Remove()

	a.logger.Info().Msg("Application shutdown")
}

// Frontend-callable methods

// TrayState describes the tray icon for the frontend.
type TrayState struct {
	tray.Snapshot
	Error string `json:"error,omitempty"`
}

// Greet returns a greeting for the given name.
func (a *App) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

// UpdateTrayTitle shows title in the tray icon.
func (a *App) UpdateTrayTitle(title string) error {
	if err := a.controller.UpdateTitle(title); err != nil {
		a.logger.Error().Err(err).Str("title", title).Msg("Failed to update tray title")
		return err
	}
	return nil
}

// UpdateTrayTimer formats the timer state and shows it in the tray icon.
func (a *App) UpdateTrayTimer(state trayfmt.TimerState) error {
	return a.UpdateTrayTitle(trayfmt.Format(state))
}

// ShowWindow shows the main window.
func (a *App) ShowWindow() {
	a.controller.Actions().ShowMainWindow()
}

// HideWindow hides the main window.
func (a *App) HideWindow() {
	a.controller.Actions().HideMainWindow()
}

// Quit removes the tray icon and exits the process.
func (a *App) Quit() {
	a.controller.Actions().QuitApplication(0)
}

// GetTrayState returns the current tray icon state.
func (a *App) GetTrayState() TrayState {
	snap, err := a.controller.Snapshot()
	if err != nil {
		return TrayState{Error: err.Error()}
	}
	return TrayState{Snapshot: snap}
}

// GetCategories returns the work log categories.
func (a *App) GetCategories() ([]string, error) {
	a.mu.RLock()
	database := a.db
	a.mu.RUnlock()

	if database == nil {
		return nil, fmt.Errorf("database not available")
	}
	return database.Categories()
}
