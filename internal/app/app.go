package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/htdinh/tictac/internal/notify"
	"github.com/htdinh/tictac/internal/store"
	"github.com/htdinh/tictac/internal/tracker"
)

// App holds the application state and dependencies
type App struct {
	Store    *store.Store
	Settings *tracker.SettingsRegistry
	Projects *tracker.ProjectRegistry
	Engine   *tracker.Engine
	Notifier *notify.Notifier
	DataDir  string
	lockFile *flock.Flock
}

// Config holds application configuration
type Config struct {
	DataDir string
	DBPath  string
	Engine  tracker.EngineConfig
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	dataDir := store.DefaultDataDir()
	return &Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "tictac.db"),
	}
}

// New creates a new application instance
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		DataDir:  cfg.DataDir,
		Notifier: notify.NewNotifier(),
	}

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	app.Store = st

	settings, err := tracker.NewSettingsRegistry(st)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	app.Settings = settings

	projects, err := tracker.NewProjectRegistry(st, settings)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	app.Projects = projects

	engine, err := tracker.NewEngine(st, projects, cfg.Engine)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}
	app.Engine = engine

	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "tictac.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of tictac is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
