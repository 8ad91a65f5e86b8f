package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/dori/ticklist/internal/config"
	"github.com/dori/ticklist/internal/db"
	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/notify"
	"github.com/dori/ticklist/internal/storage"
	"github.com/dori/ticklist/internal/tasklist"
)

// App holds the application state and dependencies
type App struct {
	Config     *config.Config
	DB         *db.DB
	Store      *storage.TaskStore
	Controller *tasklist.Controller
	Notifier   notify.Notifier
	Logger     *slog.Logger
	Session    string

	lockFile *flock.Flock
	logFile  *os.File
}

// Option tweaks how New assembles the App
type Option func(*options)

type options struct {
	ephemeral bool
	kv        storage.KV
	notifier  notify.Notifier
	clock     tasklist.Clock
}

// WithEphemeral keeps tasks in memory only; nothing touches the data dir
func WithEphemeral() Option {
	return func(o *options) { o.ephemeral = true }
}

// WithKV uses kv instead of the SQLite store. It implies no file lock.
func WithKV(kv storage.KV) Option {
	return func(o *options) { o.kv = kv }
}

// WithNotifier overrides the configured notifier
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithClock overrides the controller clock
func WithClock(c tasklist.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New creates a new application instance
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{
		Config:  cfg,
		Session: uuid.New().String(),
	}

	logger, err := app.openLogger()
	if err != nil {
		return nil, err
	}
	app.Logger = logger

	kv := o.kv
	switch {
	case kv != nil:
		// supplied by the caller
	case o.ephemeral:
		kv = storage.NewMemoryKV()
	default:
		if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		// Acquire lock to ensure single instance
		if err := app.acquireLock(); err != nil {
			app.Close()
			return nil, err
		}

		database, err := db.Open(cfg.Storage.DBPath())
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		app.DB = database
		kv = database
	}

	app.Notifier = o.notifier
	if app.Notifier == nil {
		app.Notifier = notify.NewDesktop(cfg.Notify.Desktop)
	}

	filter, err := model.ParseFilter(cfg.UI.StartFilter)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Store = storage.NewTaskStore(kv, cfg.Storage.Key, logger)

	ctlOpts := []tasklist.Option{
		tasklist.WithLogger(logger),
		tasklist.WithNotifier(app.Notifier),
		tasklist.WithFilter(filter),
	}
	if o.clock != nil {
		ctlOpts = append(ctlOpts, tasklist.WithClock(o.clock))
	}
	app.Controller = tasklist.New(app.Store, ctlOpts...)

	logger.Info("ticklist started",
		slog.String("db_path", cfg.Storage.DBPath()),
		slog.Bool("ephemeral", app.DB == nil),
		slog.Int("tasks", len(app.Controller.Tasks())))

	return app, nil
}

// openLogger builds the JSON logger. Every record carries the session id.
func (a *App) openLogger() (*slog.Logger, error) {
	var w io.Writer = io.Discard
	if path := a.Config.App.LogFile; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		w = f
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: a.Config.App.LogLevel,
	})
	return slog.New(handler).With(slog.String("session", a.Session)), nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.Config.Storage.DataDir, "ticklist.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of ticklist is already running")
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

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
