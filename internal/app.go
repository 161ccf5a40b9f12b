// Package internal provides the App struct that wires all components of the
// todo application together and initializes the CLI layer.
package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/valter-silva-au/todo/internal/cli"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/internal/storage"
	"github.com/valter-silva-au/todo/pkg/models"
)

// HomeEnvVar names the environment variable that overrides the data directory.
const HomeEnvVar = "TODO_HOME"

// App holds all service dependencies for the todo application.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	Logger *log.Logger

	// Storage layer
	Prefs storage.Preferences
	Repo  storage.TaskRepository

	// Core services
	Store core.TaskStore

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
}

// Overrides carries command-line values that take precedence over .todoconfig.
// Empty fields leave the configured value in place.
type Overrides struct {
	Backend  string
	LogLevel string
	Output   io.Writer
}

// NewApp creates and wires all components. basePath is the directory holding
// .todoconfig, the preference store and the event journal.
func NewApp(basePath string, ov Overrides) (*App, error) {
	app := &App{BasePath: basePath}

	logOpts := observability.DefaultLoggerOptions()
	if ov.Output != nil {
		logOpts.Output = ov.Output
	}
	app.Logger = observability.NewLogger(logOpts)

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		app.Logger.Warn("using default configuration", "err", err)
		cfg = core.DefaultGlobalConfig()
	}
	if ov.Backend != "" {
		cfg.Backend = models.StorageBackend(strings.ToLower(ov.Backend))
	}
	if ov.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(ov.LogLevel)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg
	app.Logger.SetLevel(observability.ParseLevel(cfg.LogLevel))

	// --- Storage layer ---
	app.Prefs, err = openPreferences(basePath, cfg)
	if err != nil {
		app.Logger.Warn("falling back to in-memory storage", "backend", cfg.Backend, "err", err)
		app.Prefs = storage.NewMemoryPreferences()
	}
	app.Repo = storage.NewTaskRepository(app.Prefs, app.Logger)

	// --- Observability ---
	var evtAdapter core.EventLogger
	if cfg.EventsEnabled {
		eventLog, err := observability.NewJSONLEventLog(filepath.Join(basePath, observability.EventLogFileName))
		if err != nil {
			app.Logger.Warn("event journal disabled", "err", err)
		} else {
			app.EventLog = eventLog
			app.MetricsCalc = observability.NewMetricsCalculator(eventLog)
			app.AlertEngine = observability.NewAlertEngine(eventLog, observability.DefaultAlertThresholds())
			evtAdapter = &eventLogAdapter{log: eventLog}
		}
	}

	// --- Core services ---
	app.Store = core.NewTaskStore(app.Repo, core.NewUUIDGenerator(), evtAdapter, app.Logger)

	// --- Wire CLI ---
	cli.Store = app.Store
	cli.MetricsCalc = app.MetricsCalc
	cli.AlertEngine = app.AlertEngine
	cli.AltScreen = cfg.AltScreen

	app.Logger.Debug("todo initialized",
		"base_path", basePath,
		"backend", cfg.Backend,
		"tasks", app.Store.Snapshot().TotalCount,
	)
	return app, nil
}

func openPreferences(basePath string, cfg *models.GlobalConfig) (storage.Preferences, error) {
	switch cfg.Backend {
	case models.BackendSQLite:
		return storage.NewSQLitePreferences(filepath.Join(basePath, cfg.SQLiteFile))
	case models.BackendMemory:
		return storage.NewMemoryPreferences(), nil
	case models.BackendFile, "":
		return storage.NewFilePreferences(basePath, cfg.PrefsName)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Close releases the event journal and the preference store.
func (a *App) Close() error {
	var firstErr error
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil {
			firstErr = err
		}
	}
	if a.Prefs != nil {
		if err := a.Prefs.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath returns the data directory: $TODO_HOME when set, otherwise
// ~/.todo, otherwise the current directory.
func ResolveBasePath() string {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home
	}
	if userHome, err := os.UserHomeDir(); err == nil && userHome != "" {
		return filepath.Join(userHome, ".todo")
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   observability.LevelFor(eventType),
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
