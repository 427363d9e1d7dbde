// Package internal provides the App struct that wires all components of
// SkillPulse together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/skillpulse/internal/cli"
	"github.com/valter-silva-au/skillpulse/internal/core"
	"github.com/valter-silva-au/skillpulse/internal/integration"
	"github.com/valter-silva-au/skillpulse/internal/observability"
	"github.com/valter-silva-au/skillpulse/internal/storage"
	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// EventLogFileName is the JSONL event log kept in the base path.
const EventLogFileName = ".pulse_events.jsonl"

// mongoConnectTimeout bounds client creation for the mongo backend.
const mongoConnectTimeout = 10 * time.Second

// App holds all service dependencies for SkillPulse.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Storage layer
	TaskStore storage.TaskStore
	Users     storage.UserStore
	Sessions  storage.SessionStore

	// Core services
	Auth      core.UserAuthentication
	IDGen     core.TaskIDGenerator
	DB        core.RemoteDatabase
	Localizer *core.Localizer

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of SkillPulse.
// basePath is the directory holding .pulseconfig and the local data files.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	app.Localizer, err = core.NewLocalizer(cfg.Locale)
	if err != nil {
		return nil, err
	}
	importLoc, err := core.ParseOffset(cfg.ImportOffset)
	if err != nil {
		return nil, err
	}

	// --- Observability ---
	var logger core.EventLogger
	if cfg.Observability {
		app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFileName))
		if err != nil {
			// Non-fatal: disable observability if log can't be created.
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, observability.DefaultAlertThresholds())
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		logger = &eventLogAdapter{log: app.EventLog}
	}

	// --- Storage layer ---
	switch cfg.StoreBackend {
	case models.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
		app.TaskStore, err = storage.NewMongoTaskStore(ctx, cfg.Mongo)
		cancel()
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
	default:
		app.TaskStore = storage.NewYAMLTaskStore(basePath)
	}
	app.Users = storage.NewUserStore(basePath)
	app.Sessions = storage.NewSessionStore(basePath)

	// --- Authentication ---
	switch cfg.AuthProvider {
	case models.ProviderOAuth2:
		app.Auth = integration.NewOAuthAuthenticator(cfg.OAuth2, app.Sessions)
	default:
		app.Auth = integration.NewLocalAuthenticator(app.Users, app.Sessions)
	}

	// --- Core services ---
	switch cfg.IDScheme {
	case models.IDSchemeRandom:
		app.IDGen = core.NewRandomIDGenerator()
	default:
		app.IDGen = core.NewSequentialIDGenerator(app.TaskStore, 0)
	}
	app.DB = core.NewRemoteDatabase(app.TaskStore, app.Auth, app.IDGen, logger, cfg.PageLimit)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.DB = app.DB
	cli.Auth = app.Auth
	cli.Localizer = app.Localizer
	cli.PageLimit = cfg.PageLimit
	cli.Logger = logger
	cli.ImportLocation = importLoc

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App: the task store connection and
// the event log file handle. It is safe to call on a partially built App.
func (a *App) Close() error {
	var firstErr error
	if a.TaskStore != nil {
		if err := a.TaskStore.Close(context.Background()); err != nil {
			firstErr = err
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath determines the SkillPulse data directory. It checks the
// PULSE_HOME env var, then the nearest ancestor holding a .pulseconfig,
// then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("PULSE_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir
	for {
		if hasConfigFile(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

func hasConfigFile(dir string) bool {
	for _, name := range []string{core.ConfigFileName, core.ConfigFileName + ".yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	level := observability.LevelInfo
	if _, failed := data["error"]; failed {
		level = observability.LevelError
	}
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
