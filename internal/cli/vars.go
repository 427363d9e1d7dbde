package cli

import (
	"time"

	"github.com/valter-silva-au/skillpulse/internal/core"
	"github.com/valter-silva-au/skillpulse/internal/observability"
)

// Task and auth services, set during app initialization in app.go.
var (
	BasePath  string
	DB        core.RemoteDatabase
	Auth      core.UserAuthentication
	Localizer *core.Localizer
	PageLimit int
	Logger    core.EventLogger

	// ImportLocation is the offset day-log times are read in.
	ImportLocation *time.Location
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
)
