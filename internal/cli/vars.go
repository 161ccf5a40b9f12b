package cli

import (
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	Store       core.TaskStore
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine

	// AltScreen runs the interactive screen in the terminal's alternate buffer.
	AltScreen = true
)
