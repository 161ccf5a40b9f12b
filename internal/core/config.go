// Package core contains the business logic of the to-do list: the task
// store, task reference resolution, id generation and configuration loading.
package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/todo/pkg/models"
)

// ConfigFileName is the name (without extension) of the configuration file
// looked up in the data directory.
const ConfigFileName = ".todoconfig"

// ConfigurationManager loads and validates the .todoconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the directory where .todoconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Backend:       models.BackendFile,
		PrefsName:     "todo_prefs",
		SQLiteFile:    "todo.db",
		LogLevel:      "info",
		EventsEnabled: true,
		AltScreen:     true,
	}
}

// LoadGlobalConfig reads .todoconfig from the base path using Viper.
// If the file does not exist, defaults are returned. The result is validated.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("storage.backend", string(cfg.Backend))
	v.SetDefault("storage.prefs_name", cfg.PrefsName)
	v.SetDefault("storage.sqlite_file", cfg.SQLiteFile)
	v.SetDefault("log.level", cfg.LogLevel)
	v.SetDefault("events.enabled", cfg.EventsEnabled)
	v.SetDefault("ui.alt_screen", cfg.AltScreen)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	// Map nested YAML keys to flat GlobalConfig fields.
	cfg.Backend = models.StorageBackend(strings.ToLower(v.GetString("storage.backend")))
	cfg.PrefsName = v.GetString("storage.prefs_name")
	cfg.SQLiteFile = v.GetString("storage.sqlite_file")
	cfg.LogLevel = strings.ToLower(v.GetString("log.level"))
	cfg.EventsEnabled = v.GetBool("events.enabled")
	cfg.AltScreen = v.GetBool("ui.alt_screen")

	if err := cm.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validLogLevels is the set of accepted log.level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks the provided configuration for invalid values and
// returns an error listing every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	switch cfg.Backend {
	case models.BackendFile, models.BackendSQLite, models.BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf(
			"storage.backend %q is invalid, must be one of: file, sqlite, memory",
			cfg.Backend,
		))
	}

	if cfg.Backend == models.BackendFile && strings.TrimSpace(cfg.PrefsName) == "" {
		errs = append(errs, "storage.prefs_name must not be empty")
	}
	if strings.ContainsAny(cfg.PrefsName, `/\`) {
		errs = append(errs, fmt.Sprintf("storage.prefs_name %q must be a file name, not a path", cfg.PrefsName))
	}

	if cfg.Backend == models.BackendSQLite && strings.TrimSpace(cfg.SQLiteFile) == "" {
		errs = append(errs, "storage.sqlite_file must not be empty")
	}

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Sprintf(
			"log.level %q is invalid, must be one of: debug, info, warn, error",
			cfg.LogLevel,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
