package models

// StorageBackend selects the key-value store that task state is written to.
type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendSQLite StorageBackend = "sqlite"
	BackendMemory StorageBackend = "memory"
)

// GlobalConfig holds settings read from .todoconfig via Viper.
type GlobalConfig struct {
	Backend       StorageBackend `yaml:"backend" mapstructure:"backend"`
	PrefsName     string         `yaml:"prefs_name" mapstructure:"prefs_name"`
	SQLiteFile    string         `yaml:"sqlite_file" mapstructure:"sqlite_file"`
	LogLevel      string         `yaml:"log_level" mapstructure:"log_level"`
	EventsEnabled bool           `yaml:"events_enabled" mapstructure:"events_enabled"`
	AltScreen     bool           `yaml:"alt_screen" mapstructure:"alt_screen"`
}
