package core

import "github.com/valter-silva-au/todo/pkg/models"

// TaskRepository is the subset of storage.TaskRepository the store needs.
// Defining it here keeps core independent of the storage package.
type TaskRepository interface {
	Load() []models.Task
	Save(tasks []models.Task) error
}

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Logger is the leveled logger the store reports through.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Error(any, ...any) {}
