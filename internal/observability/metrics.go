package observability

import (
	"fmt"
	"time"
)

// Metrics holds counts derived from the event journal.
type Metrics struct {
	TasksAdded     int            `json:"tasks_added"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksReopened  int            `json:"tasks_reopened"`
	TasksRenamed   int            `json:"tasks_renamed"`
	TasksDeleted   int            `json:"tasks_deleted"`
	TasksCleared   int            `json:"tasks_cleared"`
	PersistErrors  int            `json:"persist_errors"`
	FilterChanges  map[string]int `json:"filter_changes"`
	EventCount     int            `json:"event_count"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{FilterChanges: make(map[string]int)}
	m.EventCount = len(events)

	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		switch event.Type {
		case EventTaskAdded:
			m.TasksAdded++
		case EventTaskToggled:
			if completed, ok := event.Data["completed"].(bool); ok && completed {
				m.TasksCompleted++
			} else {
				m.TasksReopened++
			}
		case EventTaskRenamed:
			m.TasksRenamed++
		case EventTaskDeleted:
			m.TasksDeleted++
		case EventTasksCleared:
			// JSON numbers decode as float64.
			if n, ok := event.Data["removed"].(float64); ok {
				m.TasksCleared += int(n)
			}
		case EventFilterChanged:
			if f, ok := event.Data["filter"].(string); ok {
				m.FilterChanges[f]++
			}
		case EventPersistFailed:
			m.PersistErrors++
		}
	}

	return m, nil
}
