package observability

import (
	"fmt"
	"sort"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	PersistWindowHours int `yaml:"persist_window_hours" json:"persist_window_hours"`
	StaleDays          int `yaml:"stale_threshold_days" json:"stale_threshold_days"`
	MaxActiveTasks     int `yaml:"max_active_tasks" json:"max_active_tasks"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		PersistWindowHours: 24,
		StaleDays:          14,
		MaxActiveTasks:     25,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by replaying the journal.
type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and thresholds.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate reads events and checks all alert conditions, returning any triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now()

	events, err := ae.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("reading events for alerts: %w", err)
	}

	var alerts []Alert
	alerts = append(alerts, ae.checkPersistFailures(events, now)...)

	open := replayOpenTasks(events)
	alerts = append(alerts, ae.checkStaleTasks(open, now)...)
	alerts = append(alerts, ae.checkActiveCount(open, now)...)
	return alerts, nil
}

// openTask is an active task reconstructed from the journal.
type openTask struct {
	title        string
	lastActivity time.Time
}

// replayOpenTasks rebuilds the set of tasks that are still active according
// to the journal, keyed by task id.
func replayOpenTasks(events []Event) map[string]*openTask {
	type state struct {
		openTask
		completed bool
	}
	tasks := make(map[string]*state)

	for _, event := range events {
		taskID, _ := event.Data["task_id"].(string)
		switch event.Type {
		case EventTaskAdded:
			title, _ := event.Data["title"].(string)
			tasks[taskID] = &state{openTask: openTask{title: title, lastActivity: event.Time}}
		case EventTaskToggled:
			if st, ok := tasks[taskID]; ok {
				st.completed, _ = event.Data["completed"].(bool)
				st.lastActivity = event.Time
			}
		case EventTaskRenamed:
			if st, ok := tasks[taskID]; ok {
				st.title, _ = event.Data["title"].(string)
				st.lastActivity = event.Time
			}
		case EventTaskDeleted:
			delete(tasks, taskID)
		case EventTasksCleared:
			for id, st := range tasks {
				if st.completed {
					delete(tasks, id)
				}
			}
		}
	}

	open := make(map[string]*openTask)
	for id, st := range tasks {
		if id != "" && !st.completed {
			t := st.openTask
			open[id] = &t
		}
	}
	return open
}

// checkPersistFailures alerts when task state failed to save within the window.
func (ae *alertEngine) checkPersistFailures(events []Event, now time.Time) []Alert {
	window := time.Duration(ae.thresholds.PersistWindowHours) * time.Hour
	failures := 0
	var last time.Time
	for _, event := range events {
		if event.Type != EventPersistFailed || now.Sub(event.Time) > window {
			continue
		}
		failures++
		last = event.Time
	}
	if failures == 0 {
		return nil
	}
	return []Alert{{
		ID:          "persist-failed",
		Condition:   "persist_failed",
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("%d save(s) failed in the last %d hours, last at %s; recent changes may not be on disk", failures, ae.thresholds.PersistWindowHours, last.Format(time.RFC3339)),
		TriggeredAt: now,
	}}
}

// checkStaleTasks looks for active tasks with no recent activity.
func (ae *alertEngine) checkStaleTasks(open map[string]*openTask, now time.Time) []Alert {
	threshold := time.Duration(ae.thresholds.StaleDays) * 24 * time.Hour

	ids := make([]string, 0, len(open))
	for id := range open {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var alerts []Alert
	for _, id := range ids {
		task := open[id]
		if now.Sub(task.lastActivity) > threshold {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("stale-%s", id),
				Condition:   "task_stale",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("task %q has had no activity for more than %d days", task.title, ae.thresholds.StaleDays),
				TriggeredAt: now,
			})
		}
	}
	return alerts
}

// checkActiveCount alerts when too many tasks are left open.
func (ae *alertEngine) checkActiveCount(open map[string]*openTask, now time.Time) []Alert {
	if len(open) <= ae.thresholds.MaxActiveTasks {
		return nil
	}
	return []Alert{{
		ID:          "active-count",
		Condition:   "too_many_active",
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("%d tasks are still active, exceeding the maximum of %d", len(open), ae.thresholds.MaxActiveTasks),
		TriggeredAt: now,
	}}
}
