package observability

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestAlertEngine(t *testing.T, now time.Time, thresholds AlertThresholds, events []Event) AlertEngine {
	t.Helper()
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	writeEvents(t, log, events)

	engine := NewAlertEngine(log, thresholds).(*alertEngine)
	engine.now = func() time.Time { return now }
	return engine
}

func alertConditions(alerts []Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Condition)
	}
	return out
}

func TestAlertEngine_NoEvents(t *testing.T) {
	engine := newTestAlertEngine(t, time.Now().UTC(), DefaultAlertThresholds(), nil)
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %v", alertConditions(alerts))
	}
}

func TestAlertEngine_PersistFailures(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestAlertEngine(t, now, DefaultAlertThresholds(), []Event{
		{Time: now.Add(-48 * time.Hour), Level: "ERROR", Type: EventPersistFailed},
		{Time: now.Add(-2 * time.Hour), Level: "ERROR", Type: EventPersistFailed},
		{Time: now.Add(-time.Hour), Level: "ERROR", Type: EventPersistFailed},
	})

	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Condition != "persist_failed" {
		t.Fatalf("alerts = %v, want one persist_failed", alertConditions(alerts))
	}
	if alerts[0].Severity != SeverityHigh {
		t.Errorf("severity = %s, want high", alerts[0].Severity)
	}
	if !strings.HasPrefix(alerts[0].Message, "2 save(s) failed") {
		t.Errorf("message = %q, want only failures inside the window counted", alerts[0].Message)
	}
}

func TestAlertEngine_StaleTasks(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-30 * 24 * time.Hour)
	engine := newTestAlertEngine(t, now, DefaultAlertThresholds(), []Event{
		{Time: old, Type: EventTaskAdded, Data: map[string]any{"task_id": "stale", "title": "File taxes"}},
		{Time: old, Type: EventTaskAdded, Data: map[string]any{"task_id": "touched", "title": "Walk dog"}},
		{Time: old, Type: EventTaskAdded, Data: map[string]any{"task_id": "done", "title": "Buy milk"}},
		{Time: old, Type: EventTaskAdded, Data: map[string]any{"task_id": "gone", "title": "Old idea"}},
		{Time: now.Add(-time.Hour), Type: EventTaskRenamed, Data: map[string]any{"task_id": "touched", "title": "Walk the dog"}},
		{Time: old.Add(time.Hour), Type: EventTaskToggled, Data: map[string]any{"task_id": "done", "completed": true}},
		{Time: old.Add(time.Hour), Type: EventTaskDeleted, Data: map[string]any{"task_id": "gone"}},
	})

	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %v, want one stale alert", alertConditions(alerts))
	}
	if alerts[0].ID != "stale-stale" || !strings.Contains(alerts[0].Message, "File taxes") {
		t.Errorf("alert = %+v, want stale alert for File taxes", alerts[0])
	}
}

func TestAlertEngine_ClearedTasksAreNotOpen(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	thresholds := DefaultAlertThresholds()
	thresholds.MaxActiveTasks = 1
	engine := newTestAlertEngine(t, now, thresholds, []Event{
		{Time: now, Type: EventTaskAdded, Data: map[string]any{"task_id": "a", "title": "one"}},
		{Time: now, Type: EventTaskAdded, Data: map[string]any{"task_id": "b", "title": "two"}},
		{Time: now, Type: EventTaskToggled, Data: map[string]any{"task_id": "b", "completed": true}},
		{Time: now, Type: EventTasksCleared, Data: map[string]any{"removed": 1}},
		{Time: now, Type: EventTaskToggled, Data: map[string]any{"task_id": "b", "completed": false}},
	})

	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %v", alertConditions(alerts))
	}
}

func TestAlertEngine_TooManyActive(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	thresholds := DefaultAlertThresholds()
	thresholds.MaxActiveTasks = 2

	var events []Event
	for _, id := range []string{"a", "b", "c"} {
		events = append(events, Event{Time: now, Type: EventTaskAdded, Data: map[string]any{"task_id": id, "title": id}})
	}
	engine := newTestAlertEngine(t, now, thresholds, events)

	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Condition != "too_many_active" {
		t.Fatalf("alerts = %v, want one too_many_active", alertConditions(alerts))
	}
	if alerts[0].Severity != SeverityLow {
		t.Errorf("severity = %s, want low", alerts[0].Severity)
	}
}
