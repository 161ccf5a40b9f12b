package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Feature: todo, Property 9: Metrics Match Journal
// For any sequence of journaled toggles, TasksCompleted + TasksReopened equals
// the number of toggle events and TasksCompleted equals the number that
// completed a task.
func TestProperty_MetricsMatchJournal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		n := rapid.IntRange(0, 30).Draw(rt, "n")
		base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		completed := 0
		added := 0
		for i := 0; i < n; i++ {
			at := base.Add(time.Duration(i) * time.Minute)
			if rapid.Bool().Draw(rt, fmt.Sprintf("toggle_%d", i)) {
				done := rapid.Bool().Draw(rt, fmt.Sprintf("done_%d", i))
				if done {
					completed++
				}
				if err := el.Write(Event{Time: at, Level: "INFO", Type: EventTaskToggled, Data: map[string]any{"completed": done}}); err != nil {
					rt.Fatalf("writing event: %v", err)
				}
				continue
			}
			added++
			if err := el.Write(Event{Time: at, Level: "INFO", Type: EventTaskAdded}); err != nil {
				rt.Fatalf("writing event: %v", err)
			}
		}

		m, err := NewMetricsCalculator(el).Calculate(base.Add(-time.Hour))
		if err != nil {
			rt.Fatalf("calculating metrics: %v", err)
		}
		if m.TasksAdded != added {
			rt.Fatalf("TasksAdded = %d, want %d", m.TasksAdded, added)
		}
		if m.TasksCompleted != completed {
			rt.Fatalf("TasksCompleted = %d, want %d", m.TasksCompleted, completed)
		}
		if m.TasksCompleted+m.TasksReopened != n-added {
			rt.Fatalf("toggles = %d, want %d", m.TasksCompleted+m.TasksReopened, n-added)
		}
		if m.EventCount != n {
			rt.Fatalf("EventCount = %d, want %d", m.EventCount, n)
		}
	})
}
