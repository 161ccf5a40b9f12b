package cli

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/todo/internal/observability"
)

type alertsMock struct {
	alerts []observability.Alert
	err    error
}

func (m *alertsMock) Evaluate() ([]observability.Alert, error) {
	return m.alerts, m.err
}

func useAlerts(t *testing.T, engine observability.AlertEngine) {
	t.Helper()
	orig := AlertEngine
	t.Cleanup(func() { AlertEngine = orig })
	AlertEngine = engine
}

func TestAlertsCmd_NilEngine(t *testing.T) {
	useAlerts(t, nil)

	_, err := runCLI(t, "alerts")
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("error = %v, want not initialized", err)
	}
}

func TestAlertsCmd_NoAlerts(t *testing.T) {
	useAlerts(t, &alertsMock{})

	out, err := runCLI(t, "alerts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No active alerts.") {
		t.Errorf("output = %q", out)
	}
}

func TestAlertsCmd_WithAlerts(t *testing.T) {
	useAlerts(t, &alertsMock{alerts: []observability.Alert{
		{ID: "persist-failed", Severity: observability.SeverityHigh, Message: "2 save(s) failed", TriggeredAt: time.Now()},
		{ID: "stale-a", Severity: observability.SeverityMedium, Message: `task "File taxes" is stale`, TriggeredAt: time.Now()},
	}})

	out, err := runCLI(t, "alerts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"2 active alert(s)", "[HIGH] 2 save(s) failed", "[MEDIUM]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAlertsCmd_EvaluateError(t *testing.T) {
	useAlerts(t, &alertsMock{err: fmt.Errorf("journal unreadable")})

	_, err := runCLI(t, "alerts")
	if err == nil || !strings.Contains(err.Error(), "evaluating alerts") {
		t.Fatalf("error = %v, want evaluation failure", err)
	}
}
