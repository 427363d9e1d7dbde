package observability

import (
	"testing"
	"time"
)

func newTestEngine(log EventLog, now time.Time) *alertEngine {
	ae := NewAlertEngine(log, DefaultAlertThresholds()).(*alertEngine)
	ae.now = func() time.Time { return now }
	return ae
}

func failure(at time.Time, eventType, code string) Event {
	return Event{Time: at, Level: LevelError, Type: eventType, Data: map[string]any{"code": code}}
}

func TestAlertEngine_NoAlertsOnCleanLog(t *testing.T) {
	now := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)
	log := newTestLog(t)
	writeEvents(t, log, Event{Time: now, Type: "task.created"})

	alerts, err := newTestEngine(log, now).Evaluate()
	if err != nil {
		t.Fatalf("evaluating: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", alerts)
	}
}

func TestAlertEngine_RepeatedAuthFailures(t *testing.T) {
	now := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)
	log := newTestLog(t)
	for i := 0; i < 5; i++ {
		writeEvents(t, log, failure(now.Add(-time.Duration(i)*time.Minute), "auth.failed", "auth.login"))
	}

	alerts, err := newTestEngine(log, now).Evaluate()
	if err != nil {
		t.Fatalf("evaluating: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Condition != "repeated_auth_failures" {
		t.Fatalf("expected auth failure alert, got %+v", alerts)
	}
	if alerts[0].Severity != SeverityMedium {
		t.Errorf("expected medium severity, got %s", alerts[0].Severity)
	}
}

func TestAlertEngine_IgnoresFailuresOutsideWindow(t *testing.T) {
	now := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)
	log := newTestLog(t)
	for i := 0; i < 5; i++ {
		writeEvents(t, log, failure(now.Add(-48*time.Hour), "task.failed", "remote.store"))
	}

	alerts, err := newTestEngine(log, now).Evaluate()
	if err != nil {
		t.Fatalf("evaluating: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected old failures ignored, got %+v", alerts)
	}
}

func TestAlertEngine_DiskFullAndStoreFailures(t *testing.T) {
	now := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)
	log := newTestLog(t)
	writeEvents(t, log,
		failure(now.Add(-3*time.Hour), "task.failed", "remote.store"),
		failure(now.Add(-2*time.Hour), "task.failed", "remote.store"),
		failure(now.Add(-time.Hour), "task.failed", "local.disk_full"),
	)

	alerts, err := newTestEngine(log, now).Evaluate()
	if err != nil {
		t.Fatalf("evaluating: %v", err)
	}
	conditions := make(map[string]AlertSeverity)
	for _, a := range alerts {
		conditions[a.Condition] = a.Severity
	}
	if conditions["disk_full"] != SeverityHigh {
		t.Errorf("expected high disk_full alert, got %+v", alerts)
	}
	if _, ok := conditions["repeated_store_failures"]; !ok {
		t.Errorf("expected store failure alert, got %+v", alerts)
	}
}
