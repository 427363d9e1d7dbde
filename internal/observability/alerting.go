package observability

import (
	"fmt"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert is a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts fire. Counts are taken over the
// trailing window.
type AlertThresholds struct {
	WindowHours   int `yaml:"window_hours" json:"window_hours"`
	AuthFailures  int `yaml:"auth_failures" json:"auth_failures"`
	StoreFailures int `yaml:"store_failures" json:"store_failures"`
}

// DefaultAlertThresholds returns the thresholds used by the CLI.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		WindowHours:   24,
		AuthFailures:  5,
		StoreFailures: 3,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates an AlertEngine over eventLog.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate returns every condition that currently holds.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now()
	since := now.Add(-time.Duration(ae.thresholds.WindowHours) * time.Hour)

	failures, err := ae.eventLog.Read(EventFilter{Since: &since, Level: LevelError})
	if err != nil {
		return nil, fmt.Errorf("reading failure events: %w", err)
	}

	var (
		authFailures  int
		storeFailures int
		diskFull      bool
	)
	for _, event := range failures {
		switch event.Type {
		case "auth.failed":
			authFailures++
		case "task.failed":
			storeFailures++
		}
		if code, _ := event.Data["code"].(string); code == "local.disk_full" {
			diskFull = true
		}
	}

	var alerts []Alert
	if diskFull {
		alerts = append(alerts, Alert{
			ID:          "disk-full",
			Condition:   "disk_full",
			Severity:    SeverityHigh,
			Message:     "a write failed because the disk is full",
			TriggeredAt: now,
		})
	}
	if ae.thresholds.AuthFailures > 0 && authFailures >= ae.thresholds.AuthFailures {
		alerts = append(alerts, Alert{
			ID:          "auth-failures",
			Condition:   "repeated_auth_failures",
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("%d authentication failures in the last %d hours", authFailures, ae.thresholds.WindowHours),
			TriggeredAt: now,
		})
	}
	if ae.thresholds.StoreFailures > 0 && storeFailures >= ae.thresholds.StoreFailures {
		alerts = append(alerts, Alert{
			ID:          "store-failures",
			Condition:   "repeated_store_failures",
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("%d task store failures in the last %d hours", storeFailures, ae.thresholds.WindowHours),
			TriggeredAt: now,
		})
	}
	return alerts, nil
}
